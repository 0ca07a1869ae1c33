package service

import (
	"slices"
	"strings"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

const (
	minQueryLen    = 2
	maxResults     = 15
	nameMatchBonus = 100
	allWordsBonus  = 50
	wordMatchBonus = 10
	categoryBonus  = 25
)

// A SearchService ranks the current catalog generation against a
// free-text query.
type SearchService struct {
	keeper port.CatalogKeeper
}

func NewSearchService(keeper port.CatalogKeeper) *SearchService {
	return &SearchService{keeper}
}

// Search scores every product and returns at most 15 results, highest
// score first. Queries shorter than two characters yield an empty
// result. Scores are ephemeral, valid only within this result set.
func (s *SearchService) Search(query string) []domain.SearchResult {
	query = strings.ToLower(strings.TrimSpace(query))
	if len([]rune(query)) < minQueryLen {
		return nil
	}
	words := strings.Fields(query)

	var results []domain.SearchResult
	for _, p := range s.keeper.Products() {
		score := scoreProduct(p, query, words)
		if score == 0 {
			continue
		}
		results = append(results, domain.SearchResult{Product: p, Score: score})
	}

	slices.SortStableFunc(results, compareResults)
	if len(results) > maxResults {
		results = results[:maxResults]
	}
	return results
}

func scoreProduct(p domain.Product, query string, words []string) int {
	searchable := strings.ToLower(
		p.Name + " " + p.Description + " " + p.Category + " " + p.SKU,
	)

	var score int
	if strings.Contains(strings.ToLower(p.Name), query) {
		score += nameMatchBonus
	}

	matched := 0
	for _, w := range words {
		if strings.Contains(searchable, w) {
			matched++
		}
	}
	if matched == len(words) {
		score += allWordsBonus
	}
	score += matched * wordMatchBonus

	if strings.Contains(strings.ToLower(p.Category), query) {
		score += categoryBonus
	}
	return score
}

// Descending score, then in-stock before out-of-stock, then cheaper
// first.
func compareResults(a, b domain.SearchResult) int {
	if a.Score != b.Score {
		return b.Score - a.Score
	}
	if a.Product.InStock != b.Product.InStock {
		if a.Product.InStock {
			return -1
		}
		return 1
	}
	switch {
	case a.Product.Price < b.Product.Price:
		return -1
	case a.Product.Price > b.Product.Price:
		return 1
	}
	return 0
}
