package service

import (
	"context"
	"fmt"
	"html"
	"log/slog"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.CatalogSyncer = (*CatalogService)(nil)

var imageExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp"}

var whitespaceRe = regexp.MustCompile(`\s+`)

// A CatalogService loads the product feed, classifies every record and
// publishes complete catalog generations to the keeper.
type CatalogService struct {
	source   port.CatalogSource
	keeper   port.CatalogKeeper
	sanitize *bluemonday.Policy
}

func NewCatalogService(
	source port.CatalogSource, keeper port.CatalogKeeper,
) *CatalogService {
	return &CatalogService{
		source:   source,
		keeper:   keeper,
		sanitize: bluemonday.StrictPolicy(),
	}
}

// Sync fetches the feed and replaces the whole catalog generation.
// Conversion is best-effort per record: a malformed row is skipped and
// counted, it never aborts the batch. A source read failure publishes an
// empty generation so the storefront stays responsive with zero
// products.
func (s *CatalogService) Sync(ctx context.Context) (domain.LoadStats, error) {
	const op = "CatalogService.Sync"
	log := slog.With("op", op)

	stats := domain.LoadStats{ByCategory: make(map[string]int)}

	records, err := s.source.Fetch(ctx)
	if err != nil {
		s.keeper.Replace(map[string]domain.Product{})
		log.Error("failed to read catalog source", "err", err)
		return stats, fmt.Errorf("%s: %w", op, err)
	}

	products := make(map[string]domain.Product, len(records))
	for _, rec := range records {
		p, err := s.buildProduct(rec)
		if err != nil {
			stats.Skipped++
			log.Warn("skipping feed record", "row", rec.RowIndex, "err", err)
			continue
		}
		if p.Image != "" {
			stats.WithImage++
		}
		stats.ByCategory[p.Category]++
		products[p.ID] = p
	}
	stats.Total = len(products)

	s.keeper.Replace(products)

	log.Info("catalog synced",
		"products", stats.Total,
		"skipped", stats.Skipped,
		"withImage", stats.WithImage,
	)
	for cat, n := range stats.ByCategory {
		log.Info("category size", "category", cat, "count", n)
	}
	return stats, nil
}

func (s *CatalogService) buildProduct(
	rec domain.FeedRecord,
) (domain.Product, error) {
	id, err := resolveID(rec)
	if err != nil {
		return domain.Product{}, err
	}

	name := strings.TrimSpace(rec.Name)
	if name == "" {
		name = "Product " + id
	}

	desc := s.cleanText(rec.ShortDesc)
	if desc == "" {
		desc = s.cleanText(rec.LongDesc)
	}

	rawCategory := strings.TrimSpace(rec.Category)

	return domain.Product{
		ID:               id,
		Name:             name,
		Description:      desc,
		Price:            resolvePrice(rec.Price, rec.AltPrice),
		Category:         Classify(name, rawCategory, desc),
		OriginalCategory: rawCategory,
		Image:            firstImageURL(rec.Images),
		InStock:          resolveStock(rec.StockFlag),
		SKU:              strings.TrimSpace(rec.SKU),
	}, nil
}

// cleanText strips markup, turns escaped newline literals into real
// newlines and collapses whitespace runs.
func (s *CatalogService) cleanText(raw string) string {
	clean := html.UnescapeString(s.sanitize.Sanitize(raw))
	clean = strings.ReplaceAll(clean, `\r\n`, "\n")
	clean = strings.ReplaceAll(clean, `\n`, "\n")
	clean = whitespaceRe.ReplaceAllString(clean, " ")
	return strings.TrimSpace(clean)
}

func resolveID(rec domain.FeedRecord) (string, error) {
	raw := strings.TrimSpace(rec.ID)
	if raw == "" {
		return strconv.Itoa(rec.RowIndex), nil
	}
	n, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return "", fmt.Errorf("bad product id %q: %w", raw, err)
	}
	return strconv.FormatInt(int64(n), 10), nil
}

func resolvePrice(primary, secondary string) float64 {
	for _, raw := range []string{primary, secondary} {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if v, err := strconv.ParseFloat(raw, 64); err == nil && v >= 0 {
			return v
		}
	}
	return 0.0
}

func resolveStock(raw string) bool {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return true
	}
	return n != 0
}

// firstImageURL picks the first candidate that is an absolute URL with a
// known image extension. No candidate qualifying means no image.
func firstImageURL(raw string) string {
	for cand := range strings.SplitSeq(raw, ",") {
		cand = strings.TrimSpace(cand)
		if validImageURL(cand) {
			return cand
		}
	}
	return ""
}

func validImageURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return false
	}
	path := strings.ToLower(u.Path)
	for _, ext := range imageExtensions {
		if strings.HasSuffix(path, ext) {
			return true
		}
	}
	return false
}

// Product resolves one catalog entry by id.
func (s *CatalogService) Product(id string) (domain.Product, error) {
	p, ok := s.keeper.Product(id)
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return p, nil
}

// Count reports the size of the current generation.
func (s *CatalogService) Count() int {
	return s.keeper.Count()
}

// Browse returns one of the two fixed category views, in-stock products
// first, cheaper first within each group.
func (s *CatalogService) Browse(view domain.View) []domain.Product {
	var tokens []string
	switch view {
	case domain.ViewInjectable:
		tokens = injectableFamilyTokens
	case domain.ViewOral:
		tokens = oralFamilyTokens
	default:
		return nil
	}

	var list []domain.Product
	for _, p := range s.keeper.Products() {
		if containsAny(strings.ToLower(p.Category), tokens) {
			list = append(list, p)
		}
	}
	sortListing(list)
	return list
}

func sortListing(list []domain.Product) {
	slices.SortStableFunc(list, func(a, b domain.Product) int {
		if a.InStock != b.InStock {
			if a.InStock {
				return -1
			}
			return 1
		}
		switch {
		case a.Price < b.Price:
			return -1
		case a.Price > b.Price:
			return 1
		}
		return 0
	})
}
