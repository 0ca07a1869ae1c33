package service_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titanshop/storefront/internal/adapter/storage"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/service"
)

func fillCatalog(t *testing.T, ps ...domain.Product) *storage.Catalog {
	t.Helper()
	m := make(map[string]domain.Product, len(ps))
	for _, p := range ps {
		m[p.ID] = p
	}
	keeper := storage.NewCatalog()
	keeper.Replace(m)
	return keeper
}

func TestSearchService(t *testing.T) {
	t.Run("ShortQueryYieldsNothing", func(t *testing.T) {
		keeper := fillCatalog(t, domain.Product{ID: "1", Name: "Anything"})
		s := service.NewSearchService(keeper)

		assert.Empty(t, s.Search("a"))
		assert.Empty(t, s.Search("  a  "))
		assert.Empty(t, s.Search(""))
	})

	t.Run("ExactNameMatchRanksFirst", func(t *testing.T) {
		keeper := fillCatalog(t,
			domain.Product{
				ID: "1", Name: "Testosterone Enanthate", InStock: true,
			},
			domain.Product{
				ID: "2", Name: "Mixed blend",
				Description: "contains testosterone", InStock: true,
			},
		)
		s := service.NewSearchService(keeper)

		results := s.Search("Testosterone Enanthate")
		require.Len(t, results, 2)
		assert.Equal(t, "1", results[0].Product.ID)
		assert.Greater(t, results[0].Score, results[1].Score)
	})

	t.Run("ZeroScoreExcluded", func(t *testing.T) {
		keeper := fillCatalog(t,
			domain.Product{ID: "1", Name: "Protein bar", InStock: true},
			domain.Product{ID: "2", Name: "Shaker", InStock: true},
		)
		s := service.NewSearchService(keeper)

		results := s.Search("protein")
		require.Len(t, results, 1)
		assert.Equal(t, "1", results[0].Product.ID)
	})

	t.Run("SKUIsSearchable", func(t *testing.T) {
		keeper := fillCatalog(t,
			domain.Product{ID: "1", Name: "Vial", SKU: "TE-250", InStock: true},
		)
		s := service.NewSearchService(keeper)

		results := s.Search("te-250")
		require.Len(t, results, 1)
	})

	t.Run("CategoryMatchScores", func(t *testing.T) {
		keeper := fillCatalog(t,
			domain.Product{
				ID: "1", Name: "Vial", Category: "Injectable", InStock: true,
			},
		)
		s := service.NewSearchService(keeper)

		results := s.Search("injectable")
		require.Len(t, results, 1)
		// token match + all-words bonus + category bonus
		assert.Equal(t, 85, results[0].Score)
	})

	t.Run("TiesOrderedByStockThenPrice", func(t *testing.T) {
		keeper := fillCatalog(t,
			domain.Product{ID: "1", Name: "Gainer XL", Price: 30, InStock: false},
			domain.Product{ID: "2", Name: "Gainer XS", Price: 20, InStock: true},
			domain.Product{ID: "3", Name: "Gainer XM", Price: 10, InStock: true},
		)
		s := service.NewSearchService(keeper)

		results := s.Search("gainer")
		require.Len(t, results, 3)
		assert.Equal(t, "3", results[0].Product.ID)
		assert.Equal(t, "2", results[1].Product.ID)
		assert.Equal(t, "1", results[2].Product.ID)
	})

	t.Run("ResultsCapped", func(t *testing.T) {
		var ps []domain.Product
		for i := range 20 {
			ps = append(ps, domain.Product{
				ID:      fmt.Sprintf("%d", i+1),
				Name:    fmt.Sprintf("Protein shake %d", i+1),
				InStock: true,
			})
		}
		keeper := fillCatalog(t, ps...)
		s := service.NewSearchService(keeper)

		results := s.Search("protein")
		assert.Len(t, results, 15)
	})
}
