package storage

import (
	"slices"
	"strconv"
	"sync/atomic"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.CatalogKeeper = (*Catalog)(nil)

// A generation is one complete immutable snapshot of the catalog.
type generation struct {
	byID   map[string]domain.Product
	sorted []domain.Product
}

// A Catalog holds the current generation behind an atomic pointer.
// Replace swaps the whole generation, so a concurrent reader always sees
// a single load cycle's snapshot and never a mix of two.
type Catalog struct {
	gen atomic.Pointer[generation]
}

func NewCatalog() *Catalog {
	c := &Catalog{}
	c.gen.Store(&generation{byID: map[string]domain.Product{}})
	return c
}

// Replace publishes a new generation. The previous one stays valid for
// readers that already hold it.
func (c *Catalog) Replace(products map[string]domain.Product) {
	g := &generation{
		byID:   products,
		sorted: make([]domain.Product, 0, len(products)),
	}
	for _, p := range products {
		g.sorted = append(g.sorted, p)
	}
	slices.SortFunc(g.sorted, compareIDs)
	c.gen.Store(g)
}

// Stable iteration order: numeric ids ascending, then lexicographic.
func compareIDs(a, b domain.Product) int {
	an, aerr := strconv.Atoi(a.ID)
	bn, berr := strconv.Atoi(b.ID)
	if aerr == nil && berr == nil {
		return an - bn
	}
	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	}
	return 0
}

func (c *Catalog) Product(id string) (domain.Product, bool) {
	p, ok := c.gen.Load().byID[id]
	return p, ok
}

func (c *Catalog) Products() []domain.Product {
	return c.gen.Load().sorted
}

func (c *Catalog) Count() int {
	return len(c.gen.Load().byID)
}
