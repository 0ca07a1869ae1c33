package service

import (
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

// A CartService mutates per-user carts and computes totals against the
// live catalog generation. Prices are never cached on the cart: a price
// change between add and checkout is reflected on the next read.
type CartService struct {
	carts       port.CartKeeper
	catalog     port.CatalogKeeper
	deliveryFee float64
}

func NewCartService(
	carts port.CartKeeper, catalog port.CatalogKeeper, deliveryFee float64,
) *CartService {
	return &CartService{carts, catalog, deliveryFee}
}

// Add puts qty units of a product into the user's cart, incrementing an
// existing entry. Unknown and out-of-stock products are rejected.
func (s *CartService) Add(chatID int64, productID string, qty int) error {
	p, ok := s.catalog.Product(productID)
	if !ok {
		return domain.ErrProductNotFound
	}
	if !p.InStock {
		return domain.ErrOutOfStock
	}
	if qty < 1 {
		qty = 1
	}
	s.carts.Update(chatID, func(c *domain.Cart) {
		c.Items[productID] += qty
	})
	return nil
}

// Remove deletes the whole entry for a product, regardless of quantity.
func (s *CartService) Remove(chatID int64, productID string) {
	s.carts.Update(chatID, func(c *domain.Cart) {
		delete(c.Items, productID)
	})
}

// Clear empties the cart and drops the stored address.
func (s *CartService) Clear(chatID int64) {
	s.carts.Update(chatID, func(c *domain.Cart) {
		c.Items = make(map[string]int)
		c.Address = ""
		c.State = domain.StateBrowsing
	})
}

// Lines resolves the cart against the current catalog generation.
// Entries whose product id no longer resolves are silently excluded.
// Listing order follows the catalog view order so rendering is stable.
func (s *CartService) Lines(chatID int64) []domain.CartLine {
	cart := s.carts.Cart(chatID)

	var lines []domain.CartLine
	for _, p := range s.catalog.Products() {
		qty, ok := cart.Items[p.ID]
		if !ok {
			continue
		}
		lines = append(lines, domain.CartLine{
			Product:  p,
			Quantity: qty,
			Subtotal: p.Price * float64(qty),
		})
	}
	return lines
}

// Subtotal is the live-priced sum over resolvable entries.
func (s *CartService) Subtotal(chatID int64) float64 {
	var sum float64
	for _, l := range s.Lines(chatID) {
		sum += l.Subtotal
	}
	return sum
}

// Total adds the flat delivery fee, but only to a positive subtotal: an
// empty cart totals exactly zero, never fee-only.
func (s *CartService) Total(chatID int64) float64 {
	sum := s.Subtotal(chatID)
	if sum > 0 {
		sum += s.deliveryFee
	}
	return sum
}

// DeliveryFee exposes the configured flat fee for rendering.
func (s *CartService) DeliveryFee() float64 {
	return s.deliveryFee
}

// Empty reports whether the cart has any entries at all, resolvable or
// not.
func (s *CartService) Empty(chatID int64) bool {
	return len(s.carts.Cart(chatID).Items) == 0
}
