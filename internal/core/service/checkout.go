package service

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

var _ port.PaymentConfirmer = (*CheckoutService)(nil)

// minorUnits converts a decimal price to integer minor currency units.
func minorUnits(price float64) int64 {
	return int64(price * 100)
}

// A CheckoutService drives the per-user state machine from cart
// confirmation through address capture, payment selection and
// completion.
type CheckoutService struct {
	carts    port.CartKeeper
	sessions port.SessionKeeper
	cart     *CartService
	invoices port.InvoiceSender
	orders   port.OrderProducer

	currency    string
	deliveryFee float64
	wallets     map[string]string
	rates       map[string]float64
	cardEnabled bool
}

func NewCheckoutService(
	carts port.CartKeeper,
	sessions port.SessionKeeper,
	cart *CartService,
	invoices port.InvoiceSender,
	orders port.OrderProducer,
	currency string,
	deliveryFee float64,
	wallets map[string]string,
	rates map[string]float64,
	cardEnabled bool,
) *CheckoutService {
	return &CheckoutService{
		carts:       carts,
		sessions:    sessions,
		cart:        cart,
		invoices:    invoices,
		orders:      orders,
		currency:    currency,
		deliveryFee: deliveryFee,
		wallets:     wallets,
		rates:       rates,
		cardEnabled: cardEnabled,
	}
}

// State reports the user's current checkout position.
func (s *CheckoutService) State(chatID int64) domain.CheckoutState {
	return s.carts.Cart(chatID).State
}

// CardEnabled reports whether the card provider is configured.
func (s *CheckoutService) CardEnabled() bool {
	return s.cardEnabled
}

// Begin starts a checkout. An empty cart is rejected and the state does
// not move.
func (s *CheckoutService) Begin(chatID int64) error {
	if s.cart.Empty(chatID) {
		return domain.ErrEmptyCart
	}
	s.carts.Update(chatID, func(c *domain.Cart) {
		c.State = domain.StateAwaitingAddress
	})
	return nil
}

// SubmitAddress stores the delivery address verbatim. No geocoding, no
// validation beyond non-emptiness.
func (s *CheckoutService) SubmitAddress(chatID int64, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return domain.ErrBadTransition
	}
	var moved bool
	s.carts.Update(chatID, func(c *domain.Cart) {
		if c.State != domain.StateAwaitingAddress {
			return
		}
		c.Address = text
		c.State = domain.StateAwaitingPaymentMethod
		moved = true
	})
	if !moved {
		return domain.ErrBadTransition
	}
	return nil
}

// AwaitingAddress reports whether the next free-text message from this
// user is a delivery address.
func (s *CheckoutService) AwaitingAddress(chatID int64) bool {
	return s.carts.Cart(chatID).State == domain.StateAwaitingAddress
}

// PayByCard builds an invoice from the cart line items plus a delivery
// line, each amount in minor currency units, and hands it to the payment
// provider.
func (s *CheckoutService) PayByCard(ctx context.Context, chatID int64) error {
	const op = "CheckoutService.PayByCard"

	if !s.cardEnabled {
		return fmt.Errorf("%s: %w", op, domain.ErrCardDisabled)
	}
	if s.carts.Cart(chatID).State != domain.StateAwaitingPaymentMethod {
		return fmt.Errorf("%s: %w", op, domain.ErrBadTransition)
	}

	lines := s.invoiceLines(chatID)
	total := s.cart.Total(chatID)

	payload := uuid.NewString()
	title := "TitanShop order"
	desc := fmt.Sprintf("Order total %s %.2f", s.currency, total)

	err := s.invoices.SendInvoice(
		ctx, chatID, title, desc, payload, s.currency, lines,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.carts.Update(chatID, func(c *domain.Cart) {
		c.State = domain.StatePaymentPending
	})
	return nil
}

func (s *CheckoutService) invoiceLines(chatID int64) []domain.LineItem {
	var lines []domain.LineItem
	for _, l := range s.cart.Lines(chatID) {
		label := l.Product.Name
		if r := []rune(label); len(r) > 30 {
			label = string(r[:30])
		}
		lines = append(lines, domain.LineItem{
			Label:    fmt.Sprintf("%s x%d", label, l.Quantity),
			Quantity: l.Quantity,
			Amount:   minorUnits(l.Product.Price) * int64(l.Quantity),
		})
	}
	lines = append(lines, domain.LineItem{
		Label:    "Delivery",
		Quantity: 1,
		Amount:   minorUnits(s.deliveryFee),
	})
	return lines
}

// PayByCrypto converts the cart total with the configured per-coin rates
// and returns display quotes. Settlement is out-of-band, no callback is
// expected from a chain.
func (s *CheckoutService) PayByCrypto(chatID int64) ([]domain.CryptoQuote, error) {
	const op = "CheckoutService.PayByCrypto"

	if s.carts.Cart(chatID).State != domain.StateAwaitingPaymentMethod {
		return nil, fmt.Errorf("%s: %w", op, domain.ErrBadTransition)
	}

	total := s.cart.Total(chatID)

	coins := make([]string, 0, len(s.wallets))
	for coin := range s.wallets {
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	var quotes []domain.CryptoQuote
	for _, coin := range coins {
		rate := s.rates[coin]
		if rate <= 0 {
			continue
		}
		quotes = append(quotes, domain.CryptoQuote{
			Coin:   coin,
			Wallet: s.wallets[coin],
			Amount: total / rate,
		})
	}

	s.carts.Update(chatID, func(c *domain.Cart) {
		c.State = domain.StatePaymentPending
	})
	return quotes, nil
}

// ConfirmPayment completes the checkout on an externally delivered
// successful-payment event. The cart is cleared unconditionally for that
// user, whichever payment path was taken, and the order goes out to
// fulfillment.
func (s *CheckoutService) ConfirmPayment(
	ctx context.Context, ev domain.PaymentEvent,
) error {
	const op = "CheckoutService.ConfirmPayment"
	log := slog.With("op", op)

	if ev.Status != domain.PaymentSucceeded {
		log.Warn("ignoring payment event", "status", ev.Status, "chatID", ev.ChatID)
		return nil
	}

	order := s.buildOrder(ev)

	s.cart.Clear(ev.ChatID)
	s.carts.Update(ev.ChatID, func(c *domain.Cart) {
		c.State = domain.StateCompleted
	})

	if s.orders != nil {
		if err := s.orders.ProduceOrder(ctx, order); err != nil {
			// The user's payment already settled; losing the
			// fulfillment event must not fail the confirmation.
			log.Error("failed to produce order", "err", err)
		}
	}

	log.Info("checkout completed", "chatID", ev.ChatID, "orderID", order.OrderID)
	return nil
}

func (s *CheckoutService) buildOrder(ev domain.PaymentEvent) domain.Order {
	orderID := ev.OrderID
	if orderID == "" {
		orderID = uuid.NewString()
	}
	cart := s.carts.Cart(ev.ChatID)
	return domain.Order{
		OrderID:  orderID,
		ChatID:   ev.ChatID,
		Address:  cart.Address,
		Currency: s.currency,
		Total:    s.cart.Total(ev.ChatID),
		Lines:    s.invoiceLines(ev.ChatID),
	}
}

// Cancel returns the user to browsing. Only the awaiting flags reset:
// cart items survive a cancelled checkout.
func (s *CheckoutService) Cancel(chatID int64) {
	s.carts.Update(chatID, func(c *domain.Cart) {
		c.State = domain.StateBrowsing
	})
	s.sessions.Update(chatID, func(sess *domain.Session) {
		sess.Searching = false
		sess.CurrentView = domain.ViewNone
	})
}
