package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/titanshop/storefront/internal/adapter/storage"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/service"
)

type MockInvoiceSender struct {
	mock.Mock
}

func (m *MockInvoiceSender) SendInvoice(
	ctx context.Context,
	chatID int64,
	title, description, payload, currency string,
	lines []domain.LineItem,
) error {
	args := m.Called(ctx, chatID, title, description, payload, currency, lines)
	return args.Error(0)
}

type MockOrderProducer struct {
	mock.Mock
}

func (m *MockOrderProducer) ProduceOrder(
	ctx context.Context, order domain.Order,
) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

type checkoutFixture struct {
	carts    *storage.Carts
	cart     *service.CartService
	checkout *service.CheckoutService
	invoices *MockInvoiceSender
	orders   *MockOrderProducer
}

func newCheckoutFixture(t *testing.T, cardEnabled bool) checkoutFixture {
	t.Helper()

	catalog := fillCatalog(t,
		domain.Product{ID: "1", Name: "First", Price: 10, InStock: true},
		domain.Product{ID: "2", Name: "Second", Price: 20, InStock: true},
	)
	carts := storage.NewCarts()
	sessions := storage.NewSessions()
	cart := service.NewCartService(carts, catalog, 5)
	invoices := new(MockInvoiceSender)
	orders := new(MockOrderProducer)

	wallets := map[string]string{"BTC": "bc1qtest", "ETH": "0xtest"}
	rates := map[string]float64{"BTC": 50000, "ETH": 0}

	checkout := service.NewCheckoutService(
		carts, sessions, cart, invoices, orders,
		"EUR", 5, wallets, rates, cardEnabled,
	)
	return checkoutFixture{carts, cart, checkout, invoices, orders}
}

func TestCheckoutService(t *testing.T) {
	t.Run("BeginEmptyCartDoesNotMove", func(t *testing.T) {
		f := newCheckoutFixture(t, true)

		err := f.checkout.Begin(testChatID)
		assert.ErrorIs(t, err, domain.ErrEmptyCart)
		assert.Equal(t, domain.StateBrowsing, f.checkout.State(testChatID))
	})

	t.Run("BeginAwaitsAddress", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))

		require.NoError(t, f.checkout.Begin(testChatID))
		assert.Equal(t, domain.StateAwaitingAddress, f.checkout.State(testChatID))
		assert.True(t, f.checkout.AwaitingAddress(testChatID))
	})

	t.Run("EmptyAddressRejected", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))

		err := f.checkout.SubmitAddress(testChatID, "   ")
		assert.ErrorIs(t, err, domain.ErrBadTransition)
		assert.Equal(t, domain.StateAwaitingAddress, f.checkout.State(testChatID))
	})

	t.Run("AddressOutsideCheckoutRejected", func(t *testing.T) {
		f := newCheckoutFixture(t, true)

		err := f.checkout.SubmitAddress(testChatID, "Main st 1")
		assert.ErrorIs(t, err, domain.ErrBadTransition)
	})

	t.Run("SubmitAddressMovesToPaymentMethod", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))

		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))
		assert.Equal(
			t, domain.StateAwaitingPaymentMethod, f.checkout.State(testChatID),
		)
	})

	t.Run("PayByCardSendsInvoice", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 2))
		require.NoError(t, f.checkout.Begin(testChatID))
		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))

		var sent []domain.LineItem
		f.invoices.On(
			"SendInvoice",
			t.Context(), testChatID,
			mock.Anything, mock.Anything, mock.Anything, "EUR", mock.Anything,
		).Run(func(args mock.Arguments) {
			sent = args.Get(6).([]domain.LineItem)
		}).Return(nil)

		require.NoError(t, f.checkout.PayByCard(t.Context(), testChatID))
		assert.Equal(t, domain.StatePaymentPending, f.checkout.State(testChatID))

		require.Len(t, sent, 2)
		assert.Equal(t, "First x2", sent[0].Label)
		assert.Equal(t, int64(2000), sent[0].Amount)
		assert.Equal(t, "Delivery", sent[1].Label)
		assert.Equal(t, int64(500), sent[1].Amount)
	})

	t.Run("PayByCardDisabled", func(t *testing.T) {
		f := newCheckoutFixture(t, false)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))
		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))

		err := f.checkout.PayByCard(t.Context(), testChatID)
		assert.ErrorIs(t, err, domain.ErrCardDisabled)
		f.invoices.AssertNotCalled(t, "SendInvoice")
	})

	t.Run("PayByCardWrongState", func(t *testing.T) {
		f := newCheckoutFixture(t, true)

		err := f.checkout.PayByCard(t.Context(), testChatID)
		assert.ErrorIs(t, err, domain.ErrBadTransition)
	})

	t.Run("PayByCardProviderFailureKeepsState", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))
		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))

		f.invoices.On(
			"SendInvoice",
			t.Context(), testChatID,
			mock.Anything, mock.Anything, mock.Anything, "EUR", mock.Anything,
		).Return(errors.New("provider down"))

		err := f.checkout.PayByCard(t.Context(), testChatID)
		require.Error(t, err)
		assert.Equal(
			t, domain.StateAwaitingPaymentMethod, f.checkout.State(testChatID),
		)
	})

	t.Run("PayByCryptoQuotes", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))
		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))

		quotes, err := f.checkout.PayByCrypto(testChatID)
		require.NoError(t, err)

		// ETH has no usable rate and is skipped
		require.Len(t, quotes, 1)
		assert.Equal(t, "BTC", quotes[0].Coin)
		assert.Equal(t, "bc1qtest", quotes[0].Wallet)
		assert.InDelta(t, 15.0/50000, quotes[0].Amount, 1e-12)
		assert.Equal(t, domain.StatePaymentPending, f.checkout.State(testChatID))
	})

	t.Run("ConfirmPaymentCompletesCheckout", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))
		require.NoError(t, f.checkout.SubmitAddress(testChatID, "Main st 1"))

		quotes, err := f.checkout.PayByCrypto(testChatID)
		require.NoError(t, err)
		require.NotEmpty(t, quotes)

		var produced domain.Order
		f.orders.On("ProduceOrder", t.Context(), mock.Anything).
			Run(func(args mock.Arguments) {
				produced = args.Get(1).(domain.Order)
			}).Return(nil)

		ev := domain.PaymentEvent{
			ChatID:  testChatID,
			OrderID: "order-1",
			Status:  domain.PaymentSucceeded,
		}
		require.NoError(t, f.checkout.ConfirmPayment(t.Context(), ev))

		assert.Equal(t, domain.StateCompleted, f.checkout.State(testChatID))
		assert.True(t, f.cart.Empty(testChatID))

		assert.Equal(t, "order-1", produced.OrderID)
		assert.Equal(t, testChatID, produced.ChatID)
		assert.Equal(t, "Main st 1", produced.Address)
		assert.Equal(t, "EUR", produced.Currency)
		assert.Equal(t, 15.0, produced.Total)
	})

	t.Run("ConfirmPaymentIgnoresOtherStatuses", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))

		ev := domain.PaymentEvent{ChatID: testChatID, Status: "failed"}
		require.NoError(t, f.checkout.ConfirmPayment(t.Context(), ev))

		assert.False(t, f.cart.Empty(testChatID))
		f.orders.AssertNotCalled(t, "ProduceOrder")
	})

	t.Run("CancelKeepsItems", func(t *testing.T) {
		f := newCheckoutFixture(t, true)
		require.NoError(t, f.cart.Add(testChatID, "1", 1))
		require.NoError(t, f.checkout.Begin(testChatID))

		f.checkout.Cancel(testChatID)

		assert.Equal(t, domain.StateBrowsing, f.checkout.State(testChatID))
		assert.False(t, f.cart.Empty(testChatID))
	})
}
