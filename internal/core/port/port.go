package port

import (
	"context"
	"sync"

	"github.com/titanshop/storefront/internal/core/domain"
)

type (
	runnerContextWg interface {
		Run(context.Context, context.CancelFunc, *sync.WaitGroup)
	}

	closer interface {
		Close()
	}
)

// A CatalogSource delivers the raw feed rows for one sync cycle.
type CatalogSource interface {
	Fetch(context.Context) ([]domain.FeedRecord, error)
}

// A CatalogKeeper owns the current catalog generation. Replace publishes
// a complete new generation atomically: readers see either the old set
// or the new one, never a mix.
type CatalogKeeper interface {
	Replace(map[string]domain.Product)
	Product(id string) (domain.Product, bool)
	Products() []domain.Product
	Count() int
}

// A CartKeeper owns the per-user carts. Update serializes mutations per
// user so overlapping actions from the same chat never lose updates.
type CartKeeper interface {
	Update(chatID int64, fn func(*domain.Cart))
	Cart(chatID int64) domain.Cart
}

// A SessionKeeper owns the per-user interaction state.
type SessionKeeper interface {
	Update(chatID int64, fn func(*domain.Session))
	Session(chatID int64) domain.Session
}

type (
	// A Button is one inline keyboard key. Callback and URL are mutually
	// exclusive.
	Button struct {
		Text     string
		Callback string
		URL      string
	}

	// A Keyboard is rendered under an outgoing message, one row per
	// inner slice.
	Keyboard [][]Button
)

// Chat is the transport collaborator. Send operations return the id of
// the created message so the caller can delete-then-replace on the next
// turn.
type Chat interface {
	SendText(ctx context.Context, chatID int64, text string, kb Keyboard) (int64, error)
	EditText(ctx context.Context, chatID, messageID int64, text string, kb Keyboard) error
	SendPhoto(ctx context.Context, chatID int64, url, caption string, kb Keyboard) (int64, error)
	DeleteMessage(ctx context.Context, chatID, messageID int64) error
	AnswerCallback(ctx context.Context, callbackID, text string, alert bool) error
}

// An InvoiceSender starts a card payment with the payment provider.
type InvoiceSender interface {
	SendInvoice(ctx context.Context, chatID int64, title, description, payload, currency string, lines []domain.LineItem) error
}

// An OrderProducer hands a confirmed order to fulfillment.
type OrderProducer interface {
	ProduceOrder(context.Context, domain.Order) error
}

// A PaymentEventsProcessor consumes externally delivered payment
// confirmations.
type PaymentEventsProcessor interface {
	runnerContextWg
	closer
}

// A PaymentConfirmer completes a pending checkout. Implemented by the
// core and driven by the payment events adapter.
type PaymentConfirmer interface {
	ConfirmPayment(ctx context.Context, ev domain.PaymentEvent) error
}

// A CatalogSyncer reloads the catalog from its source. Driven by the
// periodic scheduler and at startup.
type CatalogSyncer interface {
	Sync(context.Context) (domain.LoadStats, error)
}
