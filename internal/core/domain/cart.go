package domain

// CheckoutState is the per-user position in the checkout flow.
type CheckoutState int

const (
	StateBrowsing CheckoutState = iota
	StateAwaitingAddress
	StateAwaitingPaymentMethod
	StatePaymentPending
	StateCompleted
)

func (s CheckoutState) String() string {
	switch s {
	case StateBrowsing:
		return "browsing"
	case StateAwaitingAddress:
		return "awaiting_address"
	case StateAwaitingPaymentMethod:
		return "awaiting_payment_method"
	case StatePaymentPending:
		return "payment_pending"
	case StateCompleted:
		return "completed"
	}
	return "unknown"
}

type (
	// A Cart holds one user's selected products. Quantities are always
	// positive: removing an entry deletes it, it is never decremented
	// to zero in place.
	Cart struct {
		Items   map[string]int
		Address string
		State   CheckoutState
	}

	// A CartLine is one cart entry resolved against the current catalog
	// generation. Totals are recomputed from live prices on every read.
	CartLine struct {
		Product  Product
		Quantity int
		Subtotal float64
	}
)

// View is the listing context "back" navigation returns to.
type View int

const (
	ViewNone View = iota
	ViewInjectable
	ViewOral
	ViewSearch
)

// A Session tracks per-user interaction state outside the cart: whether
// the next free-text message is a search query and which listing the user
// came from. Reset on /start and on cancel.
type Session struct {
	Searching     bool
	CurrentView   View
	LastMessageID int64
}
