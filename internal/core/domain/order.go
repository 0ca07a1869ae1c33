package domain

type (
	// An Order is produced for fulfillment once a payment confirmation
	// arrives.
	Order struct {
		OrderID  string
		ChatID   int64
		Address  string
		Currency string
		Total    float64
		Lines    []LineItem
	}

	// A LineItem is one invoice position. Amount is in minor currency
	// units (price x 100) multiplied by quantity.
	LineItem struct {
		Label    string
		Quantity int
		Amount   int64
	}

	// A PaymentEvent is delivered by the payment collaborator when a
	// charge settles.
	PaymentEvent struct {
		ChatID   int64
		OrderID  string
		Currency string
		Amount   int64
		Status   string
	}

	// A CryptoQuote is a display-only converted amount for one coin.
	// Settlement is manual, there is no on-chain verification.
	CryptoQuote struct {
		Coin   string
		Wallet string
		Amount float64
	}
)

// PaymentSucceeded is the only PaymentEvent status that completes a
// checkout.
const PaymentSucceeded = "succeeded"
