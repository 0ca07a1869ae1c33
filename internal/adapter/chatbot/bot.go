// Package chatbot drives the storefront conversation: it routes inbound
// updates to the core services and renders every screen through the
// transport collaborator, keeping a single-screen chat by deleting the
// previous message on each turn.
package chatbot

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
	"github.com/titanshop/storefront/internal/core/service"
)

// Callback data prefixes and values shared with the keyboards.
const (
	cbMenu         = "back_to_menu"
	cbBackToList   = "back_to_category"
	cbInjectable   = "cat_inject"
	cbOral         = "cat_oral"
	cbSearchStart  = "search_start"
	cbCancelSearch = "cancel_search"
	cbShowCart     = "show_cart"
	cbCheckout     = "checkout"
	cbPayCard      = "pay_card"
	cbPayCrypto    = "pay_crypto"

	cbProductPrefix = "prod_"
	cbBuyPrefix     = "buy_"
	cbRemovePrefix  = "remove_"
	cbPagePrefix    = "page_"
)

type Bot struct {
	chat     port.Chat
	sessions port.SessionKeeper
	catalog  *service.CatalogService
	search   *service.SearchService
	cart     *service.CartService
	checkout *service.CheckoutService
	currency string
}

func New(
	chat port.Chat,
	sessions port.SessionKeeper,
	catalog *service.CatalogService,
	search *service.SearchService,
	cart *service.CartService,
	checkout *service.CheckoutService,
	currency string,
) *Bot {
	return &Bot{
		chat:     chat,
		sessions: sessions,
		catalog:  catalog,
		search:   search,
		cart:     cart,
		checkout: checkout,
		currency: currency,
	}
}

// HandleMessage processes a free-text message: a command, a delivery
// address, a search query or noise, in that order.
func (b *Bot) HandleMessage(ctx context.Context, chatID int64, text string) {
	text = strings.TrimSpace(text)

	if text == "/start" {
		b.resetSession(chatID)
		b.checkout.Cancel(chatID)
		b.showMenu(ctx, chatID, 0)
		return
	}

	if b.checkout.AwaitingAddress(chatID) {
		b.handleAddress(ctx, chatID, text)
		return
	}

	if b.sessions.Session(chatID).Searching {
		b.handleSearchQuery(ctx, chatID, text)
		return
	}

	b.deleteLast(ctx, chatID)
	b.sendScreen(ctx, chatID,
		"Use the menu below or the /start command.", mainMenuKeyboard())
}

// HandleCallback processes a button press. Every press is acknowledged;
// error notices go out as alerts.
func (b *Bot) HandleCallback(
	ctx context.Context, chatID int64, messageID int64, callbackID, data string,
) {
	const op = "Bot.HandleCallback"
	log := slog.With("op", op)

	ack := func(text string, alert bool) {
		if err := b.chat.AnswerCallback(ctx, callbackID, text, alert); err != nil {
			log.Debug("failed to answer callback", "err", err)
		}
	}

	switch {
	case data == cbMenu:
		ack("", false)
		b.resetSession(chatID)
		b.checkout.Cancel(chatID)
		b.showMenu(ctx, chatID, messageID)

	case data == cbInjectable:
		ack("", false)
		b.showCategory(ctx, chatID, messageID, domain.ViewInjectable, 0)

	case data == cbOral:
		ack("", false)
		b.showCategory(ctx, chatID, messageID, domain.ViewOral, 0)

	case data == cbSearchStart:
		ack("", false)
		b.showSearchPrompt(ctx, chatID, messageID)

	case data == cbCancelSearch:
		ack("", false)
		b.resetSession(chatID)
		b.showMenu(ctx, chatID, messageID)

	case data == cbShowCart:
		ack("", false)
		b.showCart(ctx, chatID, messageID)

	case data == cbBackToList:
		ack("", false)
		b.showLastView(ctx, chatID, messageID)

	case data == cbCheckout:
		b.handleCheckout(ctx, chatID, messageID, ack)

	case data == cbPayCard:
		b.handlePayCard(ctx, chatID, ack)

	case data == cbPayCrypto:
		ack("", false)
		b.handlePayCrypto(ctx, chatID, messageID)

	case strings.HasPrefix(data, cbProductPrefix):
		ack("", false)
		b.showProduct(ctx, chatID, strings.TrimPrefix(data, cbProductPrefix))

	case strings.HasPrefix(data, cbBuyPrefix):
		b.handleBuy(ctx, chatID, messageID,
			strings.TrimPrefix(data, cbBuyPrefix), ack)

	case strings.HasPrefix(data, cbRemovePrefix):
		ack("Removed from cart", false)
		b.cart.Remove(chatID, strings.TrimPrefix(data, cbRemovePrefix))
		b.showCart(ctx, chatID, messageID)

	case strings.HasPrefix(data, cbPagePrefix):
		ack("", false)
		b.handlePage(ctx, chatID, messageID, data)

	default:
		ack("", false)
		log.Warn("unknown callback", "data", data)
		b.showMenu(ctx, chatID, messageID)
	}
}

// HandlePayment is driven by the payment events adapter. The checkout
// completes regardless of payment path; the user gets a confirmation
// screen.
func (b *Bot) HandlePayment(ctx context.Context, ev domain.PaymentEvent) error {
	if err := b.checkout.ConfirmPayment(ctx, ev); err != nil {
		return err
	}
	if ev.Status != domain.PaymentSucceeded {
		return nil
	}
	b.deleteLast(ctx, ev.ChatID)
	b.sendScreen(ctx, ev.ChatID,
		"🎉 Payment successful! Your order is accepted.\n\n📦 Expect delivery soon.",
		nil)
	return nil
}

func (b *Bot) handleAddress(ctx context.Context, chatID int64, text string) {
	if err := b.checkout.SubmitAddress(chatID, text); err != nil {
		b.deleteLast(ctx, chatID)
		b.sendScreen(ctx, chatID,
			"Please send a delivery address as plain text.", nil)
		return
	}
	b.deleteLast(ctx, chatID)
	b.sendScreen(ctx, chatID,
		"✅ Address saved.\n\nChoose a payment method:",
		paymentKeyboard(b.checkout.CardEnabled()))
}

func (b *Bot) handleSearchQuery(ctx context.Context, chatID int64, query string) {
	b.sessions.Update(chatID, func(s *domain.Session) {
		s.Searching = false
	})

	if len([]rune(strings.TrimSpace(query))) < 2 {
		b.deleteLast(ctx, chatID)
		b.sendScreen(ctx, chatID,
			"❌ The query is too short. Two characters minimum.",
			mainMenuKeyboard())
		return
	}

	results := b.search.Search(query)
	if len(results) == 0 {
		b.deleteLast(ctx, chatID)
		b.sendScreen(ctx, chatID,
			"❌ Nothing found for *"+query+"*.\n\nTry other keywords.",
			mainMenuKeyboard())
		return
	}

	b.sessions.Update(chatID, func(s *domain.Session) {
		s.CurrentView = domain.ViewSearch
	})

	products := make([]domain.Product, 0, len(results))
	for _, r := range results {
		products = append(products, r.Product)
	}
	text := "🔎 Results for *" + query + "*\n\nFound: " +
		strconv.Itoa(len(products)) + " products"
	b.deleteLast(ctx, chatID)
	b.sendScreen(ctx, chatID, text, searchResultsKeyboard(products))
}

func (b *Bot) handleCheckout(
	ctx context.Context, chatID, messageID int64, ack func(string, bool),
) {
	if err := b.checkout.Begin(chatID); err != nil {
		ack("The cart is empty", true)
		return
	}
	ack("", false)
	text := "📦 *Checkout*\n\n" + b.cartText(chatID) +
		"\n\n📍 Send the delivery address:"
	b.editOrReplace(ctx, chatID, messageID, text, nil)
}

func (b *Bot) handlePayCard(
	ctx context.Context, chatID int64, ack func(string, bool),
) {
	err := b.checkout.PayByCard(ctx, chatID)
	switch {
	case err == nil:
		ack("", false)
	case errors.Is(err, domain.ErrCardDisabled):
		ack("Card payments are unavailable, pay with crypto instead", true)
	default:
		ack("Failed to create the invoice, try again", true)
		slog.Warn("card payment failed", "chatID", chatID, "err", err)
	}
}

func (b *Bot) handlePayCrypto(ctx context.Context, chatID, messageID int64) {
	quotes, err := b.checkout.PayByCrypto(chatID)
	if err != nil {
		b.showMenu(ctx, chatID, messageID)
		return
	}
	b.editOrReplace(ctx, chatID, messageID, b.cryptoText(chatID, quotes), nil)
}

func (b *Bot) handleBuy(
	ctx context.Context, chatID, messageID int64, productID string,
	ack func(string, bool),
) {
	err := b.cart.Add(chatID, productID, 1)
	switch {
	case errors.Is(err, domain.ErrProductNotFound):
		ack("❌ Product not found", true)
		return
	case errors.Is(err, domain.ErrOutOfStock):
		ack("❌ Temporarily out of stock", true)
		return
	case err != nil:
		ack("❌ Could not add the product", true)
		return
	}

	p, perr := b.catalog.Product(productID)
	if perr == nil {
		ack("✅ "+p.Name+" added to cart!", false)
	} else {
		ack("✅ Added to cart!", false)
	}
	b.showCart(ctx, chatID, messageID)
}

func (b *Bot) handlePage(ctx context.Context, chatID, messageID int64, data string) {
	parts := strings.Split(data, "_")
	if len(parts) < 3 {
		b.showMenu(ctx, chatID, messageID)
		return
	}
	page, err := strconv.Atoi(parts[1])
	if err != nil || page < 0 {
		b.showMenu(ctx, chatID, messageID)
		return
	}
	switch parts[2] {
	case "inject":
		b.showCategory(ctx, chatID, messageID, domain.ViewInjectable, page)
	case "oral":
		b.showCategory(ctx, chatID, messageID, domain.ViewOral, page)
	default:
		b.showMenu(ctx, chatID, messageID)
	}
}

// showLastView routes "back to products" to the listing the card was
// opened from.
func (b *Bot) showLastView(ctx context.Context, chatID, messageID int64) {
	switch b.sessions.Session(chatID).CurrentView {
	case domain.ViewInjectable:
		b.showCategory(ctx, chatID, messageID, domain.ViewInjectable, 0)
	case domain.ViewOral:
		b.showCategory(ctx, chatID, messageID, domain.ViewOral, 0)
	case domain.ViewSearch:
		b.showSearchPrompt(ctx, chatID, messageID)
	default:
		b.showMenu(ctx, chatID, messageID)
	}
}

func (b *Bot) resetSession(chatID int64) {
	b.sessions.Update(chatID, func(s *domain.Session) {
		s.Searching = false
		s.CurrentView = domain.ViewNone
	})
}
