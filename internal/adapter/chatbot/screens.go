package chatbot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

const descriptionLimit = 500

// sendScreen sends a fresh message and remembers its id for the next
// delete-then-replace turn.
func (b *Bot) sendScreen(
	ctx context.Context, chatID int64, text string, kb port.Keyboard,
) {
	const op = "Bot.sendScreen"

	msgID, err := b.chat.SendText(ctx, chatID, text, kb)
	if err != nil {
		slog.With("op", op).Error("failed to send message",
			"chatID", chatID, "err", err)
		return
	}
	b.remember(chatID, msgID)
}

// editOrReplace tries to edit the triggering message in place; when the
// platform rejects the edit it falls back to delete-then-send. The
// failure path is expected, e.g. for messages too old to edit.
func (b *Bot) editOrReplace(
	ctx context.Context, chatID, messageID int64, text string, kb port.Keyboard,
) {
	if messageID != 0 {
		if err := b.chat.EditText(ctx, chatID, messageID, text, kb); err == nil {
			b.remember(chatID, messageID)
			return
		}
	}
	b.deleteLast(ctx, chatID)
	b.sendScreen(ctx, chatID, text, kb)
}

func (b *Bot) deleteLast(ctx context.Context, chatID int64) {
	const op = "Bot.deleteLast"

	var last int64
	b.sessions.Update(chatID, func(s *domain.Session) {
		last = s.LastMessageID
		s.LastMessageID = 0
	})
	if last == 0 {
		return
	}
	if err := b.chat.DeleteMessage(ctx, chatID, last); err != nil {
		slog.With("op", op).Debug("failed to delete message",
			"chatID", chatID, "err", err)
	}
}

func (b *Bot) remember(chatID, messageID int64) {
	b.sessions.Update(chatID, func(s *domain.Session) {
		s.LastMessageID = messageID
	})
}

func (b *Bot) showMenu(ctx context.Context, chatID, messageID int64) {
	text := fmt.Sprintf(
		"🏋️ *Welcome to TitanShop!*\n\n📦 %d products in the catalog\n"+
			"🚀 Pick a category or use the search",
		b.catalog.Count(),
	)
	b.editOrReplace(ctx, chatID, messageID, text, mainMenuKeyboard())
}

func (b *Bot) showCategory(
	ctx context.Context, chatID, messageID int64, view domain.View, page int,
) {
	b.sessions.Update(chatID, func(s *domain.Session) {
		s.Searching = false
		s.CurrentView = view
	})

	var title, cat string
	switch view {
	case domain.ViewInjectable:
		title, cat = "💉 *Injectable products*", "inject"
	case domain.ViewOral:
		title, cat = "💊 *Oral products*", "oral"
	default:
		b.showMenu(ctx, chatID, messageID)
		return
	}

	list := b.catalog.Browse(view)
	if len(list) == 0 {
		b.editOrReplace(ctx, chatID, messageID,
			"❌ This category is temporarily unavailable.", mainMenuKeyboard())
		return
	}

	text := fmt.Sprintf("%s (%d products)\n\nPick a product:", title, len(list))
	b.editOrReplace(ctx, chatID, messageID, text,
		listingKeyboard(list, page, cat))
}

func (b *Bot) showSearchPrompt(ctx context.Context, chatID, messageID int64) {
	b.sessions.Update(chatID, func(s *domain.Session) {
		s.Searching = true
		s.CurrentView = domain.ViewSearch
	})

	text := "🔎 *Product search*\n\n" +
		"Type a product name or keywords:\n\n" +
		"_Examples: testosterone, clomid, trenbolone, anastrozole_"
	b.editOrReplace(ctx, chatID, messageID, text, searchPromptKeyboard())
}

// showProduct renders the card, with the image when the platform
// accepts it. A rejected photo degrades to text with the image offered
// as a link, never silently dropped.
func (b *Bot) showProduct(ctx context.Context, chatID int64, productID string) {
	const op = "Bot.showProduct"
	log := slog.With("op", op)

	p, err := b.catalog.Product(productID)
	if err != nil {
		b.deleteLast(ctx, chatID)
		b.sendScreen(ctx, chatID, "❌ Product not found", mainMenuKeyboard())
		return
	}

	text := b.productCardText(p)
	kb := productCardKeyboard(p.ID)

	b.deleteLast(ctx, chatID)

	if p.Image != "" {
		msgID, err := b.chat.SendPhoto(ctx, chatID, p.Image, text, kb)
		if err == nil {
			b.remember(chatID, msgID)
			return
		}
		log.Warn("failed to send photo, falling back to text",
			"productID", p.ID, "err", err)
		text += "\n\n🖼 [View photo](" + p.Image + ")"
	}

	b.sendScreen(ctx, chatID, text, kb)
}

func (b *Bot) showCart(ctx context.Context, chatID, messageID int64) {
	b.resetSession(chatID)

	lines := b.cart.Lines(chatID)
	b.editOrReplace(ctx, chatID, messageID,
		b.cartText(chatID), cartKeyboard(lines))
}

func (b *Bot) cartText(chatID int64) string {
	lines := b.cart.Lines(chatID)
	if len(lines) == 0 {
		return "🛒 The cart is empty."
	}

	var sb strings.Builder
	sb.WriteString("🛒 *Cart:*\n\n")
	for _, l := range lines {
		fmt.Fprintf(&sb, "• *%s*\n  %d × %s = %s\n\n",
			l.Product.Name,
			l.Quantity,
			b.money(l.Product.Price),
			b.money(l.Subtotal),
		)
	}
	fmt.Fprintf(&sb, "📦 Delivery: %s\n", b.money(b.cart.DeliveryFee()))
	fmt.Fprintf(&sb, "💰 *TOTAL:* %s", b.money(b.cart.Total(chatID)))
	return sb.String()
}

func (b *Bot) cryptoText(chatID int64, quotes []domain.CryptoQuote) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "₿ *Crypto payment*\n\n💰 Amount: %s\n\n",
		b.money(b.cart.Total(chatID)))
	sb.WriteString("Pick a coin and send the exact amount:\n\n")
	for _, q := range quotes {
		fmt.Fprintf(&sb, "*%s:*\n`%.8f`\n%s\n\n", q.Coin, q.Amount, q.Wallet)
	}
	sb.WriteString("⚠️ Send a transaction screenshot after paying.")
	return sb.String()
}

func (b *Bot) productCardText(p domain.Product) string {
	desc := p.Description
	if desc == "" {
		desc = "No description"
	}
	if r := []rune(desc); len(r) > descriptionLimit {
		desc = string(r[:descriptionLimit]) + "..."
	}

	stock := "✅ In stock"
	if !p.InStock {
		stock = "❌ Out of stock"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "*%s*\n\n", p.Name)
	fmt.Fprintf(&sb, "📂 %s\n", p.Category)
	fmt.Fprintf(&sb, "%s\n\n", desc)
	fmt.Fprintf(&sb, "💰 Price: %s\n", b.money(p.Price))
	sb.WriteString(stock)
	return sb.String()
}

func (b *Bot) money(v float64) string {
	return fmt.Sprintf("%s %.2f", b.currency, v)
}
