package chatbot

import (
	"fmt"
	"strconv"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

const (
	listingPageSize = 8
	buttonNameLimit = 40
	cartNameLimit   = 25
)

func mainMenuKeyboard() port.Keyboard {
	return port.Keyboard{
		{
			{Text: "💉 Injectable", Callback: cbInjectable},
			{Text: "💊 Oral", Callback: cbOral},
		},
		{
			{Text: "🔎 Search", Callback: cbSearchStart},
			{Text: "🛒 Cart", Callback: cbShowCart},
		},
	}
}

// listingKeyboard shows one page of a category view with prev/next
// navigation when the list spills over the page.
func listingKeyboard(
	list []domain.Product, page int, category string,
) port.Keyboard {
	start := page * listingPageSize
	if start > len(list) {
		start = len(list)
	}
	end := min(start+listingPageSize, len(list))

	var kb port.Keyboard
	for _, p := range list[start:end] {
		kb = append(kb, []port.Button{productButton(p)})
	}

	var nav []port.Button
	if page > 0 {
		nav = append(nav, port.Button{
			Text:     "⬅️ Back",
			Callback: fmt.Sprintf("%s%d_%s", cbPagePrefix, page-1, category),
		})
	}
	if end < len(list) {
		nav = append(nav, port.Button{
			Text:     "➡️ Next",
			Callback: fmt.Sprintf("%s%d_%s", cbPagePrefix, page+1, category),
		})
	}
	if len(nav) > 0 {
		kb = append(kb, nav)
	}

	kb = append(kb, []port.Button{{Text: "🏠 Main menu", Callback: cbMenu}})
	return kb
}

// searchResultsKeyboard lists every result on one screen; results are
// already capped by the search engine.
func searchResultsKeyboard(list []domain.Product) port.Keyboard {
	var kb port.Keyboard
	for _, p := range list {
		kb = append(kb, []port.Button{productButton(p)})
	}
	kb = append(kb, []port.Button{{Text: "🏠 Main menu", Callback: cbMenu}})
	return kb
}

func productButton(p domain.Product) port.Button {
	name := p.Name
	if r := []rune(name); len(r) > buttonNameLimit {
		name = string(r[:buttonNameLimit])
	}
	stock := "✅"
	if !p.InStock {
		stock = "❌"
	}
	price := "🆓"
	if p.Price > 0 {
		price = "💰" + strconv.FormatFloat(p.Price, 'f', -1, 64)
	}
	return port.Button{
		Text:     fmt.Sprintf("%s %s %s", stock, name, price),
		Callback: cbProductPrefix + p.ID,
	}
}

func productCardKeyboard(productID string) port.Keyboard {
	return port.Keyboard{
		{{Text: "🛒 Add to cart", Callback: cbBuyPrefix + productID}},
		{{Text: "⬅ Back to products", Callback: cbBackToList}},
	}
}

func searchPromptKeyboard() port.Keyboard {
	return port.Keyboard{
		{{Text: "❌ Cancel search", Callback: cbCancelSearch}},
	}
}

func cartKeyboard(lines []domain.CartLine) port.Keyboard {
	var kb port.Keyboard
	if len(lines) > 0 {
		kb = append(kb, []port.Button{{Text: "✅ Checkout", Callback: cbCheckout}})
		for _, l := range lines {
			name := l.Product.Name
			if r := []rune(name); len(r) > cartNameLimit {
				name = string(r[:cartNameLimit])
			}
			kb = append(kb, []port.Button{{
				Text:     "🗑 " + name,
				Callback: cbRemovePrefix + l.Product.ID,
			}})
		}
	}
	kb = append(kb, []port.Button{{Text: "🏠 Main menu", Callback: cbMenu}})
	return kb
}

func paymentKeyboard(cardEnabled bool) port.Keyboard {
	var kb port.Keyboard
	if cardEnabled {
		kb = append(kb, []port.Button{{Text: "💳 Pay by card", Callback: cbPayCard}})
	}
	kb = append(kb, []port.Button{{Text: "₿ Cryptocurrency", Callback: cbPayCrypto}})
	return kb
}
