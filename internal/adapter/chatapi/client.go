// Package chatapi is the outbound HTTP client for the chat platform bot
// API. It implements the transport and invoice collaborator ports; all
// storefront logic stays on the caller's side.
package chatapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
	"github.com/titanshop/storefront/pkg/retry"
)

var (
	_ port.Chat          = (*Client)(nil)
	_ port.InvoiceSender = (*Client)(nil)
)

const requestTimeout = 10 * time.Second

// An APIError is a rejection from the platform, e.g. an uneditable
// message or an image URL the platform refuses to fetch. Not retryable.
type APIError struct {
	Code        int
	Description string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("chat api error %d: %s", e.Code, e.Description)
}

type Client struct {
	httpc         *http.Client
	baseURL       string
	token         string
	providerToken string
}

func New(baseURL, token, providerToken string) *Client {
	return &Client{
		httpc:         &http.Client{Timeout: requestTimeout},
		baseURL:       baseURL,
		token:         token,
		providerToken: providerToken,
	}
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	ErrorCode   int             `json:"error_code"`
	Description string          `json:"description"`
}

func (c *Client) call(
	ctx context.Context, method string, payload, out any,
) error {
	const op = "Client.call"

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)

	cfg := retry.Config{
		MaxAttempts: 3,
		Backoff:     retry.ExponentialBackoff(200 * time.Millisecond),
		ShouldRetry: func(err error) bool {
			var apiErr *APIError
			return !errors.As(err, &apiErr)
		},
	}

	res, err := retry.DoWithResult(ctx, cfg, func() (apiResponse, error) {
		return c.doRequest(ctx, url, body)
	})
	if err != nil {
		return fmt.Errorf("%s: %s: %w", op, method, err)
	}

	if out != nil && len(res.Result) > 0 {
		if err := json.Unmarshal(res.Result, out); err != nil {
			return fmt.Errorf("%s: %s: %w", op, method, err)
		}
	}
	return nil
}

func (c *Client) doRequest(
	ctx context.Context, url string, body []byte,
) (apiResponse, error) {
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, url, bytes.NewReader(body),
	)
	if err != nil {
		return apiResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return apiResponse{}, err
	}
	defer resp.Body.Close()

	var res apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return apiResponse{}, err
	}
	if !res.OK {
		return apiResponse{}, &APIError{
			Code:        res.ErrorCode,
			Description: res.Description,
		}
	}
	return res, nil
}

type inlineButton struct {
	Text         string `json:"text"`
	CallbackData string `json:"callback_data,omitempty"`
	URL          string `json:"url,omitempty"`
}

type replyMarkup struct {
	InlineKeyboard [][]inlineButton `json:"inline_keyboard"`
}

func toMarkup(kb port.Keyboard) *replyMarkup {
	if len(kb) == 0 {
		return nil
	}
	m := &replyMarkup{InlineKeyboard: make([][]inlineButton, len(kb))}
	for i, row := range kb {
		m.InlineKeyboard[i] = make([]inlineButton, len(row))
		for j, b := range row {
			m.InlineKeyboard[i][j] = inlineButton{
				Text:         b.Text,
				CallbackData: b.Callback,
				URL:          b.URL,
			}
		}
	}
	return m
}

type sentMessage struct {
	MessageID int64 `json:"message_id"`
}

func (c *Client) SendText(
	ctx context.Context, chatID int64, text string, kb port.Keyboard,
) (int64, error) {
	payload := map[string]any{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if m := toMarkup(kb); m != nil {
		payload["reply_markup"] = m
	}
	var msg sentMessage
	if err := c.call(ctx, "sendMessage", payload, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) EditText(
	ctx context.Context, chatID, messageID int64, text string, kb port.Keyboard,
) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
		"text":       text,
		"parse_mode": "Markdown",
	}
	if m := toMarkup(kb); m != nil {
		payload["reply_markup"] = m
	}
	return c.call(ctx, "editMessageText", payload, nil)
}

func (c *Client) SendPhoto(
	ctx context.Context, chatID int64, url, caption string, kb port.Keyboard,
) (int64, error) {
	payload := map[string]any{
		"chat_id":    chatID,
		"photo":      url,
		"caption":    caption,
		"parse_mode": "Markdown",
	}
	if m := toMarkup(kb); m != nil {
		payload["reply_markup"] = m
	}
	var msg sentMessage
	if err := c.call(ctx, "sendPhoto", payload, &msg); err != nil {
		return 0, err
	}
	return msg.MessageID, nil
}

func (c *Client) DeleteMessage(
	ctx context.Context, chatID, messageID int64,
) error {
	payload := map[string]any{
		"chat_id":    chatID,
		"message_id": messageID,
	}
	return c.call(ctx, "deleteMessage", payload, nil)
}

func (c *Client) AnswerCallback(
	ctx context.Context, callbackID, text string, alert bool,
) error {
	payload := map[string]any{
		"callback_query_id": callbackID,
		"text":              text,
		"show_alert":        alert,
	}
	return c.call(ctx, "answerCallbackQuery", payload, nil)
}

func (c *Client) SendInvoice(
	ctx context.Context,
	chatID int64,
	title, description, payloadID, currency string,
	lines []domain.LineItem,
) error {
	prices := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		prices = append(prices, map[string]any{
			"label":  l.Label,
			"amount": l.Amount,
		})
	}
	payload := map[string]any{
		"chat_id":         chatID,
		"title":           title,
		"description":     description,
		"payload":         payloadID,
		"provider_token":  c.providerToken,
		"currency":        currency,
		"prices":          prices,
		"start_parameter": "order-payment",
	}
	return c.call(ctx, "sendInvoice", payload, nil)
}
