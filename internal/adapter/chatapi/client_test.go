package chatapi_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/titanshop/storefront/internal/adapter/chatapi"
	"github.com/titanshop/storefront/internal/core/domain"
	"github.com/titanshop/storefront/internal/core/port"
)

type apiStub struct {
	method  string
	payload map[string]any
	calls   atomic.Int64
	respond func(w http.ResponseWriter)
}

func newAPIStub(t *testing.T) (*apiStub, *chatapi.Client) {
	t.Helper()
	stub := &apiStub{
		respond: func(w http.ResponseWriter) {
			_, _ = w.Write([]byte(`{"ok":true,"result":{"message_id":55}}`))
		},
	}

	srv := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, r *http.Request) {
			stub.calls.Add(1)
			stub.method = r.URL.Path
			require.NoError(
				t, json.NewDecoder(r.Body).Decode(&stub.payload),
			)
			stub.respond(w)
		},
	))
	t.Cleanup(srv.Close)

	return stub, chatapi.New(srv.URL, "test-token", "provider-token")
}

func TestSendText(t *testing.T) {
	t.Run("ReturnsMessageID", func(t *testing.T) {
		stub, client := newAPIStub(t)

		kb := port.Keyboard{{{Text: "Menu", Callback: "back_to_menu"}}}
		id, err := client.SendText(t.Context(), 42, "hello", kb)
		require.NoError(t, err)
		assert.Equal(t, int64(55), id)

		assert.Equal(t, "/bottest-token/sendMessage", stub.method)
		assert.Equal(t, float64(42), stub.payload["chat_id"])
		assert.Equal(t, "hello", stub.payload["text"])
		assert.Contains(t, stub.payload, "reply_markup")
	})

	t.Run("NoKeyboardOmitsMarkup", func(t *testing.T) {
		stub, client := newAPIStub(t)

		_, err := client.SendText(t.Context(), 42, "hello", nil)
		require.NoError(t, err)
		assert.NotContains(t, stub.payload, "reply_markup")
	})

	t.Run("APIErrorNotRetried", func(t *testing.T) {
		stub, client := newAPIStub(t)
		stub.respond = func(w http.ResponseWriter) {
			_, _ = w.Write(
				[]byte(`{"ok":false,"error_code":400,"description":"bad"}`),
			)
		}

		_, err := client.SendText(t.Context(), 42, "hello", nil)
		require.Error(t, err)

		var apiErr *chatapi.APIError
		require.True(t, errors.As(err, &apiErr))
		assert.Equal(t, 400, apiErr.Code)
		assert.Equal(t, int64(1), stub.calls.Load())
	})
}

func TestDeleteMessage(t *testing.T) {
	stub, client := newAPIStub(t)

	require.NoError(t, client.DeleteMessage(t.Context(), 42, 55))
	assert.Equal(t, "/bottest-token/deleteMessage", stub.method)
	assert.Equal(t, float64(55), stub.payload["message_id"])
}

func TestAnswerCallback(t *testing.T) {
	stub, client := newAPIStub(t)

	require.NoError(
		t, client.AnswerCallback(t.Context(), "cb-1", "done", true),
	)
	assert.Equal(t, "/bottest-token/answerCallbackQuery", stub.method)
	assert.Equal(t, "cb-1", stub.payload["callback_query_id"])
	assert.Equal(t, true, stub.payload["show_alert"])
}

func TestSendInvoice(t *testing.T) {
	stub, client := newAPIStub(t)

	lines := []domain.LineItem{
		{Label: "First x2", Quantity: 2, Amount: 2000},
		{Label: "Delivery", Quantity: 1, Amount: 500},
	}
	err := client.SendInvoice(
		t.Context(), 42, "Order", "Order total EUR 25.00",
		"payload-1", "EUR", lines,
	)
	require.NoError(t, err)

	assert.Equal(t, "/bottest-token/sendInvoice", stub.method)
	assert.Equal(t, "provider-token", stub.payload["provider_token"])
	assert.Equal(t, "EUR", stub.payload["currency"])

	prices, ok := stub.payload["prices"].([]any)
	require.True(t, ok)
	require.Len(t, prices, 2)

	first, ok := prices[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "First x2", first["label"])
	assert.Equal(t, float64(2000), first["amount"])
}
