package httphandler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
)

// POST v1/updates JSON [from chat platform] (response 200 OK, 400 Bad request)
// GET v1/healthz (response 200 OK)

type UpdateDispatcher interface {
	HandleMessage(ctx context.Context, chatID int64, text string)
	HandleCallback(
		ctx context.Context, chatID, messageID int64, callbackID, data string,
	)
}

type UpdatesHandler struct {
	bot UpdateDispatcher
}

func RegisterUpdates(mux *http.ServeMux, bot UpdateDispatcher) {
	h := UpdatesHandler{bot}
	mux.HandleFunc("POST /v1/updates", h.PostUpdate)
}

func (h UpdatesHandler) PostUpdate(w http.ResponseWriter, r *http.Request) {
	const op = "UpdatesHandler.PostUpdate"
	log := slog.With("op", op)

	var u Update
	err := json.NewDecoder(r.Body).Decode(&u)
	if err != nil {
		http.Error(w, "invalid JSON data", http.StatusBadRequest)
		log.Warn("failed to parse JSON", "err", err)
		return
	}

	switch {
	case u.CallbackQuery != nil && u.CallbackQuery.Message != nil:
		cq := u.CallbackQuery
		h.bot.HandleCallback(
			r.Context(),
			cq.Message.Chat.ID, cq.Message.MessageID, cq.ID, cq.Data,
		)
	case u.Message != nil:
		h.bot.HandleMessage(r.Context(), u.Message.Chat.ID, u.Message.Text)
	default:
		log.Debug("update without message or callback", "updateID", u.UpdateID)
	}

	w.WriteHeader(http.StatusOK)
}

type Counter interface {
	Count() int
}

type HealthHandler struct {
	catalog Counter
}

func RegisterHealth(mux *http.ServeMux, catalog Counter) {
	h := HealthHandler{catalog}
	mux.HandleFunc("GET /v1/healthz", h.GetHealth)
}

func (h HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	const op = "HealthHandler.GetHealth"

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(Health{
		Status:   "ok",
		Products: h.catalog.Count(),
	})
	if err != nil {
		slog.With("op", op).Error("failed to write response body", "err", err)
	}
}
