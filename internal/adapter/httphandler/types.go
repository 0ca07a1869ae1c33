package httphandler

type (
	Update struct {
		UpdateID      int64          `json:"update_id"`
		Message       *Message       `json:"message"`
		CallbackQuery *CallbackQuery `json:"callback_query"`
	}

	Message struct {
		MessageID int64  `json:"message_id"`
		Chat      Chat   `json:"chat"`
		Text      string `json:"text"`
	}

	Chat struct {
		ID int64 `json:"id"`
	}

	CallbackQuery struct {
		ID      string   `json:"id"`
		Message *Message `json:"message"`
		Data    string   `json:"data"`
	}
)

type Health struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
}
