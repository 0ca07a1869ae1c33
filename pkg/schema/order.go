package schema

const OrderSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "order",
	"fields": [
		{"name": "order_id", "type": "string"},
		{"name": "chat_id", "type": "long"},
		{"name": "address", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "total", "type": "double"},
		{"name": "lines", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "line_item",
				"fields": [
					{"name": "label", "type": "string"},
					{"name": "quantity", "type": "int"},
					{"name": "amount", "type": "long"}
				]
			}
		}}
	]
}`

type (
	OrderV1 struct {
		OrderID  string       `avro:"order_id"`
		ChatID   int64        `avro:"chat_id"`
		Address  string       `avro:"address"`
		Currency string       `avro:"currency"`
		Total    float64      `avro:"total"`
		Lines    []LineItemV1 `avro:"lines"`
	}

	LineItemV1 struct {
		Label    string `avro:"label"`
		Quantity int    `avro:"quantity"`
		Amount   int64  `avro:"amount"`
	}
)
