package schema

const PaymentEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "payment_event",
	"fields": [
		{"name": "chat_id", "type": "long"},
		{"name": "order_id", "type": "string"},
		{"name": "currency", "type": "string"},
		{"name": "amount", "type": "long"},
		{"name": "status", "type": "string"}
	]
}`

type PaymentEventV1 struct {
	ChatID   int64  `avro:"chat_id"`
	OrderID  string `avro:"order_id"`
	Currency string `avro:"currency"`
	Amount   int64  `avro:"amount"`
	Status   string `avro:"status"`
}
