package schema

import "github.com/hamba/avro/v2"

const CartEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "cart_event",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "owner", "type": "string"},
		{"name": "action", "type": "string"},
		{"name": "product_id", "type": "string"},
		{"name": "quantity", "type": "int"},
		{"name": "created_at", "type": "long"}
	]
}`

type CartEventV1 struct {
	EventID   string `avro:"event_id"`
	Owner     string `avro:"owner"`
	Action    string `avro:"action"`
	ProductID string `avro:"product_id"`
	Quantity  int    `avro:"quantity"`
	CreatedAt int64  `avro:"created_at"`
}

func CartEventV1Avro() avro.Schema {
	return avro.MustParse(CartEventSchemaTextV1)
}
