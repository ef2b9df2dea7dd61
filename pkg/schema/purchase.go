package schema

import "github.com/hamba/avro/v2"

const PurchaseSchemaTextV1 = `{
	"type": "record",
	"namespace": "storefront",
	"name": "purchase",
	"fields": [
		{"name": "invoice_id", "type": "string"},
		{"name": "customer_email", "type": "string"},
		{"name": "items", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "purchase_item",
				"fields": [
					{"name": "product_id", "type": "string"},
					{"name": "name", "type": "string"},
					{"name": "unit_price", "type": "string"},
					{"name": "quantity", "type": "int"}
				]
			}
		}},
		{"name": "subtotal", "type": "string"},
		{"name": "tax", "type": "string"},
		{"name": "total", "type": "string"},
		{"name": "status", "type": "string"},
		{"name": "created_at", "type": "long"}
	]
}`

type (
	// PurchaseV1 amounts are decimal strings.
	PurchaseV1 struct {
		InvoiceID     string           `avro:"invoice_id"`
		CustomerEmail string           `avro:"customer_email"`
		Items         []PurchaseItemV1 `avro:"items"`
		Subtotal      string           `avro:"subtotal"`
		Tax           string           `avro:"tax"`
		Total         string           `avro:"total"`
		Status        string           `avro:"status"`
		CreatedAt     int64            `avro:"created_at"`
	}

	PurchaseItemV1 struct {
		ProductID string `avro:"product_id"`
		Name      string `avro:"name"`
		UnitPrice string `avro:"unit_price"`
		Quantity  int    `avro:"quantity"`
	}
)

func PurchaseV1Avro() avro.Schema {
	return avro.MustParse(PurchaseSchemaTextV1)
}
