package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

const invoiceResource = "invoice"

// CreatePurchase posts the purchase. The invoice id is returned when the
// backend includes it in the response body.
func (c *Client) CreatePurchase(
	ctx context.Context, order domain.PurchaseOrder,
) (domain.PurchaseResult, error) {
	const op = "Client.CreatePurchase"

	endpoint := c.endpoint(c.paths.Purchase, nil)
	body, err := c.do(ctx, http.MethodPost, endpoint, toPurchase(order), nil)
	if err != nil {
		return domain.PurchaseResult{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.PurchaseResult{InvoiceID: invoiceFromBody(body)}, nil
}

func (c *Client) LatestInvoiceID(ctx context.Context) (string, error) {
	const op = "Client.LatestInvoiceID"

	endpoint := c.endpoint(c.paths.LatestInvoice, nil)

	var id looseValue
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &id); err != nil {
		if isDecodeErr(err) {
			return "", fmt.Errorf("%s: %w", op, malformed(invoiceResource, "invalid JSON", err))
		}
		return "", fmt.Errorf("%s: %w", op, err)
	}

	invoiceID := strings.TrimSpace(string(id))
	if invoiceID == "" {
		return "", fmt.Errorf("%s: %w", op, malformed(invoiceResource, "empty invoice id", nil))
	}
	return invoiceID, nil
}

func (c *Client) ConfirmInternalPurchase(
	ctx context.Context, v domain.PaymentConfirmation,
) error {
	const op = "Client.ConfirmInternalPurchase"

	endpoint := c.endpoint(c.paths.ConfirmPurchase, nil)
	in := confirmation{InvoiceID: identifier(v.InvoiceID), Account: v.Account}
	if _, err := c.do(ctx, http.MethodPost, endpoint, in, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func invoiceFromBody(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return ""
	}
	var res purchaseResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return ""
	}
	return strings.TrimSpace(string(res.InvoiceID))
}

func toPurchase(order domain.PurchaseOrder) purchase {
	items := make([]purchaseItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = purchaseItem{
			ProductID: identifier(item.ProductID),
			Quantity:  item.Quantity,
		}
	}
	return purchase{
		Cart:          purchaseCart{Products: items},
		Address:       order.Address,
		PaymentMethod: order.PaymentMethod,
		Customer: purchaseCustomer{
			Cedula:    order.Customer.Cedula,
			FirstName: order.Customer.FirstName,
			LastName:  order.Customer.LastName,
			Phone:     order.Customer.Phone,
			Address:   order.Customer.Address,
		},
	}
}
