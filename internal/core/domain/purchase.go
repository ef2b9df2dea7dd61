package domain

import "time"

const PaymentMethodBankTransfer = "Transferencia Bancaria"

type (
	PurchaseItem struct {
		ProductID string
		Quantity  int
	}

	PurchaseOrder struct {
		Items         []PurchaseItem
		Address       string
		PaymentMethod string
		Customer      CustomerProfile
	}

	// A PurchaseResult is what the backend tells about a created purchase.
	//
	// InvoiceID is empty when the backend does not return it.
	PurchaseResult struct {
		InvoiceID string
	}

	PaymentConfirmation struct {
		InvoiceID string
		Account   string
	}

	// A PendingConfirmation is a purchase that was created but whose
	// payment has not been confirmed yet.
	PendingConfirmation struct {
		Account       string
		InvoiceID     string
		CustomerEmail string
		Address       string
		Items         []CartLineItem
		CreatedAt     time.Time
	}

	Receipt struct {
		InvoiceID string
		Address   string
		Items     []CartLineItem
		Totals    Totals
	}

	PurchaseEvent struct {
		InvoiceID     string
		CustomerEmail string
		Items         []CartLineItem
		Totals        Totals
		Status        string
		UnixMilli     int64
	}
)

const PurchaseStatusConfirmed = "confirmed"

func NewPurchaseOrder(
	cart Cart, address string, customer CustomerProfile,
) PurchaseOrder {
	items := make([]PurchaseItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = PurchaseItem{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	customer.Address = address
	return PurchaseOrder{
		Items:         items,
		Address:       address,
		PaymentMethod: PaymentMethodBankTransfer,
		Customer:      customer,
	}
}
