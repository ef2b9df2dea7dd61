package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.PurchaseSubmitter = (*Purchase)(nil)

type cartClearer interface {
	cartReader
	Clear(context.Context) error
}

// A Purchase submits the validated cart and confirms its payment.
//
// Creating the purchase, resolving the invoice and confirming the payment
// are separate backend calls. A purchase whose confirmation did not
// complete is kept as pending until RetryConfirmation succeeds.
type Purchase struct {
	cart          cartClearer
	customers     port.CustomerDirectory
	gateway       port.PurchaseGateway
	confirmations port.ConfirmationStorage
	sessions      port.SessionProvider
	events        port.PurchaseEventsProducer
	taxRate       decimal.Decimal
	commitTimeout time.Duration

	inFlight atomic.Bool
}

const defaultCommitTimeout = 30 * time.Second

// NewPurchase returns a Purchase. events may be nil.
func NewPurchase(
	cart cartClearer,
	customers port.CustomerDirectory,
	gateway port.PurchaseGateway,
	confirmations port.ConfirmationStorage,
	sessions port.SessionProvider,
	events port.PurchaseEventsProducer,
	taxRate decimal.Decimal,
) *Purchase {
	return &Purchase{
		cart:          cart,
		customers:     customers,
		gateway:       gateway,
		confirmations: confirmations,
		sessions:      sessions,
		events:        events,
		taxRate:       taxRate,
		commitTimeout: defaultCommitTimeout,
	}
}

func (p *Purchase) Prepare(ctx context.Context) (domain.PaymentDraft, error) {
	const op = "Purchase.Prepare"

	if err := ctx.Err(); err != nil {
		return domain.PaymentDraft{}, fmt.Errorf("%s: %w", op, err)
	}

	cart, totals := p.cart.View()
	if cart.IsEmpty() {
		return domain.PaymentDraft{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	customer, err := p.customer(ctx)
	if err != nil {
		return domain.PaymentDraft{}, fmt.Errorf("%s: %w", op, err)
	}

	return domain.PaymentDraft{
		Cart:     cart,
		Totals:   totals,
		Customer: customer,
	}, nil
}

func (p *Purchase) Submit(
	ctx context.Context, req domain.PaymentRequest,
) (domain.Receipt, error) {
	const op = "Purchase.Submit"
	log := slog.With("op", op)

	if !p.inFlight.CompareAndSwap(false, true) {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, domain.ErrPurchaseInProgress)
	}
	defer p.inFlight.Store(false)

	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	cart := p.cart.Snapshot()
	if cart.IsEmpty() {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	customer, err := p.customer(ctx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	customer = mergeCustomer(customer, req.Customer)

	address, err := p.validate(req, customer)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	account := strings.TrimSpace(req.Account)

	order := domain.NewPurchaseOrder(cart, address, customer)
	result, err := p.gateway.CreatePurchase(ctx, order)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("purchase created", "invoiceID", result.InvoiceID)

	// The purchase exists in the backend, the rest must outlive the caller.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.commitTimeout)
	defer cancel()

	pending := domain.PendingConfirmation{
		Account:       account,
		InvoiceID:     result.InvoiceID,
		CustomerEmail: customer.Email,
		Address:       address,
		Items:         cart.Items,
		CreatedAt:     time.Now(),
	}
	saveErr := p.savePending(ctx, pending)

	if err := p.cart.Clear(ctx); err != nil {
		log.Warn("cart is cleared but snapshot is not deleted", "err", err)
	}

	receipt, err := p.confirm(ctx, pending)
	if err != nil {
		var pendingErr *domain.ConfirmationPendingError
		if saveErr != nil && errors.As(err, &pendingErr) {
			pendingErr.Err = errors.Join(pendingErr.Err, saveErr)
		}
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	return receipt, nil
}

// RetryConfirmation completes the payment confirmation of a pending
// purchase.
func (p *Purchase) RetryConfirmation(ctx context.Context) (domain.Receipt, error) {
	const op = "Purchase.RetryConfirmation"

	if !p.inFlight.CompareAndSwap(false, true) {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, domain.ErrPurchaseInProgress)
	}
	defer p.inFlight.Store(false)

	if err := ctx.Err(); err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	pending, err := p.confirmations.LoadPending(ctx)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}

	receipt, err := p.confirm(ctx, pending)
	if err != nil {
		return domain.Receipt{}, fmt.Errorf("%s: %w", op, err)
	}
	return receipt, nil
}

func (p *Purchase) confirm(
	ctx context.Context, pending domain.PendingConfirmation,
) (domain.Receipt, error) {
	const op = "Purchase.confirm"
	log := slog.With("op", op)

	if pending.InvoiceID == "" {
		invoiceID, err := p.gateway.LatestInvoiceID(ctx)
		if err != nil {
			return domain.Receipt{}, &domain.ConfirmationPendingError{Err: err}
		}
		pending.InvoiceID = invoiceID
		_ = p.savePending(ctx, pending)
	}

	err := p.gateway.ConfirmInternalPurchase(ctx, domain.PaymentConfirmation{
		InvoiceID: pending.InvoiceID,
		Account:   pending.Account,
	})
	if err != nil {
		return domain.Receipt{}, &domain.ConfirmationPendingError{
			InvoiceID: pending.InvoiceID, Err: err,
		}
	}
	log.Info("payment confirmed", "invoiceID", pending.InvoiceID)

	if err := p.confirmations.DeletePending(ctx); err != nil {
		log.Warn("failed to delete pending confirmation", "err", err)
	}

	receipt := domain.Receipt{
		InvoiceID: pending.InvoiceID,
		Address:   pending.Address,
		Items:     pending.Items,
		Totals:    domain.CalculateTotals(pending.Items, p.taxRate),
	}
	p.produce(ctx, pending.CustomerEmail, receipt)
	return receipt, nil
}

func (p *Purchase) customer(ctx context.Context) (domain.CustomerProfile, error) {
	session := p.sessions.Current()
	if !session.IsAuthenticated() {
		return domain.CustomerProfile{}, domain.ErrLoginRequired
	}

	customer, err := p.customers.FindCustomerByEmail(ctx, session.Email)
	if err != nil {
		return domain.CustomerProfile{}, err
	}
	if !customer.Complete() {
		return domain.CustomerProfile{}, domain.ErrIncompleteProfile
	}
	if customer.Email == "" {
		customer.Email = session.Email
	}
	return customer, nil
}

func (p *Purchase) validate(
	req domain.PaymentRequest, customer domain.CustomerProfile,
) (address string, err error) {
	var errs domain.ValidationErrors

	if strings.TrimSpace(req.Account) == "" {
		errs = append(errs, domain.FieldError{
			Field: "account", Message: "account number is required",
		})
	}

	if req.UseRegisteredAddress {
		address = strings.TrimSpace(customer.Address)
		if address == "" {
			errs = append(errs, domain.FieldError{
				Field: "address", Message: "registered address is empty, enter a delivery address",
			})
		}
	} else {
		address = strings.TrimSpace(req.Address)
		if address == "" {
			errs = append(errs, domain.FieldError{
				Field: "address", Message: "delivery address is required",
			})
		}
	}

	return address, errs.OrNil()
}

func (p *Purchase) savePending(ctx context.Context, v domain.PendingConfirmation) error {
	const op = "Purchase.savePending"
	if err := p.confirmations.SavePending(ctx, v); err != nil {
		slog.Error("failed to save pending confirmation", "op", op, "err", err)
		return fmt.Errorf("pending confirmation is not saved: %w", err)
	}
	return nil
}

func (p *Purchase) produce(ctx context.Context, email string, r domain.Receipt) {
	const op = "Purchase.produce"

	if p.events == nil {
		return
	}

	evt := domain.PurchaseEvent{
		InvoiceID:     r.InvoiceID,
		CustomerEmail: email,
		Items:         r.Items,
		Totals:        r.Totals,
		Status:        domain.PurchaseStatusConfirmed,
		UnixMilli:     time.Now().UnixMilli(),
	}
	err := p.events.ProducePurchase(ctx, evt)
	if err != nil && !errors.Is(err, context.Canceled) {
		slog.Warn("failed to produce purchase event", "op", op, "err", err)
	}
}

func mergeCustomer(base, override domain.CustomerProfile) domain.CustomerProfile {
	set := func(dst *string, v string) {
		if v = strings.TrimSpace(v); v != "" {
			*dst = v
		}
	}
	set(&base.Cedula, override.Cedula)
	set(&base.FirstName, override.FirstName)
	set(&base.LastName, override.LastName)
	set(&base.Phone, override.Phone)
	return base
}
