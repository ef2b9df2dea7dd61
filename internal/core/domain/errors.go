package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyCart             = errors.New("cart is empty")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidPrice          = errors.New("price must not be negative")
	ErrPersistFailed         = errors.New("failed to save cart")
	ErrClosed                = errors.New("cart store is closed")
	ErrLoginRequired         = errors.New("login required")
	ErrEmailNotRegistered    = errors.New("email is not registered")
	ErrIncompleteProfile     = errors.New("customer profile is incomplete")
	ErrPurchaseInProgress    = errors.New("purchase is already in progress")
	ErrNoPendingConfirmation = errors.New("no pending payment confirmation")
)

type ProductNotFoundError struct {
	ProductID string
	Name      string
}

func (e *ProductNotFoundError) Error() string {
	return fmt.Sprintf("%s: product not found in the store inventory", e.Name)
}

type InvalidStockError struct {
	Name string
	Raw  string
}

func (e *InvalidStockError) Error() string {
	return fmt.Sprintf("%s: available stock is not valid, stock: %q", e.Name, e.Raw)
}

type InsufficientStockError struct {
	Name      string
	Available int
	Requested int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf(
		"%s: insufficient stock, available: %d, requested: %d",
		e.Name, e.Available, e.Requested,
	)
}

// A StockError aggregates every stock problem found in one checkout.
type StockError struct {
	Problems []error
}

func (e *StockError) Error() string {
	var b strings.Builder
	b.WriteString("errors detected in your cart:")
	for _, p := range e.Problems {
		b.WriteString("\n- ")
		b.WriteString(p.Error())
	}
	return b.String()
}

func (e *StockError) Unwrap() []error {
	return e.Problems
}

// A MalformedResponseError is returned when backend data can not be
// converted into the domain model.
type MalformedResponseError struct {
	Resource string
	Reason   string
	Err      error
}

func (e *MalformedResponseError) Error() string {
	msg := "malformed " + e.Resource + " response: " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// A ConnectivityError means the backend was not reached at all.
type ConnectivityError struct {
	Err error
}

func (e *ConnectivityError) Error() string {
	return "backend unreachable: " + e.Err.Error()
}

func (e *ConnectivityError) Unwrap() error {
	return e.Err
}

// A ServerError means the backend answered with an error status.
type ServerError struct {
	StatusCode int
	Message    string
}

func (e *ServerError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "unknown message"
	}
	return fmt.Sprintf("backend error: %d - %s", e.StatusCode, msg)
}

// A ConfirmationPendingError is returned when the purchase was created
// but its payment confirmation did not complete.
type ConfirmationPendingError struct {
	InvoiceID string
	Err       error
}

func (e *ConfirmationPendingError) Error() string {
	if e.InvoiceID == "" {
		return "purchase created but invoice id is unknown: " + e.Err.Error()
	}
	return fmt.Sprintf(
		"purchase created but payment of invoice %s is not confirmed: %s",
		e.InvoiceID, e.Err,
	)
}

func (e *ConfirmationPendingError) Unwrap() error {
	return e.Err
}

type FieldError struct {
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return e.Message
}

// ValidationErrors holds every user input violation of one form.
type ValidationErrors []error

func (e ValidationErrors) Error() string {
	msgs := make([]string, len(e))
	for i, err := range e {
		msgs[i] = err.Error()
	}
	return strings.Join(msgs, "\n")
}

func (e ValidationErrors) Unwrap() []error {
	return e
}

func (e ValidationErrors) OrNil() error {
	if len(e) == 0 {
		return nil
	}
	return e
}
