package domain

// A NextStep is where the presentation layer navigates after an operation.
type NextStep string

const (
	NextBrowse  NextStep = "products"
	NextCart    NextStep = "cart"
	NextLogin   NextStep = "login"
	NextPayment NextStep = "payment"
)

type CheckoutResult struct {
	Next   NextStep
	Cart   Cart
	Totals Totals
}

// A PaymentDraft pre-fills the payment form.
type PaymentDraft struct {
	Cart     Cart
	Totals   Totals
	Customer CustomerProfile
}

type PaymentRequest struct {
	Account              string
	UseRegisteredAddress bool
	Address              string

	// Customer overrides the registered profile fields that are set.
	Customer CustomerProfile
}
