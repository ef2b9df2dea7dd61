package port

import (
	"context"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

type closer interface {
	Close()
}

// Outbound ports.

type Catalog interface {
	FetchProducts(context.Context) ([]domain.Product, error)
	FetchProductsByBrand(ctx context.Context, brand string) ([]domain.Product, error)
}

type CustomerDirectory interface {
	FindCustomerByEmail(ctx context.Context, email string) (domain.CustomerProfile, error)
	RegisterCustomer(context.Context, domain.NewCustomer) error
}

type PurchaseGateway interface {
	CreatePurchase(context.Context, domain.PurchaseOrder) (domain.PurchaseResult, error)
	LatestInvoiceID(context.Context) (string, error)
	ConfirmInternalPurchase(context.Context, domain.PaymentConfirmation) error
}

type CartStorage interface {
	LoadCart(context.Context) (domain.Cart, error)
	SaveCart(context.Context, domain.Cart) error
	DeleteCart(context.Context) error
}

type SessionStorage interface {
	LoadSession(context.Context) (domain.Session, error)
	SaveSession(context.Context, domain.Session) error
	ClearSession(context.Context) error
}

type ConfirmationStorage interface {
	LoadPending(context.Context) (domain.PendingConfirmation, error)
	SavePending(context.Context, domain.PendingConfirmation) error
	DeletePending(context.Context) error
}

type PurchaseEventsProducer interface {
	ProducePurchase(context.Context, domain.PurchaseEvent) error
	closer
}

type CartEventsEmitter interface {
	EmitCartEvent(context.Context, domain.CartEvent) error
	closer
}

// SessionProvider gives the current session to the services that are
// gated on authentication.
type SessionProvider interface {
	Current() domain.Session
}

// Inbound ports.

type CartManager interface {
	AddItem(
		ctx context.Context,
		productID, name string, unitPrice decimal.Decimal, imageRef string,
		quantity int,
	) error
	ChangeQuantity(ctx context.Context, index, delta int) error
	RemoveItem(ctx context.Context, index int) error
	Clear(context.Context) error
	Snapshot() domain.Cart
	Totals() domain.Totals
	View() (domain.Cart, domain.Totals)
}

type CheckoutValidator interface {
	Continue(context.Context) (domain.CheckoutResult, error)
}

type PurchaseSubmitter interface {
	Prepare(context.Context) (domain.PaymentDraft, error)
	Submit(context.Context, domain.PaymentRequest) (domain.Receipt, error)
	RetryConfirmation(context.Context) (domain.Receipt, error)
}

type Authenticator interface {
	Login(ctx context.Context, email string) (domain.Session, error)
	Logout(context.Context) error
	Current() domain.Session
}

type CustomerRegistrar interface {
	Register(ctx context.Context, c domain.NewCustomer, confirmPassword string) error
}

type ProductBrowser interface {
	Products(ctx context.Context, brand, query string) ([]domain.Product, error)
}
