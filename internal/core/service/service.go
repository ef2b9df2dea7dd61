package service

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

type Deps struct {
	Catalog       port.Catalog
	Customers     port.CustomerDirectory
	Gateway       port.PurchaseGateway
	CartStorage   port.CartStorage
	Sessions      port.SessionStorage
	Confirmations port.ConfirmationStorage

	// Optional.
	PurchaseEvents port.PurchaseEventsProducer
	CartEvents     port.CartEventsEmitter
}

// A Service is the cart & checkout manager of one device.
type Service struct {
	Cart         *CartStore
	Checkout     Checkout
	Purchase     *Purchase
	Sessions     *Sessions
	Catalog      Catalog
	Registration Registration

	purchaseEvents port.PurchaseEventsProducer
	cartEvents     port.CartEventsEmitter
}

func New(deps Deps, taxRate decimal.Decimal) Service {
	sessions := NewSessions(deps.Sessions, deps.Customers)
	cart := NewCartStore(deps.CartStorage, taxRate, deps.CartEvents, sessions)

	return Service{
		Cart:     cart,
		Checkout: NewCheckout(cart, deps.Catalog, sessions),
		Purchase: NewPurchase(
			cart,
			deps.Customers,
			deps.Gateway,
			deps.Confirmations,
			sessions,
			deps.PurchaseEvents,
			taxRate,
		),
		Sessions:       sessions,
		Catalog:        NewCatalog(deps.Catalog),
		Registration:   NewRegistration(deps.Customers),
		purchaseEvents: deps.PurchaseEvents,
		cartEvents:     deps.CartEvents,
	}
}

// Run restores the session and the cart concurrently.
//
// Blocks current goroutine until both are loaded.
func (s Service) Run(ctx context.Context) {
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.Sessions.Load(ctx)
	}()
	go func() {
		defer wg.Done()
		s.Cart.Load(ctx)
	}()
	wg.Wait()
}

func (s Service) Close() {
	s.Cart.Close()
	if s.cartEvents != nil {
		s.cartEvents.Close()
	}
	if s.purchaseEvents != nil {
		s.purchaseEvents.Close()
	}
}
