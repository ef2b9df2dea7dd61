package service

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CartManager = (*CartStore)(nil)

// A CartStore owns the in-memory cart and mirrors it to the storage after
// every mutation.
type CartStore struct {
	mu      sync.Mutex
	cart    domain.Cart
	closed  bool
	taxRate decimal.Decimal

	storage  port.CartStorage
	emitter  port.CartEventsEmitter
	sessions port.SessionProvider
	deviceID string

	events      chan domain.CartEvent
	emitTimeout time.Duration
	wg          sync.WaitGroup
}

const (
	cartEventsBuffer   = 64
	defaultEmitTimeout = 2 * time.Second
)

// NewCartStore returns an empty store. emitter and sessions may be nil.
func NewCartStore(
	storage port.CartStorage,
	taxRate decimal.Decimal,
	emitter port.CartEventsEmitter,
	sessions port.SessionProvider,
) *CartStore {
	return newCartStore(storage, taxRate, emitter, sessions, defaultEmitTimeout)
}

func newCartStore(
	storage port.CartStorage,
	taxRate decimal.Decimal,
	emitter port.CartEventsEmitter,
	sessions port.SessionProvider,
	emitTimeout time.Duration,
) *CartStore {
	s := &CartStore{
		storage:     storage,
		taxRate:     taxRate,
		emitter:     emitter,
		sessions:    sessions,
		deviceID:    uuid.NewString(),
		emitTimeout: emitTimeout,
	}
	if emitter != nil {
		s.events = make(chan domain.CartEvent, cartEventsBuffer)
		s.wg.Add(1)
		go s.runEmitter()
	}
	return s
}

// Load restores the cart from the storage.
//
// A missing or broken snapshot results in an empty cart.
func (s *CartStore) Load(ctx context.Context) {
	const op = "CartStore.Load"
	log := slog.With("op", op)

	cart, err := s.storage.LoadCart(ctx)
	if err != nil {
		log.Warn("starting with empty cart", "err", err)
		cart = domain.Cart{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.cart = cart
	log.Debug("cart loaded", "nItems", len(cart.Items))
}

func (s *CartStore) AddItem(
	ctx context.Context,
	productID, name string, unitPrice decimal.Decimal, imageRef string,
	quantity int,
) error {
	const op = "CartStore.AddItem"

	if quantity == 0 {
		quantity = 1
	}
	if quantity < 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidQuantity)
	}
	if unitPrice.IsNegative() {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidPrice)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%s: %w", op, domain.ErrClosed)
	}

	idx := s.indexOf(productID)
	if idx >= 0 {
		s.cart.Items[idx].Quantity += quantity
	} else {
		s.cart.Items = append(s.cart.Items, domain.CartLineItem{
			ProductID: productID,
			Name:      name,
			UnitPrice: unitPrice,
			Quantity:  quantity,
			ImageRef:  imageRef,
		})
	}

	err := s.persist(ctx)
	s.emit(domain.CartActionAdd, productID, quantity)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ChangeQuantity adds delta to the item at index and removes the item
// when its quantity drops to zero. An unknown index is ignored.
func (s *CartStore) ChangeQuantity(ctx context.Context, index, delta int) error {
	const op = "CartStore.ChangeQuantity"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%s: %w", op, domain.ErrClosed)
	}
	if !s.inRange(index) {
		return nil
	}

	item := &s.cart.Items[index]
	item.Quantity += delta
	productID, quantity := item.ProductID, item.Quantity
	action := domain.CartActionChange
	if quantity <= 0 {
		s.removeAt(index)
		action, quantity = domain.CartActionRemove, 0
	}

	err := s.persist(ctx)
	s.emit(action, productID, quantity)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *CartStore) RemoveItem(ctx context.Context, index int) error {
	const op = "CartStore.RemoveItem"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%s: %w", op, domain.ErrClosed)
	}
	if !s.inRange(index) {
		return nil
	}

	productID := s.cart.Items[index].ProductID
	s.removeAt(index)

	err := s.persist(ctx)
	s.emit(domain.CartActionRemove, productID, 0)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Clear empties the cart and deletes the stored snapshot.
func (s *CartStore) Clear(ctx context.Context) error {
	const op = "CartStore.Clear"

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%s: %w", op, domain.ErrClosed)
	}

	s.cart = domain.Cart{}
	err := s.storage.DeleteCart(ctx)
	s.emit(domain.CartActionClear, "", 0)
	if err != nil {
		slog.Warn("failed to delete cart snapshot", "op", op, "err", err)
		return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistFailed, err)
	}
	return nil
}

func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

func (s *CartStore) Totals() domain.Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return domain.CalculateTotals(s.cart.Items, s.taxRate)
}

// View returns the cart and its totals taken at the same moment.
func (s *CartStore) View() (domain.Cart, domain.Totals) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cart := s.cart.Clone()
	return cart, domain.CalculateTotals(cart.Items, s.taxRate)
}

// Close tears the store down. Results that arrive later are discarded.
// Queued cart events are still emitted.
func (s *CartStore) Close() {
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		if s.events != nil {
			close(s.events)
		}
	}
	s.mu.Unlock()

	s.wg.Wait()
}

func (s *CartStore) persist(ctx context.Context) error {
	const op = "CartStore.persist"

	if err := s.storage.SaveCart(ctx, s.cart.Clone()); err != nil {
		slog.Warn("failed to save cart", "op", op, "err", err)
		return fmt.Errorf("%w: %w", domain.ErrPersistFailed, err)
	}
	return nil
}

// emit queues the event without waiting for the broker. It must be
// called with s.mu held.
func (s *CartStore) emit(action domain.CartAction, productID string, quantity int) {
	const op = "CartStore.emit"

	if s.events == nil {
		return
	}

	evt := domain.CartEvent{
		EventID:   uuid.NewString(),
		Owner:     s.owner(),
		Action:    action,
		ProductID: productID,
		Quantity:  quantity,
		UnixMilli: time.Now().UnixMilli(),
	}
	select {
	case s.events <- evt:
	default:
		slog.Warn("cart events queue is full, event dropped", "op", op,
			"action", action, "productID", productID)
	}
}

func (s *CartStore) runEmitter() {
	const op = "CartStore.runEmitter"
	defer s.wg.Done()

	for evt := range s.events {
		ctx, cancel := context.WithTimeout(context.Background(), s.emitTimeout)
		if err := s.emitter.EmitCartEvent(ctx, evt); err != nil {
			slog.Warn("failed to emit cart event", "op", op, "err", err)
		}
		cancel()
	}
}

func (s *CartStore) owner() string {
	if s.sessions != nil {
		if session := s.sessions.Current(); session.IsAuthenticated() {
			return session.Email
		}
	}
	return s.deviceID
}

func (s *CartStore) indexOf(productID string) int {
	for i, item := range s.cart.Items {
		if item.ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *CartStore) inRange(index int) bool {
	return index >= 0 && index < len(s.cart.Items)
}

func (s *CartStore) removeAt(index int) {
	s.cart.Items = append(s.cart.Items[:index], s.cart.Items[index+1:]...)
}
