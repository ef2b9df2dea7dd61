package service

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/mock"
)

type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	args := m.Called()
	return args.Get(0).([]domain.Product), args.Error(1)
}

func (m *MockCatalog) FetchProductsByBrand(
	ctx context.Context, brand string,
) ([]domain.Product, error) {
	args := m.Called(brand)
	return args.Get(0).([]domain.Product), args.Error(1)
}

type MockCustomers struct {
	mock.Mock
}

func (m *MockCustomers) FindCustomerByEmail(
	ctx context.Context, email string,
) (domain.CustomerProfile, error) {
	args := m.Called(email)
	return args.Get(0).(domain.CustomerProfile), args.Error(1)
}

func (m *MockCustomers) RegisterCustomer(ctx context.Context, c domain.NewCustomer) error {
	return m.Called(c).Error(0)
}

type MockGateway struct {
	mock.Mock
}

func (m *MockGateway) CreatePurchase(
	ctx context.Context, order domain.PurchaseOrder,
) (domain.PurchaseResult, error) {
	args := m.Called(order)
	return args.Get(0).(domain.PurchaseResult), args.Error(1)
}

func (m *MockGateway) LatestInvoiceID(ctx context.Context) (string, error) {
	args := m.Called()
	return args.String(0), args.Error(1)
}

func (m *MockGateway) ConfirmInternalPurchase(
	ctx context.Context, c domain.PaymentConfirmation,
) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return m.Called(c).Error(0)
}

type MockPurchaseEvents struct {
	mock.Mock
}

func (m *MockPurchaseEvents) ProducePurchase(
	ctx context.Context, evt domain.PurchaseEvent,
) error {
	return m.Called(evt).Error(0)
}

func (m *MockPurchaseEvents) Close() {
	m.Called()
}

type MockCartEvents struct {
	mock.Mock
}

// blockingCartEvents holds every event until its context is done.
type blockingCartEvents struct{}

func (blockingCartEvents) EmitCartEvent(ctx context.Context, evt domain.CartEvent) error {
	<-ctx.Done()
	return ctx.Err()
}

func (blockingCartEvents) Close() {}

func (m *MockCartEvents) EmitCartEvent(ctx context.Context, evt domain.CartEvent) error {
	return m.Called(evt).Error(0)
}

func (m *MockCartEvents) Close() {
	m.Called()
}

// memCartStorage keeps the last saved snapshot.
type memCartStorage struct {
	mu      sync.Mutex
	cart    domain.Cart
	saveErr error
	saves   int
}

func (s *memCartStorage) LoadCart(ctx context.Context) (domain.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone(), nil
}

func (s *memCartStorage) SaveCart(ctx context.Context, c domain.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.cart = c.Clone()
	return nil
}

func (s *memCartStorage) DeleteCart(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	s.cart = domain.Cart{}
	return nil
}

type memSessionStorage struct {
	session domain.Session
	cleared bool
}

func (s *memSessionStorage) LoadSession(ctx context.Context) (domain.Session, error) {
	return s.session, nil
}

func (s *memSessionStorage) SaveSession(ctx context.Context, v domain.Session) error {
	s.session = v
	return nil
}

func (s *memSessionStorage) ClearSession(ctx context.Context) error {
	s.session = domain.Session{}
	s.cleared = true
	return nil
}

type memConfirmations struct {
	mu      sync.Mutex
	pending *domain.PendingConfirmation
	saveErr error
}

func (s *memConfirmations) LoadPending(
	ctx context.Context,
) (domain.PendingConfirmation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.pending == nil {
		return domain.PendingConfirmation{}, domain.ErrNoPendingConfirmation
	}
	return *s.pending, nil
}

func (s *memConfirmations) SavePending(
	ctx context.Context, v domain.PendingConfirmation,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if s.saveErr != nil {
		return s.saveErr
	}
	s.pending = &v
	return nil
}

func (s *memConfirmations) DeletePending(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = nil
	return nil
}

// staticSession is a fixed session provider.
type staticSession domain.Session

func (s staticSession) Current() domain.Session {
	return domain.Session(s)
}

func loggedIn(email string) staticSession {
	return staticSession{Email: email, Role: domain.RoleCustomer, Authenticated: true}
}
