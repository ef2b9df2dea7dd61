package httphandler_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockCart struct {
	mock.Mock
}

func (m *MockCart) AddItem(
	ctx context.Context,
	productID, name string, unitPrice decimal.Decimal, imageRef string,
	quantity int,
) error {
	args := m.Called(productID, name, unitPrice.String(), imageRef, quantity)
	return args.Error(0)
}

func (m *MockCart) ChangeQuantity(ctx context.Context, index, delta int) error {
	return m.Called(index, delta).Error(0)
}

func (m *MockCart) RemoveItem(ctx context.Context, index int) error {
	return m.Called(index).Error(0)
}

func (m *MockCart) Clear(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockCart) Snapshot() domain.Cart {
	return m.Called().Get(0).(domain.Cart)
}

func (m *MockCart) Totals() domain.Totals {
	return m.Called().Get(0).(domain.Totals)
}

func (m *MockCart) View() (domain.Cart, domain.Totals) {
	args := m.Called()
	return args.Get(0).(domain.Cart), args.Get(1).(domain.Totals)
}

type MockCheckout struct {
	mock.Mock
}

func (m *MockCheckout) Continue(ctx context.Context) (domain.CheckoutResult, error) {
	args := m.Called()
	return args.Get(0).(domain.CheckoutResult), args.Error(1)
}

type MockPurchase struct {
	mock.Mock
}

func (m *MockPurchase) Prepare(ctx context.Context) (domain.PaymentDraft, error) {
	args := m.Called()
	return args.Get(0).(domain.PaymentDraft), args.Error(1)
}

func (m *MockPurchase) Submit(
	ctx context.Context, req domain.PaymentRequest,
) (domain.Receipt, error) {
	args := m.Called(req)
	return args.Get(0).(domain.Receipt), args.Error(1)
}

func (m *MockPurchase) RetryConfirmation(ctx context.Context) (domain.Receipt, error) {
	args := m.Called()
	return args.Get(0).(domain.Receipt), args.Error(1)
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Login(ctx context.Context, email string) (domain.Session, error) {
	args := m.Called(email)
	return args.Get(0).(domain.Session), args.Error(1)
}

func (m *MockAuth) Logout(ctx context.Context) error {
	return m.Called().Error(0)
}

func (m *MockAuth) Current() domain.Session {
	return m.Called().Get(0).(domain.Session)
}

type MockRegistrar struct {
	mock.Mock
}

func (m *MockRegistrar) Register(
	ctx context.Context, c domain.NewCustomer, confirmPassword string,
) error {
	return m.Called(c, confirmPassword).Error(0)
}

func testCart() domain.Cart {
	return domain.Cart{Items: []domain.CartLineItem{
		{ProductID: "1", Name: "Laptop", UnitPrice: decimal.NewFromInt(10), Quantity: 2},
		{ProductID: "2", Name: "Mouse", UnitPrice: decimal.NewFromInt(15), Quantity: 1},
	}}
}

func testTotals() domain.Totals {
	return domain.CalculateTotals(testCart().Items, decimal.RequireFromString("0.15"))
}

func serve(
	t *testing.T, h http.Handler, method, target, body string,
) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var res map[string]any
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	}
	return rec, res
}

func TestCartHandler(t *testing.T) {
	newMux := func(cart *MockCart) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterCart(mux, cart)
		return httphandler.AllowJSON(mux)
	}

	t.Run("GetCart", func(t *testing.T) {
		cart := new(MockCart)
		cart.On("View").Return(testCart(), testTotals())

		rec, res := serve(t, newMux(cart), http.MethodGet, "/v1/cart", "")
		require.Equal(t, http.StatusOK, rec.Code)

		items := res["items"].([]any)
		require.Len(t, items, 2)
		assert.Equal(t, "20.00", items[0].(map[string]any)["line_total"])

		totals := res["totals"].(map[string]any)
		assert.Equal(t, "35.00", totals["subtotal"])
		assert.Equal(t, "5.25", totals["tax"])
		assert.Equal(t, "40.25", totals["total"])
	})

	t.Run("PostItem", func(t *testing.T) {
		cart := new(MockCart)
		cart.On("AddItem", "1", "Laptop", "10.5", "a.png", 2).Return(nil)
		cart.On("View").Return(testCart(), testTotals())

		rec, res := serve(t, newMux(cart), http.MethodPost, "/v1/cart/items",
			`{"id":"1","name":"Laptop","price":10.5,"image":"a.png","quantity":2}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotContains(t, res, "warning")
		cart.AssertExpectations(t)
	})

	t.Run("PersistFailedIsWarning", func(t *testing.T) {
		cart := new(MockCart)
		cart.On("AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
			Return(fmt.Errorf("CartStore.AddItem: %w", domain.ErrPersistFailed))
		cart.On("View").Return(testCart(), testTotals())

		rec, res := serve(t, newMux(cart), http.MethodPost, "/v1/cart/items",
			`{"id":"1","name":"Laptop","price":"10"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, res["warning"])
		assert.Len(t, res["items"], 2)
	})

	t.Run("InvalidQuantity", func(t *testing.T) {
		cart := new(MockCart)
		cart.On("AddItem", mock.Anything, mock.Anything, mock.Anything, mock.Anything, -1).
			Return(fmt.Errorf("CartStore.AddItem: %w", domain.ErrInvalidQuantity))

		rec, _ := serve(t, newMux(cart), http.MethodPost, "/v1/cart/items",
			`{"id":"1","name":"Laptop","price":"10","quantity":-1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("PatchItem", func(t *testing.T) {
		cart := new(MockCart)
		cart.On("ChangeQuantity", 1, -1).Return(nil)
		cart.On("View").Return(domain.Cart{Items: testCart().Items[:1]}, domain.Totals{})

		rec, _ := serve(t, newMux(cart), http.MethodPatch, "/v1/cart/items/1", `{"delta":-1}`)
		require.Equal(t, http.StatusOK, rec.Code)
		cart.AssertExpectations(t)
	})

	t.Run("InvalidIndex", func(t *testing.T) {
		cart := new(MockCart)
		rec, _ := serve(t, newMux(cart), http.MethodDelete, "/v1/cart/items/first", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		cart.AssertNotCalled(t, "RemoveItem", mock.Anything)
	})

	t.Run("BodyTooLarge", func(t *testing.T) {
		cart := new(MockCart)
		body := `{"id":"1","name":"` + strings.Repeat("a", 2<<20) + `"}`

		rec, res := serve(t, newMux(cart), http.MethodPost, "/v1/cart/items", body)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
		assert.Equal(t, "request body is too large", res["notice"])
		cart.AssertNotCalled(t, "AddItem",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("WrongMediaType", func(t *testing.T) {
		cart := new(MockCart)
		req := httptest.NewRequest(http.MethodPost, "/v1/cart/items", strings.NewReader("id=1"))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		rec := httptest.NewRecorder()
		newMux(cart).ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
	})
}

func TestCheckoutHandler(t *testing.T) {
	newMux := func(checkout *MockCheckout) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterCheckout(mux, checkout)
		return mux
	}

	t.Run("Payment", func(t *testing.T) {
		checkout := new(MockCheckout)
		checkout.On("Continue").Return(domain.CheckoutResult{
			Next: domain.NextPayment, Cart: testCart(), Totals: testTotals(),
		}, nil)

		rec, res := serve(t, newMux(checkout), http.MethodPost, "/v1/checkout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "payment", res["next"])
	})

	t.Run("InsufficientStock", func(t *testing.T) {
		checkout := new(MockCheckout)
		stockErr := &domain.StockError{Problems: []error{
			&domain.InsufficientStockError{Name: "Laptop", Available: 3, Requested: 5},
		}}
		checkout.On("Continue").Return(
			domain.CheckoutResult{Next: domain.NextCart},
			fmt.Errorf("Checkout.Continue: %w", stockErr),
		)

		rec, res := serve(t, newMux(checkout), http.MethodPost, "/v1/checkout", "")
		require.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "cart", res["next"])
		assert.Contains(t, res["notice"], "Laptop: insufficient stock, available: 3, requested: 5")
	})

	t.Run("LoginRequired", func(t *testing.T) {
		checkout := new(MockCheckout)
		checkout.On("Continue").Return(
			domain.CheckoutResult{Next: domain.NextLogin, Cart: testCart()},
			fmt.Errorf("Checkout.Continue: %w", domain.ErrLoginRequired),
		)

		rec, res := serve(t, newMux(checkout), http.MethodPost, "/v1/checkout", "")
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "login", res["next"])
	})

	t.Run("Unreachable", func(t *testing.T) {
		checkout := new(MockCheckout)
		checkout.On("Continue").Return(
			domain.CheckoutResult{Next: domain.NextCart},
			&domain.ConnectivityError{Err: errors.New("dial tcp: refused")},
		)

		rec, res := serve(t, newMux(checkout), http.MethodPost, "/v1/checkout", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Equal(t, "cart", res["next"])
	})

	t.Run("ServerError", func(t *testing.T) {
		checkout := new(MockCheckout)
		checkout.On("Continue").Return(
			domain.CheckoutResult{Next: domain.NextCart},
			&domain.ServerError{StatusCode: 500, Message: "boom"},
		)

		rec, res := serve(t, newMux(checkout), http.MethodPost, "/v1/checkout", "")
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "Server error 500: boom", res["notice"])
	})
}

func TestPaymentHandler(t *testing.T) {
	newMux := func(purchase *MockPurchase) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterPayment(mux, purchase)
		return mux
	}

	t.Run("Submit", func(t *testing.T) {
		purchase := new(MockPurchase)
		purchase.On("Submit", domain.PaymentRequest{
			Account: "2200112233", Address: "Main 1",
			Customer: domain.CustomerProfile{Cedula: "1710034065"},
		}).Return(domain.Receipt{
			InvoiceID: "17", Address: "Main 1",
			Items: testCart().Items, Totals: testTotals(),
		}, nil)

		rec, res := serve(t, newMux(purchase), http.MethodPost, "/v1/payment",
			`{"account":"2200112233","address":"Main 1","customer":{"cedula":"1710034065"}}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "17", res["invoice_id"])
		assert.Equal(t, "products", res["next"])
	})

	t.Run("ValidationErrors", func(t *testing.T) {
		purchase := new(MockPurchase)
		purchase.On("Submit", mock.Anything).Return(domain.Receipt{}, fmt.Errorf(
			"Purchase.Submit: %w", domain.ValidationErrors{
				domain.FieldError{Field: "account", Message: "account number is required"},
				domain.FieldError{Field: "address", Message: "delivery address is required"},
			}))

		rec, res := serve(t, newMux(purchase), http.MethodPost, "/v1/payment", `{}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t,
			"account number is required\ndelivery address is required", res["notice"])
	})

	t.Run("ConfirmationPending", func(t *testing.T) {
		purchase := new(MockPurchase)
		purchase.On("Submit", mock.Anything).Return(domain.Receipt{},
			&domain.ConfirmationPendingError{
				InvoiceID: "17",
				Err:       &domain.ServerError{StatusCode: 500},
			})

		rec, res := serve(t, newMux(purchase), http.MethodPost, "/v1/payment",
			`{"account":"1","address":"a"}`)
		require.Equal(t, http.StatusBadGateway, rec.Code)
		assert.Equal(t, "payment", res["next"])
	})

	t.Run("NoPending", func(t *testing.T) {
		purchase := new(MockPurchase)
		purchase.On("RetryConfirmation").Return(domain.Receipt{},
			fmt.Errorf("x: %w", domain.ErrNoPendingConfirmation))

		rec, _ := serve(t, newMux(purchase), http.MethodPost, "/v1/payment/confirmation", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Prepare", func(t *testing.T) {
		purchase := new(MockPurchase)
		purchase.On("Prepare").Return(domain.PaymentDraft{
			Cart: testCart(), Totals: testTotals(),
			Customer: domain.CustomerProfile{FirstName: "Ana", Address: "Main 1"},
		}, nil)

		rec, res := serve(t, newMux(purchase), http.MethodGet, "/v1/payment", "")
		require.Equal(t, http.StatusOK, rec.Code)
		customer := res["customer"].(map[string]any)
		assert.Equal(t, "Main 1", customer["address"])
	})
}

func TestSessionHandler(t *testing.T) {
	newMux := func(auth *MockAuth) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterSession(mux, auth)
		return mux
	}

	t.Run("Login", func(t *testing.T) {
		auth := new(MockAuth)
		auth.On("Login", "ana@mail.com").Return(
			domain.Session{Email: "ana@mail.com", Role: "cliente", Authenticated: true}, nil,
		)

		rec, res := serve(t, newMux(auth), http.MethodPost, "/v1/session", `{"email":"ana@mail.com"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, res["authenticated"])
		assert.Equal(t, "cart", res["next"])
	})

	t.Run("NotRegistered", func(t *testing.T) {
		auth := new(MockAuth)
		auth.On("Login", "nobody@mail.com").Return(domain.Session{},
			fmt.Errorf("Sessions.Login: %w", domain.ErrEmailNotRegistered))

		rec, _ := serve(t, newMux(auth), http.MethodPost, "/v1/session", `{"email":"nobody@mail.com"}`)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Logout", func(t *testing.T) {
		auth := new(MockAuth)
		auth.On("Logout").Return(nil)
		auth.On("Current").Return(domain.Session{})

		rec, res := serve(t, newMux(auth), http.MethodDelete, "/v1/session", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, false, res["authenticated"])
	})
}

func TestCustomersHandler(t *testing.T) {
	newMux := func(registrar *MockRegistrar) http.Handler {
		mux := http.NewServeMux()
		httphandler.RegisterCustomers(mux, registrar)
		return mux
	}

	t.Run("InvalidBirthDate", func(t *testing.T) {
		registrar := new(MockRegistrar)
		rec, _ := serve(t, newMux(registrar), http.MethodPost, "/v1/customers",
			`{"birth_date":"04/05/1990"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		registrar.AssertNotCalled(t, "Register", mock.Anything, mock.Anything)
	})

	t.Run("Created", func(t *testing.T) {
		registrar := new(MockRegistrar)
		registrar.On("Register", mock.MatchedBy(func(c domain.NewCustomer) bool {
			return c.Email == "ana@mail.com" && c.BirthDate.Year() == 1990
		}), "secret").Return(nil)

		rec, res := serve(t, newMux(registrar), http.MethodPost, "/v1/customers",
			`{"email":"ana@mail.com","birth_date":"1990-05-04","password":"secret","confirm_password":"secret"}`)
		require.Equal(t, http.StatusCreated, rec.Code)
		assert.Equal(t, "login", res["next"])
	})
}
