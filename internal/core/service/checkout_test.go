package service

import (
	"errors"
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func product(id string, stock int) domain.Product {
	return domain.Product{
		ProductID: id,
		Name:      "product " + id,
		Price:     price("10"),
		Stock:     domain.Stock{Count: stock, Valid: true},
	}
}

func TestCheckoutContinue(t *testing.T) {
	t.Run("empty cart", func(t *testing.T) {
		cs := NewCartStore(&memCartStorage{}, testTaxRate, nil, nil)
		catalog := new(MockCatalog)

		res, err := NewCheckout(cs, catalog, loggedIn("a@b.co")).Continue(t.Context())
		require.ErrorIs(t, err, domain.ErrEmptyCart)
		assert.Equal(t, domain.NextBrowse, res.Next)
		catalog.AssertNotCalled(t, "FetchProducts")
	})

	t.Run("insufficient stock reported before authentication", func(t *testing.T) {
		ctx := t.Context()
		cs := NewCartStore(&memCartStorage{}, testTaxRate, nil, nil)
		require.NoError(t, cs.AddItem(ctx, "P", "Shoe", price("10"), "", 5))

		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return([]domain.Product{product("P", 3)}, nil)

		res, err := NewCheckout(cs, catalog, staticSession{}).Continue(ctx)

		var stockErr *domain.StockError
		require.ErrorAs(t, err, &stockErr)
		require.Len(t, stockErr.Problems, 1)
		var insufficient *domain.InsufficientStockError
		require.ErrorAs(t, stockErr.Problems[0], &insufficient)
		assert.Equal(t, 3, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)
		assert.NotErrorIs(t, err, domain.ErrLoginRequired)
		assert.Equal(t, domain.NextCart, res.Next)
	})

	t.Run("anonymous user goes to login with cart kept", func(t *testing.T) {
		ctx := t.Context()
		cs := NewCartStore(&memCartStorage{}, testTaxRate, nil, nil)
		require.NoError(t, cs.AddItem(ctx, "P", "Shoe", price("10"), "", 2))

		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return([]domain.Product{product("P", 3)}, nil)

		res, err := NewCheckout(cs, catalog, staticSession{}).Continue(ctx)
		require.ErrorIs(t, err, domain.ErrLoginRequired)
		assert.Equal(t, domain.NextLogin, res.Next)
		assert.Len(t, cs.Snapshot().Items, 1)
	})

	t.Run("authenticated user goes to payment", func(t *testing.T) {
		ctx := t.Context()
		cs := NewCartStore(&memCartStorage{}, testTaxRate, nil, nil)
		require.NoError(t, cs.AddItem(ctx, "P", "Shoe", price("10"), "", 3))

		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return([]domain.Product{product("P", 3)}, nil)

		res, err := NewCheckout(cs, catalog, loggedIn("a@b.co")).Continue(ctx)
		require.NoError(t, err)
		assert.Equal(t, domain.NextPayment, res.Next)
		assert.True(t, res.Totals.Subtotal.Equal(price("30")))
	})

	t.Run("catalog failure", func(t *testing.T) {
		ctx := t.Context()
		cs := NewCartStore(&memCartStorage{}, testTaxRate, nil, nil)
		require.NoError(t, cs.AddItem(ctx, "P", "Shoe", price("10"), "", 1))

		cause := &domain.ConnectivityError{Err: errors.New("refused")}
		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return([]domain.Product(nil), cause)

		res, err := NewCheckout(cs, catalog, loggedIn("a@b.co")).Continue(ctx)
		require.ErrorIs(t, err, cause)
		assert.Equal(t, domain.NextCart, res.Next)
	})
}

func TestValidateStock(t *testing.T) {
	cart := domain.Cart{Items: []domain.CartLineItem{
		{ProductID: "A", Name: "ok", Quantity: 1},
		{ProductID: "B", Name: "missing", Quantity: 1},
		{ProductID: "C", Name: "invalid", Quantity: 1},
		{ProductID: "D", Name: "short", Quantity: 4},
	}}
	products := []domain.Product{
		product("A", 1),
		{ProductID: "C", Stock: domain.Stock{Raw: "n/a"}},
		product("D", 2),
	}

	err := ValidateStock(cart, products)

	var stockErr *domain.StockError
	require.ErrorAs(t, err, &stockErr)
	require.Len(t, stockErr.Problems, 3)
	assert.IsType(t, &domain.ProductNotFoundError{}, stockErr.Problems[0])
	assert.IsType(t, &domain.InvalidStockError{}, stockErr.Problems[1])
	assert.IsType(t, &domain.InsufficientStockError{}, stockErr.Problems[2])
	assert.Contains(t, err.Error(), `invalid: available stock is not valid, stock: "n/a"`)

	assert.NoError(t, ValidateStock(domain.Cart{}, nil))
}
