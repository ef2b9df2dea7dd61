package service

import (
	"testing"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogProducts(t *testing.T) {
	products := []domain.Product{
		{ProductID: "1", Name: "Running Shoe"},
		{ProductID: "2", Name: "Sun Hat"},
		{ProductID: "3", Name: "Trail SHOE"},
	}

	t.Run("all", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return(products, nil)

		ps, err := NewCatalog(catalog).Products(t.Context(), "", "")
		require.NoError(t, err)
		assert.Len(t, ps, 3)
	})

	t.Run("name query ignores case", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("FetchProducts").Return(products, nil)

		ps, err := NewCatalog(catalog).Products(t.Context(), "", " shoe ")
		require.NoError(t, err)
		require.Len(t, ps, 2)
		assert.Equal(t, "1", ps[0].ProductID)
		assert.Equal(t, "3", ps[1].ProductID)
	})

	t.Run("brand", func(t *testing.T) {
		catalog := new(MockCatalog)
		catalog.On("FetchProductsByBrand", "Nike").Return(products[:1], nil)

		ps, err := NewCatalog(catalog).Products(t.Context(), "Nike", "")
		require.NoError(t, err)
		assert.Len(t, ps, 1)
		catalog.AssertNotCalled(t, "FetchProducts")
	})
}
