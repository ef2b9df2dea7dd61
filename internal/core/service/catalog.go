package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.ProductBrowser = (*Catalog)(nil)

type Catalog struct {
	catalog port.Catalog
}

func NewCatalog(catalog port.Catalog) Catalog {
	return Catalog{catalog}
}

// Products returns the catalog, filtered by brand when brand is set and
// by a case-insensitive name match when query is set.
func (c Catalog) Products(
	ctx context.Context, brand, query string,
) ([]domain.Product, error) {
	const op = "Catalog.Products"

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		ps  []domain.Product
		err error
	)
	if brand = strings.TrimSpace(brand); brand != "" {
		ps, err = c.catalog.FetchProductsByBrand(ctx, brand)
	} else {
		ps, err = c.catalog.FetchProducts(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return filterByName(ps, query), nil
}

func filterByName(ps []domain.Product, query string) []domain.Product {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return ps
	}
	filtered := make([]domain.Product, 0, len(ps))
	for _, p := range ps {
		if strings.Contains(strings.ToLower(p.Name), query) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}
