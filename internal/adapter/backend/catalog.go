package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/shopspring/decimal"
)

const productResource = "product"

func (c *Client) FetchProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Client.FetchProducts"

	ps, err := c.fetchProducts(ctx, c.endpoint(c.paths.Products, nil))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ps, nil
}

func (c *Client) FetchProductsByBrand(
	ctx context.Context, brand string,
) ([]domain.Product, error) {
	const op = "Client.FetchProductsByBrand"

	query := url.Values{"brand": []string{brand}}
	ps, err := c.fetchProducts(ctx, c.endpoint(c.paths.ProductsByBrand, query))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	for i := range ps {
		if ps[i].Brand == "" {
			ps[i].Brand = brand
		}
	}
	return ps, nil
}

func (c *Client) fetchProducts(
	ctx context.Context, endpoint string,
) ([]domain.Product, error) {
	var wire []product
	_, err := c.do(ctx, http.MethodGet, endpoint, nil, &wire)
	if err != nil {
		if isDecodeErr(err) {
			return nil, malformed(productResource, "invalid JSON", err)
		}
		return nil, err
	}

	ps := make([]domain.Product, 0, len(wire))
	for i, w := range wire {
		p, err := w.toDomain()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		ps = append(ps, p)
	}
	return ps, nil
}

func (w product) toDomain() (domain.Product, error) {
	id := strings.TrimSpace(string(w.ID))
	if id == "" {
		return domain.Product{}, malformed(productResource, "missing PROD_ID", nil)
	}

	name := strings.TrimSpace(w.Name)
	if name == "" {
		return domain.Product{}, malformed(productResource, "missing PROD_NOMBRE", nil)
	}

	price, err := decimal.NewFromString(strings.TrimSpace(string(w.Price)))
	if err != nil {
		return domain.Product{}, malformed(
			productResource, fmt.Sprintf("invalid PROD_PRECIO %q", w.Price), err,
		)
	}
	if price.IsNegative() {
		return domain.Product{}, malformed(
			productResource, fmt.Sprintf("negative PROD_PRECIO %q", w.Price), nil,
		)
	}

	return domain.Product{
		ProductID:        id,
		Name:             name,
		Brand:            w.Brand,
		Description:      w.Description,
		ShortDescription: w.ShortDescription,
		Price:            price,
		Stock:            parseStock(string(w.Stock)),
		Images:           []string(w.Images),
	}, nil
}

// parseStock keeps an unparsable or negative stock as invalid instead of
// failing the whole response. A fractional stock is truncated.
func parseStock(raw string) domain.Stock {
	s := domain.Stock{Raw: raw}
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil || d.IsNegative() {
		return s
	}
	s.Count = int(d.IntPart())
	s.Valid = true
	return s
}
