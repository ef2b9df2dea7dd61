package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CheckoutValidator = (*Checkout)(nil)

type cartReader interface {
	Snapshot() domain.Cart
	View() (domain.Cart, domain.Totals)
}

// A Checkout gates the way from the cart to the payment on stock and
// authentication.
type Checkout struct {
	cart     cartReader
	catalog  port.Catalog
	sessions port.SessionProvider
}

func NewCheckout(
	cart cartReader, catalog port.Catalog, sessions port.SessionProvider,
) Checkout {
	return Checkout{cart, catalog, sessions}
}

func (c Checkout) Continue(ctx context.Context) (domain.CheckoutResult, error) {
	const op = "Checkout.Continue"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.CheckoutResult{Next: domain.NextCart}, fmt.Errorf("%s: %w", op, err)
	}

	cart, totals := c.cart.View()
	if cart.IsEmpty() {
		return domain.CheckoutResult{Next: domain.NextBrowse},
			fmt.Errorf("%s: %w", op, domain.ErrEmptyCart)
	}

	log.Debug("validating stock", "nItems", len(cart.Items))

	products, err := c.catalog.FetchProducts(ctx)
	if err != nil {
		return domain.CheckoutResult{Next: domain.NextCart}, fmt.Errorf("%s: %w", op, err)
	}

	if err := ValidateStock(cart, products); err != nil {
		log.Info("stock validation failed", "err", err)
		return domain.CheckoutResult{Next: domain.NextCart}, fmt.Errorf("%s: %w", op, err)
	}

	result := domain.CheckoutResult{
		Cart:   cart,
		Totals: totals,
	}

	if !c.sessions.Current().IsAuthenticated() {
		result.Next = domain.NextLogin
		return result, fmt.Errorf("%s: %w", op, domain.ErrLoginRequired)
	}

	result.Next = domain.NextPayment
	return result, nil
}

// ValidateStock checks every cart item against the catalog and returns a
// [*domain.StockError] with all the problems found.
func ValidateStock(cart domain.Cart, products []domain.Product) error {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ProductID] = p
	}

	var problems []error
	for _, item := range cart.Items {
		p, ok := byID[item.ProductID]
		switch {
		case !ok:
			problems = append(problems, &domain.ProductNotFoundError{
				ProductID: item.ProductID, Name: item.Name,
			})
		case !p.Stock.Valid || p.Stock.Count < 0:
			problems = append(problems, &domain.InvalidStockError{
				Name: item.Name, Raw: p.Stock.Raw,
			})
		case item.Quantity > p.Stock.Count:
			problems = append(problems, &domain.InsufficientStockError{
				Name:      item.Name,
				Available: p.Stock.Count,
				Requested: item.Quantity,
			})
		}
	}

	if len(problems) != 0 {
		return &domain.StockError{Problems: problems}
	}
	return nil
}
