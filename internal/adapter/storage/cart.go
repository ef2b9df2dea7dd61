package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/shopspring/decimal"
)

var _ port.CartStorage = CartRepository{}

type (
	cartItem struct {
		ID       string       `json:"id"`
		Name     string       `json:"name"`
		Price    numericPrice `json:"price"`
		Quantity int          `json:"quantity"`
		Image    string       `json:"image"`
	}

	// A numericPrice is written as a JSON number and read from a number
	// or a string.
	numericPrice struct {
		decimal.Decimal
	}
)

func (p numericPrice) MarshalJSON() ([]byte, error) {
	return []byte(p.String()), nil
}

// A CartRepository keeps the cart snapshot as a JSON array under
// [KeyCart].
type CartRepository struct {
	kv KV
}

func NewCartRepository(kv KV) CartRepository {
	return CartRepository{kv}
}

// LoadCart returns an empty cart when no snapshot is stored.
func (r CartRepository) LoadCart(ctx context.Context) (domain.Cart, error) {
	const op = "CartRepository.LoadCart"

	raw, err := r.kv.Get(ctx, KeyCart)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.Cart{}, nil
		}
		return domain.Cart{}, fmt.Errorf("%s: %w", op, err)
	}

	var items []cartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return domain.Cart{}, fmt.Errorf("%s: broken snapshot: %w", op, err)
	}

	return cartFromSnapshot(items), nil
}

// cartFromSnapshot drops items without an id, with a non-positive
// quantity or a negative price, and merges repeated product ids into the
// first occurrence.
func cartFromSnapshot(items []cartItem) domain.Cart {
	const op = "CartRepository.cartFromSnapshot"

	var cart domain.Cart
	index := make(map[string]int, len(items))
	for _, item := range items {
		if item.ID == "" || item.Quantity <= 0 || item.Price.IsNegative() {
			slog.Warn("dropping invalid cart item", "op", op,
				"productID", item.ID, "quantity", item.Quantity)
			continue
		}
		if i, ok := index[item.ID]; ok {
			cart.Items[i].Quantity += item.Quantity
			continue
		}
		index[item.ID] = len(cart.Items)
		cart.Items = append(cart.Items, domain.CartLineItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.Price.Decimal,
			Quantity:  item.Quantity,
			ImageRef:  item.Image,
		})
	}
	return cart
}

func (r CartRepository) SaveCart(ctx context.Context, cart domain.Cart) error {
	const op = "CartRepository.SaveCart"

	items := make([]cartItem, len(cart.Items))
	for i, item := range cart.Items {
		items[i] = cartItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    numericPrice{item.UnitPrice},
			Quantity: item.Quantity,
			Image:    item.ImageRef,
		}
	}

	b, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := r.kv.Set(ctx, KeyCart, string(b)); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r CartRepository) DeleteCart(ctx context.Context) error {
	const op = "CartRepository.DeleteCart"

	if err := r.kv.Delete(ctx, KeyCart); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
