package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.ConfirmationStorage = ConfirmationRepository{}

type pendingConfirmation struct {
	Account       string     `json:"account"`
	InvoiceID     string     `json:"invoiceId"`
	CustomerEmail string     `json:"customerEmail"`
	Address       string     `json:"address"`
	Items         []cartItem `json:"items"`
	CreatedAt     time.Time  `json:"createdAt"`
}

// A ConfirmationRepository keeps the payment confirmation that is still
// owed to the backend under [KeyPendingConfirmation].
type ConfirmationRepository struct {
	kv          KV
	retryConfig retry.RetryConfig
}

func NewConfirmationRepository(kv KV) ConfirmationRepository {
	return ConfirmationRepository{
		kv: kv,
		retryConfig: retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.CappedBackoff(retry.ExponentialBackoff(50*time.Millisecond), time.Second),
			ShouldRetry: retry.UnlessContextErr,
		},
	}
}

// LoadPending returns [domain.ErrNoPendingConfirmation] when there is
// nothing to confirm.
func (r ConfirmationRepository) LoadPending(
	ctx context.Context,
) (domain.PendingConfirmation, error) {
	const op = "ConfirmationRepository.LoadPending"

	raw, err := r.kv.Get(ctx, KeyPendingConfirmation)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return domain.PendingConfirmation{}, fmt.Errorf(
				"%s: %w", op, domain.ErrNoPendingConfirmation,
			)
		}
		return domain.PendingConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	var v pendingConfirmation
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return domain.PendingConfirmation{}, fmt.Errorf("%s: %w", op, err)
	}

	items := make([]domain.CartLineItem, len(v.Items))
	for i, item := range v.Items {
		items[i] = domain.CartLineItem{
			ProductID: item.ID,
			Name:      item.Name,
			UnitPrice: item.Price.Decimal,
			Quantity:  item.Quantity,
			ImageRef:  item.Image,
		}
	}

	return domain.PendingConfirmation{
		Account:       v.Account,
		InvoiceID:     v.InvoiceID,
		CustomerEmail: v.CustomerEmail,
		Address:       v.Address,
		Items:         items,
		CreatedAt:     v.CreatedAt,
	}, nil
}

func (r ConfirmationRepository) SavePending(
	ctx context.Context, p domain.PendingConfirmation,
) error {
	const op = "ConfirmationRepository.SavePending"

	items := make([]cartItem, len(p.Items))
	for i, item := range p.Items {
		items[i] = cartItem{
			ID:       item.ProductID,
			Name:     item.Name,
			Price:    numericPrice{item.UnitPrice},
			Quantity: item.Quantity,
			Image:    item.ImageRef,
		}
	}

	b, err := json.Marshal(pendingConfirmation{
		Account:       p.Account,
		InvoiceID:     p.InvoiceID,
		CustomerEmail: p.CustomerEmail,
		Address:       p.Address,
		Items:         items,
		CreatedAt:     p.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = retry.Do(ctx, r.retryConfig, func() error {
		return r.kv.Set(ctx, KeyPendingConfirmation, string(b))
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r ConfirmationRepository) DeletePending(ctx context.Context) error {
	const op = "ConfirmationRepository.DeletePending"

	err := retry.Do(ctx, r.retryConfig, func() error {
		return r.kv.Delete(ctx, KeyPendingConfirmation)
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
