package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.CustomerRegistrar = (*Registration)(nil)

type Registration struct {
	customers port.CustomerDirectory
	now       func() time.Time
}

func NewRegistration(customers port.CustomerDirectory) Registration {
	return Registration{customers: customers, now: time.Now}
}

// Register validates the sign-up form and registers the customer. No
// request is sent when the form has violations.
func (r Registration) Register(
	ctx context.Context, c domain.NewCustomer, confirmPassword string,
) error {
	const op = "Registration.Register"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	c.Email = strings.TrimSpace(c.Email)
	c.Cedula = strings.TrimSpace(c.Cedula)

	if err := c.Validate(confirmPassword, r.now()); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := r.customers.RegisterCustomer(ctx, c); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	slog.Info("customer registered", "op", op, "email", c.Email)
	return nil
}
