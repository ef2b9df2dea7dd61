package backend

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/niksmo/storefront/internal/core/domain"
)

const (
	customerResource = "customer"
	birthDateLayout  = "2006-01-02"
)

// FindCustomerByEmail returns [domain.ErrEmailNotRegistered] when the
// backend answers 404.
func (c *Client) FindCustomerByEmail(
	ctx context.Context, email string,
) (domain.CustomerProfile, error) {
	const op = "Client.FindCustomerByEmail"

	query := url.Values{"correo": []string{email}}
	endpoint := c.endpoint(c.paths.CustomerByEmail, query)

	var wire customer
	if _, err := c.do(ctx, http.MethodGet, endpoint, nil, &wire); err != nil {
		var serverErr *domain.ServerError
		switch {
		case errors.As(err, &serverErr) && serverErr.StatusCode == http.StatusNotFound:
			return domain.CustomerProfile{}, fmt.Errorf("%s: %w", op, domain.ErrEmailNotRegistered)
		case isDecodeErr(err):
			return domain.CustomerProfile{}, fmt.Errorf(
				"%s: %w", op, malformed(customerResource, "invalid JSON", err),
			)
		}
		return domain.CustomerProfile{}, fmt.Errorf("%s: %w", op, err)
	}

	profile := wire.toDomain()
	if profile.Email == "" {
		profile.Email = email
	}
	return profile, nil
}

func (c *Client) RegisterCustomer(ctx context.Context, v domain.NewCustomer) error {
	const op = "Client.RegisterCustomer"

	endpoint := c.endpoint(c.paths.Customers, nil)
	if _, err := c.do(ctx, http.MethodPost, endpoint, toNewCustomer(v), nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (w customer) toDomain() domain.CustomerProfile {
	return domain.CustomerProfile{
		Cedula:    strings.TrimSpace(string(w.Cedula)),
		FirstName: w.FirstName,
		LastName:  w.LastName,
		Phone:     string(w.Phone),
		Address:   w.Address,
		Email:     w.Email,
	}
}

func toNewCustomer(v domain.NewCustomer) newCustomer {
	return newCustomer{
		FirstName: v.FirstName,
		LastName:  v.LastName,
		BirthDate: v.BirthDate.Format(birthDateLayout),
		Email:     v.Email,
		Sex:       v.Sex,
		Address:   v.Address,
		Password:  v.Password,
		Cedula:    v.Cedula,
		Phone:     v.Phone,
		Sector:    v.Sector,
	}
}
