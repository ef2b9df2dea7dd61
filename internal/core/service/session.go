package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var (
	_ port.Authenticator   = (*Sessions)(nil)
	_ port.SessionProvider = (*Sessions)(nil)
)

// Sessions owns the session of the device: created at login and
// invalidated at logout.
type Sessions struct {
	mu      sync.RWMutex
	current domain.Session

	storage   port.SessionStorage
	customers port.CustomerDirectory
	now       func() time.Time
}

func NewSessions(
	storage port.SessionStorage, customers port.CustomerDirectory,
) *Sessions {
	return &Sessions{
		storage:   storage,
		customers: customers,
		now:       time.Now,
	}
}

// Load restores the stored session. A failure leaves the device
// anonymous.
func (s *Sessions) Load(ctx context.Context) {
	const op = "Sessions.Load"

	session, err := s.storage.LoadSession(ctx)
	if err != nil {
		slog.Warn("starting anonymous session", "op", op, "err", err)
		session = domain.Session{}
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()
}

func (s *Sessions) Current() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

func (s *Sessions) Login(ctx context.Context, email string) (domain.Session, error) {
	const op = "Sessions.Login"
	log := slog.With("op", op)

	if err := ctx.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	email = strings.TrimSpace(email)
	if !domain.ValidEmail(email) {
		return domain.Session{}, fmt.Errorf("%s: %w", op, domain.ValidationErrors{
			domain.FieldError{Field: "email", Message: "invalid email format"},
		})
	}

	if _, err := s.customers.FindCustomerByEmail(ctx, email); err != nil {
		if errors.Is(err, domain.ErrEmailNotRegistered) {
			log.Info("login rejected", "email", email)
		}
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	session := domain.NewSession(email, domain.RoleCustomer, s.now())
	if err := s.storage.SaveSession(ctx, session); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.current = session
	s.mu.Unlock()

	log.Info("logged in", "email", email)
	return session, nil
}

func (s *Sessions) Logout(ctx context.Context) error {
	const op = "Sessions.Logout"

	s.mu.Lock()
	s.current = domain.Session{}
	s.mu.Unlock()

	if err := s.storage.ClearSession(ctx); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
