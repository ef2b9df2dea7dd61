package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.SessionStorage = SessionRepository{}

type SessionRepository struct {
	kv KV
}

func NewSessionRepository(kv KV) SessionRepository {
	return SessionRepository{kv}
}

// LoadSession returns an anonymous session when nothing is stored.
func (r SessionRepository) LoadSession(ctx context.Context) (domain.Session, error) {
	const op = "SessionRepository.LoadSession"

	authenticated, err := r.get(ctx, KeyAuthenticated)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if authenticated != "true" {
		return domain.Session{}, nil
	}

	var s domain.Session
	s.Authenticated = true
	if s.Email, err = r.get(ctx, KeyUserEmail); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if s.Role, err = r.get(ctx, KeyUserRole); err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}

	startedAt, err := r.get(ctx, KeySessionStartedAt)
	if err != nil {
		return domain.Session{}, fmt.Errorf("%s: %w", op, err)
	}
	if startedAt != "" {
		if ms, err := strconv.ParseInt(startedAt, 10, 64); err == nil {
			s.StartedAt = time.UnixMilli(ms)
		}
	}
	return s, nil
}

func (r SessionRepository) SaveSession(ctx context.Context, s domain.Session) error {
	const op = "SessionRepository.SaveSession"

	err := r.kv.SetMany(ctx, map[string]string{
		KeyAuthenticated:    strconv.FormatBool(s.Authenticated),
		KeyUserEmail:        s.Email,
		KeyUserRole:         s.Role,
		KeySessionStartedAt: strconv.FormatInt(s.StartedAt.UnixMilli(), 10),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (r SessionRepository) ClearSession(ctx context.Context) error {
	const op = "SessionRepository.ClearSession"

	err := r.kv.Delete(ctx,
		KeyAuthenticated, KeyUserEmail, KeyUserRole, KeySessionStartedAt,
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// get treats a missing key as empty.
func (r SessionRepository) get(ctx context.Context, key string) (string, error) {
	v, err := r.kv.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return v, err
}
