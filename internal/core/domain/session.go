package domain

import "time"

const RoleCustomer = "cliente"

// A Session is the identity of the user of the device.
//
// The zero value is an anonymous session.
type Session struct {
	Email         string
	Role          string
	Authenticated bool
	StartedAt     time.Time
}

func NewSession(email, role string, now time.Time) Session {
	return Session{
		Email:         email,
		Role:          role,
		Authenticated: true,
		StartedAt:     now,
	}
}

func (s Session) IsAuthenticated() bool {
	return s.Authenticated && s.Email != ""
}
