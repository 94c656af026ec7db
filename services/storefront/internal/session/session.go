package session

import (
	"context"
	"errors"
	"time"
)

var ErrNoSession = errors.New("no session")

type Kind string

const (
	KindAdmin    Kind = "admin"
	KindCustomer Kind = "customer"
)

func (k Kind) Valid() bool {
	return k == KindAdmin || k == KindCustomer
}

// Session is what a successful login leaves behind for one visitor. The token is
// opaque: it is stored and handed back, never validated here.
type Session struct {
	VisitorID string    `json:"-"`
	Kind      Kind      `json:"kind"`
	Token     string    `json:"-"`
	Role      string    `json:"role"`
	SubjectID string    `json:"subjectId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the session outlived ttl. A zero ttl never expires.
func (s *Session) Expired(now time.Time, ttl time.Duration) bool {
	return ttl > 0 && now.Sub(s.CreatedAt) >= ttl
}

type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context, visitorID string, kind Kind) (*Session, error)
	Clear(ctx context.Context, visitorID string, kind Kind) error
}
