package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/inflight"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
)

var (
	ErrValidation         = errors.New("validation")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrLoginFailed        = errors.New("login failed")
)

const customerRole = "customer"

type API interface {
	AdminLogin(ctx context.Context, username, password string) (*shopapi.AdminLoginResponse, error)
	CustomerLogin(ctx context.Context, mobile string) (*shopapi.CustomerLoginResponse, error)
}

// Gate turns credentials into persisted sessions.
type Gate struct {
	API    API
	Store  session.Store
	Events events.Publisher

	guard inflight.Guard
}

func NewGate(api API, store session.Store, pub events.Publisher) *Gate {
	if pub == nil {
		pub = events.Nop{}
	}
	return &Gate{API: api, Store: store, Events: pub}
}

func (g *Gate) SubmitAdminLogin(ctx context.Context, visitorID, username, password string) (*session.Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.admin_login")

	if strings.TrimSpace(username) == "" || strings.TrimSpace(password) == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	var s *session.Session
	err := g.guard.Do(visitorID+":admin-login", func() error {
		res, err := g.API.AdminLogin(ctx, username, password)
		if err != nil {
			// 4xx is a rejected login; anything else means the API itself is in trouble
			if shopapi.IsClientError(err) {
				l.Warn("login_failed", "reason", "auth api rejected credentials", "error", err)
			} else {
				l.Error("login_failed", "reason", "auth api unavailable", "error", err)
			}
			return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
		}

		s = &session.Session{
			VisitorID: visitorID,
			Kind:      session.KindAdmin,
			Token:     res.Token,
			Role:      res.Role,
		}
		if err := g.Store.Save(ctx, s); err != nil {
			l.Error("login_failed", "reason", "cannot persist session", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.publish(ctx, "admin_logged_in", visitorID, map[string]any{"role": s.Role})
	l.Info("login_successful", "role", s.Role)
	return s, nil
}

func (g *Gate) SubmitCustomerLogin(ctx context.Context, visitorID, mobile string) (*session.Session, error) {
	l := logging.FromContext(ctx).With("svc", "auth.customer_login")

	mobile = strings.TrimSpace(mobile)
	if mobile == "" {
		return nil, fmt.Errorf("%w: mobile is required", ErrValidation)
	}

	var s *session.Session
	err := g.guard.Do(visitorID+":customer-login", func() error {
		res, err := g.API.CustomerLogin(ctx, mobile)
		if err != nil {
			l.Warn("login_failed", "reason", "auth api call failed", "error", err)
			return fmt.Errorf("%w: %w", ErrLoginFailed, err)
		}

		s = &session.Session{
			VisitorID: visitorID,
			Kind:      session.KindCustomer,
			Token:     res.Token,
			Role:      customerRole,
			SubjectID: res.UserID.String(),
		}
		if err := g.Store.Save(ctx, s); err != nil {
			l.Error("login_failed", "reason", "cannot persist session", "error", err)
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	g.publish(ctx, "customer_logged_in", s.SubjectID, map[string]any{"customer_id": s.SubjectID})
	l.Info("login_successful", "customer_id", s.SubjectID)
	return s, nil
}

func (g *Gate) Current(ctx context.Context, visitorID string, kind session.Kind) (*session.Session, error) {
	return g.Store.Load(ctx, visitorID, kind)
}

func (g *Gate) Logout(ctx context.Context, visitorID string, kind session.Kind) error {
	if err := g.Store.Clear(ctx, visitorID, kind); err != nil {
		return err
	}
	logging.FromContext(ctx).Info("logout_successful", "kind", string(kind))
	return nil
}

func (g *Gate) publish(ctx context.Context, typ, key string, data map[string]any) {
	if err := g.Events.PublishEvent(ctx, events.TopicUser, key, events.New(typ, data)); err != nil {
		logging.FromContext(ctx).Error("publish_failed", "event", typ, "error", err)
	}
}
