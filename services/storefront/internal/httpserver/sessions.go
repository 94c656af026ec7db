package httpserver

import (
	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
)

const CtxSession = "session"

// SessionMiddleware lets a request through only when the visitor holds a session of
// the required kind.
type SessionMiddleware struct {
	Gate *auth.Gate
}

func (m *SessionMiddleware) RequireCustomer(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireKind(next, session.KindCustomer)
}

func (m *SessionMiddleware) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return m.requireKind(next, session.KindAdmin)
}

func (m *SessionMiddleware) requireKind(next echo.HandlerFunc, kind session.Kind) echo.HandlerFunc {
	return func(c echo.Context) error {
		s, err := m.Gate.Current(c.Request().Context(), visitor.ID(c), kind)
		if err != nil {
			return fail(c, "session_required", err)
		}
		c.Set(CtxSession, s)
		return next(c)
	}
}

func currentSession(c echo.Context) *session.Session {
	s, _ := c.Get(CtxSession).(*session.Session)
	return s
}
