package visitor

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/tokens"
)

const (
	CookieName = "visitorToken"
	CtxVisitor = "visitor_id"
)

type Config struct {
	Secret []byte
	TTL    time.Duration
	Secure bool
}

func CreateCookie(name, value, path string, expTime time.Time, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     path,
		Expires:  expTime,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// Middleware resolves the visitor id from the signed cookie, issuing a fresh visitor
// when the cookie is missing, expired or forged.
func Middleware(cfg Config) echo.MiddlewareFunc {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 30 * 24 * time.Hour
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(CookieName); err == nil && ck.Value != "" {
				if claims, err := tokens.VisitorClaimsFromToken(ck.Value, cfg.Secret); err == nil {
					c.Set(CtxVisitor, claims.Subject)
					return next(c)
				}
			}

			id := uuid.NewString()
			exp := time.Now().Add(ttl)
			tok, err := tokens.NewVisitorToken(id, exp, cfg.Secret)
			if err != nil {
				logging.FromContext(c.Request().Context()).Error("visitor_token_error", "status", 500, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "cannot issue visitor token")
			}
			c.SetCookie(CreateCookie(CookieName, tok, "/", exp, cfg.Secure))
			c.Set(CtxVisitor, id)
			return next(c)
		}
	}
}

func ID(c echo.Context) string {
	id, _ := c.Get(CtxVisitor).(string)
	return id
}
