package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/admin"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/inflight"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/storefront"
)

// Upstream causes are logged, never shown: each failure maps to one fixed message.
var errorResponses = []struct {
	err  error
	code int
	msg  string
}{
	{inflight.ErrInFlight, http.StatusConflict, "request already in progress"},
	{session.ErrNoSession, http.StatusUnauthorized, "login required"},
	{auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
	{auth.ErrLoginFailed, http.StatusUnauthorized, "Login failed"},
	{storefront.ErrUnknownProduct, http.StatusNotFound, "product not found"},
	{storefront.ErrOutOfStock, http.StatusConflict, "product out of stock"},
	{storefront.ErrCheckoutUnavailable, http.StatusConflict, "checkout is only available with an open, non-empty cart"},
	{admin.ErrAddProduct, http.StatusBadGateway, "Error adding product"},
	{admin.ErrUpdateProduct, http.StatusBadGateway, "Error updating product"},
	{admin.ErrDeleteProduct, http.StatusBadGateway, "Error deleting product"},
}

func statusFor(err error) (int, string) {
	if errors.Is(err, auth.ErrValidation) || errors.Is(err, admin.ErrValidation) {
		return http.StatusBadRequest, err.Error()
	}
	for _, r := range errorResponses {
		if errors.Is(err, r.err) {
			return r.code, r.msg
		}
	}
	return http.StatusInternalServerError, "internal error"
}

func fail(c echo.Context, event string, err error) error {
	code, msg := statusFor(err)
	l := logging.FromContext(c.Request().Context())
	if code >= http.StatusInternalServerError {
		l.Error(event, "status", code, "error", err)
	} else {
		l.Warn(event, "status", code, "error", err)
	}
	return echo.NewHTTPError(code, msg)
}
