package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
)

type AuthHTTP struct {
	Gate       *auth.Gate
	Workspaces *Workspaces
}

type loginResponse struct {
	Kind       session.Kind `json:"kind"`
	Role       string       `json:"role,omitempty"`
	CustomerID string       `json:"customerId,omitempty"`
	Redirect   string       `json:"redirect"`
}

func (h *AuthHTTP) AdminLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "admin.login")

	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("admin_login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	vid := visitor.ID(c)
	s, err := h.Gate.SubmitAdminLogin(ctx, vid, req.Username, req.Password)
	if err != nil {
		return fail(c, "admin_login_error", err)
	}
	h.Workspaces.DropAdmin(vid)

	return c.JSON(http.StatusOK, loginResponse{Kind: s.Kind, Role: s.Role, Redirect: "/admin-dashboard"})
}

func (h *AuthHTTP) CustomerLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "customer.login")

	var req struct {
		Mobile string `json:"mobile"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("customer_login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	vid := visitor.ID(c)
	s, err := h.Gate.SubmitCustomerLogin(ctx, vid, req.Mobile)
	if err != nil {
		return fail(c, "customer_login_error", err)
	}
	h.Workspaces.DropCustomer(vid)

	return c.JSON(http.StatusOK, loginResponse{Kind: s.Kind, CustomerID: s.SubjectID, Redirect: "/customer-dashboard"})
}

// Logout clears the session named by ?kind=, or both sessions when kind is empty.
func (h *AuthHTTP) Logout(c echo.Context) error {
	ctx := c.Request().Context()
	vid := visitor.ID(c)

	kinds := []session.Kind{session.KindAdmin, session.KindCustomer}
	if k := session.Kind(c.QueryParam("kind")); k != "" {
		if !k.Valid() {
			return echo.NewHTTPError(http.StatusBadRequest, "kind must be admin or customer")
		}
		kinds = []session.Kind{k}
	}

	for _, k := range kinds {
		if err := h.Gate.Logout(ctx, vid, k); err != nil {
			return fail(c, "logout_error", err)
		}
		if k == session.KindAdmin {
			h.Workspaces.DropAdmin(vid)
		} else {
			h.Workspaces.DropCustomer(vid)
		}
	}
	return c.NoContent(http.StatusNoContent)
}
