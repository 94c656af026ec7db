package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/storefront"
)

type CustomerHTTP struct {
	Workspaces *Workspaces
}

type checkoutResponse struct {
	Receipt storefront.Receipt  `json:"receipt"`
	View    storefront.Snapshot `json:"view"`
}

// view returns the visitor's customer view, mounting it first if it is new.
func (h *CustomerHTTP) view(c echo.Context) *storefront.View {
	v, created := h.Workspaces.Customer(visitor.ID(c), currentSession(c).SubjectID)
	if created {
		v.Mount(c.Request().Context())
	}
	return v
}

func (h *CustomerHTTP) Mount(c echo.Context) error {
	v, _ := h.Workspaces.Customer(visitor.ID(c), currentSession(c).SubjectID)
	return c.JSON(http.StatusOK, v.Mount(c.Request().Context()))
}

func (h *CustomerHTTP) State(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view(c).Snapshot())
}

func (h *CustomerHTTP) Products(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view(c).Filter(c.QueryParam("q")))
}

func (h *CustomerHTTP) Refresh(c echo.Context) error {
	v := h.view(c)
	v.RefreshCatalog(c.Request().Context())
	return c.JSON(http.StatusOK, v.Snapshot())
}

func (h *CustomerHTTP) ToggleCart(c echo.Context) error {
	v := h.view(c)
	v.ToggleCart()
	return c.JSON(http.StatusOK, v.Snapshot())
}

func (h *CustomerHTTP) AddToCart(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "add.cart")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("add_to_cart_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	v := h.view(c)
	line, err := v.AddToCart(id)
	if err != nil {
		return fail(c, "add_to_cart_error", err)
	}

	l.Info("item added to cart", "product_id", id, "quantity", line.Quantity)
	return c.JSON(http.StatusOK, v.Snapshot())
}

func (h *CustomerHTTP) RemoveFromCart(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	v := h.view(c)
	v.RemoveFromCart(id)
	return c.JSON(http.StatusOK, v.Snapshot())
}

func (h *CustomerHTTP) Checkout(c echo.Context) error {
	v := h.view(c)
	r, err := v.Checkout(c.Request().Context())
	if err != nil {
		return fail(c, "checkout_error", err)
	}
	return c.JSON(http.StatusOK, checkoutResponse{Receipt: r, View: v.Snapshot()})
}
