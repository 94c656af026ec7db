package httpserver

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/admin"
)

type AdminHTTP struct {
	Workspaces *Workspaces
}

type dashboardResponse struct {
	Role     string            `json:"role"`
	Products []shopapi.Product `json:"products"`
	Product  *shopapi.Product  `json:"product,omitempty"`
	Form     admin.ProductForm `json:"form"`
}

func (h *AdminHTTP) dashboard(c echo.Context) *admin.Dashboard {
	d, created := h.Workspaces.Admin(visitor.ID(c))
	if created {
		d.Mount(c.Request().Context())
	}
	return d
}

func (h *AdminHTTP) render(c echo.Context, code int, d *admin.Dashboard, p *shopapi.Product) error {
	products := d.Products()
	if products == nil {
		products = []shopapi.Product{}
	}
	return c.JSON(code, dashboardResponse{
		Role:     currentSession(c).Role,
		Products: products,
		Product:  p,
	})
}

func (h *AdminHTTP) Mount(c echo.Context) error {
	d, _ := h.Workspaces.Admin(visitor.ID(c))
	d.Mount(c.Request().Context())
	return h.render(c, http.StatusOK, d, nil)
}

func (h *AdminHTTP) CreateProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "create.product")

	var form admin.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("create_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	d := h.dashboard(c)
	p, err := d.AddProduct(c.Request().Context(), form)
	if err != nil {
		return fail(c, "create_product_error", err)
	}
	return h.render(c, http.StatusCreated, d, p)
}

func (h *AdminHTTP) UpdateProduct(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "update.product")

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	var form admin.ProductForm
	if err := c.Bind(&form); err != nil {
		l.Warn("update_product_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	d := h.dashboard(c)
	p, err := d.UpdateProduct(c.Request().Context(), id, form)
	if err != nil {
		return fail(c, "update_product_error", err)
	}
	return h.render(c, http.StatusOK, d, p)
}

func (h *AdminHTTP) DeleteProduct(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	d := h.dashboard(c)
	if err := d.DeleteProduct(c.Request().Context(), id); err != nil {
		return fail(c, "delete_product_error", err)
	}
	return h.render(c, http.StatusOK, d, nil)
}
