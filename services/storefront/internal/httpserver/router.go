package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
)

type Deps struct {
	Gate       *auth.Gate
	Workspaces *Workspaces
	Visitor    visitor.Config
	DB         *gorm.DB
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)

	visitorMW := visitor.Middleware(d.Visitor)
	sessions := &SessionMiddleware{Gate: d.Gate}

	authH := &AuthHTTP{Gate: d.Gate, Workspaces: d.Workspaces}
	customerH := &CustomerHTTP{Workspaces: d.Workspaces}
	adminH := &AdminHTTP{Workspaces: d.Workspaces}

	a := e.Group("/auth", visitorMW)
	a.POST("/admin-login", authH.AdminLogin)
	a.POST("/customer-login", authH.CustomerLogin)
	a.POST("/logout", authH.Logout)

	cust := e.Group("/customer-dashboard", visitorMW, sessions.RequireCustomer)
	cust.GET("", customerH.Mount)
	cust.GET("/state", customerH.State)
	cust.GET("/products", customerH.Products)
	cust.POST("/refresh", customerH.Refresh)
	cust.POST("/cart/toggle", customerH.ToggleCart)
	cust.POST("/cart/items/:id", customerH.AddToCart)
	cust.DELETE("/cart/items/:id", customerH.RemoveFromCart)
	cust.POST("/cart/checkout", customerH.Checkout)

	adm := e.Group("/admin-dashboard", visitorMW, sessions.RequireAdmin)
	adm.GET("", adminH.Mount)
	adm.POST("/products", adminH.CreateProduct)
	adm.PUT("/products/:id", adminH.UpdateProduct)
	adm.DELETE("/products/:id", adminH.DeleteProduct)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	sqlDB, err := d.DB.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		return fail(c, "readiness_failed", err)
	}
	return c.NoContent(http.StatusOK)
}
