package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const Greeting = "Hello World! Node.js app deployed via CodeDeploy"

func Register(e *echo.Echo) {
	e.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, Greeting)
	})
}
