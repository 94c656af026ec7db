package loggingmw

import (
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
)

// RequestLogger stores a request-scoped logger in the request context and writes one
// request_completed line after the handler and the echo error handler have run.
// Register it after middleware.RequestID so the id is already on the response.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			l := base.With(
				"method", req.Method,
				"path", c.Path(),
				"url", req.URL.Path,
				"remote_ip", c.RealIP(),
			)
			if rid := requestID(c); rid != "" {
				l = l.With("request_id", rid)
			}
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			res := c.Response()
			attrs := []any{"status", res.Status, "duration_ms", time.Since(start).Milliseconds()}
			switch lvl := levelFor(res.Status); {
			case lvl == slog.LevelError && err != nil:
				attrs = append(attrs, "error", err.Error())
				l.Log(req.Context(), lvl, "request_completed", attrs...)
			case lvl == slog.LevelInfo:
				attrs = append(attrs, "bytes", res.Size)
				l.Log(req.Context(), lvl, "request_completed", attrs...)
			default:
				l.Log(req.Context(), lvl, "request_completed", attrs...)
			}
			return nil
		}
	}
}

func requestID(c echo.Context) string {
	if rid := c.Response().Header().Get(echo.HeaderXRequestID); rid != "" {
		return rid
	}
	return c.Request().Header.Get(echo.HeaderXRequestID)
}

func levelFor(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
