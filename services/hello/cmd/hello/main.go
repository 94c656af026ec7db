package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	pkgconfig "github.com/NunnaRupaSri/terraform-sample/pkg/config"
	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	loggingmw "github.com/NunnaRupaSri/terraform-sample/pkg/middleware/logging"
	"github.com/NunnaRupaSri/terraform-sample/services/hello/internal/httpserver"
)

const defaultPort = 80

func main() {
	_ = godotenv.Load()

	logger := logging.New("hello", pkgconfig.EnvDefault("LOG_LEVEL", "info"))
	slog.SetDefault(logger)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))

	httpserver.Register(e)

	port := pkgconfig.EnvIntDefault("SERVER_PORT", defaultPort)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           e,
		ReadHeaderTimeout: 3 * time.Second,
	}

	go func() {
		logger.Info("server_starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	logger.Info("server_stopped")
}
