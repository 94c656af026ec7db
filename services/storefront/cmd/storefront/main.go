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

	pkgdb "github.com/NunnaRupaSri/terraform-sample/pkg/db"
	"github.com/NunnaRupaSri/terraform-sample/pkg/events"
	"github.com/NunnaRupaSri/terraform-sample/pkg/logging"
	loggingmw "github.com/NunnaRupaSri/terraform-sample/pkg/middleware/logging"
	"github.com/NunnaRupaSri/terraform-sample/pkg/middleware/visitor"
	"github.com/NunnaRupaSri/terraform-sample/pkg/shopapi"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/auth"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/config"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/httpserver"
	"github.com/NunnaRupaSri/terraform-sample/services/storefront/internal/session"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config.Load()
	logger := logging.New(cfg.ServiceName, cfg.LogLevel)
	slog.SetDefault(logger)
	if cfg.GeneratedSecret {
		logger.Warn("VISITOR_SECRET not set, generating a random one; visitors will be reset on restart")
	}

	initCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	db, err := pkgdb.Open(initCtx, cfg.DatabaseURL)
	cancel()
	if err != nil {
		log.Fatalf("db init error: %v", err)
	}
	if err := session.Migrate(db); err != nil {
		log.Fatalf("db migrate error: %v", err)
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		producer, err := events.NewProducer(cfg.KafkaBrokers)
		if err != nil {
			log.Fatalf("kafka init error: %v", err)
		}
		publisher = producer
	} else {
		logger.Warn("KAFKA_BROKERS not set, events are dropped")
	}

	api := shopapi.NewClient(cfg.APIURL)
	gate := auth.NewGate(api, session.NewGormStore(db, cfg.SessionTTL), publisher)

	e := echo.New()
	e.HideBanner = true

	e.Pre(middleware.RemoveTrailingSlash())
	e.Use(middleware.Recover(), middleware.RequestID())
	e.Use(loggingmw.RequestLogger(logger))
	e.Use(middleware.CORS())

	httpserver.Register(e, &httpserver.Deps{
		Gate:       gate,
		Workspaces: httpserver.NewWorkspaces(api, publisher),
		Visitor: visitor.Config{
			Secret: cfg.VisitorSecret,
			Secure: cfg.SecureCookies,
		},
		DB: db,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Port),
		Handler:           e,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
		ReadHeaderTimeout: 3 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server_starting", "addr", srv.Addr, "api_url", cfg.APIURL)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("http server: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("server_stopping")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown_failed", "error", err)
	}
	if err := publisher.Close(); err != nil {
		logger.Error("events_close_failed", "error", err)
	}
	if err := pkgdb.Close(db); err != nil {
		logger.Error("db_close_failed", "error", err)
	}

	logger.Info("server_stopped")
}
