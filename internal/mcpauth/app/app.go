package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/acacialabs/acacia/internal/mcpauth/http"
	"github.com/acacialabs/acacia/internal/mcpauth/service"
	"github.com/acacialabs/acacia/internal/mcpauth/store"
	"github.com/acacialabs/acacia/internal/mcpauth/store/codes"
	"github.com/acacialabs/acacia/internal/mcpauth/store/drivers/sqlite"
	"github.com/acacialabs/acacia/pkg/jwtx"
	"github.com/acacialabs/acacia/pkg/slogx"
)

// BuildVersion should be set at build time via ldflags.
const BuildVersion = "v0.1.0"

// Application wires the auth service together: stores, services, HTTP.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db    store.Store
	codes codes.Store
	codec *jwtx.Codec

	tokenService        *service.TokenService
	authorizeService    *service.AuthorizeService
	apiKeyService       *service.APIKeyService
	registerService     *service.RegisterService
	housekeepingService *service.HousekeepingService

	server *http.Server
	router *httpapi.Router
}

// New creates an Application with all dependencies initialized.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "acacia",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	if cfg.JWTSecret == "" {
		// Startup proceeds so the probes can report the problem, but every
		// token operation will fail closed with server_error.
		app.logger.Warn("AUTH_JWT_SECRET is not set; token issuance is disabled")
	}
	app.codec = jwtx.NewCodec([]byte(cfg.JWTSecret), cfg.BaseURL)

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initCodeStore(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Run starts the application and blocks until shutdown is requested.
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("auth service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application.
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down auth service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if closer, ok := app.codes.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			app.logger.Error("error closing code store", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("auth service stopped")
	return nil
}

func (app *Application) initDatabase() error {
	host := fmt.Sprintf("file:%s?_busy_timeout=5000&_journal_mode=WAL", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(host)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("database migrations applied successfully")
	return nil
}

func (app *Application) initCodeStore() error {
	if app.cfg.RedisURL == "" {
		app.logger.Info("authorization codes held in process memory; set AUTH_REDIS_URL for multi-instance deployments")
		app.codes = codes.NewMemoryStore(nil)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rs, err := codes.NewRedisStoreFromURL(ctx, app.cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("failed to connect authorization-code store: %w", err)
	}
	app.codes = rs
	app.logger.Info("authorization codes backed by redis")
	return nil
}

func (app *Application) initServices() {
	app.tokenService = &service.TokenService{
		Codec:      app.codec,
		Codes:      app.codes,
		Store:      app.db,
		Issuer:     app.cfg.BaseURL,
		AccessTTL:  app.cfg.AccessTokenTTL,
		RefreshTTL: app.cfg.RefreshTokenTTL,
	}

	app.authorizeService = &service.AuthorizeService{
		Codes:   app.codes,
		CodeTTL: app.cfg.CodeTTL,
	}

	app.apiKeyService = &service.APIKeyService{Store: app.db}
	app.registerService = &service.RegisterService{}

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.codec,
		app.cfg.BaseURL,
		app.cfg.LoginURL,
		BuildVersion,
		app.db,
		app.logger,
	)

	router.Sessions = &httpapi.CookieSessionResolver{Codec: app.codec}
	router.TokenService = app.tokenService
	router.AuthorizeService = app.authorizeService
	router.APIKeyService = app.apiKeyService
	router.RegisterService = app.registerService
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
