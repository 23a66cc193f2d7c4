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

	httpapi "github.com/bensonnlee/SRCode/internal/pass/http"
	"github.com/bensonnlee/SRCode/internal/pass/service"
	"github.com/bensonnlee/SRCode/internal/pass/store"
	"github.com/bensonnlee/SRCode/internal/pass/store/drivers/sqlite"
	"github.com/bensonnlee/SRCode/pkg/cryptox"
	"github.com/bensonnlee/SRCode/pkg/fusionauth"
	"github.com/bensonnlee/SRCode/pkg/obs"
	"github.com/bensonnlee/SRCode/pkg/slogx"
)

// BuildVersion is overridden at build time with
// -ldflags "-X github.com/bensonnlee/SRCode/internal/pass/app.BuildVersion=...".
var BuildVersion = "v0.1.0"

// Application owns the pass service and everything it depends on.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db      store.Store
	vault   *cryptox.Vault
	metrics *obs.Metrics
	client  *fusionauth.Client

	// Services
	passService         *service.PassService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized.
// The HTTP server is built but not started; see Run.
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "srcode",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
			Output:  cfg.LogOutput,
		}),
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	vault, err := cryptox.LoadVault(cfg.MasterKeyPath, cfg.MasterKey)
	if err != nil {
		_ = app.db.Close()
		return nil, fmt.Errorf("failed to initialize vault: %w", err)
	}
	if vault.Ephemeral() {
		app.logger.Warn("no master key configured, saved sign-ins will not survive a restart")
	}
	app.vault = vault

	app.metrics = obs.New()
	app.metrics.SetBuildInfo(BuildVersion)

	app.initServices()
	app.initHTTP()

	return app, nil
}

// Service exposes the pass service for in-process callers such as the CLI.
func (app *Application) Service() *service.PassService { return app.passService }

// Logger returns the application logger.
func (app *Application) Logger() *slog.Logger { return app.logger }

// Handler returns the HTTP handler serving the local API.
func (app *Application) Handler() http.Handler { return app.router }

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("pass service starting", "port", app.cfg.Port, "version", BuildVersion)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
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

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down pass service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.Close(); err != nil {
		return err
	}

	app.logger.Info("pass service stopped")
	return nil
}

// Close releases the database. Used directly by CLI commands that never
// start the server.
func (app *Application) Close() error {
	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}
	return nil
}

// initDatabase opens the database and applies migrations
func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Debug("database migrations applied")
	return nil
}

func (app *Application) initServices() {
	client := fusionauth.NewClient(app.cfg.Endpoints())
	client.Timeout = app.cfg.HTTPTimeout
	client.Demo = app.cfg.DemoMode
	client.Logger = app.logger.With("component", "fusionauth")
	app.client = client

	app.passService = service.NewPassService(client, app.db, app.vault, app.metrics, app.cfg.TokenTTL)

	app.housekeepingService = service.NewHousekeepingService(
		app.db,
		app.logger,
		app.cfg.HousekeepingInterval,
	)
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(
		app.passService,
		app.db,
		app.vault,
		app.metrics,
		app.cfg.APIToken,
		BuildVersion,
		app.logger,
	)
	router.ApplyRoutes()
	app.router = router

	// WriteTimeout leaves room for a full CAS walk behind /v1/login.
	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
		WriteTimeout:      3*app.cfg.HTTPTimeout + 10*time.Second,
	}
}
