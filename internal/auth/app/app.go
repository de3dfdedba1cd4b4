package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpapi "github.com/aussiebroadwan/tinylink/internal/auth/http"
	"github.com/aussiebroadwan/tinylink/internal/auth/service"
	"github.com/aussiebroadwan/tinylink/internal/auth/store"
	"github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/memory"
	redisstore "github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/redis"
	"github.com/aussiebroadwan/tinylink/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/tinylink/pkg/cryptox"
	"github.com/aussiebroadwan/tinylink/pkg/idx"
	"github.com/aussiebroadwan/tinylink/pkg/jwtx"
	"github.com/aussiebroadwan/tinylink/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the store, services and HTTP server together.
type Application struct {
	cfg    Config
	logger *slog.Logger

	db     store.Store
	tokens *jwtx.TokenService
	hasher cryptox.Hasher

	userService *service.UserService
	linkService *service.LinkService

	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "tinylink",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
	}

	ctx := slogx.WithContext(context.Background(), app.logger)

	if err := app.initSecrets(); err != nil {
		return nil, err
	}
	if err := app.initStore(ctx); err != nil {
		return nil, err
	}

	app.initServices()

	if cfg.AdminUsername != "" {
		if err := app.userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
			_ = app.db.Close()
			return nil, err
		}
	} else {
		empty, err := app.userService.NeedsBootstrap(ctx)
		if err != nil {
			_ = app.db.Close()
			return nil, err
		}
		if empty {
			app.logger.Warn("no accounts registered; set ADMIN_USERNAME and ADMIN_PASSWORD to create an admin")
		}
	}

	app.initHTTP()
	return app, nil
}

// Handler returns the root HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.logger.Info("tinylink starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"store", app.cfg.StoreDriver,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			_ = app.db.Close()
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
	app.logger.Info("shutting down tinylink...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing store", "error", err)
		return err
	}

	app.logger.Info("tinylink stopped")
	return nil
}

// initSecrets resolves the token and password secrets and builds the hasher.
func (app *Application) initSecrets() error {
	jwtSecret, err := cryptox.ResolveSecret(app.cfg.JWTSecret, app.cfg.JWTSecretFile)
	if err != nil {
		return fmt.Errorf("failed to load JWT secret: %w", err)
	}
	app.tokens, err = jwtx.NewTokenService([]byte(jwtSecret), app.cfg.TokenTTL)
	if err != nil {
		return err
	}

	pwSecret, err := cryptox.ResolveSecret(app.cfg.PasswordSecret, app.cfg.PasswordSecretFile)
	if err != nil {
		return fmt.Errorf("failed to load password secret: %w", err)
	}

	switch app.cfg.PasswordHash {
	case HashArgon2id:
		app.hasher = &cryptox.Argon2Hasher{Pepper: pwSecret}
	default:
		app.hasher, err = cryptox.NewKeyedHasher([]byte(pwSecret))
		if err != nil {
			return err
		}
		app.logger.Warn("password digests use a keyed hash without salt or work factor; set PASSWORD_HASH=argon2id for production")
	}
	return nil
}

// initStore opens the configured driver and applies migrations.
func (app *Application) initStore(ctx context.Context) error {
	switch app.cfg.StoreDriver {
	case DriverSQLite:
		dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
		db, err := sqlite.NewStore(dsn)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		app.db = db
	case DriverRedis:
		dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		db, err := redisstore.NewStore(dialCtx, redisstore.Config{URL: app.cfg.RedisURL})
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		app.db = db
	default:
		app.db = memory.NewStore()
		app.logger.Warn("using in-memory store; data is lost on restart")
	}

	if err := app.db.ApplyMigrations(); err != nil {
		_ = app.db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	app.logger.Info("store ready", "driver", app.cfg.StoreDriver)
	return nil
}

// initServices initializes all business logic services
func (app *Application) initServices() {
	app.userService = &service.UserService{
		Store:  app.db,
		Hasher: app.hasher,
		Tokens: app.tokens,
	}
	app.linkService = &service.LinkService{
		Store: app.db,
		Generator: idx.Generator{
			Length:      app.cfg.ShortCodeLength,
			MaxAttempts: app.cfg.ShortCodeMaxAttempts,
		},
		MaxLength: app.cfg.ShortCodeMaxLength,
		BaseURL:   app.cfg.BaseURL,
	}
}

// initHTTP initializes the HTTP router and server
func (app *Application) initHTTP() {
	router := httpapi.NewRouter(app.tokens, BuildVersion, app.db, app.logger)
	router.UserService = app.userService
	router.LinkService = app.linkService
	router.TokenTTL = app.cfg.TokenTTL
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
}
