// Package server assembles the registration service: configuration checks,
// storage selection, migrations and the HTTP server with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/userreg/internal/cryptox"
	"github.com/dmitrijs2005/userreg/internal/logging"
	"github.com/dmitrijs2005/userreg/internal/server/auth"
	"github.com/dmitrijs2005/userreg/internal/server/config"
	"github.com/dmitrijs2005/userreg/internal/server/httpapi"
	"github.com/dmitrijs2005/userreg/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userreg/internal/server/services"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	userService *services.UserService
}

// NewApp validates c and builds the service graph. It refuses to start on
// an invalid configuration.
func NewApp(c *config.Config) (*App, error) {
	return newApp(c, os.Stdout)
}

func newApp(c *config.Config, logOut io.Writer) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewJSONLogger(logOut, c.LogLevel)

	rules, err := c.Rules()
	if err != nil {
		return nil, err
	}

	tokens, err := auth.NewTokenCodec([]byte(c.SecretKey), c.TokenValidityDuration)
	if err != nil {
		return nil, err
	}

	app := &App{config: c, logger: logger}

	if c.DatabaseDSN != "" {
		db, err := sql.Open("pgx", c.DatabaseDSN)
		if err != nil {
			return nil, fmt.Errorf("db init error: %w", err)
		}
		app.db = db
		app.repomanager = repomanager.NewPostgresRepositoryManager()
	} else {
		logger.Warn(context.Background(), "No database DSN configured, users are kept in memory")
		app.repomanager = repomanager.NewInMemoryRepositoryManager()
	}

	app.userService = services.NewUserService(app.db, app.repomanager, rules,
		cryptox.Hasher{}, tokens, auth.SystemClock{}, logger)

	return app, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run applies migrations and serves HTTP until ctx is cancelled or a
// termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancel := app.initSignalHandler(ctx)
	defer cancel()

	app.logger.Info(ctx, "Starting app...")

	if app.db != nil {
		defer app.db.Close()

		if err := app.db.PingContext(ctx); err != nil {
			return fmt.Errorf("db ping: %w", err)
		}
		if err := app.repomanager.RunMigrations(ctx, app.db); err != nil {
			return fmt.Errorf("migrations: %w", err)
		}
	}

	handler := httpapi.NewHandler(app.userService)
	router := httpapi.NewRouter(handler, app.logger, app.config.AllowedOrigins)
	srv := httpapi.NewHTTPServer(app.config.EndpointAddr, router, app.logger, app.config.ShutdownTimeout)

	if err := srv.Run(ctx); err != nil {
		app.logger.Error(ctx, "HTTP server failed", "error", err)
		return err
	}

	app.logger.Info(ctx, "App stopped")
	return nil
}
