// Package server assembles the dinoauth process: it picks the user directory
// backend, builds the hashing pool and services, and runs the HTTP and gRPC
// surfaces until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/dinoauth/internal/logging"
	"github.com/dmitrijs2005/dinoauth/internal/server/auth"
	"github.com/dmitrijs2005/dinoauth/internal/server/config"
	"github.com/dmitrijs2005/dinoauth/internal/server/guard"
	"github.com/dmitrijs2005/dinoauth/internal/server/httpapi"
	"github.com/dmitrijs2005/dinoauth/internal/server/metrics"
	"github.com/dmitrijs2005/dinoauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/dinoauth/internal/server/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/dinoauth/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	authService *services.AuthService
	userService *services.UserService
	registry    *prometheus.Registry
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	repo, db, err := repomanager.OpenDirectory(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost, c.HashConcurrency)
	if err != nil {
		if db != nil {
			_ = db.Close()
		}
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	reg := prometheus.NewRegistry()
	metrics.RegisterMetrics(reg)
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	return &App{
		config:      c,
		logger:      logger,
		db:          db,
		authService: services.NewAuthService(repo, hasher, c, logger),
		userService: services.NewUserService(repo, hasher, logger),
		registry:    reg,
	}, nil
}

// Run serves HTTP and gRPC until ctx is cancelled, SIGINT/SIGTERM/SIGQUIT
// arrives, or either server fails. The first server error is returned.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g := guard.New(app.authService, app.logger)

	handler := httpapi.NewHandler(app.authService, app.userService, app.logger)
	httpServer := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP,
		handler.Routes(g, promhttp.HandlerFor(app.registry, promhttp.HandlerOpts{})), app.logger)
	grpcServer := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, g)

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error { return httpServer.Run(ctx) })
	eg.Go(func() error { return grpcServer.Run(ctx) })

	err := eg.Wait()

	if app.db != nil {
		if cerr := app.db.Close(); cerr != nil {
			app.logger.Error(ctx, "db close error", "error", cerr)
		}
	}

	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
		return err
	}
	app.logger.Info(ctx, "App stopped")
	return nil
}
