// Package server wires configuration, storage, the auth core and the HTTP
// and gRPC transports into a runnable application with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/userkeeper/internal/logging"
	"github.com/dmitrijs2005/userkeeper/internal/server/auth"
	"github.com/dmitrijs2005/userkeeper/internal/server/config"
	"github.com/dmitrijs2005/userkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/userkeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/userkeeper/internal/server/services"
	"github.com/dmitrijs2005/userkeeper/internal/server/storage"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/userkeeper/internal/server/grpc"
)

type App struct {
	config      *config.Config
	logger      logging.Logger
	db          *sql.DB
	gateway     *auth.Gateway
	userService *services.UserService
}

// NewApp opens the database, applies pending migrations and builds the
// application.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.NewJSONLogger(os.Stdout, c.LogLevel)
	if err != nil {
		return nil, err
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	app, err := newApp(c, db, rm, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(c *config.Config, db *sql.DB, rm repomanager.RepositoryManager, logger logging.Logger) (*App, error) {
	tokens, err := auth.NewTokenService(auth.TokenConfig{
		Secret:    []byte(c.SecretKey),
		Algorithm: c.SigningAlgorithm,
		TTL:       c.AccessTokenValidityDuration,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := auth.NewPasswordHasher(c.BcryptCost)
	if err != nil {
		return nil, err
	}

	policy, err := auth.ParsePolicy(c.SuperadminPolicy)
	if err != nil {
		return nil, err
	}

	gw, err := auth.NewGateway(auth.NewResolver(rm.Users(db)), tokens, hasher, auth.NewEvaluator(policy), logger)
	if err != nil {
		return nil, err
	}

	avatars := storage.NewAvatarStore(c.S3())

	us := services.NewUserService(db, rm, hasher, gw, avatars, logger)

	return &App{config: c, logger: logger, db: db, gateway: gw, userService: us}, nil
}

func (app *App) initSignalHandler(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
}

// Run serves HTTP and gRPC until a termination signal arrives, ctx is
// cancelled or either server fails. The database is closed on return.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := app.initSignalHandler(ctx)
	defer stop()
	defer app.db.Close()

	app.logger.Info(ctx, "Starting app...", "superadmin_policy", app.config.SuperadminPolicy)

	h := httpapi.NewHandler(app.gateway, app.userService, app.db, app.logger)
	httpSrv := httpapi.NewServer(app.config.HTTPAddr, h, app.config.ShutdownTimeout, app.logger)
	grpcSrv := gs.NewGRPCServer(app.config.GRPCAddr, app.logger, app.gateway)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return httpSrv.Run(gctx) })
	g.Go(func() error { return grpcSrv.Run(gctx) })

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}
