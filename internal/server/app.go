// Package server wires configuration, storage and services together and runs
// the HTTP API until the process is told to stop.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/alumnihub/internal/filex"
	"github.com/dmitrijs2005/alumnihub/internal/logging"
	"github.com/dmitrijs2005/alumnihub/internal/server/auth"
	"github.com/dmitrijs2005/alumnihub/internal/server/config"
	"github.com/dmitrijs2005/alumnihub/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/alumnihub/internal/server/rest"
	"github.com/dmitrijs2005/alumnihub/internal/server/services"
	"github.com/dmitrijs2005/alumnihub/internal/server/storage"
	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Seams for tests.
var (
	openDB               = repomanager.OpenDB
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newObjectStore       = func(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
		return storage.NewS3Store(ctx, cfg)
	}
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *rest.HTTPServer
}

// NewApp connects to PostgreSQL and object storage, applies migrations and
// builds the HTTP server. The caller owns the returned App and must Close it.
func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB(ctx, cfg.DatabaseDSN)
	if err != nil {
		return nil, err
	}

	app, err := newApp(ctx, cfg, logger, db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return app, nil
}

func newApp(ctx context.Context, cfg *config.Config, logger logging.Logger, db *sql.DB) (*App, error) {
	if cfg.UsesDefaultSecrets() {
		logger.Warn(ctx, "token secrets are the built-in development values, set ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET before exposing this server")
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := newObjectStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("object store init error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(cfg.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir error: %w", err)
	}
	cfg.UploadDir = uploadDir

	issuer := auth.NewIssuer(cfg)
	credentials := services.NewCredentialService(db, rm, issuer, cfg, logger)
	alumni := services.NewAlumniService(db, rm, credentials, store, logger)
	gallery := services.NewGalleryService(db, rm, store, cfg, logger)

	if logging.ParseLevel(cfg.LogLevel) > logging.ParseLevel("debug") {
		gin.SetMode(gin.ReleaseMode)
	}

	handler := rest.NewHandler(rest.Deps{
		Credentials: credentials,
		Alumni:      alumni,
		Gallery:     gallery,
		Tokens:      issuer,
		Health:      []rest.HealthCheck{db.PingContext, store.Ping},
		Logger:      logger,
	}, cfg)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: rest.NewHTTPServer(cfg.EndpointAddrHTTP, rest.NewRouter(handler), cfg.ShutdownTimeout, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until ctx is cancelled or a termination signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return app.server.Run(gctx)
	})

	err := g.Wait()
	app.logger.Info(ctx, "App stopped")
	return err
}

func (app *App) Close() error {
	return app.db.Close()
}
