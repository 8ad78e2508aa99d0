// Package server wires the posync backend: the local SQLite mirror, the
// optional PostgreSQL catalog, the REST API and the gRPC health service.
// It handles OS signals and shuts every listener down gracefully.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/posync/internal/logging"
	"github.com/dmitrijs2005/posync/internal/server/config"
	"github.com/dmitrijs2005/posync/internal/server/httpapi"
	"github.com/dmitrijs2005/posync/internal/server/migrations"
	"github.com/dmitrijs2005/posync/internal/server/repositories/local"
	"github.com/dmitrijs2005/posync/internal/server/repositories/remote"
	"github.com/dmitrijs2005/posync/internal/server/services"
)

type App struct {
	config   *config.Config
	logger   logging.Logger
	localDB  *sql.DB
	remoteDB *sql.DB
	http     *httpapi.Server
	health   *httpapi.HealthServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.New(c.LogFormat, c.LogLevel, os.Stdout)

	localDB, err := local.Open(ctx, c.LocalDatabasePath)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	app := &App{config: c, logger: logger, localDB: localDB}

	repos := local.NewRepositories(localDB)
	authService := services.NewAuthService(repos.Users, c, logger)
	generated, err := authService.EnsureAdmin(ctx, c.AdminPassword)
	if err != nil {
		app.close()
		return nil, err
	}
	if generated != "" {
		logger.Warn(ctx, "created admin account with a generated password",
			"username", services.AdminUsername, "password", generated)
	}

	catalog := services.NewCatalogService(nil)
	orderSync := services.NewOrderSyncService(repos.Orders, nil, logger)
	if c.RemoteEnabled {
		remoteRepo, err := app.openRemote(ctx)
		if err != nil {
			app.close()
			return nil, err
		}
		catalog = services.NewCatalogService(remoteRepo)
		orderSync = services.NewOrderSyncService(repos.Orders, remoteRepo, logger)
	} else {
		logger.Info(ctx, "remote store disabled, catalog and order push routes will answer 503")
	}

	app.http = httpapi.NewServer(c.HTTPAddr, httpapi.Deps{
		Auth:    authService,
		Catalog: catalog,
		Status:  services.NewSyncStatusService(repos.Products, repos.Barcodes, repos.Descriptions, repos.Orders),
		Orders:  orderSync,
		Local:   repos,
	}, logger)
	if c.GRPCHealthAddr != "" {
		app.health = httpapi.NewHealthServer(c.GRPCHealthAddr, logger)
	}
	return app, nil
}

// openRemote returns a repository even when the store is unreachable; the
// catalog routes then fail per request until it comes back.
func (app *App) openRemote(ctx context.Context) (*remote.PostgresRepository, error) {
	db, err := remote.Open(app.config.DatabaseDSN)
	if err != nil {
		return nil, err
	}
	app.remoteDB = db

	repo := remote.NewPostgresRepository(db)
	if err := repo.Ping(ctx); err != nil {
		app.logger.Warn(ctx, "remote store unreachable, serving local data only", "error", err)
		return repo, nil
	}
	if _, err := migrations.Up(ctx, db, migrations.Postgres); err != nil {
		app.logger.Warn(ctx, "remote schema not migrated", "error", err)
	}
	return repo, nil
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {
	if err := app.http.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startHealthServer(ctx context.Context, cancelFunc context.CancelFunc) {
	app.health.SetServing(true)
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run serves until ctx is cancelled or a signal arrives, then releases the
// databases.
func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()

	if app.health != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.startHealthServer(ctx, cancelFunc)
		}()
	}

	wg.Wait()
	app.close()
	app.logger.Info(context.Background(), "App stopped")
}

func (app *App) close() {
	if app.remoteDB != nil {
		_ = app.remoteDB.Close()
	}
	if app.localDB != nil {
		_ = app.localDB.Close()
	}
}
