// Package server initializes and runs the community feed server. It opens
// and migrates the database, builds the services, and runs the HTTP API and
// the gRPC health endpoint until the process is signalled.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/logging"
	"github.com/dmitrijs2005/communityfeed/internal/server/auth"
	"github.com/dmitrijs2005/communityfeed/internal/server/config"
	"github.com/dmitrijs2005/communityfeed/internal/server/httpapi"
	"github.com/dmitrijs2005/communityfeed/internal/server/observability"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/communityfeed/internal/server/services"

	gs "github.com/dmitrijs2005/communityfeed/internal/server/grpc"
)

const shutdownTimeout = 10 * time.Second

var (
	openDB = func(dsn string) (*sql.DB, error) {
		return sql.Open(repomanager.DriverName, dsn)
	}
	newRepositoryManager = func() repomanager.RepositoryManager {
		return repomanager.NewPostgresRepositoryManager()
	}
)

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	router  *gin.Engine
	health  *gs.HealthServer
	metrics *observability.Metrics

	shutdownTracer func(context.Context) error
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger, err := logging.New(c.LogFormat, c.LogLevel, os.Stdout)
	if err != nil {
		return nil, err
	}

	db, err := openDB(c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}
	db.SetMaxOpenConns(c.DBMaxOpenConns)
	db.SetMaxIdleConns(c.DBMaxIdleConns)
	db.SetConnMaxLifetime(c.DBConnMaxLifetime)

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	shutdownTracer, err := observability.InitTracer(ctx, common.ServiceName, c.OTLPEndpoint)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	registry := observability.NewRegistry()
	registry.MustRegister(collectors.NewDBStatsCollector(db, common.ServiceName))
	metrics := observability.NewMetrics(registry)

	if err := httpapi.RegisterValidators(); err != nil {
		_ = db.Close()
		return nil, err
	}

	gin.SetMode(gin.ReleaseMode)
	handler := httpapi.NewHandler(httpapi.Options{
		Users: services.NewUserService(db, rm,
			auth.NewJWTManager([]byte(c.SecretKey), c.SessionValidityDuration),
			auth.NewBcryptHasher(auth.DefaultCost)),
		Posts:          services.NewPostService(db, rm),
		Reactions:      services.NewReactionService(db, rm),
		Feed:           services.NewFeedService(db, rm, c.FeedDefaultLimit, c.FeedMaxLimit),
		Media:          services.NewMediaService(c),
		Logger:         logger,
		Metrics:        metrics,
		MaxUploadBytes: c.MaxUploadBytes,
	})
	router := httpapi.NewRouter(handler, httpapi.RouterConfig{
		AllowedOrigins: c.AllowedOrigins,
		RequestTimeout: c.RequestTimeout,
	})

	health := gs.NewHealthServer(c.EndpointAddrGRPC, logger, db, c.HealthProbeInterval, metrics.SetDBUp)

	return &App{
		config:         c,
		logger:         logger,
		db:             db,
		router:         router,
		health:         health,
		metrics:        metrics,
		shutdownTracer: shutdownTracer,
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

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	srv := &http.Server{
		Addr:              app.config.EndpointAddrHTTP,
		Handler:           app.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		app.logger.Info(ctx, "Stopping HTTP server...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "HTTP shutdown failed", "error", err.Error())
		}
	}()

	app.logger.Info(ctx, "Starting HTTP server", "address", app.config.EndpointAddrHTTP)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) error {
	if err := app.health.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
		return err
	}
	return nil
}

// Run serves until ctx is cancelled or a signal arrives, then shuts both
// servers down and releases the database. It returns the first server error.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup
	errs := make([]error, 2)

	wg.Add(2)
	go func() {
		defer wg.Done()
		errs[0] = app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		errs[1] = app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	app.logger.Info(context.Background(), "Servers stopped")

	if err := app.shutdownTracer(context.Background()); err != nil {
		app.logger.Warn(context.Background(), "tracer shutdown failed", "error", err.Error())
	}
	if err := app.db.Close(); err != nil {
		app.logger.Warn(context.Background(), "closing database failed", "error", err.Error())
	}

	return errors.Join(errs...)
}
