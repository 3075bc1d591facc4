// Package server wires the MediaBox server together: database and
// migrations, object storage, the auth core and the services, and runs the
// HTTP API and the gRPC health endpoint until a termination signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/auth"
	"github.com/dmitrijs2005/mediabox/internal/server/config"
	"github.com/dmitrijs2005/mediabox/internal/server/httpapi"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/users"
	"github.com/dmitrijs2005/mediabox/internal/server/services"
	"github.com/dmitrijs2005/mediabox/internal/server/storage"

	gs "github.com/dmitrijs2005/mediabox/internal/server/grpc"
)

const healthCheckInterval = 10 * time.Second

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	handler *httpapi.Handler
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	db, err := sql.Open(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	var opts []repomanager.Option
	if c.UserCacheTTL > 0 {
		cache, err := users.NewUserCache(ctx, c.UserCacheTTL)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("user cache init error: %w", err)
		}
		opts = append(opts, repomanager.WithUserCache(cache))
	}
	rm := repomanager.NewPostgresRepositoryManager(opts...)

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	var store services.ObjectStore
	if c.S3Bucket != "" {
		s3, err := storage.NewS3Store(ctx, storage.Options{
			User:         c.S3RootUser,
			Password:     c.S3RootPassword,
			Bucket:       c.S3Bucket,
			Region:       c.S3Region,
			BaseEndpoint: c.S3BaseEndpoint,
		})
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("object storage init error: %w", err)
		}
		store = s3
	} else {
		logger.Warn(ctx, "object storage disabled, image uploads will fail")
	}

	hasher := auth.NewPasswordHasher(c.BcryptCost)
	tokens := auth.NewTokenService([]byte(c.SecretKey), c.AccessTokenValidityDuration)
	guard := auth.NewGuard(tokens, rm.Users(db))

	us := services.NewUserService(db, rm, hasher, tokens, store, c.MaxUploadSize, logger)
	ps := services.NewPostService(db, rm, store, c.MaxUploadSize, logger)
	cs := services.NewCommentService(db, rm, logger)

	handler := httpapi.NewHandler(us, ps, cs, guard, c.MaxUploadSize, logger)

	return &App{config: c, logger: logger, db: db, handler: handler}, nil
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
	s := httpapi.NewServer(app.config.EndpointAddrHTTP, app.handler.Routes(), app.logger)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.db, healthCheckInterval)
	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// Run blocks until a termination signal arrives or one of the servers fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.startHTTPServer(ctx, cancelFunc)
	}()
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
}
