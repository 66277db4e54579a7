// Package server wires the ATS authentication core together: configuration,
// the PostgreSQL store and its migrations, the session service, the REST
// API, the gRPC health endpoint and the expired-session sweeper. It also
// handles graceful shutdown on SIGINT/SIGTERM/SIGQUIT.
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

	"github.com/dmitrijs2005/atskeeper/internal/logging"
	"github.com/dmitrijs2005/atskeeper/internal/server/auth"
	"github.com/dmitrijs2005/atskeeper/internal/server/config"
	"github.com/dmitrijs2005/atskeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/atskeeper/internal/server/rest"
	"github.com/dmitrijs2005/atskeeper/internal/server/services"
	"github.com/gin-gonic/gin"

	gs "github.com/dmitrijs2005/atskeeper/internal/server/grpc"
)

const startupTimeout = 10 * time.Second

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	restServer *rest.Server
	grpcServer *gs.GRPCServer
	sweeper    *services.SessionSweeper
}

// NewApp validates c, connects to the database, applies migrations and
// builds every component. The returned App owns the database handle.
func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	db, err := sql.Open(repomanager.DriverName, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	hasher := auth.NewHasher(c.BcryptCost)
	codec := auth.NewCodec([]byte(c.SecretKey), c.AccessTokenValidityDuration, c.RefreshTokenValidityDuration, time.Now)
	guard := auth.NewGuard(codec, rm.Users(db))

	sessions := services.NewSessionService(db, rm, hasher, codec, time.Now)
	sweeper := services.NewSessionSweeper(db, rm, c.SessionSweepInterval, time.Now, logger)

	gin.SetMode(gin.ReleaseMode)
	restServer := rest.NewServer(c.EndpointAddrHTTP, logger, sessions, guard, db, rest.NewMetrics())
	grpcServer := gs.NewGRPCServer(c.EndpointAddrGRPC, logger, db, gs.DefaultCheckInterval)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		restServer: restServer,
		grpcServer: grpcServer,
		sweeper:    sweeper,
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

// runServer runs one server and cancels the whole app if it fails.
func (app *App) runServer(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server failed", "server", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a server fails.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(3)
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "http", app.restServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.runServer(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.sweeper.Run(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(context.Background(), "db close error", "error", err)
	}
	app.logger.Info(context.Background(), "App stopped")
}
