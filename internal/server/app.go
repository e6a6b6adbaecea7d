// Package server initializes and runs the keyshare server.
// It opens the database, applies migrations, wires the account service and
// serves it over gRPC until a shutdown signal arrives.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/keyshare/internal/cryptox"
	"github.com/dmitrijs2005/keyshare/internal/logging"
	"github.com/dmitrijs2005/keyshare/internal/server/config"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/keyshare/internal/server/services"

	gs "github.com/dmitrijs2005/keyshare/internal/server/grpc"
)

type App struct {
	config         *config.Config
	logger         logging.Logger
	db             *sql.DB
	registry       *proofs.Registry
	accountService *services.AccountService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	factory := cryptox.NewProofFactory()
	registry := proofs.NewRegistry(factory, proofs.WithTTL(c.CommitmentTTL))
	as := services.NewAccountService(db, rm, registry, factory, logger, c)

	return &App{config: c, logger: logger, db: db, registry: registry, accountService: as}, nil
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

func (app *App) startGRPCServer(ctx context.Context, cancelFunc context.CancelFunc) {
	s := gs.NewGRPCServer(app.config.EndpointAddrGRPC, app.logger, app.accountService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

// sweepCommitments drops expired commitments every TTL until ctx is done.
func (app *App) sweepCommitments(ctx context.Context) {
	ticker := time.NewTicker(app.config.CommitmentTTL)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := app.registry.Sweep(); n > 0 {
				app.logger.Debug(ctx, "Expired commitments dropped", "count", n)
			}
		}
	}
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startGRPCServer(ctx, cancelFunc)
	}()

	if app.config.CommitmentTTL > 0 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.sweepCommitments(ctx)
		}()
	}

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
