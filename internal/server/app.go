// Package server wires the application together: config, database,
// services, the draw scheduler and the HTTP API, plus graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/fairdraw/internal/logging"
	"github.com/dmitrijs2005/fairdraw/internal/server/archive"
	"github.com/dmitrijs2005/fairdraw/internal/server/config"
	"github.com/dmitrijs2005/fairdraw/internal/server/httpapi"
	"github.com/dmitrijs2005/fairdraw/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/fairdraw/internal/server/scheduler"
	"github.com/dmitrijs2005/fairdraw/internal/server/services"

	_ "github.com/jackc/pgx/v5/stdlib"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB

	giveawayService *services.GiveawayService
	proofService    *services.ProofService
	userService     *services.UserService
	adminService    *services.AdminService
	drawService     *services.DrawService
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger()

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresManager()

	if err := rm.RunMigrations(context.Background(), db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		giveawayService: services.NewGiveawayService(db, rm),
		proofService:    services.NewProofService(db, rm),
		userService:     services.NewUserService(db, rm),
		adminService:    services.NewAdminService(c),
		drawService:     services.NewDrawService(db, rm, logger),
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) startHTTPServer(ctx context.Context, cancelFunc context.CancelFunc) {

	s := httpapi.NewHTTPServer(app.config.EndpointAddrHTTP, app.logger,
		app.giveawayService, app.proofService, app.userService, app.adminService)

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		cancelFunc()
	}
}

func (app *App) startScheduler(ctx context.Context) {

	var proofArchive scheduler.ProofArchiver
	if app.config.ArchiveEnabled() {
		proofArchive = archive.NewS3Archive(app.config)
	}

	s := scheduler.New(app.drawService, app.proofService, proofArchive,
		app.config.SchedulerInterval, app.config.SchedulerBatchSize, app.logger)
	s.Run(ctx)
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
		app.startHTTPServer(ctx, cancelFunc)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		app.startScheduler(ctx)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err.Error())
	}
}
