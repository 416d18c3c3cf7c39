package app

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/santiagotarnoski/qrsplit/internal/config"
	"github.com/santiagotarnoski/qrsplit/internal/handlers"
	"github.com/santiagotarnoski/qrsplit/internal/ledger"
	"github.com/santiagotarnoski/qrsplit/internal/pg"
	"github.com/santiagotarnoski/qrsplit/internal/repo"
	"github.com/santiagotarnoski/qrsplit/internal/service"
	"github.com/santiagotarnoski/qrsplit/pkg/clients"
	"github.com/santiagotarnoski/qrsplit/pkg/logger"
)

const (
	sweepInterval = 5 * time.Minute
	idleThreshold = 30 * time.Minute
)

type ApplicationI interface {
	Start(ctx context.Context) error
	Wait(ctx context.Context, cancel context.CancelFunc) error
}

type Application struct {
	cfg  *config.Config
	api  *handlers.Handlers
	srv  *service.Services
	repo *repo.Repositories

	errCh chan error
	wg    sync.WaitGroup
	ready bool
}

func New() *Application {
	return &Application{
		errCh: make(chan error),
	}
}

func (a *Application) Start(ctx context.Context) error {
	cfg := config.New()

	err := logger.InitLogger(cfg)
	if err != nil {
		return fmt.Errorf("can't init logger: %w", err)
	}

	pool, err := getPgxpool(ctx, cfg)
	if err != nil {
		zap.L().Error("build pgx pool failed: ", zap.Error(err))
		return fmt.Errorf("can't build pgx pool: %w", err)
	}
	if err := pg.RunMigrations(pool); err != nil {
		zap.L().Error("migrations failed: ", zap.Error(err))
		return fmt.Errorf("can't run migrations: %w", err)
	}
	txManager := pg.NewTXManager(pool)

	conn := pg.New(pool)
	a.cfg = cfg
	a.repo = repo.New(conn, txManager)
	a.srv = service.New(a.repo, txManager, newLedger(cfg), cfg.TokenAddress)
	a.api = handlers.New(a.srv, cfg.FrontendURL)

	if err = a.startHTTPServer(ctx); err != nil {
		return fmt.Errorf("can't start http server: %w", err)
	}

	a.startHubSweeper(ctx)

	a.ready = true
	zap.L().Info("all systems started successfully")
	return nil
}

func newLedger(cfg *config.Config) ledger.Ledger {
	if cfg.LedgerAddress == "" {
		zap.L().Info("no ledger address configured, running with mock ledger")
		return ledger.NewMock()
	}
	return ledger.NewClient(cfg.LedgerAddress, clients.NewHTTPClient())
}

func getPgxpool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	cfgpool, err := pgxpool.ParseConfig(cfg.Database)
	if err != nil {
		return nil, err
	}
	dbpool, err := pgxpool.NewWithConfig(ctx, cfgpool)
	if err != nil {
		return nil, err
	}
	if err = dbpool.Ping(ctx); err != nil {
		return nil, err
	}
	return dbpool, nil
}

func (a *Application) startHTTPServer(ctx context.Context) error {
	router := chi.NewRouter()
	a.api.InitRoutes(router)

	corsMiddleware := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.Origins(),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	server := http.Server{
		Addr:    a.cfg.Address,
		Handler: corsMiddleware.Handler(router),
	}
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		<-ctx.Done()

		a.srv.RealtimeService.Hub().Shutdown()

		sCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(sCtx)
	}()

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		zap.L().Info("starting http server on port", zap.String("port", a.cfg.Address))
		if err := server.ListenAndServe(); err != nil {
			a.errCh <- fmt.Errorf("http server exited with error: %w", err)
		}
	}()

	return nil
}

func (a *Application) startHubSweeper(ctx context.Context) {
	a.srv.RealtimeService.Hub().StartSweeper(ctx, sweepInterval, idleThreshold)
}

func (a *Application) Wait(ctx context.Context, cancel context.CancelFunc) error {
	var appErr error

	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()

		for err := range a.errCh {
			cancel()
			zap.L().Error(err.Error())
			appErr = err
		}
	}()

	<-ctx.Done()
	a.wg.Wait()
	close(a.errCh)
	wg.Wait()

	return appErr
}
