package server

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"PairPulse/internal/domain/repository"
	"PairPulse/internal/usecase"
	pkgch "PairPulse/pkg/clickhouse"
	"PairPulse/pkg/config"
	xhttp "PairPulse/pkg/http"
	applogger "PairPulse/pkg/logger"
)

// App owns the full pipeline lifecycle: ingestion, persistence, broadcast
// and the HTTP surface. Run blocks until an interrupt, then shuts everything
// down in dependency order.
type App struct {
	cfg         *config.Config
	logger      *applogger.Logger
	collector   *usecase.TickCollector
	worker      *usecase.PersistenceWorker
	broadcaster *usecase.LiveBroadcaster
	stream      repository.MarketStream
	chClient    *pkgch.Client
	publisher   repository.TickPublisher
	handler     xhttp.Handler
	httpServer  *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	logger *applogger.Logger,
	collector *usecase.TickCollector,
	worker *usecase.PersistenceWorker,
	broadcaster *usecase.LiveBroadcaster,
	stream repository.MarketStream,
	chClient *pkgch.Client,
	publisher repository.TickPublisher,
	handler xhttp.Handler,
) *App {
	return &App{
		cfg:         cfg,
		logger:      logger,
		collector:   collector,
		worker:      worker,
		broadcaster: broadcaster,
		stream:      stream,
		chClient:    chClient,
		publisher:   publisher,
		handler:     handler,
	}
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		a.worker.Run(ctx)
	}()
	go func() {
		defer wg.Done()
		a.broadcaster.Run(ctx)
	}()

	a.collector.Start(ctx, a.cfg.Binance.Symbols)
	a.logger.Info("tick collection started",
		applogger.Strings("symbols", a.cfg.Binance.Symbols))

	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithHost(a.cfg.Server.Host),
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithCORS(a.cfg.Server.CORS),
	)
	if err := a.httpServer.Start(); err != nil {
		a.logger.Error("http server start error", applogger.Error(err))
		return err
	}
	a.logger.Info("http server listening", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.logger.Info("shutdown signal received")
	cancel()
	wg.Wait() // worker makes its final flush here
	a.collector.Wait()
	return a.shutdown()
}

// shutdown stops the HTTP surface and closes infrastructure clients.
func (a *App) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.logger.Error("http shutdown error", applogger.Error(err))
	}

	if err := a.stream.Close(); err != nil {
		a.logger.Warn("stream close error", applogger.Error(err))
	}
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.logger.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.logger.Info("shutdown complete")
	return nil
}
