package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"github.com/CarlosNazario2010/carteira-investimentos/internal/cache"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/config"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/handler"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/ledger"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/logger"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/quote"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/scheduler"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/service"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/store"
	"github.com/CarlosNazario2010/carteira-investimentos/internal/store/sqlite"
)

func main() {
	healthcheck := flag.Bool("healthcheck", false, "Run health check against running server")
	flag.Parse()

	// Handle -healthcheck flag: HTTP GET to localhost:PORT/healthz, exit 0/1.
	if *healthcheck {
		port := os.Getenv("PORT")
		if port == "" {
			port = "8080"
		}
		resp, err := http.Get(fmt.Sprintf("http://localhost:%s/healthz", port))
		if err != nil || resp.StatusCode != http.StatusOK {
			os.Exit(1)
		}
		resp.Body.Close()
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})

	// Instantiate stores.
	var (
		clientRepo    service.ClientRepository
		portfolioRepo ledger.Repository
	)
	switch cfg.StorageDriver {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("failed to open database")
		}
		defer db.Close()
		clientRepo = sqlite.NewClientStore(db)
		portfolioRepo = sqlite.NewPortfolioStore(db)
	default:
		clientRepo = store.NewClientStore()
		portfolioRepo = store.NewPortfolioStore()
	}
	log.Info().Str("driver", cfg.StorageDriver).Msg("storage ready")

	// Market data and snapshot cache.
	quotes := quote.NewBrapiClient(cfg.QuoteBaseURL, cfg.QuoteAPIKey, cfg.QuoteTimeout, log)
	snapshots := cache.NewSnapshotCache(cfg.CacheTTL, log)

	// Services.
	clientSvc := service.NewClientService(clientRepo, log)
	l := ledger.New(portfolioRepo, clientRepo, quotes, snapshots, cfg.QuoteTimeout, log)

	// Background jobs.
	sched := scheduler.New(log)
	if err := sched.AddJob(cfg.CacheSweepSchedule, cache.NewSweepJob(snapshots, log)); err != nil {
		log.Fatal().Err(err).Msg("failed to schedule cache sweep")
	}
	sched.Start()

	// Router.
	router := handler.NewRouter(clientSvc, l, log)

	// Configure HTTP server.
	addr := fmt.Sprintf(":%d", cfg.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	// Start HTTP server in a goroutine.
	go func() {
		log.Info().Str("addr", addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	waitForShutdown(log)

	// Graceful shutdown: stop HTTP server, then background jobs.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}
	sched.Stop()

	log.Info().Msg("server stopped")
}

// waitForShutdown blocks until SIGINT or SIGTERM is received.
func waitForShutdown(log zerolog.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	log.Info().Str("signal", sig.String()).Msg("shutdown signal received")
}
