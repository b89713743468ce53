package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openauction/marketsim/internal/client"
	"github.com/openauction/marketsim/internal/config"
	"github.com/openauction/marketsim/internal/domain"
	"github.com/openauction/marketsim/internal/engine"
	"github.com/openauction/marketsim/internal/handler"
	"github.com/openauction/marketsim/internal/service"
	"github.com/openauction/marketsim/internal/store"
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
		os.Exit(0)
	}

	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Set up slog logger with configured level.
	var logLevel slog.Level
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	openingPrice, err := domain.DollarsToCents(cfg.OpeningPrice)
	if err != nil {
		logger.Error("invalid opening price", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Exchange and clients. Noise traders share one seeded source so a
	// fixed SEED reproduces the same order flow.
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	rng := rand.New(rand.NewSource(seed))

	exchange := engine.NewExchange(openingPrice)
	for i := 0; i < cfg.Traders; i++ {
		exchange.Register(client.NewNoiseTrader(cfg.TraderQuantity, client.RandomSide(rng)))
	}
	exchange.Register(client.NewMarketMaker(cfg.MakerQuantity, cfg.MakerMargin))

	tradeLog := store.NewTradeLog()
	sim := service.NewSimulation(exchange, tradeLog, logger)

	// Router.
	router := handler.NewRouter(sim, logger)

	// Start the round loop with a cancellable context.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		logger.Info("simulation starting",
			slog.Int64("seed", seed),
			slog.Float64("opening_price", cfg.OpeningPrice),
			slog.Int("traders", cfg.Traders),
		)
		sim.Run(ctx, cfg.RoundInterval, cfg.Rounds)
	}()

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
		logger.Info("server starting", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	// Wait for SIGINT/SIGTERM.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh
	logger.Info("shutdown signal received", slog.String("signal", sig.String()))

	// Graceful shutdown: stop HTTP server, cancel context (stops the round loop).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
	}
	cancel()

	logger.Info("server stopped")
}
