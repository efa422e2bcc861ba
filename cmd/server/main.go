package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/konnekonnekonne/Little-Helpers/internal/api"
	"github.com/konnekonnekonne/Little-Helpers/internal/auth"
	"github.com/konnekonnekonne/Little-Helpers/internal/clock"
	"github.com/konnekonnekonne/Little-Helpers/internal/config"
	"github.com/konnekonnekonne/Little-Helpers/internal/convert"
	"github.com/konnekonnekonne/Little-Helpers/internal/countdown"
	"github.com/konnekonnekonne/Little-Helpers/internal/ledger"
	"github.com/konnekonnekonne/Little-Helpers/internal/middleware"
	"github.com/konnekonnekonne/Little-Helpers/internal/rates"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage"
	"github.com/konnekonnekonne/Little-Helpers/internal/storage/sqlite"
	"github.com/konnekonnekonne/Little-Helpers/internal/timer"
	"github.com/konnekonnekonne/Little-Helpers/internal/todo"
	"github.com/konnekonnekonne/Little-Helpers/pkg/logging"
)

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	if err := cfg.Validate(); err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}

	if err := run(cfg); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var store storage.Store
	if cfg.Backend == "memory" {
		store = storage.NewMemory()
	} else {
		s, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return fmt.Errorf("failed to initialize storage: %w", err)
		}
		store = s
	}
	defer store.Close()
	slog.Info("Storage initialized", "backend", cfg.Backend, "path", cfg.DBPath)

	clk := clock.System{}

	// Services. A load failure is logged and the service starts empty;
	// nothing here is fatal.
	expenses, err := ledger.New(store, clk)
	warnOnLoad("projects", err)
	todos, err := todo.New(store, clk)
	warnOnLoad("todo items", err)
	countdowns, err := countdown.New(store, clk)
	warnOnLoad("countdown events", err)
	presets, err := timer.NewPresets(store)
	warnOnLoad("timer presets", err)

	rateOpts := []rates.Option{rates.WithTTL(cfg.RatesTTL)}
	if cfg.RatesURL != "" {
		rateOpts = append(rateOpts, rates.WithURL(cfg.RatesURL))
	}

	server := &api.Server{
		Ledger:     expenses,
		Todos:      todos,
		Countdowns: countdowns,
		Presets:    presets,
		Converter:  convert.New(),
		Rates:      rates.New(store, clk, rateOpts...),
		Clock:      clk,
	}

	if cfg.AccessPassword != "" {
		gate, err := auth.NewGate(cfg.AccessPassword)
		if err != nil {
			return fmt.Errorf("failed to set up access gate: %w", err)
		}
		server.Gate = gate
		server.JWT = auth.NewJWTManager(cfg.JWTSecret, cfg.TokenTTL)
		slog.Info("API protection enabled")
	}

	mux := http.NewServeMux()
	server.Routes(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	handler := middleware.RequireAuth(server.JWT, "/api/v1/login", "/healthz", "/metrics")(mux)
	handler = middleware.Metrics(mux)(handler)
	handler = middleware.CORS(handler)
	handler = middleware.Logging(handler)

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: h2c.NewHandler(handler, &http2.Server{}),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Server starting", "address", httpServer.Addr)
		if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		todos.RunSweeper(gctx, cfg.SweepInterval)
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func warnOnLoad(what string, err error) {
	if err != nil {
		slog.Warn("Starting with empty state", "service", what, "error", err)
	}
}
