package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/localbite-davis/localbite/config"
	"github.com/localbite-davis/localbite/internal/adapters/dispatchstore"
	"github.com/localbite-davis/localbite/internal/adapters/httpapi"
	"github.com/localbite-davis/localbite/internal/adapters/notify"
	"github.com/localbite-davis/localbite/internal/adapters/storage"
	"github.com/localbite-davis/localbite/internal/application/agents"
	"github.com/localbite-davis/localbite/internal/application/bids"
	"github.com/localbite-davis/localbite/internal/application/dispatch"
	"github.com/localbite-davis/localbite/internal/application/feed"
	"github.com/localbite-davis/localbite/internal/ports"
	"golang.org/x/sync/errgroup"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides config)")
	table := flag.Bool("table", false, "print full auction table (default: compact 1-line)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	setupLogger(cfg.Log)

	slog.Info("localbite dispatch starting",
		"config", *configPath,
		"addr", cfg.Server.Addr,
		"dsn", cfg.Storage.DSN,
		"redis", cfg.Redis.URL != "",
	)

	store, err := storage.NewSQLiteStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var dispatchStore ports.DispatchStore
	if cfg.Redis.URL != "" {
		rds, err := dispatchstore.NewRedis(ctx, cfg.Redis.URL)
		if err != nil {
			slog.Warn("redis unavailable, using in-memory dispatch state", "err", err)
			dispatchStore = dispatchstore.NewMemory()
		} else {
			dispatchStore = rds
		}
	} else {
		dispatchStore = dispatchstore.NewMemory()
	}
	defer dispatchStore.Close()

	bidSvc := bids.NewService(store, dispatchStore, slog.Default())
	engine := dispatch.New(store, dispatchStore, bidSvc, slog.Default())
	feedSvc := feed.NewService(store, dispatchStore, slog.Default())
	agentSvc := agents.NewService(store, dispatchStore, slog.Default())

	params := dispatch.Params{
		Phase1WaitMin: cfg.Phase1WaitMin(),
		Phase1WaitMax: cfg.Phase1WaitMax(),
		Phase2Wait:    cfg.Phase2Wait(),
		PollInterval:  cfg.PollInterval(),
		RollingClose:  cfg.RollingClose(),
	}

	api := httpapi.NewServer(store, dispatchStore, bidSvc, engine, feedSvc, agentSvc, params, slog.Default())
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	reporter := notify.NewReporter(notify.NewConsole(*table), store, dispatchStore, cfg.ReportInterval())

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		if err := reporter.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("service exited with error", "err", err)
		engine.Stop()
		os.Exit(1)
	}

	engine.Stop()
	slog.Info("localbite dispatch stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
