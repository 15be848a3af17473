package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"unsent/internal/archive"
	"unsent/internal/auth"
	"unsent/internal/config"
	"unsent/internal/db"
	httpx "unsent/internal/http"
	"unsent/internal/jobs"
	"unsent/internal/kv"
	"unsent/internal/logging"
	"unsent/internal/message"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)
	slog.SetDefault(log)

	store, err := openStore(cfg)
	if err != nil {
		log.Error("open_store_failed", "backend", cfg.StoreBackend, "err", err)
		os.Exit(1)
	}
	defer store.Close()

	repo := &message.Repo{KV: store}
	svc := &archive.Service{Repo: repo, Log: log, MaxTextLength: cfg.MaxTextLength}

	var verifier auth.Verifier = auth.StaticKey(cfg.AnonKey)
	if cfg.JWTSecret != "" {
		verifier = auth.AnyOf{verifier, auth.NewJWT(cfg.JWTSecret)}
	}
	r := httpx.NewRouter(cfg, svc, verifier, log)

	// worker
	worker := &jobs.StatsWorker{Repo: repo, Interval: cfg.StatsInterval, Log: log}

	ctx, cancel := context.WithCancel(context.Background())
	go worker.Run(ctx)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		log.Info("listening", "addr", cfg.HTTPAddr, "prefix", cfg.RoutePrefix, "backend", cfg.StoreBackend)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("listen_failed", "err", err)
			os.Exit(1)
		}
	}()

	// graceful shutdown
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	<-ch

	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	_ = srv.Shutdown(shutdownCtx)
	log.Info("stopped")
}

func openStore(cfg config.Config) (kv.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendPebble:
		return kv.OpenPebble(cfg.PebblePath)
	case config.BackendPostgres:
		gdb, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.AutoMigrate(gdb, cfg.KVTable); err != nil {
			return nil, err
		}
		return kv.NewPostgres(gdb, cfg.KVTable), nil
	default:
		return kv.NewMemory(), nil
	}
}
