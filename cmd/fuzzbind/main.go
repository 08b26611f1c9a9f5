// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/fuzzbin/fuzzbin/internal/config"
	"github.com/fuzzbin/fuzzbin/internal/lifecycle"
	xglog "github.com/fuzzbin/fuzzbin/internal/log"
	"github.com/fuzzbin/fuzzbin/internal/metaclient"
	"github.com/fuzzbin/fuzzbin/internal/store"
)

var (
	version   = "v0.1.0"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	configPath := flag.String("config", "", "path to config file (YAML)")
	listenAddr := flag.String("listen", ":8099", "health/metrics listen address")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s (commit: %s, built: %s)\n", version, commit, buildDate)
		return
	}

	xglog.Configure(xglog.Config{Level: "info", Service: "fuzzbind", Version: version})
	logger := xglog.WithComponent("daemon")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	effectiveConfigPath := *configPath
	if effectiveConfigPath == "" {
		effectiveConfigPath = filepath.Join(config.Defaults().ConfigDir, "config.yaml")
	}

	loader := config.NewLoader(effectiveConfigPath)
	cfg, err := loader.Load()
	if err != nil {
		logger.Fatal().Err(err).Str("path", effectiveConfigPath).Msg("failed to load configuration")
	}
	xglog.Configure(xglog.Config{Level: cfg.Logging.Level, Service: "fuzzbind", Version: version})

	holder := config.NewHolder(cfg, loader)
	if err := holder.StartWatcher(ctx, effectiveConfigPath); err != nil {
		logger.Warn().Err(err).Msg("config hot-reload watcher disabled")
	}
	defer holder.Stop()

	dbPath := filepath.Join(cfg.ConfigDir, "fuzzbin.db")
	db, err := store.Open(ctx, dbPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", dbPath).Msg("failed to open library store")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing library store")
		}
	}()

	metaClients := map[string]*metaclient.Base{}
	for name := range metaclient.KnownEndpoints {
		c, err := metaclient.NewFromConfig(cfg, name)
		if err != nil {
			logger.Warn().Err(err).Str("service", name).Msg("metadata client unavailable")
			continue
		}
		metaClients[name] = c
	}
	logger.Info().Int("clients", len(metaClients)).Msg("metadata clients ready")
	defer func() {
		for name, c := range metaClients {
			if err := c.Close(); err != nil {
				logger.Error().Err(err).Str("service", name).Msg("error closing metadata client cache")
			}
		}
	}()

	_ = lifecycle.New(db)

	router := chi.NewRouter()
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	router.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              *listenAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", *listenAddr).Msg("health/metrics server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("health/metrics server failed")
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
