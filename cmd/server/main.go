// Vitrine - Digital Signage Scheduling and Display Control
// Copyright 2026 Vitrine Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/vitrine-io/vitrine

// Package main is the entry point for the Vitrine server.
//
// Vitrine is a self-hosted digital signage control plane. Admins manage
// displays, playlists, and cron-scheduled playlist rotations over a
// REST API; viewer devices hold a websocket open and receive their
// content pushes in real time.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional YAML file, VITRINE_* environment
//  2. Logging: zerolog, JSON or console format
//  3. Badger: single-file catalog document plus the media path index
//  4. Store and change bus: catalog state and fan-out
//  5. Scheduler: resolves every schedule before the listener opens
//  6. HTTP surface: admin API, media, viewer page, websocket, metrics
//
// Shutdown on SIGINT or SIGTERM stops the supervisor tree, which
// closes viewer connections and drains in-flight requests.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/vitrine-io/vitrine/internal/api"
	"github.com/vitrine-io/vitrine/internal/bus"
	"github.com/vitrine-io/vitrine/internal/config"
	"github.com/vitrine-io/vitrine/internal/files"
	"github.com/vitrine-io/vitrine/internal/logging"
	"github.com/vitrine-io/vitrine/internal/scheduler"
	"github.com/vitrine-io/vitrine/internal/store"
	"github.com/vitrine-io/vitrine/internal/supervisor"
	"github.com/vitrine-io/vitrine/internal/viewer"
	"github.com/vitrine-io/vitrine/internal/websocket"
)

// schedulerReadyTimeout bounds how long startup waits for the first
// schedule resolution before serving traffic anyway.
const schedulerReadyTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "vitrine:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logging.Init(logging.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Caller: cfg.Log.Caller,
	})
	log := logging.WithComponent("main")
	log.Info().Str("address", cfg.Address).Msg("Starting vitrine")

	db, err := badger.Open(badger.DefaultOptions(cfg.DataDir).WithLogger(nil))
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("Closing database failed")
		}
	}()

	changeBus := bus.New()
	catalog, err := store.Open(db, changeBus)
	if err != nil {
		return err
	}

	media, err := files.New(db, cfg.MediaDir)
	if err != nil {
		return err
	}

	registry := websocket.NewRegistry()
	wsHandler := websocket.NewHandler(catalog, changeBus, registry, viewer.AssetHash(), websocket.Options{
		PingInterval: cfg.Heartbeat.PingInterval,
		PongWindow:   cfg.Heartbeat.PongWindow,
		ReadWait:     cfg.Heartbeat.ReadWait,
	})

	sched := scheduler.New(catalog, changeBus)

	router := api.NewRouter(api.Deps{
		Store:             catalog,
		WS:                wsHandler,
		Files:             media,
		Viewer:            viewer.Handler(),
		RequestsPerMinute: cfg.API.RateLimitPerMinute,
	})

	tree := supervisor.NewTree(supervisor.DefaultTreeConfig())
	tree.Add(sched)
	tree.Add(registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	treeErr := make(chan error, 1)
	go func() {
		treeErr <- tree.Serve(ctx)
	}()

	// Viewers must never see a stale active playlist from the previous
	// run, so the listener opens only after the first resolution.
	select {
	case <-sched.Ready():
		log.Info().Msg("Schedules resolved, serving")
	case <-time.After(schedulerReadyTimeout):
		log.Warn().Msg("Scheduler not ready in time, serving anyway")
	case <-ctx.Done():
	}
	tree.Add(supervisor.NewHTTPService(cfg.Address, router))

	err = <-treeErr
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info().Msg("Shutdown complete")
	return nil
}
