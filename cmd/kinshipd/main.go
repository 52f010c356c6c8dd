// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command kinshipd starts the Kinship API server.
//
// Kinship serves a labeled property graph with:
//   - Merge-or-create node semantics keyed on a chosen property
//   - Breadth-first traversal queries over a text pattern language
//   - Friend-of-friend recommendations scored by mutual neighbors
//   - Optional dataset hot-reload and BadgerDB snapshot persistence
//
// Usage:
//
//	go run ./cmd/kinshipd
//	go run ./cmd/kinshipd -port 9090 -data ./graph.json -watch
//	go run ./cmd/kinshipd -config ~/.kinship/kinship.yaml
//
// Example requests:
//
//	# Health check
//	curl http://localhost:8086/v1/kinship/health
//
//	# Create a node
//	curl -X POST http://localhost:8086/v1/kinship/nodes \
//	  -H "Content-Type: application/json" \
//	  -d '{"label": "Person", "properties": {"name": "Bob"}}'
//
//	# Friend-of-friend query
//	curl -X POST http://localhost:8086/v1/kinship/query \
//	  -H "Content-Type: application/json" \
//	  -d '{"pattern": "MATCH (Person {name: \"Bob\"}) -[FRIEND]-> -[FRIEND]-> (Person)"}'
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AleutianAI/kinship/pkg/logging"
	"github.com/AleutianAI/kinship/services/kinship"
	kinshipbadger "github.com/AleutianAI/kinship/services/kinship/storage/badger"
	"github.com/AleutianAI/kinship/services/kinship/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Path to a YAML config file")
	port := flag.Int("port", 0, "Port to listen on (overrides config)")
	dataPath := flag.String("data", "", "JSON dataset to load at startup (overrides config)")
	watch := flag.Bool("watch", false, "Reload the dataset on file change")
	debug := flag.Bool("debug", false, "Enable debug mode")
	flag.Parse()

	if err := run(*configPath, *port, *dataPath, *watch, *debug); err != nil {
		fmt.Fprintf(os.Stderr, "kinshipd: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, port int, dataPath string, watch, debug bool) error {
	cfg, err := kinship.LoadConfig(configPath)
	if err != nil {
		return err
	}
	if port != 0 {
		cfg.Port = port
	}
	if dataPath != "" {
		cfg.DatasetPath = dataPath
	}
	if watch {
		cfg.WatchDataset = true
	}
	if debug {
		cfg.LogLevel = "debug"
	}

	logger := logging.New(logging.Config{
		Level:   logging.ParseLevel(cfg.LogLevel),
		LogDir:  cfg.LogDir,
		Service: "kinshipd",
	})
	defer logger.Close()

	ctx := context.Background()
	shutdownTelemetry, err := telemetry.Init(ctx, telemetry.DefaultConfig())
	if err != nil {
		return fmt.Errorf("init telemetry: %w", err)
	}
	defer shutdownTelemetry(context.Background())

	// Set Gin mode
	if debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc := kinship.NewService(cfg)

	// Snapshot persistence restores the last saved graph when no dataset
	// file is configured, and saves on shutdown either way.
	var snapshots *kinshipbadger.SnapshotStore
	if cfg.SnapshotDir != "" {
		dbCfg := kinshipbadger.DefaultConfig()
		dbCfg.Path = cfg.SnapshotDir
		dbCfg.Logger = logger.Slog()
		db, err := kinshipbadger.Open(dbCfg)
		if err != nil {
			return fmt.Errorf("open snapshot store: %w", err)
		}
		defer db.Close()

		gcStop := make(chan struct{})
		defer close(gcStop)
		go kinshipbadger.RunGC(db, dbCfg, gcStop)

		snapshots = kinshipbadger.NewSnapshotStore(db)
		if cfg.DatasetPath == "" {
			if meta, ok, err := snapshots.Meta(); err != nil {
				return fmt.Errorf("read snapshot meta: %w", err)
			} else if ok {
				g, err := snapshots.Load()
				if err != nil {
					return fmt.Errorf("restore snapshot: %w", err)
				}
				svc.Replace(g)
				logger.Info("Snapshot restored",
					"nodes", meta.NodeCount,
					"edges", meta.EdgeCount,
					"saved_at", time.UnixMilli(meta.SavedAtMilli).Format(time.RFC3339))
			}
		}
	}

	if cfg.DatasetPath != "" {
		if err := svc.LoadDataset(cfg.DatasetPath); err != nil {
			return fmt.Errorf("load dataset: %w", err)
		}
		stats := svc.Stats()
		logger.Info("Dataset loaded",
			"path", cfg.DatasetPath,
			"nodes", stats.Nodes,
			"edges", stats.Edges)

		if cfg.WatchDataset {
			watcher, err := kinship.NewDatasetWatcher(svc, cfg.DatasetPath)
			if err != nil {
				return fmt.Errorf("create dataset watcher: %w", err)
			}
			if err := watcher.Start(ctx); err != nil {
				return fmt.Errorf("start dataset watcher: %w", err)
			}
			defer watcher.Stop()
		}
	}

	// Setup router
	router := gin.New()
	router.Use(gin.Recovery())
	if debug {
		router.Use(gin.Logger())
	}

	handlers := kinship.NewHandlers(svc)
	v1 := router.Group("/v1")
	kinship.RegisterRoutes(v1, handlers)
	router.GET("/metrics", gin.WrapH(telemetry.MetricsHandler()))

	printBanner(cfg.Port)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Port),
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting Kinship server", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case sig := <-quit:
		logger.Info("Shutting down Kinship server", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}

	if snapshots != nil {
		if err := snapshots.Save(svc.Graph()); err != nil {
			return fmt.Errorf("save snapshot: %w", err)
		}
		stats := svc.Stats()
		logger.Info("Snapshot saved", "nodes", stats.Nodes, "edges", stats.Edges)
	}
	return nil
}

func printBanner(port int) {
	banner := `
╔═══════════════════════════════════════════════════════════════════╗
║                        KINSHIP SERVER                             ║
╠═══════════════════════════════════════════════════════════════════╣
║                                                                   ║
║  Friend-of-friend graph traversal and recommendations.           ║
║                                                                   ║
║  Quick Start:                                                     ║
║  ┌─────────────────────────────────────────────────────────────┐  ║
║  │ # Health check                                              │  ║
║  │ curl http://localhost:%d/v1/kinship/health                │  ║
║  │                                                             │  ║
║  │ # Create a node                                             │  ║
║  │ curl -X POST http://localhost:%d/v1/kinship/nodes \       │  ║
║  │   -H "Content-Type: application/json" \                     │  ║
║  │   -d '{"label": "Person", "properties": {"name": "Bob"}}'   │  ║
║  │                                                             │  ║
║  │ # Friend-of-friend query                                    │  ║
║  │ curl -X POST http://localhost:%d/v1/kinship/query \       │  ║
║  │   -d '{"pattern": "MATCH (Person {name: \"Bob\"})           │  ║
║  │        -[FRIEND]-> -[FRIEND]-> (Person)"}'                  │  ║
║  └─────────────────────────────────────────────────────────────┘  ║
║                                                                   ║
║  Endpoints:                                                       ║
║  ├── Graph: /nodes, /nodes/:id, /nodes/:id/neighbors, /edges     ║
║  ├── Query: /query, /recommendations                             ║
║  └── Ops:   /stats, /health, /ready, /metrics                    ║
║                                                                   ║
║  Press Ctrl+C to stop                                             ║
╚═══════════════════════════════════════════════════════════════════╝
`
	fmt.Printf(banner, port, port, port)
}
