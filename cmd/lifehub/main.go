package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/multierr"
	"tailscale.com/tsnet"

	"github.com/lifehub/lifehub/internal/config"
	"github.com/lifehub/lifehub/internal/logging"
	lhmcp "github.com/lifehub/lifehub/internal/mcp"
	"github.com/lifehub/lifehub/internal/metrics"
	"github.com/lifehub/lifehub/internal/progression"
	"github.com/lifehub/lifehub/internal/replication"
	"github.com/lifehub/lifehub/internal/server"
	"github.com/lifehub/lifehub/internal/state"
	"github.com/lifehub/lifehub/internal/storage"
	"github.com/lifehub/lifehub/internal/tracker"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	boot := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	// Load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		boot.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	log, logCloser := logging.New(cfg.Log, os.Stdout)
	log.Info("LifeHub starting", "version", Version, "storage", cfg.Storage.Driver)

	reg := metrics.SetupPrometheus()
	m := metrics.NewManager("lifehub", "server", reg)

	// Open storage
	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	kv, err := storage.Open(ctx, cfg.Storage.StorageOptions())
	if err != nil {
		log.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	log.Info("storage opened", "driver", cfg.Storage.Driver)

	vaultOpts := []state.Option{
		state.WithMetrics(m),
		state.WithHeight(cfg.Rules.HeightM),
	}

	var dispatcher *replication.Dispatcher
	if cfg.Replication.Enabled {
		client := replication.NewClient(cfg.Replication.URL, cfg.Replication.APIKey, cfg.Replication.Document, cfg.Replication.Timeout)
		dispatcher = replication.NewDispatcher(client, log, m, cfg.Replication.Timeout)
		dispatcher.Start(ctx)
		vaultOpts = append(vaultOpts, state.WithNotifier(dispatcher))
		log.Info("replication enabled", "endpoint", client.Endpoint())
	}

	vault, err := state.Open(ctx, kv, log, vaultOpts...)
	if err != nil {
		log.Error("failed to load state", "error", err)
		os.Exit(1)
	}

	engine := progression.New(vault.Profile, vault, log, progression.WithRules(cfg.Rules.Progression()))
	tr := tracker.New(engine, vault, log, m)

	if tr.CheckGraceReset(ctx) {
		log.Info("grace period counter reset")
	}
	if err := vault.Sync(); err != nil {
		log.Warn("initial replication skipped", "error", err)
	}

	// MCP over streamable HTTP
	mcpSrv := lhmcp.New(lhmcp.TrackerSource{T: tr}, Version, log)
	mcpHandler := mcpserver.NewStreamableHTTPServer(mcpSrv)

	srv := server.New(tr, cfg.Auth.APIKey, log,
		server.WithMetrics(m, reg),
		server.WithMCP(mcpHandler),
	)

	// Start server: tsnet or plain HTTP
	var listener net.Listener
	var tsServer *tsnet.Server

	if cfg.Tailscale.Enabled {
		tsServer = &tsnet.Server{
			Hostname: cfg.Tailscale.Hostname,
			Dir:      cfg.Tailscale.StateDir,
		}
		if err := tsServer.Start(); err != nil {
			log.Error("tsnet start failed", "error", err)
			os.Exit(1)
		}
		defer tsServer.Close()

		listener, err = tsServer.Listen("tcp", ":80")
		if err != nil {
			log.Error("tsnet listen failed", "error", err)
			os.Exit(1)
		}
		log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
	} else {
		addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		listener, err = net.Listen("tcp", addr)
		if err != nil {
			log.Error("listen failed", "addr", addr, "error", err)
			os.Exit(1)
		}
		log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
	}

	httpSrv := &http.Server{Handler: srv}

	go func() {
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", "signal", sig)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown error", "error", err)
	}

	var closeErr error
	if dispatcher != nil {
		closeErr = multierr.Append(closeErr, dispatcher.Close())
	}
	closeErr = multierr.Combine(closeErr, kv.Close())
	if closeErr != nil {
		log.Error("close error", "error", closeErr)
	}
	log.Info("server stopped")
	logCloser.Close()
}
