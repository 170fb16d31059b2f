package main

import (
	"flag"
	"log/slog"
	"os"

	mcpserver "github.com/mark3labs/mcp-go/server"

	lhmcp "github.com/lifehub/lifehub/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	remote := flag.String("url", envOr("LIFEHUB_URL", "http://127.0.0.1:8080"), "base URL of a running lifehub server")
	flag.Parse()

	// stdout carries the MCP protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	log.Info("LifeHub MCP starting", "version", Version, "remote", *remote)

	srv := lhmcp.New(lhmcp.NewHTTPClient(*remote), Version, log)
	if err := mcpserver.ServeStdio(srv); err != nil {
		log.Error("serve MCP", "error", err)
		os.Exit(1)
	}
}

func envOr(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}
