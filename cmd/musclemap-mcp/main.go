// Command musclemap-mcp serves the MuscleMap MCP tools over stdio, reading
// data from a remote MuscleMap server's REST API.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/claude/musclemap/internal/heatmap"
	"github.com/claude/musclemap/internal/mcp"
)

// Version is set at build time via -ldflags.
var Version = "dev"

func main() {
	serverURL := flag.String("server", os.Getenv("MUSCLEMAP_URL"), "MuscleMap server URL (default $MUSCLEMAP_URL)")
	version := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *version {
		fmt.Println("musclemap-mcp", Version)
		return
	}

	// stdout carries the protocol.
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if *serverURL == "" {
		fmt.Fprintf(os.Stderr, "Usage: musclemap-mcp -server <URL>\n")
		os.Exit(1)
	}

	ds := mcp.NewHTTPClient(*serverURL)
	engine, err := heatmap.NewEngine(ds, 0)
	if err != nil {
		log.Error("failed to create heatmap engine", "error", err)
		os.Exit(1)
	}

	s := mcp.New(ds, engine, heatmap.DefaultWindows, Version, log)
	log.Info("serving MCP over stdio", "server", *serverURL)
	if err := server.ServeStdio(s); err != nil {
		log.Error("stdio server error", "error", err)
		os.Exit(1)
	}
}
