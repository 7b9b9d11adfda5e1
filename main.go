// sera-tui - A terminal interface for the Hey Sera document assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/jeranaias/sera-tui/internal/backend"
	"github.com/jeranaias/sera-tui/internal/config"
	"github.com/jeranaias/sera-tui/internal/server"
	"github.com/jeranaias/sera-tui/internal/ui/chat"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func main() {
	var (
		serve       = flag.Bool("serve", false, "run the built-in stub backend instead of the TUI")
		port        = flag.Int("port", server.DefaultPort, "port for --serve")
		backendURL  = flag.String("backend", "", "backend base URL (overrides config)")
		verbose     = flag.Bool("verbose", false, "log API requests")
		showVersion = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("sera-tui %s (%s, built %s)\n", Version, GitCommit, BuildDate)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if *backendURL != "" {
		cfg.Backend.URL = *backendURL
	}
	if *verbose {
		cfg.Backend.Verbose = true
	}
	config.SetGlobal(cfg)

	if *serve {
		runServer(*port)
		return
	}
	runTUI(cfg)
}

// runServer runs the stub backend until interrupted.
func runServer(port int) {
	srv := server.NewServer(port)

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-done
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	if err := srv.Start(); err != nil && err.Error() != "http: Server closed" {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// runTUI starts the chat interface.
func runTUI(cfg *config.Config) {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: sera-tui requires an interactive terminal")
		os.Exit(1)
	}

	// The terminal owns stdout; logs go to a file under ~/.sera.
	cleanup := setupLogging()
	defer cleanup()

	client := backend.NewClient(cfg.Backend.URL).WithVerbose(cfg.Backend.Verbose)

	// Hot-reload the config file so backend URL changes apply to the
	// next round trip without a restart.
	if path, err := config.Path(); err == nil {
		watcher, err := config.NewWatcher(path, func(next *config.Config) {
			client.SetBaseURL(next.Backend.URL)
		})
		if err == nil {
			defer watcher.Close()
		}
	}

	m := chat.New(cfg, client)

	p := tea.NewProgram(
		m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setupLogging redirects the standard logger to ~/.sera/sera-tui.log and
// returns a cleanup func. Logging is best effort; failures fall back to
// discarding output so the TUI never fights over the terminal.
func setupLogging() func() {
	dir, err := config.Dir()
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	f, err := os.OpenFile(filepath.Join(dir, "sera-tui.log"),
		os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(io.Discard)
		return func() {}
	}
	log.SetOutput(f)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	return func() { f.Close() }
}
