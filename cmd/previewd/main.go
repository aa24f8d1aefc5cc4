// previewd serves a pre-built directory of static assets over HTTP for
// local single-page-app development.
//
// Usage:
//
//	previewd [port]
//
// Default port: 8000
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"previewd/internal/config"
	"previewd/internal/server"
)

func main() {
	// 1. Environment (.env is optional)
	_ = godotenv.Load()

	// 2. Configuration
	cfg, err := config.Load(".", "previewd")
	if err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		os.Exit(1)
	}

	// 3. Port argument. Must be rejected before any socket is opened.
	port, err := parsePortArg(os.Args, cfg.Server.Port)
	if err != nil {
		fmt.Printf("Invalid port number: %s\n", os.Args[1])
		os.Exit(1)
	}
	cfg.Server.Port = port

	// 4. Logger
	logger := newLogger(cfg.Log)
	slog.SetDefault(logger)

	// 5. Root directory, resolved once before the listener exists
	root, err := resolveRoot(cfg.Static.Root)
	if err != nil {
		fmt.Printf("Failed to resolve serve directory: %v\n", err)
		os.Exit(1)
	}

	// 6. Router and server
	router := server.NewRouter(server.NewRouterConfig(cfg, root, logger))

	srv := server.NewServer(&server.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            strconv.Itoa(cfg.Server.Port),
		ReadTimeout:     cfg.Server.ReadTimeout,
		WriteTimeout:    cfg.Server.WriteTimeout,
		IdleTimeout:     cfg.Server.IdleTimeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		Logger:          logger,
	}, router)

	// 7. Bind before the banner: a taken port must fail before any
	// success output reaches the user.
	if err := srv.Listen(); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}

	// 8. Banner
	fmt.Printf("%s development server\n", cfg.App.Name)
	fmt.Printf("Serving at http://localhost:%d\n", cfg.Server.Port)
	fmt.Printf("Directory: %s\n", root)
	fmt.Println("Press Ctrl+C to stop the server")
	fmt.Println(strings.Repeat("-", 50))

	// 9. Serve until interrupted
	if err := srv.Run(); err != nil {
		fmt.Printf("Server error: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("\nShutting down server...")
}

// parsePortArg returns the port from the first positional argument, or
// def when no argument was given. A non-integer value is an error; the
// caller reports it and exits before any socket is opened.
func parsePortArg(args []string, def int) (int, error) {
	if len(args) < 2 {
		return def, nil
	}

	port, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid port number: %q", args[1])
	}
	return port, nil
}

// resolveRoot returns the absolute directory to serve from. An empty
// configured root falls back to the directory containing the executable,
// so the tool serves its own deployment directory by default.
func resolveRoot(configured string) (string, error) {
	if configured != "" {
		return filepath.Abs(configured)
	}

	exe, err := os.Executable()
	if err != nil {
		return os.Getwd()
	}
	return filepath.Dir(exe), nil
}

// newLogger builds the process logger from the log configuration.
func newLogger(cfg config.LogConfig) *slog.Logger {
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

	return slog.New(handler)
}
