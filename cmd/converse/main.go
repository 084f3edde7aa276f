// Command converse is a push-to-talk voice client for a speech backend.
//
// Usage:
//
//	converse [flags]
//	CONVERSE_BACKEND_URL=http://host:8000 converse [flags]
//
// Flags:
//
//	-config string      Path to YAML config file (default: .converse/config.yaml)
//	-backend string     Backend base URL (overrides config and env)
//	-transport string   Transport: http, websocket
//	-history string     Path to history file (empty disables persistence)
//	-log-file string    Path to log file (empty disables logging)
//	-log-level string   Log level: debug, info, warn, error
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fwojciec/converse"
	bt "github.com/fwojciec/converse/bubbletea"
	convjson "github.com/fwojciec/converse/json"
	convzap "github.com/fwojciec/converse/zap"
	"github.com/google/uuid"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "converse: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var f flags
	flag.StringVar(&f.config, "config", defaultConfigPath, "Path to YAML config file")
	flag.StringVar(&f.backend, "backend", "", "Backend base URL")
	flag.StringVar(&f.transport, "transport", "", "Transport: http, websocket")
	flag.StringVar(&f.history, "history", "", "Path to history file")
	flag.StringVar(&f.logFile, "log-file", "", "Path to log file")
	flag.StringVar(&f.logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.Parse()

	// Env is only read here and passed down as a value.
	cfg, err := resolveConfig(f, os.Getenv("CONVERSE_BACKEND_URL"))
	if err != nil {
		return err
	}

	logger, syncLog, err := convzap.New(cfg.Logging)
	if err != nil {
		return fmt.Errorf("logger: %w", err)
	}
	defer func() { _ = syncLog() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := wire(cfg, logger)
	if err != nil {
		return err
	}
	defer deps.close()

	history, err := loadHistory(cfg.HistoryPath, time.Now())
	if err != nil {
		return err
	}

	logger.Infow("starting", "backend", cfg.BackendURL, "transport", cfg.Transport)
	tuiModel := bt.New(deps.controller, &history, converse.DefaultTheme())
	if err := bt.Run(ctx, tuiModel); err != nil {
		return fmt.Errorf("TUI: %w", err)
	}

	if err := deps.controller.Close(); err != nil {
		logger.Warnw("close controller", "err", err)
	}

	if cfg.HistoryPath != "" && len(history.Exchanges) > 0 {
		if err := convjson.Save(cfg.HistoryPath, history); err != nil {
			return fmt.Errorf("save history: %w", err)
		}
		logger.Infow("history saved", "path", cfg.HistoryPath, "exchanges", len(history.Exchanges))
	}
	return nil
}

func loadHistory(path string, now time.Time) (converse.History, error) {
	fresh := converse.NewHistory(uuid.NewString(), now)
	if path == "" {
		return fresh, nil
	}
	h, err := convjson.LoadOrNew(path, fresh)
	if err != nil {
		return converse.History{}, fmt.Errorf("load history: %w", err)
	}
	return h, nil
}
