package main

import (
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/soocke/ghost/app"
	"github.com/soocke/ghost/config"
)

func main() {
	opts, err := parseFlags(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	}
	if err != nil {
		os.Exit(2)
	}

	// Base config from file, falling back to defaults
	cfg, err := config.Load(opts.configPath)
	level := slog.LevelInfo
	if cfg.Debug || opts.debug {
		level = slog.LevelDebug
	}
	logger := NewLogger(level)
	slog.SetDefault(logger)
	if err != nil {
		logger.Warn("config load failed, using defaults", "path", opts.configPath, "error", err)
	}
	opts.apply(cfg)
	_ = cfg.Validate()

	application, err := app.NewApp("ghost", cfg.PreviewMaxW+40, cfg.PreviewMaxH+120, cfg, opts.configPath, logger)
	if err != nil {
		logger.Error("startup failed", "error", err)
		fmt.Fprintf(os.Stderr, "ghost: %v\n", err)
		os.Exit(1)
	}
	application.Start()
}
