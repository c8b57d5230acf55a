package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"vodkeep/internal/config"
	"vodkeep/internal/daemon"
	"vodkeep/internal/logging"
	"vodkeep/internal/version"
)

func run(configPath string, showVersion bool) error {
	if showVersion {
		fmt.Println("vodkeepd", version.Version)
		return nil
	}

	cfg, resolvedPath, exists, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Outputs: []string{
			"stdout",
			filepath.Join(cfg.Paths.LogDir, "vodkeepd.log"),
		},
	})
	if err != nil {
		return fmt.Errorf("initialize logging: %w", err)
	}

	if exists {
		logger.Info("configuration loaded", logging.String("path", resolvedPath))
	} else {
		logger.Info("no config file found, using defaults", logging.String("searched", resolvedPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	d := daemon.New(cfg, logger)
	if err := d.Start(ctx); err != nil {
		return err
	}
	defer d.Stop()

	return d.Wait(ctx)
}
