package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/GavinMontross/CPH-CRC-Scanner/internal/batch"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/config"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/daemon"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/export"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/history"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/logging"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/lookup"
	"github.com/GavinMontross/CPH-CRC-Scanner/internal/notifications"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	hist, err := history.Open(cfg)
	if err != nil {
		logger.Error("open export history", logging.Error(err))
		hist = nil
	}

	store := batch.NewStore(cfg, logger)
	resolver := lookup.NewResolver(cfg, logger)
	finalizer := export.NewFinalizer(cfg, store, hist, logger)
	notifier := notifications.NewService(cfg)

	d, err := daemon.New(cfg, store, resolver, finalizer, hist, notifier, logger)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	if err := d.Start(ctx); err != nil {
		logger.Error("daemon start", logging.Error(err))
		return
	}

	<-ctx.Done()
	logger.Info("crcscand shutting down")
}
