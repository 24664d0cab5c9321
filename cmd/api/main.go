package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ingestly/docextract/internal/app"
	"github.com/ingestly/docextract/internal/config"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg := config.Load()
	logger := app.NewLogger()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	go func() {
		if err := application.Server.Start(); err != nil {
			logger.Error("server error", "err", err)
			cancel()
		}
	}()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-c:
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := application.Server.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", "err", err)
	}
}
