package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ingestly/docextract/internal/app"
	"github.com/ingestly/docextract/internal/config"
	"github.com/ingestly/docextract/internal/storage"
)

func usage() {
	fmt.Fprintf(os.Stderr, "usage: %s <file-or-s3-uri> [more...]\n", os.Args[0])
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}
	inputs := os.Args[1:]

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		c := make(chan os.Signal, 1)
		signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
		<-c
		cancel()
	}()

	cfg := config.Load()
	logger := app.NewLogger()

	application, err := app.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("startup failed: %v", err)
	}
	defer application.Close()

	if application.Fetcher != nil {
		locals, cleanup, err := storage.Prefetch(ctx, application.Fetcher, inputs)
		if err != nil {
			log.Fatalf("fetch remote inputs: %v", err)
		}
		defer cleanup()
		inputs = locals
	}

	results := application.Router.Run(ctx, inputs)

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(results); err != nil {
		log.Fatalf("encode results: %v", err)
	}
}
