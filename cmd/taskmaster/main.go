package main

import (
	"context"
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"taskmaster/internal/app"
	"taskmaster/internal/config"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger := app.NewLogger(cfg)
	// Keep the terminal for command output unless debugging
	if !cfg.Debug {
		logger.SetLevel(log.WarnLevel)
	}

	ctx := context.Background()
	a, err := app.Open(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("Failed to initialize storage: %v", err)
	}
	defer a.Close()

	c := &cli{engine: a.Engine, out: os.Stdout, in: os.Stdin}
	if err := c.run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.Close()
		os.Exit(1)
	}
}
