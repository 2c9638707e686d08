// Command thoughts-static serves the bundled thoughts fixture read-only.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/technigo/happy-thoughts-api/config"
	"github.com/technigo/happy-thoughts-api/fixture"
	"github.com/technigo/happy-thoughts-api/internal/server"
	"github.com/technigo/happy-thoughts-api/static"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	logger := cfg.Logger()

	thoughts, err := fixture.Load()
	if err != nil {
		return err
	}
	logger.Info("Loaded fixture", "count", len(thoughts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, logger, cfg.Addr(), static.New(logger, thoughts))
}
