package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/ethanolivertroy/saa-tui/internal/server"
)

// RunServe runs the A2A server until SIGINT or SIGTERM
func RunServe(ctx context.Context, cfg server.A2AConfig) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.RunA2AServer(ctx, cfg)
}
