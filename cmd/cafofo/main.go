// ABOUTME: Entry point for the cafofo journal CLI
// ABOUTME: Builds the cobra command tree and runs it with signal cancellation

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"

	"github.com/2389/cafofo/internal/config"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := New().ExecuteContext(ctx); err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}
