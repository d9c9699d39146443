// Package main provides the rxforge CLI for building and validating
// e-prescription documents.
package main

import (
	"log/slog"
	"os"
)

func main() {
	// Setup structured logging until the root command knows --verbose
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	Execute()
}
