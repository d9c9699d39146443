package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/infrastructure/config"
	"github.com/reglet-dev/rxforge/internal/infrastructure/container"
)

// CommandContext provides common command dependencies.
type CommandContext struct {
	Container *container.Container
	Logger    *slog.Logger
	Context   context.Context
}

// CommandHandler is a function that executes with initialized dependencies.
type CommandHandler func(*CommandContext, *cobra.Command, []string) error

// withContainer wraps a command handler with container initialization.
// The container reads the same config file as viper; profile toggles come
// from viper so that environment overrides apply. The container is closed
// after the handler returns, flushing metrics.
func withContainer(opts *rootOptions, handler CommandHandler) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		c, err := container.New(container.Options{
			SystemConfigPath: opts.cfgFile,
			LogWriter:        cmd.ErrOrStderr(),
			LogLevel:         opts.logLevel(),
			Toggles:          config.NewViperToggleSource(opts.v),
		})
		if err != nil {
			return fmt.Errorf("failed to initialize application: %w", err)
		}
		defer func() {
			if err := c.Close(); err != nil {
				c.Logger().Warn("failed to close application", "error", err)
			}
		}()

		ctx := &CommandContext{
			Container: c,
			Logger:    c.Logger(),
			Context:   cmd.Context(),
		}
		if ctx.Context == nil {
			ctx.Context = context.Background()
		}

		return handler(ctx, cmd, args)
	}
}
