package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/version"
)

// OutputOptions contains the output flags shared by reporting commands.
type OutputOptions struct {
	Format  string
	Output  string
	NoColor bool
}

// RegisterFlags adds the output flags to a cobra command.
func (opts *OutputOptions) RegisterFlags(cmd *cobra.Command, formats []string) {
	if opts.Format == "" {
		opts.Format = "table"
	}
	cmd.Flags().StringVar(&opts.Format, "format", opts.Format,
		"Output format: "+strings.Join(formats, ", "))
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored table output")
}

// ValidateFlags checks the format against the supported ones.
func (opts *OutputOptions) ValidateFlags(formats []string) error {
	if !slices.Contains(formats, opts.Format) {
		return fmt.Errorf("invalid format: %s (valid: %s)", opts.Format, strings.Join(formats, ", "))
	}
	return nil
}

// FormatterOptions derives the formatter options for the flags.
func (opts *OutputOptions) FormatterOptions() ports.FormatterOptions {
	return ports.FormatterOptions{
		Indent:      true,
		NoColor:     opts.NoColor || opts.Output != "",
		ToolVersion: version.Get().Version,
	}
}

// OpenWriter returns the output file, or the command's stdout when no file
// is set. The returned function closes the file.
func (opts *OutputOptions) OpenWriter(cmd *cobra.Command) (io.Writer, func() error, error) {
	if opts.Output == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	//nolint:gosec // G304: User-controlled output file path is intentional
	f, err := os.Create(opts.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}

// applyTimeout bounds ctx by timeout; zero disables the bound.
func applyTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout > 0 {
		return context.WithTimeout(ctx, timeout)
	}
	// No timeout - return no-op cancel
	return ctx, func() {}
}

// parseVersionPins parses repeated family=VERSION flags.
func parseVersionPins(raw []string) (map[string]string, error) {
	pins := make(map[string]string, len(raw))
	for _, entry := range raw {
		family, v, ok := strings.Cut(entry, "=")
		family, v = strings.TrimSpace(family), strings.TrimSpace(v)
		if !ok || family == "" || v == "" {
			return nil, fmt.Errorf("invalid --version %q: expected family=VERSION", entry)
		}
		if prev, dup := pins[family]; dup && prev != v {
			return nil, fmt.Errorf("conflicting versions for %s: %s and %s", family, prev, v)
		}
		pins[family] = v
	}
	return pins, nil
}
