package main

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

var reportFormats = []string{"table", "json", "yaml", "junit", "sarif"}

type validateOptions struct {
	out     OutputOptions
	kind    string
	timeout time.Duration
}

func newValidateCmd(root *rootOptions) *cobra.Command {
	opts := &validateOptions{timeout: 2 * time.Minute}

	cmd := &cobra.Command{
		Use:   "validate <file>...",
		Short: "Decode and validate document files",
		Long: `Decode each file as a successful response and validate it against the
profile it claims. Files are validated concurrently, up to max_concurrent
from the config file at a time.

The command exits non-zero when any document fails to decode or validate.`,
		Example: `  rxforge validate bundle.json
  rxforge validate --kind MedicationDispense dispense/*.json
  rxforge validate --format sarif -o results.sarif payloads/*.json`,
		Args: cobra.MinimumNArgs(1),
		PreRunE: func(_ *cobra.Command, _ []string) error {
			return opts.out.ValidateFlags(reportFormats)
		},
		RunE: withContainer(root, func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			return runValidate(ctx, cmd, args, opts)
		}),
	}

	opts.out.RegisterFlags(cmd, reportFormats)
	cmd.Flags().StringVar(&opts.kind, "kind", "", "Expected document kind, e.g. PrescriptionBundle (default: any)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", opts.timeout, "Timeout for the whole batch (0 to disable)")
	return cmd
}

func runValidate(ctx *CommandContext, cmd *cobra.Command, paths []string, opts *validateOptions) error {
	runCtx, cancel := applyTimeout(ctx.Context, opts.timeout)
	defer cancel()

	resp, err := ctx.Container.ValidateDocumentsUseCase().Execute(runCtx, dto.ValidateRequest{
		Paths:         paths,
		Kind:          opts.kind,
		MaxConcurrent: ctx.Container.SystemConfig().MaxConcurrent,
		Metadata:      dto.RequestMetadata{RequestID: uuid.NewString()},
	})
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	w, closeFn, err := opts.out.OpenWriter(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeFn() // Best-effort cleanup
	}()

	formatter, err := ctx.Container.FormatterFactory().Create(opts.out.Format, w, opts.out.FormatterOptions())
	if err != nil {
		return err
	}
	if err := formatter.Format(resp); err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}

	if resp.Failed() {
		invalid := 0
		for _, rep := range resp.Reports {
			if !rep.Valid {
				invalid++
			}
		}
		return fmt.Errorf("validation failed: %d of %d documents invalid", invalid, len(resp.Reports))
	}
	return nil
}
