package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/infrastructure/prompt"
)

type sampleOptions struct {
	kind        string
	versions    []string
	output      string
	interactive bool
}

func newSampleCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Build sample documents",
	}
	cmd.AddCommand(newSamplePrescriptionCmd(root))
	return cmd
}

func newSamplePrescriptionCmd(root *rootOptions) *cobra.Command {
	opts := &sampleOptions{kind: prompt.KindMedicationRequest}

	cmd := &cobra.Command{
		Use:   "prescription",
		Short: "Build a complete prescription bundle",
		Long: `Build a prescription bundle with patient, coverage, practitioner,
organization, medication and either a medication request or a practice
supply request, and print it as JSON.

Every builder resolves its profile version on its own. Use --version to
pin a family; without it the toggle or catalog default applies.`,
		Example: `  rxforge sample prescription
  rxforge sample prescription --kind supply-request
  rxforge sample prescription --version prescription=1.0.2 --version base-data=1.0.3
  rxforge sample prescription --interactive`,
		Args: cobra.NoArgs,
		RunE: withContainer(root, func(ctx *CommandContext, cmd *cobra.Command, _ []string) error {
			return runSamplePrescription(ctx, cmd, opts)
		}),
	}

	cmd.Flags().StringVar(&opts.kind, "kind", opts.kind, "Prescription kind: medication-request, supply-request")
	cmd.Flags().StringArrayVar(&opts.versions, "version", nil, "Pin a family version as family=VERSION (repeatable)")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Output file path (default: stdout)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "Choose kind and versions interactively")
	return cmd
}

func sampleRequest(opts *sampleOptions) (dto.SampleRequest, error) {
	var req dto.SampleRequest
	switch opts.kind {
	case prompt.KindMedicationRequest:
	case prompt.KindSupplyRequest:
		req.SupplyRequest = true
	default:
		return req, fmt.Errorf("invalid --kind %q (valid: %s, %s)", opts.kind, prompt.KindMedicationRequest, prompt.KindSupplyRequest)
	}
	pins, err := parseVersionPins(opts.versions)
	if err != nil {
		return req, err
	}
	req.Versions = pins
	return req, nil
}

func runSamplePrescription(ctx *CommandContext, cmd *cobra.Command, opts *sampleOptions) error {
	var (
		req dto.SampleRequest
		err error
	)
	if opts.interactive {
		req, err = prompt.NewTerminalPrompter().PromptSample(ctx.Container.ProfileService().List())
	} else {
		req, err = sampleRequest(opts)
	}
	if err != nil {
		return err
	}

	bundle, err := ctx.Container.SampleService().BuildPrescription(req)
	if err != nil {
		return fmt.Errorf("failed to build prescription: %w", err)
	}
	ctx.Logger.Debug("built prescription", "id", bundle.PrescriptionID(), "profile", bundle.Profile().String())

	data, err := ctx.Container.Encoder().Encode(bundle)
	if err != nil {
		return fmt.Errorf("failed to encode prescription: %w", err)
	}

	out := OutputOptions{Output: opts.output}
	w, closeFn, err := out.OpenWriter(cmd)
	if err != nil {
		return err
	}
	defer func() {
		_ = closeFn() // Best-effort cleanup
	}()

	if _, err := fmt.Fprintln(w, string(data)); err != nil {
		return fmt.Errorf("failed to write prescription: %w", err)
	}
	return nil
}
