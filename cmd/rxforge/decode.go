package main

import (
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reglet-dev/rxforge/internal/application/services"
	"github.com/reglet-dev/rxforge/internal/domain/document"
)

type decodeOptions struct {
	kind       string
	status     int
	credential string
	headers    []string
}

func newDecodeCmd(root *rootOptions) *cobra.Command {
	opts := &decodeOptions{status: http.StatusOK}

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Decode a response body as the prescription service would return it",
		Long: `Decode a saved response body with the given status and headers and print
what was received: the expected and actual kind, the claimed profile and
the validation result.

A body that does not match the expected kind is decoded again with the
kind inferred from the payload, as happens when the service answers with
an OperationOutcome. Bodies of 5xx responses are written to the
diagnostics directory, redacted, when one is configured.`,
		Example: `  rxforge decode task.json --kind MedicationDispense
  rxforge decode outcome.json --status 503 --header "Content-Type: application/fhir+json"`,
		Args: cobra.ExactArgs(1),
		RunE: withContainer(root, func(ctx *CommandContext, cmd *cobra.Command, args []string) error {
			return runDecode(ctx, cmd, args[0], opts)
		}),
	}

	cmd.Flags().StringVar(&opts.kind, "kind", "", "Expected document kind (default: any)")
	cmd.Flags().IntVar(&opts.status, "status", opts.status, "HTTP status code of the response")
	cmd.Flags().StringVar(&opts.credential, "credential", "", "Credential the response was fetched with")
	cmd.Flags().StringArrayVar(&opts.headers, "header", nil, `Response header as "Name: value" (repeatable)`)
	return cmd
}

func parseHeaders(raw []string) (http.Header, error) {
	h := make(http.Header, len(raw))
	for _, entry := range raw {
		name, value, ok := strings.Cut(entry, ":")
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --header %q: expected \"Name: value\"", entry)
		}
		h.Add(name, strings.TrimSpace(value))
	}
	return h, nil
}

//nolint:errcheck // Best-effort terminal output
func runDecode(ctx *CommandContext, cmd *cobra.Command, path string, opts *decodeOptions) error {
	expected := document.KindAny
	if opts.kind != "" {
		k, ok := document.KindByName(opts.kind)
		if !ok {
			return fmt.Errorf("unknown document kind %q", opts.kind)
		}
		expected = k
	}
	headers, err := parseHeaders(opts.headers)
	if err != nil {
		return err
	}

	//nolint:gosec // G304: User-controlled input file path is intentional
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	w, err := ctx.Container.ResponseDecoder().Decode(services.RawResponse{
		StatusCode:   opts.status,
		Headers:      headers,
		CredentialID: opts.credential,
		Body:         string(body),
	}, expected)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Status:   %d\n", w.StatusCode())
	fmt.Fprintf(out, "Expected: %s\n", w.ExpectedKind())
	if w.IsEmptyBody() {
		fmt.Fprintln(out, "Body:     empty")
		return nil
	}
	fmt.Fprintf(out, "Actual:   %s\n", w.ResourceKind())
	if p := w.Resource().Profile(); !p.IsZero() {
		fmt.Fprintf(out, "Profile:  %s\n", p)
	}

	result := w.Validation()
	valid := "yes"
	if !result.IsSuccessful() {
		valid = "no"
	}
	fmt.Fprintf(out, "Valid:    %s\n", valid)
	for _, m := range result.Messages() {
		fmt.Fprintf(out, "  - %s\n", m)
	}

	if _, err := w.Payload(); err != nil {
		return err
	}
	return nil
}
