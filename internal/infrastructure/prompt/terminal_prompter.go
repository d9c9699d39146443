// Package prompt provides interactive terminal prompts for the CLI.
package prompt

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

// Sample kinds offered by the prompter.
const (
	KindMedicationRequest = "medication-request"
	KindSupplyRequest     = "supply-request"
)

// Choice is one selectable option.
type Choice struct {
	Label string
	Value string
}

// selectFunc shows a single-choice list and stores the picked value.
type selectFunc func(title string, choices []Choice, value *string) error

// ErrNotInteractive is returned when prompting without a terminal.
var ErrNotInteractive = errors.New("not running in an interactive terminal")

// TerminalPrompter asks for sample parameters in the terminal.
type TerminalPrompter struct {
	selectOne   selectFunc
	interactive func() bool
}

// NewTerminalPrompter creates a new TerminalPrompter.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{
		selectOne:   huhSelect,
		interactive: stdinIsTerminal,
	}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *TerminalPrompter) IsInteractive() bool {
	return p.interactive()
}

// stdinIsTerminal reports whether stdin is a character device and not a pipe or file.
func stdinIsTerminal() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

func huhSelect(title string, choices []Choice, value *string) error {
	options := make([]huh.Option[string], len(choices))
	for i, c := range choices {
		options[i] = huh.NewOption(c.Label, c.Value)
	}
	return huh.NewSelect[string]().
		Title(title).
		Options(options...).
		Value(value).
		Run()
}

// PromptSample asks for the sample kind and a version per family. Picking
// the resolved entry leaves the family unpinned.
func (p *TerminalPrompter) PromptSample(families []dto.FamilyInfo) (dto.SampleRequest, error) {
	if !p.IsInteractive() {
		return dto.SampleRequest{}, p.FormatNonInteractiveError()
	}

	kind := KindMedicationRequest
	err := p.selectOne("Select the prescription kind", []Choice{
		{Label: "Medication request (statutory prescription)", Value: KindMedicationRequest},
		{Label: "Supply request (practice supply order)", Value: KindSupplyRequest},
	}, &kind)
	if err != nil {
		return dto.SampleRequest{}, err
	}

	req := dto.SampleRequest{
		SupplyRequest: kind == KindSupplyRequest,
		Versions:      make(map[string]string),
	}
	for _, fam := range families {
		choices := versionChoices(fam)
		if len(choices) < 2 {
			continue
		}
		picked := ""
		title := fmt.Sprintf("Version of %s", fam.Family)
		if fam.Description != "" {
			title = fmt.Sprintf("Version of %s (%s)", fam.Family, fam.Description)
		}
		if err := p.selectOne(title, choices, &picked); err != nil {
			return dto.SampleRequest{}, err
		}
		if picked != "" {
			req.Versions[fam.Family] = picked
		}
	}
	return req, nil
}

// versionChoices lists the resolved version first, as the empty value.
func versionChoices(fam dto.FamilyInfo) []Choice {
	current := fam.Resolved
	if current == "" {
		current = fam.Default
	}
	choices := []Choice{{Label: fmt.Sprintf("%s (resolved)", current), Value: ""}}
	for _, v := range fam.Versions {
		if v.Version == current {
			continue
		}
		choices = append(choices, Choice{Label: v.Version, Value: v.Version})
	}
	return choices
}

// FormatNonInteractiveError creates a helpful error message for non-interactive mode.
func (p *TerminalPrompter) FormatNonInteractiveError() error {
	var msg strings.Builder
	msg.WriteString("interactive sample selection needs a terminal\n\n")
	msg.WriteString("To choose the sample without prompts:\n")
	msg.WriteString("  1. Use --kind medication-request|supply-request\n")
	msg.WriteString("  2. Use --version family=VERSION for every family to pin\n")
	msg.WriteString("  3. Or set profiles.<family> in ~/.rxforge.yaml\n")
	return fmt.Errorf("%w: %s", ErrNotInteractive, msg.String())
}
