package output

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorGray   = "\033[90m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// TableFormatter formats reports and listings as human-readable text.
type TableFormatter struct {
	writer      io.Writer
	EnableColor bool
}

// NewTableFormatter creates a new table formatter.
func NewTableFormatter(w io.Writer) *TableFormatter {
	return &TableFormatter{
		writer:      w,
		EnableColor: true, // Default to true, caller can disable
	}
}

// colorize returns the string wrapped in ANSI color codes if enabled.
func (f *TableFormatter) colorize(text, code string) string {
	if !f.EnableColor {
		return text
	}
	return code + text + colorReset
}

func (f *TableFormatter) rule() string {
	return f.colorize(strings.Repeat("─", 80), colorGray)
}

// Format writes the validation reports.
//
//nolint:errcheck // Table formatting errors are non-critical (best-effort terminal output)
func (f *TableFormatter) Format(resp *dto.ValidateResponse) error {
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Validated: %d documents\n", len(resp.Reports))
	if !resp.Metadata.ProcessedAt.IsZero() {
		fmt.Fprintf(f.writer, "Executed:  %s\n", resp.Metadata.ProcessedAt.Format(time.RFC3339))
	}
	fmt.Fprintf(f.writer, "Duration:  %s\n", resp.Metadata.Duration.Round(time.Millisecond))
	fmt.Fprintln(f.writer)

	if len(resp.Reports) == 0 {
		fmt.Fprintln(f.writer, "No documents validated.")
		return nil
	}

	fmt.Fprintln(f.writer, f.colorize("Documents:", colorBold))
	fmt.Fprintln(f.writer, f.rule())
	for _, rep := range resp.Reports {
		f.formatReport(rep)
	}
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintln(f.writer)

	f.formatSummary(resp)
	return nil
}

// formatReport formats a single document report.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatReport(rep dto.DocumentReport) {
	symbol, color := f.getStatusInfo(rep)
	fmt.Fprintf(f.writer, "%s %s\n", f.colorize(symbol, color), f.colorize(rep.Path, color))

	if rep.Kind != "" {
		fmt.Fprintf(f.writer, "  Kind: %s\n", f.colorize(rep.Kind, colorCyan))
	}
	if rep.Profile != "" {
		fmt.Fprintf(f.writer, "  Profile: %s\n", rep.Profile)
	}
	if rep.Error != "" {
		fmt.Fprintf(f.writer, "  %s: %s\n", f.colorize("Error", colorRed), rep.Error)
	}
	if len(rep.Messages) > 0 {
		fmt.Fprintln(f.writer, "  Messages:")
		for _, m := range rep.Messages {
			f.formatMessage(m)
		}
	}
	fmt.Fprintln(f.writer)
}

//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatMessage(m validation.Message) {
	sev := f.colorize(m.Severity.String(), severityColor(m.Severity))
	if m.Location == "" {
		fmt.Fprintf(f.writer, "    - [%s] %s\n", sev, m.Text)
		return
	}
	fmt.Fprintf(f.writer, "    - [%s] %s: %s\n", sev, f.colorize(m.Location, colorBlue), m.Text)
}

// formatSummary formats the summary statistics.
//
//nolint:errcheck // Best-effort terminal output
func (f *TableFormatter) formatSummary(resp *dto.ValidateResponse) {
	valid, invalid, failed := 0, 0, 0
	counts := make(map[string]int)
	for _, rep := range resp.Reports {
		switch {
		case rep.Error != "":
			failed++
		case rep.Valid:
			valid++
		default:
			invalid++
		}
		for _, m := range rep.Messages {
			counts[m.Severity.String()]++
		}
	}

	fmt.Fprintln(f.writer, f.colorize("Summary:", colorBold))
	fmt.Fprintln(f.writer, f.rule())
	fmt.Fprintf(f.writer, "Documents:  %d total\n", len(resp.Reports))
	fmt.Fprintf(f.writer, "  %s Valid:    %d\n", f.colorize("✓", colorGreen), valid)
	fmt.Fprintf(f.writer, "  %s Invalid:  %d\n", f.colorize("✗", colorRed), invalid)
	fmt.Fprintf(f.writer, "  %s Errors:   %d\n", f.colorize("⚠", colorYellow), failed)

	if len(counts) > 0 {
		fmt.Fprintln(f.writer)
		fmt.Fprintln(f.writer, "Messages:")
		for _, sev := range values.AllSeverities() {
			if n := counts[sev.String()]; n > 0 {
				fmt.Fprintf(f.writer, "  %-12s %d\n", sev.String()+":", n)
			}
		}
	}
	fmt.Fprintln(f.writer, f.rule())
}

// FormatFamilies writes the profile catalog as a table.
//
//nolint:errcheck // Write errors surface through Flush
func (f *TableFormatter) FormatFamilies(families []dto.FamilyInfo) error {
	sorted := append([]dto.FamilyInfo(nil), families...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Family < sorted[j].Family })

	tw := tabwriter.NewWriter(f.writer, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FAMILY\tDEFAULT\tRESOLVED\tVERSIONS")
	for _, fam := range sorted {
		resolved := fam.Resolved
		if fam.Error != "" {
			resolved = "error: " + fam.Error
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", fam.Family, fam.Default, resolved, formatVersions(fam.Versions))
	}
	return tw.Flush()
}

func formatVersions(versions []dto.VersionInfo) string {
	parts := make([]string, len(versions))
	for i, v := range versions {
		var window []string
		if v.ValidFrom != nil {
			window = append(window, "from "+v.ValidFrom.Format(time.DateOnly))
		}
		if v.ValidUntil != nil {
			window = append(window, "until "+v.ValidUntil.Format(time.DateOnly))
		}
		if len(window) == 0 {
			parts[i] = v.Version
			continue
		}
		parts[i] = fmt.Sprintf("%s (%s)", v.Version, strings.Join(window, ", "))
	}
	return strings.Join(parts, ", ")
}

// getStatusInfo returns a symbol and color for a report.
func (f *TableFormatter) getStatusInfo(rep dto.DocumentReport) (string, string) {
	switch {
	case rep.Error != "":
		return "⚠", colorYellow
	case rep.Valid:
		return "✓", colorGreen
	default:
		return "✗", colorRed
	}
}

func severityColor(s values.Severity) string {
	switch {
	case s.IsFailure():
		return colorRed
	case s.Equals(values.SevWarning):
		return colorYellow
	default:
		return colorGray
	}
}
