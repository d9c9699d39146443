package ports

import (
	"io"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

// OutputFormatter formats validation reports.
type OutputFormatter interface {
	Format(resp *dto.ValidateResponse) error
}

// ListingFormatter formats profile family listings.
type ListingFormatter interface {
	FormatFamilies(families []dto.FamilyInfo) error
}

// FormatterOptions tunes formatter output.
type FormatterOptions struct {
	// Indent pretty-prints JSON output
	Indent bool
	// NoColor disables ANSI colors in table output
	NoColor bool
	// ToolVersion is reported by machine readable formats
	ToolVersion string
}

// OutputFormatterFactory creates formatters by name.
type OutputFormatterFactory interface {
	Create(format string, w io.Writer, options FormatterOptions) (OutputFormatter, error)
	CreateListing(format string, w io.Writer, options FormatterOptions) (ListingFormatter, error)
	SupportedFormats() []string
}
