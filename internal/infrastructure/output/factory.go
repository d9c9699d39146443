package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/reglet-dev/rxforge/internal/application/ports"
)

var _ ports.OutputFormatterFactory = (*FormatterFactory)(nil)

// formatSpec creates report formatters; those that also implement
// ports.ListingFormatter can render profile listings.
type formatSpec struct {
	name   string
	create func(w io.Writer, options ports.FormatterOptions) ports.OutputFormatter
}

// formats in the order they are offered to users.
var formats = []formatSpec{
	{"table", func(w io.Writer, o ports.FormatterOptions) ports.OutputFormatter {
		t := NewTableFormatter(w)
		t.EnableColor = !o.NoColor
		return t
	}},
	{"json", func(w io.Writer, o ports.FormatterOptions) ports.OutputFormatter { return NewJSONFormatter(w, o.Indent) }},
	{"yaml", func(w io.Writer, _ ports.FormatterOptions) ports.OutputFormatter { return NewYAMLFormatter(w) }},
	{"junit", func(w io.Writer, _ ports.FormatterOptions) ports.OutputFormatter { return NewJUnitFormatter(w) }},
	{"sarif", func(w io.Writer, o ports.FormatterOptions) ports.OutputFormatter { return NewSARIFFormatter(w, o.ToolVersion) }},
}

// FormatterFactory implements ports.OutputFormatterFactory.
type FormatterFactory struct{}

// NewFormatterFactory creates a new formatter factory.
func NewFormatterFactory() *FormatterFactory {
	return &FormatterFactory{}
}

func lookup(format string) (formatSpec, bool) {
	for _, spec := range formats {
		if spec.name == format {
			return spec, true
		}
	}
	return formatSpec{}, false
}

// Create returns a report formatter for the given format name.
func (f *FormatterFactory) Create(format string, writer io.Writer, options ports.FormatterOptions) (ports.OutputFormatter, error) {
	spec, ok := lookup(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(f.SupportedFormats(), ", "))
	}
	return spec.create(writer, options), nil
}

// CreateListing returns a formatter for profile listings. Formats that only
// describe validation runs, junit and sarif, cannot render listings.
func (f *FormatterFactory) CreateListing(format string, writer io.Writer, options ports.FormatterOptions) (ports.ListingFormatter, error) {
	spec, ok := lookup(format)
	if !ok {
		return nil, fmt.Errorf("unknown format: %s (supported: %s)", format, strings.Join(f.ListingFormats(), ", "))
	}
	listing, ok := spec.create(writer, options).(ports.ListingFormatter)
	if !ok {
		return nil, fmt.Errorf("format %s cannot render listings (supported: %s)", format, strings.Join(f.ListingFormats(), ", "))
	}
	return listing, nil
}

// SupportedFormats returns list of available format names.
func (f *FormatterFactory) SupportedFormats() []string {
	names := make([]string, len(formats))
	for i, spec := range formats {
		names[i] = spec.name
	}
	return names
}

// ListingFormats returns the formats that can render profile listings.
func (f *FormatterFactory) ListingFormats() []string {
	var names []string
	for _, spec := range formats {
		if _, ok := spec.create(io.Discard, ports.FormatterOptions{}).(ports.ListingFormatter); ok {
			names = append(names, spec.name)
		}
	}
	return names
}
