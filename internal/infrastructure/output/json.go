package output

import (
	"encoding/json"
	"io"

	"github.com/reglet-dev/rxforge/internal/application/dto"
)

// JSONFormatter formats reports and listings as JSON.
type JSONFormatter struct {
	writer io.Writer
	indent bool
}

// jsonReport is the JSON shape of a validation response.
type jsonReport struct {
	RequestID   string               `json:"request_id,omitempty"`
	ProcessedAt string               `json:"processed_at,omitempty"`
	DurationMS  int64                `json:"duration_ms"`
	Valid       bool                 `json:"valid"`
	Documents   []dto.DocumentReport `json:"documents"`
}

// NewJSONFormatter creates a new JSON formatter.
func NewJSONFormatter(w io.Writer, indent bool) *JSONFormatter {
	return &JSONFormatter{
		writer: w,
		indent: indent,
	}
}

// Format writes the validation reports as JSON.
func (f *JSONFormatter) Format(resp *dto.ValidateResponse) error {
	return f.write(toReport(resp))
}

// FormatFamilies writes the profile catalog as JSON.
func (f *JSONFormatter) FormatFamilies(families []dto.FamilyInfo) error {
	if families == nil {
		families = []dto.FamilyInfo{}
	}
	return f.write(families)
}

func (f *JSONFormatter) write(v any) error {
	var data []byte
	var err error

	if f.indent {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return err
	}

	if _, err := f.writer.Write(data); err != nil {
		return err
	}

	// Add newline for better terminal output
	_, err = f.writer.Write([]byte("\n"))
	return err
}

func toReport(resp *dto.ValidateResponse) jsonReport {
	out := jsonReport{
		RequestID:  resp.Metadata.RequestID,
		DurationMS: resp.Metadata.Duration.Milliseconds(),
		Valid:      !resp.Failed(),
		Documents:  resp.Reports,
	}
	if !resp.Metadata.ProcessedAt.IsZero() {
		out.ProcessedAt = resp.Metadata.ProcessedAt.UTC().Format("2006-01-02T15:04:05Z07:00")
	}
	if out.Documents == nil {
		out.Documents = []dto.DocumentReport{}
	}
	return out
}
