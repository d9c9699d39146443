package output

import (
	"io"

	"github.com/goccy/go-yaml"

	"github.com/reglet-dev/rxforge/internal/application/dto"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

// YAMLFormatter formats reports and listings as YAML.
type YAMLFormatter struct {
	writer io.Writer
}

// yamlDocument mirrors dto.DocumentReport with severities rendered as text.
type yamlDocument struct {
	Path     string        `yaml:"path"`
	Kind     string        `yaml:"kind,omitempty"`
	Profile  string        `yaml:"profile,omitempty"`
	Valid    bool          `yaml:"valid"`
	Error    string        `yaml:"error,omitempty"`
	Messages []yamlMessage `yaml:"messages,omitempty"`
}

type yamlMessage struct {
	Severity string `yaml:"severity"`
	Location string `yaml:"location,omitempty"`
	Message  string `yaml:"message"`
}

type yamlReport struct {
	RequestID  string         `yaml:"request_id,omitempty"`
	DurationMS int64          `yaml:"duration_ms"`
	Valid      bool           `yaml:"valid"`
	Documents  []yamlDocument `yaml:"documents"`
}

// NewYAMLFormatter creates a new YAML formatter.
func NewYAMLFormatter(w io.Writer) *YAMLFormatter {
	return &YAMLFormatter{writer: w}
}

// Format writes the validation reports as YAML.
func (f *YAMLFormatter) Format(resp *dto.ValidateResponse) error {
	out := yamlReport{
		RequestID:  resp.Metadata.RequestID,
		DurationMS: resp.Metadata.Duration.Milliseconds(),
		Valid:      !resp.Failed(),
		Documents:  make([]yamlDocument, len(resp.Reports)),
	}
	for i, rep := range resp.Reports {
		out.Documents[i] = yamlDocument{
			Path:     rep.Path,
			Kind:     rep.Kind,
			Profile:  rep.Profile,
			Valid:    rep.Valid,
			Error:    rep.Error,
			Messages: yamlMessages(rep.Messages),
		}
	}
	return f.encode(out)
}

// FormatFamilies writes the profile catalog as YAML.
func (f *YAMLFormatter) FormatFamilies(families []dto.FamilyInfo) error {
	return f.encode(families)
}

func (f *YAMLFormatter) encode(v any) error {
	encoder := yaml.NewEncoder(f.writer, yaml.Indent(2))

	if err := encoder.Encode(v); err != nil {
		return err
	}

	return encoder.Close()
}

func yamlMessages(messages []validation.Message) []yamlMessage {
	if len(messages) == 0 {
		return nil
	}
	out := make([]yamlMessage, len(messages))
	for i, m := range messages {
		out[i] = yamlMessage{Severity: m.Severity.String(), Location: m.Location, Message: m.Text}
	}
	return out
}
