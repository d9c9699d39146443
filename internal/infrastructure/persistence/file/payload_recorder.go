// Package file stores payloads of failed responses as JSON files for offline
// analysis. Credentials and personal data are redacted before writing.
package file

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/infrastructure/redaction"
)

var _ ports.PayloadRecorder = (*PayloadRecorder)(nil)

const timestampLayout = "20060102T150405.000Z"

// record is the on-disk format of a payload record.
type record struct {
	ReceivedAt   string      `json:"received_at"`
	Status       int         `json:"status"`
	DurationMS   int64       `json:"duration_ms"`
	CredentialID string      `json:"credential_id,omitempty"`
	ExpectedKind string      `json:"expected_kind,omitempty"`
	Headers      http.Header `json:"headers,omitempty"`
	Body         string      `json:"body"`
}

// PayloadRecorder writes one file per record into a directory.
// A recorder without a directory only logs.
type PayloadRecorder struct {
	dir      string
	redactor *redaction.Redactor
	logger   *slog.Logger
}

// Option configures a PayloadRecorder.
type Option func(*PayloadRecorder)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *PayloadRecorder) { r.logger = l }
}

// NewPayloadRecorder creates a recorder writing into dir.
func NewPayloadRecorder(dir string, redactor *redaction.Redactor, opts ...Option) *PayloadRecorder {
	r := &PayloadRecorder{dir: dir, redactor: redactor}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Enabled reports whether records are written to disk.
func (r *PayloadRecorder) Enabled() bool {
	return r.dir != ""
}

// Record redacts and writes rec as <timestamp>_<status>_<uuid>.json.
func (r *PayloadRecorder) Record(rec ports.PayloadRecord) error {
	if rec.CredentialID != "" && r.redactor != nil {
		r.redactor.Track(rec.CredentialID)
	}

	if !r.Enabled() {
		r.logger.Warn("server failure", "status", rec.StatusCode, "duration", rec.Duration)
		return nil
	}

	if err := os.MkdirAll(r.dir, 0o700); err != nil {
		return fmt.Errorf("failed to create diagnostics directory: %w", err)
	}

	data, err := json.MarshalIndent(r.toFile(rec), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode payload record: %w", err)
	}

	name := fmt.Sprintf("%s_%s_%s.json",
		rec.ReceivedAt.UTC().Format(timestampLayout),
		strconv.Itoa(rec.StatusCode),
		uuid.NewString())

	// Security: Use os.OpenRoot so the file cannot escape the diagnostics directory
	root, err := os.OpenRoot(r.dir)
	if err != nil {
		return fmt.Errorf("failed to open diagnostics directory: %w", err)
	}
	defer func() {
		_ = root.Close() // Best-effort cleanup
	}()

	f, err := root.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("failed to create payload record: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write payload record: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write payload record: %w", err)
	}

	r.logger.Info("payload recorded", "status", rec.StatusCode, "file", filepath.Join(r.dir, name))
	return nil
}

func (r *PayloadRecorder) toFile(rec ports.PayloadRecord) record {
	out := record{
		ReceivedAt:   rec.ReceivedAt.UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		Status:       rec.StatusCode,
		DurationMS:   rec.Duration.Milliseconds(),
		CredentialID: rec.CredentialID,
		Headers:      rec.Headers,
		Body:         rec.Body,
	}
	if !rec.ExpectedKind.IsZero() {
		out.ExpectedKind = rec.ExpectedKind.Name()
	}
	if r.redactor != nil {
		out.CredentialID = r.redactor.ScrubString(rec.CredentialID)
		out.Headers = r.redactor.RedactHeaders(rec.Headers)
		out.Body = r.redactor.RedactJSON(rec.Body)
	}
	return out
}
