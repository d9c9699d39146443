// Package adapters provides infrastructure adapters that implement application ports.
// These adapters wrap existing infrastructure components to satisfy port interfaces.
package adapters

import (
	"fmt"
	"log/slog"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	infraconfig "github.com/reglet-dev/rxforge/internal/infrastructure/config"
	"github.com/reglet-dev/rxforge/internal/infrastructure/persistence/file"
	"github.com/reglet-dev/rxforge/internal/infrastructure/persistence/memory"
	"github.com/reglet-dev/rxforge/internal/infrastructure/redaction"
	"github.com/reglet-dev/rxforge/internal/infrastructure/system"
)

// Ensure adapters implement ports at compile time
var (
	_ ports.PayloadRecorder = (*RecorderAdapter)(nil)
	_ ports.DecodeObserver  = (ObserverChain)(nil)
)

// SystemConfigAdapter adapts the system config loader.
type SystemConfigAdapter struct {
	loader *system.ConfigLoader
}

// NewSystemConfigAdapter creates a new system config adapter.
func NewSystemConfigAdapter() *SystemConfigAdapter {
	return &SystemConfigAdapter{
		loader: system.NewConfigLoader(),
	}
}

// LoadConfig loads system configuration from path, or from ~/.rxforge.yaml
// when path is empty.
func (a *SystemConfigAdapter) LoadConfig(path string) (*system.Config, error) {
	if path == "" {
		p, err := system.DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}

	return a.loader.Load(path)
}

// CatalogAdapter loads the profile catalog from an override file or the
// catalog compiled into the binary.
type CatalogAdapter struct {
	loader *infraconfig.CatalogLoader
}

// NewCatalogAdapter creates a new catalog adapter.
func NewCatalogAdapter(opts ...infraconfig.LoaderOption) *CatalogAdapter {
	return &CatalogAdapter{
		loader: infraconfig.NewCatalogLoader(opts...),
	}
}

// LoadCatalog loads the catalog at path, or the embedded one when path is empty.
func (a *CatalogAdapter) LoadCatalog(path string) (*infraconfig.Catalog, error) {
	if path == "" {
		return a.loader.LoadDefault()
	}
	cat, err := a.loader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return cat, nil
}

// RecorderAdapter only records server failures. Every record is kept in
// memory for the lifetime of the process and, when a directory is
// configured, written to disk.
type RecorderAdapter struct {
	recorder *file.PayloadRecorder
	recent   *memory.PayloadRecorder
	logger   *slog.Logger
}

// NewRecorderAdapter creates a file-backed payload recorder.
func NewRecorderAdapter(dir string, redactor *redaction.Redactor, logger *slog.Logger) *RecorderAdapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecorderAdapter{
		recorder: file.NewPayloadRecorder(dir, redactor, file.WithLogger(logger)),
		recent:   memory.NewPayloadRecorder(),
		logger:   logger,
	}
}

// Record forwards 5xx records to the file recorder.
func (a *RecorderAdapter) Record(rec ports.PayloadRecord) error {
	if rec.StatusCode < 500 || rec.StatusCode > 599 {
		return nil
	}
	_ = a.recent.Record(rec) // never fails
	if err := a.recorder.Record(rec); err != nil {
		return fmt.Errorf("failed to record payload: %w", err)
	}
	return nil
}

// Recent returns up to limit server failures seen by this process, newest
// first. A limit of zero returns all of them.
func (a *RecorderAdapter) Recent(limit int) []ports.PayloadRecord {
	return a.recent.Recent(limit)
}

// Enabled reports whether payloads are written to disk.
func (a *RecorderAdapter) Enabled() bool {
	return a.recorder.Enabled()
}

// ObserverChain fans a decode out to several observers.
type ObserverChain []ports.DecodeObserver

// ObserveDecode notifies every observer in order.
func (c ObserverChain) ObserveDecode(expected, actual document.Kind, outcome ports.DecodeOutcome) {
	for _, o := range c {
		if o != nil {
			o.ObserveDecode(expected, actual, outcome)
		}
	}
}

// LoggingObserver logs every decode at debug level.
type LoggingObserver struct {
	Logger *slog.Logger
}

// ObserveDecode logs the decode.
func (o LoggingObserver) ObserveDecode(expected, actual document.Kind, outcome ports.DecodeOutcome) {
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("decoded response", "expected", expected.String(), "actual", actual.String(), "outcome", string(outcome))
}
