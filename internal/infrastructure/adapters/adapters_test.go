package adapters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

func TestSystemConfigAdapter_LoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rxforge.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_concurrent: 3\n"), 0o600))

	cfg, err := NewSystemConfigAdapter().LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.MaxConcurrent)
}

func TestCatalogAdapter_LoadCatalog_Default(t *testing.T) {
	cat, err := NewCatalogAdapter().LoadCatalog("")
	require.NoError(t, err)

	_, ok := cat.Registry.Family(values.FamilyWorkflow)
	assert.True(t, ok)
}

func TestCatalogAdapter_LoadCatalog_Missing(t *testing.T) {
	_, err := NewCatalogAdapter().LoadCatalog(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing.yaml")
}

func TestRecorderAdapter_RecordsServerFailuresOnly(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecorderAdapter(dir, nil, nil)
	assert.True(t, rec.Enabled())

	require.NoError(t, rec.Record(ports.PayloadRecord{StatusCode: 404}))
	require.NoError(t, rec.Record(ports.PayloadRecord{StatusCode: 503}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

type countingObserver struct{ calls int }

func (c *countingObserver) ObserveDecode(_, _ document.Kind, _ ports.DecodeOutcome) { c.calls++ }

func TestObserverChain(t *testing.T) {
	a, b := &countingObserver{}, &countingObserver{}
	chain := ObserverChain{a, nil, b, LoggingObserver{}}

	chain.ObserveDecode(document.KindMedication, document.KindMedication, ports.DecodeOK)

	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestRecorderAdapter_KeepsRecentInMemory(t *testing.T) {
	rec := NewRecorderAdapter("", nil, nil)
	assert.False(t, rec.Enabled())

	require.NoError(t, rec.Record(ports.PayloadRecord{StatusCode: 200}))
	require.NoError(t, rec.Record(ports.PayloadRecord{StatusCode: 502}))

	recent := rec.Recent(0)
	require.Len(t, recent, 1)
	assert.Equal(t, 502, recent[0].StatusCode)
}
