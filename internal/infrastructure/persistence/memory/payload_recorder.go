// Package memory provides in-memory implementations of application ports.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reglet-dev/rxforge/internal/application/ports"
)

// Ensure interface compliance
var _ ports.PayloadRecorder = (*PayloadRecorder)(nil)

// PayloadRecorder is an in-memory implementation of ports.PayloadRecorder.
// Useful for testing and ephemeral storage.
type PayloadRecorder struct {
	records map[uuid.UUID]ports.PayloadRecord
	mu      sync.RWMutex
}

// NewPayloadRecorder creates a new in-memory recorder.
func NewPayloadRecorder() *PayloadRecorder {
	return &PayloadRecorder{
		records: make(map[uuid.UUID]ports.PayloadRecord),
	}
}

// Record stores a copy of the payload record.
func (r *PayloadRecorder) Record(rec ports.PayloadRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.Headers != nil {
		rec.Headers = rec.Headers.Clone()
	}
	r.records[uuid.New()] = rec
	return nil
}

// Len returns the number of stored records.
func (r *PayloadRecorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Recent returns stored records, newest first. A limit of zero returns all.
func (r *PayloadRecorder) Recent(limit int) []ports.PayloadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matches := make([]ports.PayloadRecord, 0, len(r.records))
	for _, rec := range r.records {
		matches = append(matches, rec)
	}
	sortNewestFirst(matches)

	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// Between returns records received within [start, end], newest first.
func (r *PayloadRecorder) Between(start, end time.Time) []ports.PayloadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []ports.PayloadRecord
	for _, rec := range r.records {
		if !rec.ReceivedAt.Before(start) && !rec.ReceivedAt.After(end) {
			matches = append(matches, rec)
		}
	}
	sortNewestFirst(matches)
	return matches
}

// ByStatus returns records with the given HTTP status code.
func (r *PayloadRecorder) ByStatus(status int) []ports.PayloadRecord {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matches []ports.PayloadRecord
	for _, rec := range r.records {
		if rec.StatusCode == status {
			matches = append(matches, rec)
		}
	}
	sortNewestFirst(matches)
	return matches
}

func sortNewestFirst(records []ports.PayloadRecord) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].ReceivedAt.After(records[j].ReceivedAt)
	})
}
