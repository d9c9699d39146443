package dto

import (
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/validation"
)

// ValidateResponse contains the per-file reports of a batch validation.
type ValidateResponse struct {
	Reports  []DocumentReport
	Metadata ResponseMetadata
}

// Failed reports whether any document failed to decode or validate.
func (r *ValidateResponse) Failed() bool {
	for _, rep := range r.Reports {
		if !rep.Valid {
			return true
		}
	}
	return false
}

// DocumentReport is the validation outcome of one payload.
type DocumentReport struct {
	Path     string               `json:"path" yaml:"path"`
	Kind     string               `json:"kind,omitempty" yaml:"kind,omitempty"`
	Profile  string               `json:"profile,omitempty" yaml:"profile,omitempty"`
	Valid    bool                 `json:"valid" yaml:"valid"`
	Error    string               `json:"error,omitempty" yaml:"error,omitempty"`
	Messages []validation.Message `json:"messages,omitempty" yaml:"messages,omitempty"`
}

// ResponseMetadata contains metadata about the response.
type ResponseMetadata struct {
	// RequestID from the original request
	RequestID string

	// ProcessedAt is when the request was processed
	ProcessedAt time.Time

	// Duration is how long the request took
	Duration time.Duration
}

// FamilyInfo describes a profile family for listings.
type FamilyInfo struct {
	Family      string        `json:"family" yaml:"family"`
	Description string        `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string        `json:"default" yaml:"default"`
	Resolved    string        `json:"resolved,omitempty" yaml:"resolved,omitempty"`
	Error       string        `json:"error,omitempty" yaml:"error,omitempty"`
	Versions    []VersionInfo `json:"versions" yaml:"versions"`
}

// VersionInfo describes one declared version.
type VersionInfo struct {
	Version    string     `json:"version" yaml:"version"`
	ValidFrom  *time.Time `json:"valid_from,omitempty" yaml:"valid_from,omitempty"`
	ValidUntil *time.Time `json:"valid_until,omitempty" yaml:"valid_until,omitempty"`
}
