// Package dto contains data transfer objects for application layer use cases.
package dto

// ValidateRequest encapsulates the inputs of a batch validation.
type ValidateRequest struct {
	// Paths are the payload files to validate.
	Paths []string

	// Kind is the expected document kind name; empty means any kind.
	Kind string

	// MaxConcurrent limits parallel validation (0 = no limit)
	MaxConcurrent int

	Metadata RequestMetadata
}

// SampleRequest selects what the sample prescription contains.
type SampleRequest struct {
	// SupplyRequest builds a practice supply order instead of a medication request.
	SupplyRequest bool

	// Versions pins family versions, keyed by family name.
	Versions map[string]string
}

// ResolveRequest asks for the version a family resolves to.
type ResolveRequest struct {
	Family  string
	Version string
}

// RequestMetadata contains metadata for request tracking.
type RequestMetadata struct {
	// RequestID uniquely identifies this request
	RequestID string
}
