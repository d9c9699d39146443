package document

import (
	"encoding/json"
	"fmt"
)

// BundleEntry wraps one resource of a bundle.
type BundleEntry struct {
	FullURL  string   `json:"fullUrl"`
	Resource Resource `json:"resource"`
}

// UnmarshalJSON implements json.Unmarshaler, inferring the entry's kind.
func (e *BundleEntry) UnmarshalJSON(data []byte) error {
	var aux struct {
		FullURL  string          `json:"fullUrl"`
		Resource json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	e.FullURL = aux.FullURL
	if len(aux.Resource) == 0 {
		return nil
	}
	r, err := DecodeResource(aux.Resource)
	if err != nil {
		return fmt.Errorf("bundle entry %s: %w", aux.FullURL, err)
	}
	e.Resource = r
	return nil
}

// ParameterPart is a named part holding a resource.
type ParameterPart struct {
	Name     string   `json:"name"`
	Resource Resource `json:"resource,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler, inferring the part's kind.
func (p *ParameterPart) UnmarshalJSON(data []byte) error {
	var aux struct {
		Name     string          `json:"name"`
		Resource json.RawMessage `json:"resource"`
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	p.Name = aux.Name
	if len(aux.Resource) == 0 {
		return nil
	}
	r, err := DecodeResource(aux.Resource)
	if err != nil {
		return fmt.Errorf("parameter part %s: %w", aux.Name, err)
	}
	p.Resource = r
	return nil
}
