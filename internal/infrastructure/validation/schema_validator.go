// Package validation provides the structural validator: JSON Schema checks
// per resource type plus checks of the claimed profile against the catalog.
package validation

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/profiles"
	"github.com/reglet-dev/rxforge/internal/domain/validation"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

//go:embed schemas/resources.json
var schemaFS embed.FS

const schemaURL = "resources.json"

// SchemaValidator validates documents against the embedded resource schemas.
// Compiled schemas are cached per resource type; it is safe for concurrent use.
type SchemaValidator struct {
	compiler *jsonschema.Compiler
	registry *profiles.Registry

	mu      sync.Mutex
	schemas map[string]*jsonschema.Schema
}

var _ ports.StructuralValidator = (*SchemaValidator)(nil)

// NewSchemaValidator creates a validator. With a registry, claimed profile
// versions must be declared by the kind's family.
func NewSchemaValidator(registry *profiles.Registry) (*SchemaValidator, error) {
	data, err := schemaFS.ReadFile("schemas/" + schemaURL)
	if err != nil {
		return nil, fmt.Errorf("failed to read resource schemas: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource(schemaURL, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("failed to add resource schemas: %w", err)
	}

	return &SchemaValidator{
		compiler: compiler,
		registry: registry,
		schemas:  make(map[string]*jsonschema.Schema),
	}, nil
}

// Validate validates a typed document.
func (v *SchemaValidator) Validate(res document.Resource) validation.Result {
	if res == nil {
		return validation.Failure("", "no document")
	}
	data, err := json.Marshal(res)
	if err != nil {
		return validation.Failure("", fmt.Sprintf("document cannot be serialized: %v", err))
	}
	return v.ValidateRaw(string(data))
}

// ValidateRaw validates a serialized document without decoding it into a
// typed document first.
func (v *SchemaValidator) ValidateRaw(raw string) validation.Result {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var instance any
	if err := dec.Decode(&instance); err != nil {
		return validation.Failure("", fmt.Sprintf("payload is not valid JSON: %v", err))
	}

	var env document.Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return validation.Failure("", "payload is not a resource object")
	}
	if env.ResourceType == "" {
		return validation.Failure("/resourceType", "resourceType is missing")
	}

	schema, err := v.schemaFor(env.ResourceType)
	if err != nil {
		return validation.Failure("/resourceType", err.Error())
	}

	var messages []validation.Message
	if err := schema.Validate(instance); err != nil {
		messages = append(messages, schemaMessages(err)...)
	}
	messages = append(messages, v.profileMessages(env)...)
	return validation.NewResult(messages...)
}

func (v *SchemaValidator) schemaFor(resourceType string) (*jsonschema.Schema, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if s, ok := v.schemas[resourceType]; ok {
		return s, nil
	}
	if !knownResourceType(resourceType) {
		return nil, fmt.Errorf("unknown resource type %q", resourceType)
	}
	s, err := v.compiler.Compile(schemaURL + "#/$defs/" + resourceType)
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema for %s: %w", resourceType, err)
	}
	v.schemas[resourceType] = s
	return s, nil
}

func knownResourceType(resourceType string) bool {
	for _, k := range document.Kinds() {
		if k.ResourceType() == resourceType {
			return true
		}
	}
	return false
}

// profileMessages checks the claimed profile: it must be versioned, known
// for the resource type and declared by the family.
func (v *SchemaValidator) profileMessages(env document.Envelope) []validation.Message {
	claimed := env.Profile()
	if claimed == "" {
		return []validation.Message{{
			Severity: values.SevInformation, Location: "/meta/profile", Text: "no profile claimed",
		}}
	}

	pid, err := values.ParseProfileID(claimed)
	if err != nil {
		return []validation.Message{{Severity: values.SevError, Location: "/meta/profile/0", Text: err.Error()}}
	}
	kind, ok := document.KindFor(env.ResourceType, claimed)
	if !ok || kind.ProfileURL() != pid.URL() {
		return []validation.Message{{
			Severity: values.SevWarning, Location: "/meta/profile/0",
			Text: fmt.Sprintf("profile %s is not known for %s", pid.URL(), env.ResourceType),
		}}
	}
	if pid.Version().IsZero() {
		return []validation.Message{{
			Severity: values.SevWarning, Location: "/meta/profile/0",
			Text: fmt.Sprintf("profile %s claims no version", pid.URL()),
		}}
	}
	if v.registry != nil && !v.registry.Declares(kind.Family(), pid.Version()) {
		return []validation.Message{{
			Severity: values.SevError, Location: "/meta/profile/0",
			Text: fmt.Sprintf("version %s is not declared for family %s", pid.Version(), kind.Family()),
		}}
	}
	return nil
}

// schemaMessages flattens a schema validation error into one message per
// leaf cause.
func schemaMessages(err error) []validation.Message {
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []validation.Message{{Severity: values.SevError, Text: err.Error()}}
	}

	var messages []validation.Message
	var collect func(*jsonschema.ValidationError)
	collect = func(e *jsonschema.ValidationError) {
		if len(e.Causes) == 0 {
			location := e.InstanceLocation
			if location == "" {
				location = "(root)"
			}
			messages = append(messages, validation.Message{Severity: values.SevError, Location: location, Text: e.Message})
			return
		}
		for _, cause := range e.Causes {
			collect(cause)
		}
	}
	collect(ve)
	return messages
}
