// Package builder assembles documents under version-aware build invariants.
//
// Every builder starts accumulating fields in any order and checks its
// invariants only when Build is called. A successful Build stamps the
// resolved profile onto the document and freezes the builder; use a fresh
// builder for every document.
package builder

import (
	"time"

	"github.com/reglet-dev/rxforge/internal/domain/document"
	"github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/domain/values"
)

// BuildObserver is notified about every Build outcome.
type BuildObserver interface {
	ObserveBuild(kind document.Kind, err error)
}

// Factory creates builders bound to a resolver, rule set and clock.
type Factory struct {
	resolver *services.ProfileResolver
	rules    RuleSet
	now      func() time.Time
	newID    func() values.ResourceID
	observer BuildObserver
}

// Option configures a Factory.
type Option func(*Factory)

// WithRules attaches catalog rules.
func WithRules(rs RuleSet) Option {
	return func(f *Factory) { f.rules = rs }
}

// WithClock overrides the clock used for timestamps and date checks.
func WithClock(now func() time.Time) Option {
	return func(f *Factory) { f.now = now }
}

// WithIDGenerator overrides resource id generation.
func WithIDGenerator(gen func() values.ResourceID) Option {
	return func(f *Factory) { f.newID = gen }
}

// WithObserver registers a build observer.
func WithObserver(o BuildObserver) Option {
	return func(f *Factory) { f.observer = o }
}

// NewFactory creates a builder factory.
func NewFactory(resolver *services.ProfileResolver, opts ...Option) *Factory {
	f := &Factory{
		resolver: resolver,
		rules:    NewRuleSet(),
		now:      time.Now,
		newID:    values.NewResourceID,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Resolver returns the profile resolver builders use.
func (f *Factory) Resolver() *services.ProfileResolver {
	return f.resolver
}

// ForMedication starts a medication.
func (f *Factory) ForMedication() *MedicationBuilder { return newMedicationBuilder(f) }

// ForPatient starts a patient.
func (f *Factory) ForPatient() *PatientBuilder { return newPatientBuilder(f) }

// ForCoverage starts a coverage.
func (f *Factory) ForCoverage() *CoverageBuilder { return newCoverageBuilder(f) }

// ForPractitioner starts a practitioner.
func (f *Factory) ForPractitioner() *PractitionerBuilder { return newPractitionerBuilder(f) }

// ForOrganization starts an organization.
func (f *Factory) ForOrganization() *OrganizationBuilder { return newOrganizationBuilder(f) }

// ForMedicationRequest starts a prescription request.
func (f *Factory) ForMedicationRequest() *MedicationRequestBuilder {
	return newMedicationRequestBuilder(f)
}

// ForSupplyRequest starts a practice supply request.
func (f *Factory) ForSupplyRequest() *SupplyRequestBuilder { return newSupplyRequestBuilder(f) }

// ForPrescriptionBundle starts a prescription bundle.
func (f *Factory) ForPrescriptionBundle() *PrescriptionBundleBuilder {
	return newPrescriptionBundleBuilder(f)
}

// ForCommunication starts a communication of the given type.
func (f *Factory) ForCommunication(t CommunicationType) *CommunicationBuilder {
	return newCommunicationBuilder(f, t)
}

// ForMedicationDispense starts a medication dispense.
func (f *Factory) ForMedicationDispense() *MedicationDispenseBuilder {
	return newMedicationDispenseBuilder(f)
}

// ForDispenseOperation starts the input of a dispense close operation.
func (f *Factory) ForDispenseOperation() *DispenseOperationBuilder {
	return newDispenseOperationBuilder(f)
}

// ForOperationOutcome starts an operation outcome.
func (f *Factory) ForOperationOutcome() *OperationOutcomeBuilder {
	return newOperationOutcomeBuilder(f)
}
