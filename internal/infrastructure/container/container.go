// Package container provides dependency injection for the application.
package container

import (
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/application/services"
	"github.com/reglet-dev/rxforge/internal/domain/builder"
	domainservices "github.com/reglet-dev/rxforge/internal/domain/services"
	"github.com/reglet-dev/rxforge/internal/infrastructure/adapters"
	infraconfig "github.com/reglet-dev/rxforge/internal/infrastructure/config"
	"github.com/reglet-dev/rxforge/internal/infrastructure/fhirjson"
	"github.com/reglet-dev/rxforge/internal/infrastructure/metrics"
	"github.com/reglet-dev/rxforge/internal/infrastructure/output"
	"github.com/reglet-dev/rxforge/internal/infrastructure/redaction"
	"github.com/reglet-dev/rxforge/internal/infrastructure/system"
	"github.com/reglet-dev/rxforge/internal/infrastructure/validation"
)

// Container holds all application dependencies.
type Container struct {
	systemCfg        *system.Config
	catalog          *infraconfig.Catalog
	redactor         *redaction.Redactor
	resolver         *domainservices.ProfileResolver
	factory          *builder.Factory
	codec            *fhirjson.Codec
	validator        *validation.SchemaValidator
	recorder         *adapters.RecorderAdapter
	metrics          *metrics.Collector
	decoder          *services.ResponseDecoder
	validateUseCase  *services.ValidateDocumentsUseCase
	profileService   *services.ProfileService
	sampleService    *services.SampleService
	formatterFactory *output.FormatterFactory
	logger           *slog.Logger
}

// Options configure the container.
type Options struct {
	// Logger is used as is. Without one, a text logger on LogWriter is
	// created whose output passes through the redactor.
	Logger    *slog.Logger
	LogWriter io.Writer
	LogLevel  slog.Level

	// SystemConfigPath defaults to ~/.rxforge.yaml
	SystemConfigPath string

	// Toggles supplies profile toggles; nil means none are set.
	Toggles ports.ToggleSource

	// MetricsRegistry receives the counters. Without one, a private registry
	// is created when metrics are enabled in the system config.
	MetricsRegistry *prometheus.Registry

	// Now overrides the clock for catalog defaults and builders.
	Now func() time.Time
}

// New creates a new dependency injection container.
func New(opts Options) (*Container, error) {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	bootLogger := opts.Logger
	if bootLogger == nil {
		bootLogger = slog.Default()
	}

	// Load system config
	systemCfg, err := adapters.NewSystemConfigAdapter().LoadConfig(opts.SystemConfigPath)
	if err != nil {
		bootLogger.Debug("failed to load system config, using defaults", "error", err)
		systemCfg = system.DefaultConfig()
	}

	// Initialize redactor
	redactor, err := redaction.New(systemCfg.ToRedactionConfig())
	if err != nil {
		return nil, fmt.Errorf("invalid redaction config: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		if opts.LogWriter == nil {
			logger = slog.Default()
		} else {
			logger = slog.New(slog.NewTextHandler(
				redaction.NewWriter(opts.LogWriter, redactor),
				&slog.HandlerOptions{Level: opts.LogLevel},
			))
		}
	}

	// Load the profile catalog (embedded unless overridden)
	catalog, err := adapters.NewCatalogAdapter(infraconfig.WithLoadClock(opts.Now)).LoadCatalog(systemCfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	// Create domain services
	resolver := domainservices.NewProfileResolver(catalog.Registry, opts.Toggles)

	factoryOpts := []builder.Option{
		builder.WithRules(catalog.Rules),
		builder.WithClock(opts.Now),
	}
	decoderOpts := []services.DecoderOption{services.WithLogger(logger)}

	// Metrics are optional
	var collector *metrics.Collector
	reg := opts.MetricsRegistry
	if reg == nil && systemCfg.Metrics.Enabled {
		reg = prometheus.NewRegistry()
	}
	if reg != nil {
		collector = metrics.NewWithRegistry(reg)
		factoryOpts = append(factoryOpts, builder.WithObserver(collector))
	}
	observers := adapters.ObserverChain{adapters.LoggingObserver{Logger: logger}}
	if collector != nil {
		observers = append(observers, collector)
	}
	decoderOpts = append(decoderOpts, services.WithDecodeObserver(observers))

	factory := builder.NewFactory(resolver, factoryOpts...)

	// Create infrastructure adapters
	codec := fhirjson.NewCodec(fhirjson.WithIndent("  "))
	validator, err := validation.NewSchemaValidator(catalog.Registry)
	if err != nil {
		return nil, err
	}
	recorder := adapters.NewRecorderAdapter(systemCfg.Diagnostics.Dir, redactor, logger)
	decoderOpts = append(decoderOpts,
		services.WithPayloadRecorder(recorder),
		services.WithDecoderClock(opts.Now),
	)

	// Wire up use cases
	decoder := services.NewResponseDecoder(codec, validator, decoderOpts...)

	return &Container{
		systemCfg:        systemCfg,
		catalog:          catalog,
		redactor:         redactor,
		resolver:         resolver,
		factory:          factory,
		codec:            codec,
		validator:        validator,
		recorder:         recorder,
		metrics:          collector,
		decoder:          decoder,
		validateUseCase:  services.NewValidateDocumentsUseCase(decoder, logger),
		profileService:   services.NewProfileService(resolver),
		sampleService:    services.NewSampleService(factory),
		formatterFactory: output.NewFormatterFactory(),
		logger:           logger,
	}, nil
}

// ValidateDocumentsUseCase returns the batch validation use case.
func (c *Container) ValidateDocumentsUseCase() *services.ValidateDocumentsUseCase {
	return c.validateUseCase
}

// ResponseDecoder returns the response decoder.
func (c *Container) ResponseDecoder() *services.ResponseDecoder {
	return c.decoder
}

// ProfileService returns the profile catalog service.
func (c *Container) ProfileService() *services.ProfileService {
	return c.profileService
}

// SampleService returns the sample document service.
func (c *Container) SampleService() *services.SampleService {
	return c.sampleService
}

// BuilderFactory returns the builder factory.
func (c *Container) BuilderFactory() *builder.Factory {
	return c.factory
}

// Encoder returns the document encoder.
func (c *Container) Encoder() ports.Encoder {
	return c.codec
}

// FormatterFactory returns the output formatter factory.
func (c *Container) FormatterFactory() ports.OutputFormatterFactory {
	return c.formatterFactory
}

// RecentFailures returns up to limit server failure payloads seen by this
// process, newest first.
func (c *Container) RecentFailures(limit int) []ports.PayloadRecord {
	return c.recorder.Recent(limit)
}

// Redactor returns the configured redactor.
func (c *Container) Redactor() *redaction.Redactor {
	return c.redactor
}

// Metrics returns the metrics collector, nil when metrics are disabled.
func (c *Container) Metrics() *metrics.Collector {
	return c.metrics
}

// SystemConfig returns the system configuration.
func (c *Container) SystemConfig() *system.Config {
	return c.systemCfg
}

// Logger returns the configured logger.
func (c *Container) Logger() *slog.Logger {
	return c.logger
}

// Close flushes metrics to the configured textfile.
func (c *Container) Close() error {
	if c.metrics == nil || c.systemCfg.Metrics.Textfile == "" {
		return nil
	}
	if err := c.metrics.WriteTextfile(c.systemCfg.Metrics.Textfile); err != nil {
		return fmt.Errorf("failed to write metrics: %w", err)
	}
	return nil
}
