// Package metrics provides Prometheus counters for decode and build outcomes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/reglet-dev/rxforge/internal/application/ports"
	"github.com/reglet-dev/rxforge/internal/domain/builder"
	"github.com/reglet-dev/rxforge/internal/domain/document"
)

const namespace = "rxforge"

var (
	_ ports.DecodeObserver  = (*Collector)(nil)
	_ builder.BuildObserver = (*Collector)(nil)
)

// Collector holds all Prometheus metrics of the engine.
type Collector struct {
	registry prometheus.Gatherer

	// Decode metrics
	DecodeTotal *prometheus.CounterVec

	// Build metrics
	BuildTotal *prometheus.CounterVec
}

// NewWithRegistry creates a collector with all metrics registered on reg.
func NewWithRegistry(reg *prometheus.Registry) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		registry: reg,
		DecodeTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "decode_total",
				Help:      "Total number of decoded responses by expected kind, actual kind and outcome",
			},
			[]string{"expected", "actual", "outcome"},
		),
		BuildTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "build_total",
				Help:      "Total number of builds by document kind and outcome",
			},
			[]string{"kind", "outcome"},
		),
	}
}

// ObserveDecode counts a decode.
func (c *Collector) ObserveDecode(expected, actual document.Kind, outcome ports.DecodeOutcome) {
	c.DecodeTotal.WithLabelValues(kindLabel(expected), kindLabel(actual), string(outcome)).Inc()
}

// ObserveBuild counts a build.
func (c *Collector) ObserveBuild(kind document.Kind, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "failed"
	}
	c.BuildTotal.WithLabelValues(kindLabel(kind), outcome).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, for the
// node exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, c.registry)
}

func kindLabel(k document.Kind) string {
	if k.IsZero() {
		return "none"
	}
	return k.Name()
}
