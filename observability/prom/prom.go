// Package prom adapts Prometheus collectors to the observability
// MetricFactory interface.
package prom

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/fanbase-labs/keymarket/observability"
)

// Compile-time interface check.
var _ observability.MetricFactory = (*Factory)(nil)

// Factory creates Prometheus-backed counters and histograms. Metric names
// use dots as separators; they are rewritten to underscores to satisfy the
// Prometheus naming rules.
type Factory struct {
	reg     prometheus.Registerer
	buckets []float64
}

// Option configures a Factory.
type Option func(*Factory)

// WithBuckets overrides the histogram buckets. The default is an exponential
// ladder suited to token-denominated values.
func WithBuckets(buckets []float64) Option {
	return func(f *Factory) {
		f.buckets = buckets
	}
}

// NewFactory creates a Factory registering collectors with reg. Pass
// prometheus.DefaultRegisterer for the process-global registry.
func NewFactory(reg prometheus.Registerer, opts ...Option) *Factory {
	f := &Factory{
		reg:     reg,
		buckets: prometheus.ExponentialBuckets(0.001, 10, 10),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Counter implements observability.MetricFactory.
func (f *Factory) Counter(name string) observability.Counter {
	c := prometheus.NewCounter(prometheus.CounterOpts{
		Name: sanitize(name),
	})
	if existing, ok := f.register(c).(prometheus.Counter); ok {
		return existing
	}
	return c
}

// Histogram implements observability.MetricFactory.
func (f *Factory) Histogram(name string) observability.Histogram {
	h := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    sanitize(name),
		Buckets: f.buckets,
	})
	if existing, ok := f.register(h).(prometheus.Histogram); ok {
		return existing
	}
	return h
}

// register tolerates duplicate registration so two extensions sharing one
// registry do not panic. It returns the previously registered collector on
// a duplicate, nil otherwise.
func (f *Factory) register(c prometheus.Collector) prometheus.Collector {
	err := f.reg.Register(c)
	if err == nil {
		return nil
	}
	are, ok := err.(prometheus.AlreadyRegisteredError)
	if !ok {
		panic(err)
	}
	return are.ExistingCollector
}

func sanitize(name string) string {
	return strings.ReplaceAll(name, ".", "_")
}
