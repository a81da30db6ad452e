package observability

import (
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// metricBuilder creates instruments and keeps the first creation error, so a
// whole instrument set is checked once.
type metricBuilder struct {
	meter metric.Meter
	err   error
}

func newMetricBuilder(mt metric.Meter) *metricBuilder {
	return &metricBuilder{meter: mt}
}

func (b *metricBuilder) counter(name, desc, unit string) metric.Int64Counter {
	c, err := b.meter.Int64Counter(name, metric.WithDescription(desc), metric.WithUnit(unit))
	b.setErr(name, err)

	return c
}

// histogram creates a Float64Histogram with explicit bucket boundaries.
func (b *metricBuilder) histogram(name, desc, unit string, bounds []float64) metric.Float64Histogram {
	h, err := b.meter.Float64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

// int64Histogram creates an Int64Histogram with explicit bucket boundaries.
func (b *metricBuilder) int64Histogram(name, desc, unit string, bounds []float64) metric.Int64Histogram {
	h, err := b.meter.Int64Histogram(name,
		metric.WithDescription(desc),
		metric.WithUnit(unit),
		metric.WithExplicitBucketBoundaries(bounds...),
	)
	b.setErr(name, err)

	return h
}

func (b *metricBuilder) setErr(name string, err error) {
	if err != nil && b.err == nil {
		b.err = fmt.Errorf("create %s: %w", name, err)
	}
}
