package observability

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

const (
	metricAlignments       = "tsalign.alignments"
	metricDuration         = "tsalign.align.duration"
	metricClosedNodes      = "tsalign.align.closed_nodes"
	metricCost             = "tsalign.align.cost"
	metricTemplateSwitches = "tsalign.template_switches"

	attrStatus = "status"
)

// Alignment outcomes used as the status attribute.
const (
	StatusFound     = "found"
	StatusAborted   = "aborted"
	StatusExhausted = "exhausted"
	StatusError     = "error"
)

var (
	durationBuckets = []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300}
	nodeBuckets     = []float64{1e2, 1e3, 1e4, 1e5, 1e6, 1e7, 1e8}
	costBuckets     = []float64{0, 1, 5, 10, 25, 50, 100, 250, 1000}
)

// SearchMetrics holds the instruments describing alignment searches.
type SearchMetrics struct {
	alignments       metric.Int64Counter
	duration         metric.Float64Histogram
	closedNodes      metric.Int64Histogram
	cost             metric.Int64Histogram
	templateSwitches metric.Int64Counter
}

// NewSearchMetrics creates the search instruments from mt.
func NewSearchMetrics(mt metric.Meter) (*SearchMetrics, error) {
	b := newMetricBuilder(mt)

	sm := &SearchMetrics{
		alignments:       b.counter(metricAlignments, "Alignment searches by outcome", "{alignment}"),
		duration:         b.histogram(metricDuration, "Alignment search duration", "s", durationBuckets),
		closedNodes:      b.int64Histogram(metricClosedNodes, "Nodes closed per search", "{node}", nodeBuckets),
		cost:             b.int64Histogram(metricCost, "Cost of found alignments", "{cost}", costBuckets),
		templateSwitches: b.counter(metricTemplateSwitches, "Template switches in found alignments", "{switch}"),
	}

	if b.err != nil {
		return nil, b.err
	}

	return sm, nil
}

// Status classifies the outcome of aligner.Align.
func Status(err error) string {
	switch {
	case err == nil:
		return StatusFound
	case errors.Is(err, aligner.ErrSearchAborted):
		return StatusAborted
	case errors.Is(err, aligner.ErrSearchExhausted):
		return StatusExhausted
	default:
		return StatusError
	}
}

// RecordAlignment records one search. result may be nil when err is set;
// node counts of aborted searches are taken from the error.
func (sm *SearchMetrics) RecordAlignment(ctx context.Context, result *alignment.Alignment, err error, duration time.Duration) {
	status := Status(err)
	attrs := metric.WithAttributes(attribute.String(attrStatus, status))

	sm.alignments.Add(ctx, 1, attrs)
	sm.duration.Record(ctx, duration.Seconds(), attrs)

	var aborted *aligner.SearchAbortedError

	switch {
	case result != nil:
		sm.closedNodes.Record(ctx, int64(result.Statistics.ClosedNodes), attrs)
		sm.cost.Record(ctx, result.TotalCost.Int64())
		sm.templateSwitches.Add(ctx, int64(result.TemplateSwitches()))
	case errors.As(err, &aborted):
		sm.closedNodes.Record(ctx, int64(aborted.Statistics.ClosedNodes), attrs)
	}
}
