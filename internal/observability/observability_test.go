package observability_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/tsalign/internal/observability"
	"github.com/Sumatoshi-tech/tsalign/pkg/aligner"
	"github.com/Sumatoshi-tech/tsalign/pkg/alignment"
)

func TestInit_NoopWhenNothingExported(t *testing.T) {
	t.Parallel()

	providers, err := observability.Init(observability.DefaultConfig())
	require.NoError(t, err)

	assert.NotNil(t, providers.Tracer)
	assert.NotNil(t, providers.Meter)
	assert.NotNil(t, providers.Logger)
	require.NoError(t, providers.Shutdown(context.Background()))
}

func TestInit_LoggerAttributes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	cfg := observability.DefaultConfig()
	cfg.LogJSON = true
	cfg.LogOutput = &buf
	cfg.Environment = "test"
	cfg.LogLevel = slog.LevelWarn

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, providers.Shutdown(context.Background())) })

	providers.Logger.Info("hidden")
	providers.Logger.Warn("shown", "closed_nodes", 12)

	var record map[string]any

	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "shown", record["msg"])
	assert.Equal(t, "tsalign", record["service"])
	assert.Equal(t, "cli", record["mode"])
	assert.Equal(t, "test", record["env"])
	assert.InDelta(t, 12, record["closed_nodes"], 0)
}

func TestInit_MetricsTextfile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "tsalign.prom")

	cfg := observability.DefaultConfig()
	cfg.MetricsTextfile = path
	cfg.LogOutput = &bytes.Buffer{}

	providers, err := observability.Init(cfg)
	require.NoError(t, err)

	metrics, err := observability.NewSearchMetrics(providers.Meter)
	require.NoError(t, err)

	metrics.RecordAlignment(context.Background(), foundAlignment(), nil, time.Second)
	require.NoError(t, providers.Shutdown(context.Background()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "tsalign_alignments")
	assert.Contains(t, string(data), `status="found"`)
}

func TestTracingHandler_CorrelatesSpans(t *testing.T) {
	t.Parallel()

	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))

	var buf bytes.Buffer

	handler := observability.NewTracingHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
		"tsalign", "", observability.ModeCLI)
	logger := slog.New(handler).WithGroup("search")

	ctx, span := tp.Tracer("test").Start(context.Background(), "align")
	logger.DebugContext(ctx, "started")
	logger.InfoContext(ctx, "alignment found", "cost", 3, "exact", true)
	span.End()

	out := buf.String()
	assert.Contains(t, out, "trace_id="+span.SpanContext().TraceID().String())
	assert.Contains(t, out, "service=tsalign")
	assert.Contains(t, out, "search.cost=3")

	ended := recorder.Ended()
	require.Len(t, ended, 1)

	events := ended[0].Events()
	require.Len(t, events, 1)
	assert.Equal(t, "alignment found", events[0].Name)
	assert.Contains(t, events[0].Attributes, attribute.Int64("cost", 3))
	assert.Contains(t, events[0].Attributes, attribute.Bool("exact", true))
}

func TestTracingHandler_NoSpan(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	logger := slog.New(observability.NewTracingHandler(slog.NewTextHandler(&buf, nil), "svc", "prod", observability.ModeCLI))
	logger.Info("plain")

	assert.NotContains(t, buf.String(), "trace_id")
	assert.Contains(t, buf.String(), "env=prod")
}

func foundAlignment() *alignment.Alignment {
	return &alignment.Alignment{
		TotalCost: 3,
		Operations: []alignment.Run{
			{Count: 1, Type: alignment.Entrance(alignment.SecondaryQuery, 2)},
			{Count: 1, Type: alignment.Exit(2)},
		},
		Statistics: alignment.Statistics{ClosedNodes: 40},
	}
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics

	require.NoError(t, reader.Collect(context.Background(), &rm))

	return rm
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for idx := range rm.ScopeMetrics {
		for midx := range rm.ScopeMetrics[idx].Metrics {
			if rm.ScopeMetrics[idx].Metrics[midx].Name == name {
				return &rm.ScopeMetrics[idx].Metrics[midx]
			}
		}
	}

	return nil
}

func TestSearchMetrics_RecordAlignment(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	metrics, err := observability.NewSearchMetrics(mp.Meter("test"))
	require.NoError(t, err)

	ctx := context.Background()
	aborted := &aligner.SearchAbortedError{
		Reason:     aligner.MemoryLimitExceeded,
		Statistics: alignment.Statistics{ClosedNodes: 7},
	}

	metrics.RecordAlignment(ctx, foundAlignment(), nil, time.Millisecond)
	metrics.RecordAlignment(ctx, nil, aborted, time.Millisecond)
	metrics.RecordAlignment(ctx, nil, fmt.Errorf("wrapped: %w", aligner.ErrSearchExhausted), time.Millisecond)

	rm := collect(t, reader)

	total := findMetric(rm, "tsalign.alignments")
	require.NotNil(t, total)

	byStatus := map[string]int64{}
	for _, dp := range total.Data.(metricdata.Sum[int64]).DataPoints {
		status, _ := dp.Attributes.Value("status")
		byStatus[status.AsString()] += dp.Value
	}

	assert.Equal(t, map[string]int64{"found": 1, "aborted": 1, "exhausted": 1}, byStatus)

	switches := findMetric(rm, "tsalign.template_switches")
	require.NotNil(t, switches)
	assert.Equal(t, int64(1), switches.Data.(metricdata.Sum[int64]).DataPoints[0].Value)

	nodes := findMetric(rm, "tsalign.align.closed_nodes")
	require.NotNil(t, nodes)

	var closed int64
	for _, dp := range nodes.Data.(metricdata.Histogram[int64]).DataPoints {
		closed += dp.Sum
	}

	assert.Equal(t, int64(47), closed)
	assert.NotNil(t, findMetric(rm, "tsalign.align.duration"))
	assert.NotNil(t, findMetric(rm, "tsalign.align.cost"))
}

func TestStatus(t *testing.T) {
	t.Parallel()

	assert.Equal(t, observability.StatusFound, observability.Status(nil))
	assert.Equal(t, observability.StatusAborted, observability.Status(&aligner.SearchAbortedError{}))
	assert.Equal(t, observability.StatusExhausted, observability.Status(aligner.ErrSearchExhausted))
	assert.Equal(t, observability.StatusError, observability.Status(aligner.ErrInvalidOptions))
}

func TestParseOTLPHeaders(t *testing.T) {
	t.Parallel()

	assert.Nil(t, observability.ParseOTLPHeaders(""))
	assert.Nil(t, observability.ParseOTLPHeaders("garbage"))
	assert.Equal(t, map[string]string{"a": "1", "b": "2"}, observability.ParseOTLPHeaders(" a=1, b = 2"))
}
