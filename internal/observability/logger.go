package observability

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	attrTraceID = "trace_id"
	attrSpanID  = "span_id"
	attrService = "service"
	attrEnv     = "env"
	attrMode    = "mode"
)

// TracingHandler is an [slog.Handler] that correlates log records with the
// active span: it adds trace_id and span_id to each record and mirrors
// records at or above eventLevel as span events. The service attributes are
// attached once at construction and stay ungrouped.
type TracingHandler struct {
	inner      slog.Handler
	eventLevel slog.Level
}

// NewTracingHandler wraps inner. Records at Info and above become span events.
func NewTracingHandler(inner slog.Handler, service, env string, appMode AppMode) *TracingHandler {
	attrs := []slog.Attr{
		slog.String(attrService, service),
		slog.String(attrMode, string(appMode)),
	}

	if env != "" {
		attrs = append(attrs, slog.String(attrEnv, env))
	}

	return &TracingHandler{inner: inner.WithAttrs(attrs), eventLevel: slog.LevelInfo}
}

// Enabled delegates to the inner handler.
func (th *TracingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return th.inner.Enabled(ctx, level)
}

// Handle annotates record with the span of ctx and forwards it.
func (th *TracingHandler) Handle(ctx context.Context, record slog.Record) error {
	span := trace.SpanFromContext(ctx)

	if sc := span.SpanContext(); sc.IsValid() {
		record.AddAttrs(
			slog.String(attrTraceID, sc.TraceID().String()),
			slog.String(attrSpanID, sc.SpanID().String()),
		)
	}

	if span.IsRecording() && record.Level >= th.eventLevel {
		span.AddEvent(record.Message, trace.WithAttributes(eventAttributes(record)...))
	}

	err := th.inner.Handle(ctx, record)
	if err != nil {
		return fmt.Errorf("tracing handler: %w", err)
	}

	return nil
}

func eventAttributes(record slog.Record) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, record.NumAttrs()+1)
	kvs = append(kvs, attribute.String("log.severity", record.Level.String()))

	record.Attrs(func(a slog.Attr) bool {
		if a.Key == attrTraceID || a.Key == attrSpanID {
			return true
		}

		switch v := a.Value.Resolve(); v.Kind() {
		case slog.KindInt64:
			kvs = append(kvs, attribute.Int64(a.Key, v.Int64()))
		case slog.KindUint64:
			kvs = append(kvs, attribute.Int64(a.Key, int64(v.Uint64())))
		case slog.KindBool:
			kvs = append(kvs, attribute.Bool(a.Key, v.Bool()))
		case slog.KindFloat64:
			kvs = append(kvs, attribute.Float64(a.Key, v.Float64()))
		default:
			kvs = append(kvs, attribute.String(a.Key, v.String()))
		}

		return true
	})

	return kvs
}

// WithAttrs returns a handler with attrs added to the inner handler.
func (th *TracingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &TracingHandler{inner: th.inner.WithAttrs(attrs), eventLevel: th.eventLevel}
}

// WithGroup returns a handler whose inner handler nests attributes under name.
func (th *TracingHandler) WithGroup(name string) slog.Handler {
	return &TracingHandler{inner: th.inner.WithGroup(name), eventLevel: th.eventLevel}
}
