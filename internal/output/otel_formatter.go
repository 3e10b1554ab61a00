package output

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/mrzor/v8log/internal/codemap"
)

// OTELFormatter formats live code records as OpenTelemetry spans.
type OTELFormatter struct {
	tracer    trace.Tracer
	selection Selection
}

// NewOTELFormatter creates a new OTELFormatter.
func NewOTELFormatter(tracer trace.Tracer, selection Selection) *OTELFormatter {
	return &OTELFormatter{tracer: tracer, selection: selection}
}

// EmitRecords starts and ends one "v8log.code" span per selected record,
// as children of the span in ctx. It returns how many spans were emitted.
//
// With a converter the span starts at the record's creation time, otherwise
// at the current time.
func (f *OTELFormatter) EmitRecords(ctx context.Context, reg *codemap.Registry) (int, error) {
	records, err := f.selection.records(reg)
	if err != nil {
		return 0, err
	}

	for _, rec := range records {
		opts := []trace.SpanStartOption{trace.WithAttributes(recordAttributes(rec)...)}
		if f.selection.Converter.Enabled() {
			opts = append(opts, trace.WithTimestamp(f.selection.Converter.ToWallClock(rec.Timestamp)))
		}

		_, span := f.tracer.Start(ctx, "v8log.code", opts...)
		if customAttrs := f.selection.Evaluator.EvaluateCustomAttributes(rec); len(customAttrs) > 0 {
			span.SetAttributes(customAttrs...)
		}
		span.End()
	}
	return len(records), nil
}

//nolint:gosec // addresses and sizes fit in int64 on every supported target
func recordAttributes(rec *codemap.CodeRecord) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.String("code.name", rec.DisplayName()),
		attribute.String("code.type", rec.Type),
		attribute.String("code.kind", rec.Kind.String()),
		attribute.String("code.start", hex(rec.Start)),
		attribute.Int64("code.size", int64(rec.Size)),
		attribute.Int64("code.timestamp_us", rec.Timestamp),
	}
	if rec.Kind == codemap.KindFunctionCode {
		attrs = append(attrs, attribute.String("code.state", rec.State.String()))
	}
	if rec.Function != nil {
		attrs = append(attrs,
			attribute.String("code.function.address", hex(rec.Function.Address)),
			attribute.String("code.function.name", rec.Function.Name),
		)
	}
	return attrs
}
