package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// Request outcomes.
const (
	OutcomeOK       = "ok"
	OutcomeError    = "error"
	OutcomeNotFound = "no_fragment"
)

// CompletionInstruments records one measurement per completion request.
type CompletionInstruments struct {
	meterEnabled bool

	counterRequests metric.Int64Counter
	counterErrors   metric.Int64Counter
	histDuration    metric.Int64Histogram

	tracer trace.Tracer
}

// RequestHandle carries the state of one in-flight request.
type RequestHandle struct {
	ctx   context.Context
	span  trace.Span
	start time.Time
	attrs []attribute.KeyValue
}

func newCompletionInstruments(p *Provider) *CompletionInstruments {
	inst := &CompletionInstruments{
		meterEnabled: p.meterProvider != nil,
	}
	if p.meterProvider != nil {
		inst.counterRequests, _ = p.meter.Int64Counter(
			"completion.requests_total",
			metric.WithDescription("Number of completion requests handled"),
		)
		inst.counterErrors, _ = p.meter.Int64Counter(
			"completion.errors_total",
			metric.WithDescription("Number of completion requests that ended in error"),
		)
		inst.histDuration, _ = p.meter.Int64Histogram(
			"completion.request.duration",
			metric.WithDescription("Duration of completion requests in milliseconds"),
			metric.WithUnit("ms"),
		)
	}
	if p.tracerProvider != nil {
		inst.tracer = p.tracer
	}
	return inst
}

// Start begins a request. The returned context carries the span when
// tracing is enabled.
func (i *CompletionInstruments) Start(parent context.Context, method string) (*RequestHandle, context.Context) {
	if i == nil {
		return nil, parent
	}

	h := &RequestHandle{
		ctx:   parent,
		start: time.Now(),
		attrs: []attribute.KeyValue{attribute.String("rpc.method", method)},
	}

	if i.tracer != nil {
		ctx, span := i.tracer.Start(parent, "completion."+method, trace.WithAttributes(h.attrs...))
		h.ctx = ctx
		h.span = span
	}
	return h, h.ctx
}

// Finish records the outcome of a request started with Start.
func (i *CompletionInstruments) Finish(h *RequestHandle, outcome string, entries int, err error) {
	if i == nil || h == nil {
		return
	}

	elapsed := time.Since(h.start)
	attrs := append([]attribute.KeyValue{}, h.attrs...)
	attrs = append(attrs, attribute.String("outcome", outcome))

	if i.meterEnabled {
		i.counterRequests.Add(h.ctx, 1, metric.WithAttributes(attrs...))
		if outcome == OutcomeError {
			i.counterErrors.Add(h.ctx, 1, metric.WithAttributes(attrs...))
		}
		i.histDuration.Record(h.ctx, elapsed.Milliseconds(), metric.WithAttributes(attrs...))
	}

	if h.span != nil {
		h.span.SetAttributes(append(attrs, attribute.Int("completion.entries", entries))...)
		if err != nil {
			h.span.RecordError(err)
			h.span.SetStatus(codes.Error, err.Error())
		}
		h.span.End()
	}
}
