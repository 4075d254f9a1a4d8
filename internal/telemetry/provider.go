// Package telemetry wires OpenTelemetry metrics and traces for completion
// requests. Everything is nil-safe so callers need not check whether
// telemetry is enabled.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/woxQAQ/template-css-lsp/completion"

// Config controls which signals are recorded.
type Config struct {
	ServiceName   string
	EnableMetrics bool
	EnableTraces  bool

	// TraceWriter receives exported spans. Defaults to stderr; stdout is
	// reserved for JSON-RPC.
	TraceWriter io.Writer
}

// Provider owns the meter and tracer providers and the derived instruments.
type Provider struct {
	cfg            Config
	reader         *sdkmetric.ManualReader
	meterProvider  *sdkmetric.MeterProvider
	tracerProvider *sdktrace.TracerProvider
	meter          metric.Meter
	tracer         trace.Tracer

	completions  *CompletionInstruments
	shutdownOnce sync.Once
}

// Setup creates the providers enabled in cfg. With nothing enabled it
// returns a Provider whose instruments are nil.
func Setup(ctx context.Context, cfg Config) (*Provider, error) {
	if !cfg.EnableMetrics && !cfg.EnableTraces {
		return &Provider{cfg: cfg}, nil
	}

	if strings.TrimSpace(cfg.ServiceName) == "" {
		cfg.ServiceName = "template-css-lsp"
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(
			attribute.String("service.name", cfg.ServiceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("build resource: %w", err)
	}

	p := &Provider{cfg: cfg}

	if cfg.EnableMetrics {
		p.reader = sdkmetric.NewManualReader()
		p.meterProvider = sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(p.reader),
			sdkmetric.WithResource(res),
		)
		p.meter = p.meterProvider.Meter(instrumentationName)
	}

	if cfg.EnableTraces {
		tp, err := createTracerProvider(cfg, res)
		if err != nil {
			return nil, err
		}
		p.tracerProvider = tp
		p.tracer = tp.Tracer(instrumentationName)
	}

	p.completions = newCompletionInstruments(p)
	return p, nil
}

func createTracerProvider(cfg Config, res *resource.Resource) (*sdktrace.TracerProvider, error) {
	w := cfg.TraceWriter
	if w == nil {
		w = os.Stderr
	}

	exp, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return nil, fmt.Errorf("init stdout trace exporter: %w", err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp, sdktrace.WithMaxExportBatchSize(64)),
		sdktrace.WithResource(res),
	), nil
}

// Completions returns the completion request instruments.
func (p *Provider) Completions() *CompletionInstruments {
	if p == nil {
		return nil
	}
	return p.completions
}

// Collect reads the current metric values. It returns an empty snapshot
// when metrics are disabled.
func (p *Provider) Collect(ctx context.Context) (metricdata.ResourceMetrics, error) {
	var rm metricdata.ResourceMetrics
	if p == nil || p.reader == nil {
		return rm, nil
	}
	err := p.reader.Collect(ctx, &rm)
	return rm, err
}

// Shutdown flushes and stops the configured providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}

	var err error
	p.shutdownOnce.Do(func() {
		var errs []error
		if p.meterProvider != nil {
			if shutdownErr := p.meterProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		if p.tracerProvider != nil {
			if shutdownErr := p.tracerProvider.Shutdown(ctx); shutdownErr != nil {
				errs = append(errs, shutdownErr)
			}
		}
		err = errors.Join(errs...)
	})
	return err
}
