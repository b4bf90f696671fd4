package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/daybook/internal/core/domain"
	"go.trai.ch/daybook/internal/core/ports"
	"go.trai.ch/zerr"
)

// Provider owns the tracer handed to the engine. When tracing is enabled it
// also owns the SDK tracer provider, which must be shut down on exit.
type Provider struct {
	tp     *sdktrace.TracerProvider
	tracer ports.Tracer
}

// Setup returns a no-op provider unless cfg.Trace is set, in which case it
// installs an SDK tracer provider that reports finished spans to logger.
func Setup(cfg domain.TelemetryConfig, logger ports.Logger) *Provider {
	if !cfg.Trace {
		return &Provider{tracer: NewNoOpTracer()}
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(NewJournal(logger)),
	)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp, tracer: NewOTelTracerFrom(tp, InstrumentationName)}
}

// Tracer returns the tracer of the provider.
func (p *Provider) Tracer() ports.Tracer {
	return p.tracer
}

// Enabled reports whether spans are recorded.
func (p *Provider) Enabled() bool {
	return p.tp != nil
}

// Shutdown flushes and stops the SDK tracer provider, if any.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p.tp == nil {
		return nil
	}
	return zerr.Wrap(p.tp.Shutdown(ctx), "failed to shut down tracer provider")
}
