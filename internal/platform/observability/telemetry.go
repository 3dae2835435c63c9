package observability

import (
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "finitefield.org/pen-checkout"

// Tracer returns the tracer used by checkout components. Without a configured provider it is a no-op.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// Meter returns the meter used by checkout components. Without a configured provider it is a no-op.
func Meter() metric.Meter {
	return otel.GetMeterProvider().Meter(instrumentationName)
}
