// Package observability wires OpenTelemetry tracing and metrics.
//
// Setup installs OTLP/HTTP exporters as the global providers when the
// `telemetry` section is enabled:
//
//	telemetry:
//	  enabled: true
//	  endpoint: localhost:4318
//	  insecure: true
//	  sample_rate: 0.25
//
// Everything else in the package records through the otel globals, so
// spans and metrics cost nothing when telemetry is off:
//
//	shutdown, err := observability.Setup(ctx, cfg, "my-app", "1.2.0", "production")
//	defer shutdown(context.Background())
//
//	ctx, span := observability.StartSpan(ctx, observability.SpanBoot)
//	defer span.End()
package observability
