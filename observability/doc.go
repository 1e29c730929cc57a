// Package observability wires OpenTelemetry tracing and metrics for restauth.
//
// Without InitTracer/InitMeter the global no-op providers are used, so spans
// and instruments are always safe to create.
package observability
