// Package tracing integrates OpenTelemetry with teller so that submissions,
// worker executions, terminations and accounting passes show up as spans.
// Services call StartSpan/EndSpan only; exporter setup happens once in Init.
package tracing
