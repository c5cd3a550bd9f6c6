// Package tracing wraps OpenTelemetry so that each operation activation can be
// recorded as a span. Applications that never initialise a provider get no-op
// spans.
package tracing
