// Package middleware provides observability middleware for strand
// dispatchers: Prometheus request metrics and OpenTelemetry tracing.
package middleware
