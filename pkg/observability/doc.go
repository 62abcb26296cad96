// Package observability provides structured logging, Prometheus metrics,
// and OpenTelemetry tracing setup shared by the server and CLI tools.
package observability
