// Package server implements the optional HTTP diagnostics endpoints for a
// running chat session: health, the message log, sanitized configuration,
// and Prometheus metrics.
package server
