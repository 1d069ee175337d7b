// Package monitor runs named HTTP probes against configured services and
// feeds the health stores. A per-service circuit breaker skips probing
// services that keep failing, and a Prometheus registry exposes probe and
// circuit metrics.
package monitor
