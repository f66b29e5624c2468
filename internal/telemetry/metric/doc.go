// Package metric provides Prometheus metrics for PushMesh.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: Prometheus registry, relay metrics and HTTP handler
//   - collector.go: scrape-time collector reading the connection registry
//
// Metrics include:
//
//   - Active connection gauge and connect/disconnect counters
//   - Notification outcomes
//   - Inbound/outbound frame counters and liveness probes
//   - HTTP request latency histograms
//
// Metrics are exposed at /metrics in Prometheus format.
package metric
