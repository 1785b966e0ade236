// Package metrics exposes dashboard counters in the Prometheus exposition format.
//
// Dashboard owns a private prometheus.Registry holding the request, callback,
// session, dataset and reload families plus the Go runtime collector.
// ServeHTTP serves it through promhttp, so /metrics is scrapeable by any
// Prometheus server.
//
// Instrument wraps an http.Handler and counts requests by route and status.
package metrics
