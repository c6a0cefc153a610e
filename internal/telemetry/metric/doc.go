// Package metric provides Prometheus metrics for the CSRF guard.
//
//   - prometheus.go: registry, guard counters and the /metrics handler
//   - collector.go: outstanding-token gauge read from the store on scrape
//
// All metrics use the csrfguard namespace.
package metric
