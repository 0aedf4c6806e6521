// Package prometheus exposes engine metrics through
// github.com/prometheus/client_golang.
//
// [Exporter] is a prometheus.Collector that reads an engine snapshot on
// every scrape. Counter names are authservice_*_total; the single
// histogram is authservice_verify_token_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in the global Prometheus registry. Callers choose
//     the registry or mount Handler.
//   - Mutate engine state.
package prometheus
