// Package prometheus renders engine metrics in Prometheus text exposition
// format.
//
// [NewPrometheusExporter] accepts an [accounts.Engine] and exposes an
// [net/http.Handler] that renders all counters and histograms. Counter names
// are prefixed smartstudy_accounts_*_total; the single histogram is
// smartstudy_accounts_login_latency_seconds.
//
// # What this package must NOT do
//
//   - Register metrics in a global Prometheus registry; callers mount the
//     Handler.
//   - Mutate engine state.
package prometheus
