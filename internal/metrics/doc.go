// Package metrics provides Prometheus metrics for monitoring.
//
// Key metrics:
//   - Inbound frame rates and drops by reason
//   - Per-topic deliveries and handler failures
//   - Active subscriptions and connection state
//   - Token refresh outcomes
package metrics
