// Package metrics defines the observability contract of the planner. Sinks
// record plan, recommendation and traffic cache events; optional recorder
// interfaces let a sink opt in to each event family. Concrete sinks
// (Prometheus, InfluxDB) live in infra/metrics and register themselves with
// the factory so they can be selected from configuration.
package metrics
