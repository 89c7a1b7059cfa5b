// Package traffic provides live traffic conditions for an origin and
// destination pair. Snapshots come from a Source and are kept in a Cache
// whose entries expire lazily on read; no background eviction runs.
// DeriveAlerts turns a snapshot into user-facing alerts.
package traffic
