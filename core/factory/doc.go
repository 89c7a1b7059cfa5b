// Package factory provides a small generic registry used to build pluggable
// modules (metrics sinks, plan log stores) from configuration.
package factory
