// Package telemetry exposes Prometheus counters for enforcement runs.
// The Metrics type implements engine.Stats and plugs into the pillar
// via engine.WithStats.
package telemetry
