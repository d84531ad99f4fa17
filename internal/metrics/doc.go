// Package metrics records synchronization metrics behind a Recorder
// interface. Components default to NoopRecorder and take a
// PrometheusRecorder when menuctl serve exposes /metrics.
package metrics
