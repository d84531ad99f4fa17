package metrics

import "time"

// Outcome enumerates the final status of one replace operation.
type Outcome string

const (
	OutcomeSuccess  Outcome = "success"
	OutcomeInvalid  Outcome = "invalid"
	OutcomeNotFound Outcome = "not_found"
	OutcomeFailed   Outcome = "failed"
	OutcomeCanceled Outcome = "canceled"
)

// Recorder defines the observability hooks of the synchronizer.
type Recorder interface {
	ObserveSyncDuration(d time.Duration)
	IncSyncOutcome(outcome Outcome)
	AddItemsCreated(n int)
	AddItemsPurged(n int64)
	ObserveLockWait(d time.Duration)
	IncLockContended()
}

// NoopRecorder is a Recorder that does nothing (default when metrics are not configured).
type NoopRecorder struct{}

func (NoopRecorder) ObserveSyncDuration(time.Duration) {}
func (NoopRecorder) IncSyncOutcome(Outcome)            {}
func (NoopRecorder) AddItemsCreated(int)               {}
func (NoopRecorder) AddItemsPurged(int64)              {}
func (NoopRecorder) ObserveLockWait(time.Duration)     {}
func (NoopRecorder) IncLockContended()                 {}
