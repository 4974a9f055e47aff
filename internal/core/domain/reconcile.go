package domain

import (
	"time"

	"github.com/google/uuid"
)

// ReconcileReport summarises one reconciliation sweep
type ReconcileReport struct {
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Threshold   time.Duration `json:"threshold"`
	Cutoff      time.Time     `json:"cutoff"`
	Found       int           `json:"found"`
	Processed   int           `json:"processed"`
	Skipped     int           `json:"skipped"`
	Failed      []uuid.UUID   `json:"failed"`
}

// ReconcileTrigger is a request, usually from an external scheduler, to run a sweep
type ReconcileTrigger struct {
	ThresholdHours float64 `json:"threshold_hours"`
}

// Threshold returns the trigger threshold as a duration
func (t ReconcileTrigger) Threshold() time.Duration {
	return time.Duration(t.ThresholdHours * float64(time.Hour))
}
