package models

import "time"

type Outcome string

const (
	OutcomeTaken    Outcome = "taken"
	OutcomeMeasured Outcome = "measured"
	OutcomeLogged   Outcome = "logged"
	OutcomeSkipped  Outcome = "skipped"
)

// Status returns the terminal instance status an outcome maps to.
func (o Outcome) Status() InstanceStatus {
	if o == OutcomeSkipped {
		return StatusSkipped
	}
	return StatusCompleted
}

// AuditMeta records where a transition came from.
type AuditMeta struct {
	Surface string `json:"surface,omitempty"` // e.g. "cli", "notification"
	Action  string `json:"action,omitempty"`  // e.g. "complete", "skip"
}

// LogEntry is the immutable record of a completion or skip event.
// Written exactly once per transition, never mutated.
type LogEntry struct {
	ID         string         `json:"id"`
	InstanceID string         `json:"instance_id"`
	PatientID  string         `json:"patient_id"`
	Date       string         `json:"date"` // YYYY-MM-DD format
	Outcome    Outcome        `json:"outcome"`
	Payload    map[string]any `json:"payload,omitempty"` // category-specific values, e.g. a measurement
	Note       string         `json:"note,omitempty"`
	Audit      AuditMeta      `json:"audit"`
	CreatedAt  time.Time      `json:"created_at"`
}
