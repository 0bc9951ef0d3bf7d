package models

import "time"

type InstanceStatus string

const (
	StatusPending   InstanceStatus = "pending"
	StatusCompleted InstanceStatus = "completed"
	StatusSkipped   InstanceStatus = "skipped"
	StatusMissed    InstanceStatus = "missed"
)

// Terminal reports whether no further transition is defined out of the
// status.
func (s InstanceStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped || s == StatusMissed
}

type Window string

const (
	WindowMorning   Window = "morning"
	WindowAfternoon Window = "afternoon"
	WindowEvening   Window = "evening"
	WindowNight     Window = "night"
	WindowCustom    Window = "custom"
)

// AllWindows returns the display windows in canonical order.
func AllWindows() []Window {
	return []Window{WindowMorning, WindowAfternoon, WindowEvening, WindowNight, WindowCustom}
}

// InstanceKey identifies an instance within a (patient, date) scope.
// The materializer's idempotency contract is "at most one instance per
// key".
type InstanceKey struct {
	ItemID string
	Window Window
}

// DailyCareInstance is a single day's materialized occurrence of a
// tracked item. Created only by the materializer; status advanced only
// through the completion state machine or the missed sweep.
type DailyCareInstance struct {
	ID          string         `json:"id"`
	PatientID   string         `json:"patient_id"`
	Date        string         `json:"date"` // YYYY-MM-DD format
	Bucket      BucketType     `json:"bucket"`
	ItemID      string         `json:"item_id"`
	ItemName    string         `json:"item_name"`
	Detail      string         `json:"detail,omitempty"` // display metadata, e.g. dosage
	Window      Window         `json:"window"`
	ScheduledAt string         `json:"scheduled_at"` // HH:MM format
	Status      InstanceStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	ResolvedAt  *time.Time     `json:"resolved_at,omitempty"`
}

func (i DailyCareInstance) Key() InstanceKey {
	return InstanceKey{ItemID: i.ItemID, Window: i.Window}
}
