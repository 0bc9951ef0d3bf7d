package models

import "time"

// StreakRecord tracks consecutive qualifying calendar days for one
// category. Mutated only by the streak deriver, at most once per date.
type StreakRecord struct {
	PatientID string `json:"patient_id"`
	Category  string `json:"category"`
	Current   int    `json:"current"`
	Longest   int    `json:"longest"`
	LastDate  string `json:"last_date,omitempty"` // YYYY-MM-DD format
}

// Achievement is a one-time award for crossing a streak threshold,
// deduplicated by ID.
type Achievement struct {
	ID        string    `json:"id"` // "<category>-<threshold>"
	PatientID string    `json:"patient_id"`
	Category  string    `json:"category"`
	Threshold int       `json:"threshold"`
	AwardedAt time.Time `json:"awarded_at"`
}
