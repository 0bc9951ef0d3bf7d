package models

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
)

type Frequency string

const (
	FrequencyDaily         Frequency = "daily"
	FrequencyEveryOtherDay Frequency = "every_other_day"
	FrequencyWeekly        Frequency = "weekly"
	FrequencyCustom        Frequency = "custom"
)

type EndCondition string

const (
	EndOngoing     EndCondition = "ongoing"
	EndUntilSupply EndCondition = "until_supply"
	EndOnDate      EndCondition = "end_date"
)

// Schedule describes when a tracked item recurs. AnchorDate seeds the
// alternating-day arithmetic for every_other_day; Weekdays drives
// weekly/custom frequencies; EndDate applies when EndCondition is
// end_date.
type Schedule struct {
	Frequency    Frequency      `json:"frequency"`
	AnchorDate   string         `json:"anchor_date,omitempty"` // YYYY-MM-DD format
	Weekdays     []time.Weekday `json:"weekdays,omitempty"`
	EndCondition EndCondition   `json:"end_condition"`
	EndDate      string         `json:"end_date,omitempty"` // YYYY-MM-DD format
}

func (s Schedule) Validate() error {
	switch s.Frequency {
	case FrequencyDaily, FrequencyEveryOtherDay:
	case FrequencyWeekly, FrequencyCustom:
		if len(s.Weekdays) == 0 {
			return fmt.Errorf("weekdays must be specified for %s frequency", s.Frequency)
		}
	default:
		return fmt.Errorf("unknown frequency %q", s.Frequency)
	}

	if s.AnchorDate != "" {
		if _, err := time.Parse(constants.DateFormat, s.AnchorDate); err != nil {
			return fmt.Errorf("invalid anchor date (expected YYYY-MM-DD): %w", err)
		}
	}

	switch s.EndCondition {
	case EndOngoing, EndUntilSupply:
	case EndOnDate:
		if s.EndDate == "" {
			return fmt.Errorf("end date must be set for end_date condition")
		}
		if _, err := time.Parse(constants.DateFormat, s.EndDate); err != nil {
			return fmt.Errorf("invalid end date (expected YYYY-MM-DD): %w", err)
		}
	default:
		return fmt.Errorf("unknown end condition %q", s.EndCondition)
	}

	return nil
}

// TrackedItem is a single schedulable entry within a bucket: a
// medication, a vital sign to measure, or the synthetic item standing in
// for a simple bucket. Supply fields only apply under the until_supply
// end condition.
type TrackedItem struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Dosage     string   `json:"dosage,omitempty"` // medications
	Unit       string   `json:"unit,omitempty"`   // vitals, e.g. "mmHg"
	CustomTime string   `json:"custom_time,omitempty"` // HH:MM, overrides bucket times
	Schedule   Schedule `json:"schedule"`
	CreatedOn  string   `json:"created_on,omitempty"` // YYYY-MM-DD format

	DaysOfSupply int `json:"days_of_supply,omitempty"`
	SupplyUsed   int `json:"supply_used,omitempty"`

	ReminderOffsetMin   int `json:"reminder_offset_min,omitempty"`
	FollowUpIntervalMin int `json:"follow_up_interval_min,omitempty"`
	FollowUpMaxAttempts int `json:"follow_up_max_attempts,omitempty"`
}

// SupplyRemaining returns the days of supply left, never negative.
func (i TrackedItem) SupplyRemaining() int {
	remaining := i.DaysOfSupply - i.SupplyUsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

func (i TrackedItem) Validate() error {
	if i.Name == "" {
		return fmt.Errorf("item name cannot be empty")
	}
	if i.CustomTime != "" {
		if _, err := time.Parse(constants.TimeFormat, i.CustomTime); err != nil {
			return fmt.Errorf("item %s: invalid custom time (expected HH:MM): %w", i.Name, err)
		}
	}
	if i.CreatedOn != "" {
		if _, err := time.Parse(constants.DateFormat, i.CreatedOn); err != nil {
			return fmt.Errorf("item %s: invalid created-on date (expected YYYY-MM-DD): %w", i.Name, err)
		}
	}
	if i.Schedule.EndCondition == EndUntilSupply && i.DaysOfSupply < 1 {
		return fmt.Errorf("item %s: days of supply must be at least 1 for until_supply", i.Name)
	}
	if err := i.Schedule.Validate(); err != nil {
		return fmt.Errorf("item %s: %w", i.Name, err)
	}
	return nil
}
