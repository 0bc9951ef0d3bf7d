package recurrence

import (
	"math"
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/models"
)

// Occurs determines whether a tracked item occurs on the given date
// based on its schedule. Pure and deterministic; the materializer and
// validation share it so they can never disagree.
func Occurs(item models.TrackedItem, date time.Time) bool {
	// An item never occurs before it existed.
	if item.CreatedOn != "" {
		created, err := time.Parse(constants.DateFormat, item.CreatedOn)
		if err != nil {
			return false
		}
		if date.Before(created) {
			return false
		}
	}

	if !frequencyMatches(item, date) {
		return false
	}

	return !ended(item, date)
}

func frequencyMatches(item models.TrackedItem, date time.Time) bool {
	sched := item.Schedule
	switch sched.Frequency {
	case models.FrequencyDaily:
		return true
	case models.FrequencyEveryOtherDay:
		anchor := sched.AnchorDate
		if anchor == "" {
			anchor = item.CreatedOn
		}
		anchorDate, err := time.Parse(constants.DateFormat, anchor)
		if err != nil {
			return false
		}
		days := daysBetween(anchorDate, date)
		return days >= 0 && days%2 == 0
	case models.FrequencyWeekly, models.FrequencyCustom:
		// An empty weekday set never occurs (fail safe, not fail open).
		for _, wd := range sched.Weekdays {
			if date.Weekday() == wd {
				return true
			}
		}
		return false
	default:
		return false
	}
}

func ended(item models.TrackedItem, date time.Time) bool {
	switch item.Schedule.EndCondition {
	case models.EndOnDate:
		end, err := time.Parse(constants.DateFormat, item.Schedule.EndDate)
		if err != nil {
			return true
		}
		// The end date itself still occurs; only strictly later dates
		// are suppressed.
		return date.After(end)
	case models.EndUntilSupply:
		return item.SupplyRemaining() == 0
	default:
		return false
	}
}

// daysBetween returns the whole-day distance from a to b. Date-based
// arithmetic with explicit rounding avoids DST drift.
func daysBetween(a, b time.Time) int {
	a = time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	b = time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(math.Round(b.Sub(a).Hours() / 24))
}
