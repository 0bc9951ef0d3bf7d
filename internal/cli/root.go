package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mwhitaker/caretrack/internal/care"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

type Context struct {
	Store   storage.Provider
	Service *care.Service
	Patient string
}

// ParseWeekdays parses a comma-separated list of weekdays
func ParseWeekdays(s string) ([]time.Weekday, error) {
	parts := strings.Split(s, ",")
	var weekdays []time.Weekday

	dayMap := map[string]time.Weekday{
		"sun":       time.Sunday,
		"sunday":    time.Sunday,
		"mon":       time.Monday,
		"monday":    time.Monday,
		"tue":       time.Tuesday,
		"tuesday":   time.Tuesday,
		"wed":       time.Wednesday,
		"wednesday": time.Wednesday,
		"thu":       time.Thursday,
		"thursday":  time.Thursday,
		"fri":       time.Friday,
		"friday":    time.Friday,
		"sat":       time.Saturday,
		"saturday":  time.Saturday,
	}

	for _, part := range parts {
		part = strings.TrimSpace(strings.ToLower(part))
		if wd, ok := dayMap[part]; ok {
			weekdays = append(weekdays, wd)
		} else {
			// Try parsing as number (0=Sunday, 6=Saturday)
			num, err := strconv.Atoi(part)
			if err == nil && num >= 0 && num <= 6 {
				weekdays = append(weekdays, time.Weekday(num))
			} else {
				return nil, fmt.Errorf("invalid weekday: %s", part)
			}
		}
	}

	return weekdays, nil
}

// FormatSchedule formats an item schedule into a human-readable string
func FormatSchedule(s models.Schedule) string {
	var freq string
	switch s.Frequency {
	case models.FrequencyDaily:
		freq = "daily"
	case models.FrequencyEveryOtherDay:
		freq = "every other day"
	case models.FrequencyWeekly, models.FrequencyCustom:
		var days []string
		for _, wd := range s.Weekdays {
			days = append(days, wd.String()[:3])
		}
		freq = fmt.Sprintf("on %s", strings.Join(days, ","))
	default:
		freq = string(s.Frequency)
	}

	switch s.EndCondition {
	case models.EndUntilSupply:
		return freq + " until supply runs out"
	case models.EndOnDate:
		return fmt.Sprintf("%s through %s", freq, s.EndDate)
	default:
		return freq
	}
}

// StatusGlyph returns the single-character marker used in list output
func StatusGlyph(status models.InstanceStatus) string {
	switch status {
	case models.StatusCompleted:
		return "✓"
	case models.StatusSkipped:
		return "-"
	case models.StatusMissed:
		return "✗"
	default:
		return " "
	}
}
