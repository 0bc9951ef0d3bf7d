package windows

import (
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/models"
)

// For maps an HH:MM clock time to its display window using the fixed
// boundaries: morning ends at noon, afternoon at 17:00, evening at
// 21:00, the remainder is night. Unparseable times land in night
// rather than vanishing.
func For(clock string) models.Window {
	t, err := time.Parse(constants.TimeFormat, clock)
	if err != nil {
		return models.WindowNight
	}
	minutes := t.Hour()*60 + t.Minute()
	switch {
	case minutes < boundaryMinutes(constants.MorningEnd):
		return models.WindowMorning
	case minutes < boundaryMinutes(constants.AfternoonEnd):
		return models.WindowAfternoon
	case minutes < boundaryMinutes(constants.EveningEnd):
		return models.WindowEvening
	default:
		return models.WindowNight
	}
}

// End returns the clock minutes at which a window fully elapses.
// Night and custom windows run to end of day.
func End(w models.Window) int {
	switch w {
	case models.WindowMorning:
		return boundaryMinutes(constants.MorningEnd)
	case models.WindowAfternoon:
		return boundaryMinutes(constants.AfternoonEnd)
	case models.WindowEvening:
		return boundaryMinutes(constants.EveningEnd)
	default:
		return 24 * 60
	}
}

func boundaryMinutes(clock string) int {
	t, _ := time.Parse(constants.TimeFormat, clock)
	return t.Hour()*60 + t.Minute()
}

type WindowState string

const (
	StateUpcoming  WindowState = "upcoming"
	StateAvailable WindowState = "available"
	StateCompleted WindowState = "completed"
)

// Group is one display bucket of a day's instances.
type Group struct {
	Window    models.Window
	Instances []models.DailyCareInstance
	Done      int
	Total     int
	State     WindowState
}

// GroupByWindow partitions a day's instances into display windows in
// canonical order and classifies each window relative to now. Windows
// with no instances are omitted.
func GroupByWindow(date string, instances []models.DailyCareInstance, now time.Time) []Group {
	byWindow := make(map[models.Window][]models.DailyCareInstance)
	for _, inst := range instances {
		byWindow[inst.Window] = append(byWindow[inst.Window], inst)
	}

	var groups []Group
	for _, w := range models.AllWindows() {
		insts, ok := byWindow[w]
		if !ok {
			continue
		}
		g := Group{Window: w, Instances: insts, Total: len(insts)}
		pending := 0
		for _, inst := range insts {
			switch inst.Status {
			case models.StatusPending:
				pending++
			case models.StatusCompleted, models.StatusSkipped:
				g.Done++
			}
		}
		g.State = classify(w, date, pending, now)
		groups = append(groups, g)
	}
	return groups
}

func classify(w models.Window, date string, pending int, now time.Time) WindowState {
	if windowInFuture(w, date, now) {
		return StateUpcoming
	}
	if pending > 0 {
		return StateAvailable
	}
	return StateCompleted
}

// windowInFuture reports whether the window has not started yet
// relative to now. The current window is never "in the future".
func windowInFuture(w models.Window, date string, now time.Time) bool {
	today := now.Format(constants.DateFormat)
	if date < today {
		return false
	}
	if date > today {
		return true
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return nowMinutes < start(w)
}

func start(w models.Window) int {
	switch w {
	case models.WindowMorning:
		return 0
	case models.WindowAfternoon:
		return boundaryMinutes(constants.MorningEnd)
	case models.WindowEvening:
		return boundaryMinutes(constants.AfternoonEnd)
	case models.WindowNight:
		return boundaryMinutes(constants.EveningEnd)
	default:
		// Custom windows track their own scheduled times; treat as
		// already started so pending items stay actionable.
		return 0
	}
}
