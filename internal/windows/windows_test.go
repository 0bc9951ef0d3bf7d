package windows

import (
	"testing"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

func TestFor_BoundaryMapping(t *testing.T) {
	cases := []struct {
		clock string
		want  models.Window
	}{
		{"00:00", models.WindowMorning},
		{"08:00", models.WindowMorning},
		{"11:59", models.WindowMorning},
		{"12:00", models.WindowAfternoon},
		{"16:59", models.WindowAfternoon},
		{"17:00", models.WindowEvening},
		{"20:59", models.WindowEvening},
		{"21:00", models.WindowNight},
		{"23:59", models.WindowNight},
		{"not-a-time", models.WindowNight},
	}
	for _, c := range cases {
		if got := For(c.clock); got != c.want {
			t.Errorf("For(%q) = %s, want %s", c.clock, got, c.want)
		}
	}
}

func TestEnd_NightAndCustomRunToEndOfDay(t *testing.T) {
	if End(models.WindowNight) != 24*60 {
		t.Errorf("Night window should end at end of day, got %d", End(models.WindowNight))
	}
	if End(models.WindowCustom) != 24*60 {
		t.Errorf("Custom window should end at end of day, got %d", End(models.WindowCustom))
	}
	if End(models.WindowMorning) != 12*60 {
		t.Errorf("Morning window should end at noon, got %d", End(models.WindowMorning))
	}
}

func TestGroupByWindow_OmitsEmptyWindowsAndKeepsOrder(t *testing.T) {
	now := time.Date(2026, 3, 5, 23, 0, 0, 0, time.UTC)
	instances := []models.DailyCareInstance{
		{ID: "a", Date: "2026-03-05", Window: models.WindowEvening, ScheduledAt: "18:00", Status: models.StatusPending},
		{ID: "b", Date: "2026-03-05", Window: models.WindowMorning, ScheduledAt: "08:00", Status: models.StatusCompleted},
	}

	groups := GroupByWindow("2026-03-05", instances, now)
	if len(groups) != 2 {
		t.Fatalf("Expected 2 groups, got %d", len(groups))
	}
	if groups[0].Window != models.WindowMorning || groups[1].Window != models.WindowEvening {
		t.Errorf("Groups out of canonical order: %s, %s", groups[0].Window, groups[1].Window)
	}
}

func TestGroupByWindow_Classification(t *testing.T) {
	// 10:00 on the target day: morning is current, afternoon is upcoming
	now := time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC)
	instances := []models.DailyCareInstance{
		{ID: "a", Date: "2026-03-05", Window: models.WindowMorning, ScheduledAt: "08:00", Status: models.StatusPending},
		{ID: "b", Date: "2026-03-05", Window: models.WindowAfternoon, ScheduledAt: "13:00", Status: models.StatusPending},
		{ID: "c", Date: "2026-03-05", Window: models.WindowEvening, ScheduledAt: "18:00", Status: models.StatusCompleted},
	}

	groups := GroupByWindow("2026-03-05", instances, now)
	byWindow := make(map[models.Window]Group)
	for _, g := range groups {
		byWindow[g.Window] = g
	}

	if got := byWindow[models.WindowMorning].State; got != StateAvailable {
		t.Errorf("Morning with pending items should be available, got %s", got)
	}
	if got := byWindow[models.WindowAfternoon].State; got != StateUpcoming {
		t.Errorf("Afternoon before 12:00 should be upcoming, got %s", got)
	}
	if got := byWindow[models.WindowEvening].State; got != StateUpcoming {
		t.Errorf("Evening before its start should be upcoming even when resolved, got %s", got)
	}
}

func TestGroupByWindow_PastDateNeverUpcoming(t *testing.T) {
	now := time.Date(2026, 3, 6, 8, 0, 0, 0, time.UTC)
	instances := []models.DailyCareInstance{
		{ID: "a", Date: "2026-03-05", Window: models.WindowNight, ScheduledAt: "21:30", Status: models.StatusMissed},
	}

	groups := GroupByWindow("2026-03-05", instances, now)
	if len(groups) != 1 {
		t.Fatalf("Expected 1 group, got %d", len(groups))
	}
	if groups[0].State == StateUpcoming {
		t.Error("Windows on a past date must never be upcoming")
	}
}

func TestGroupByWindow_DoneCountsSkipped(t *testing.T) {
	now := time.Date(2026, 3, 5, 22, 0, 0, 0, time.UTC)
	instances := []models.DailyCareInstance{
		{ID: "a", Date: "2026-03-05", Window: models.WindowNight, ScheduledAt: "21:30", Status: models.StatusCompleted},
		{ID: "b", Date: "2026-03-05", Window: models.WindowNight, ScheduledAt: "21:30", Status: models.StatusSkipped},
		{ID: "c", Date: "2026-03-05", Window: models.WindowNight, ScheduledAt: "21:30", Status: models.StatusPending},
	}

	groups := GroupByWindow("2026-03-05", instances, now)
	g := groups[0]
	if g.Done != 2 || g.Total != 3 {
		t.Errorf("Expected 2/3 done, got %d/%d", g.Done, g.Total)
	}
	if g.State != StateAvailable {
		t.Errorf("Window with a pending item should be available, got %s", g.State)
	}
}
