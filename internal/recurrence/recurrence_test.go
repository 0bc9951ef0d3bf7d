package recurrence

import (
	"testing"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestOccurs_Daily(t *testing.T) {
	item := models.TrackedItem{
		ID:        "aspirin",
		Name:      "Aspirin",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyDaily,
			EndCondition: models.EndOngoing,
		},
	}

	for _, date := range []string{"2026-01-01", "2026-01-02", "2026-02-15"} {
		if !Occurs(item, day(date)) {
			t.Errorf("Expected daily item to occur on %s", date)
		}
	}
}

func TestOccurs_BeforeCreation(t *testing.T) {
	item := models.TrackedItem{
		ID:        "aspirin",
		Name:      "Aspirin",
		CreatedOn: "2026-03-10",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyDaily,
			EndCondition: models.EndOngoing,
		},
	}

	if Occurs(item, day("2026-03-09")) {
		t.Error("Item must not occur before its creation date")
	}
	if !Occurs(item, day("2026-03-10")) {
		t.Error("Item should occur on its creation date")
	}
}

func TestOccurs_EveryOtherDay(t *testing.T) {
	item := models.TrackedItem{
		ID:        "warfarin",
		Name:      "Warfarin",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyEveryOtherDay,
			AnchorDate:   "2026-01-01",
			EndCondition: models.EndOngoing,
		},
	}

	cases := []struct {
		date string
		want bool
	}{
		{"2026-01-01", true},
		{"2026-01-02", false},
		{"2026-01-03", true},
		{"2026-01-04", false},
		{"2026-01-31", true}, // 30 days after anchor
	}
	for _, c := range cases {
		if got := Occurs(item, day(c.date)); got != c.want {
			t.Errorf("Occurs(%s) = %v, want %v", c.date, got, c.want)
		}
	}
}

func TestOccurs_EveryOtherDayFallsBackToCreatedOn(t *testing.T) {
	item := models.TrackedItem{
		ID:        "b12",
		Name:      "B12",
		CreatedOn: "2026-02-02",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyEveryOtherDay,
			EndCondition: models.EndOngoing,
		},
	}

	if !Occurs(item, day("2026-02-02")) {
		t.Error("Expected occurrence on created-on date when no anchor set")
	}
	if Occurs(item, day("2026-02-03")) {
		t.Error("Expected no occurrence one day after created-on")
	}
	if !Occurs(item, day("2026-02-04")) {
		t.Error("Expected occurrence two days after created-on")
	}
}

func TestOccurs_WeeklyRespectsWeekdays(t *testing.T) {
	item := models.TrackedItem{
		ID:        "physio",
		Name:      "Physio exercises",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyWeekly,
			Weekdays:     []time.Weekday{time.Monday, time.Thursday},
			EndCondition: models.EndOngoing,
		},
	}

	// Four weeks starting Monday 2026-01-05
	start := day("2026-01-05")
	occurrences := 0
	for i := 0; i < 28; i++ {
		d := start.AddDate(0, 0, i)
		if Occurs(item, d) {
			occurrences++
			if wd := d.Weekday(); wd != time.Monday && wd != time.Thursday {
				t.Errorf("Unexpected occurrence on %s (%s)", d.Format("2006-01-02"), wd)
			}
		}
	}
	if occurrences != 8 {
		t.Errorf("Expected 8 occurrences over 4 weeks, got %d", occurrences)
	}
}

func TestOccurs_EmptyWeekdaySetNeverOccurs(t *testing.T) {
	item := models.TrackedItem{
		ID:        "broken",
		Name:      "Broken schedule",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyCustom,
			EndCondition: models.EndOngoing,
		},
	}

	for i := 0; i < 7; i++ {
		d := day("2026-01-05").AddDate(0, 0, i)
		if Occurs(item, d) {
			t.Errorf("Item with empty weekday set must never occur, occurred on %s", d.Format("2006-01-02"))
		}
	}
}

func TestOccurs_EndDate(t *testing.T) {
	item := models.TrackedItem{
		ID:        "antibiotic",
		Name:      "Amoxicillin",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyDaily,
			EndCondition: models.EndOnDate,
			EndDate:      "2026-01-10",
		},
	}

	if !Occurs(item, day("2026-01-10")) {
		t.Error("Item should still occur on its end date")
	}
	if Occurs(item, day("2026-01-11")) {
		t.Error("Item must not occur after its end date")
	}
}

func TestOccurs_UntilSupplyExhausted(t *testing.T) {
	item := models.TrackedItem{
		ID:        "statin",
		Name:      "Atorvastatin",
		CreatedOn: "2026-01-01",
		Schedule: models.Schedule{
			Frequency:    models.FrequencyDaily,
			EndCondition: models.EndUntilSupply,
		},
		DaysOfSupply: 5,
		SupplyUsed:   5,
	}

	if Occurs(item, day("2026-01-06")) {
		t.Error("Item with exhausted supply must not occur")
	}

	item.SupplyUsed = 4
	if !Occurs(item, day("2026-01-06")) {
		t.Error("Item with remaining supply should occur")
	}
}
