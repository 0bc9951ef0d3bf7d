// Package reminders projects a day's pending instances into concrete
// alert times for the external notification scheduler. It is a pure
// read-side computation: delivery, and any status change it provokes,
// flow back through the normal complete/skip operations.
package reminders

import (
	"sort"
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/models"
)

// Alert is one concrete notification time for an instance. Attempt 0 is
// the primary reminder; higher attempts are follow-ups.
type Alert struct {
	InstanceID string
	ItemName   string
	Window     models.Window
	At         time.Time
	Attempt    int
}

// Plan computes alert times for the given instances. Only pending
// instances in notification-enabled buckets produce alerts. The primary
// alert fires at the scheduled time minus the item's reminder offset;
// follow-ups repeat at the item's interval up to its max attempts.
func Plan(regimen models.RegimenConfig, instances []models.DailyCareInstance, loc *time.Location) []Alert {
	if loc == nil {
		loc = time.Local
	}

	items := indexItems(regimen)
	var alerts []Alert
	for _, inst := range instances {
		if inst.Status != models.StatusPending {
			continue
		}
		bucket := regimen.Buckets[inst.Bucket]
		if !bucket.NotificationsEnabled {
			continue
		}

		base, err := scheduledAt(inst, loc)
		if err != nil {
			continue
		}

		item := items[inst.ItemID]
		primary := base.Add(-time.Duration(item.ReminderOffsetMin) * time.Minute)
		alerts = append(alerts, Alert{
			InstanceID: inst.ID,
			ItemName:   inst.ItemName,
			Window:     inst.Window,
			At:         primary,
			Attempt:    0,
		})

		if item.FollowUpIntervalMin <= 0 {
			continue
		}
		for attempt := 1; attempt <= item.FollowUpMaxAttempts; attempt++ {
			alerts = append(alerts, Alert{
				InstanceID: inst.ID,
				ItemName:   inst.ItemName,
				Window:     inst.Window,
				At:         base.Add(time.Duration(attempt*item.FollowUpIntervalMin) * time.Minute),
				Attempt:    attempt,
			})
		}
	}

	sort.Slice(alerts, func(i, j int) bool {
		if !alerts[i].At.Equal(alerts[j].At) {
			return alerts[i].At.Before(alerts[j].At)
		}
		return alerts[i].InstanceID < alerts[j].InstanceID
	})
	return alerts
}

func scheduledAt(inst models.DailyCareInstance, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(constants.DateFormat, inst.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	clock, err := time.Parse(constants.TimeFormat, inst.ScheduledAt)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(clock.Hour())*time.Hour + time.Duration(clock.Minute())*time.Minute), nil
}

func indexItems(regimen models.RegimenConfig) map[string]models.TrackedItem {
	items := make(map[string]models.TrackedItem)
	for _, bucket := range regimen.Buckets {
		for _, item := range bucket.Trackables() {
			items[item.ID] = item
		}
	}
	return items
}
