package reminders

import (
	"testing"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

func testRegimen(items ...models.TrackedItem) models.RegimenConfig {
	r := models.DefaultRegimen("self", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	meds := r.Buckets[models.BucketMedications]
	meds.Items = items
	r.Buckets[models.BucketMedications] = meds
	return r
}

func pendingInstance(id, itemID, clock string) models.DailyCareInstance {
	return models.DailyCareInstance{
		ID:          id,
		PatientID:   "self",
		Date:        "2026-03-05",
		Bucket:      models.BucketMedications,
		ItemID:      itemID,
		ItemName:    itemID,
		Window:      models.WindowMorning,
		ScheduledAt: clock,
		Status:      models.StatusPending,
	}
}

func TestPlan_PrimaryAlertUsesOffset(t *testing.T) {
	regimen := testRegimen(models.TrackedItem{
		ID:                "aspirin",
		Name:              "Aspirin",
		ReminderOffsetMin: 10,
		Schedule:          models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing},
	})
	instances := []models.DailyCareInstance{pendingInstance("i1", "aspirin", "08:00")}

	alerts := Plan(regimen, instances, time.UTC)
	if len(alerts) != 1 {
		t.Fatalf("Expected 1 alert, got %d", len(alerts))
	}
	want := time.Date(2026, 3, 5, 7, 50, 0, 0, time.UTC)
	if !alerts[0].At.Equal(want) {
		t.Errorf("Primary alert at %s, want %s", alerts[0].At, want)
	}
	if alerts[0].Attempt != 0 {
		t.Errorf("Primary alert should be attempt 0, got %d", alerts[0].Attempt)
	}
}

func TestPlan_FollowUps(t *testing.T) {
	regimen := testRegimen(models.TrackedItem{
		ID:                  "insulin",
		Name:                "Insulin",
		FollowUpIntervalMin: 15,
		FollowUpMaxAttempts: 2,
		Schedule:            models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing},
	})
	instances := []models.DailyCareInstance{pendingInstance("i1", "insulin", "08:00")}

	alerts := Plan(regimen, instances, time.UTC)
	if len(alerts) != 3 {
		t.Fatalf("Expected primary plus 2 follow-ups, got %d", len(alerts))
	}

	base := time.Date(2026, 3, 5, 8, 0, 0, 0, time.UTC)
	for i, want := range []time.Time{base, base.Add(15 * time.Minute), base.Add(30 * time.Minute)} {
		if !alerts[i].At.Equal(want) {
			t.Errorf("Alert %d at %s, want %s", i, alerts[i].At, want)
		}
		if alerts[i].Attempt != i {
			t.Errorf("Alert %d attempt = %d", i, alerts[i].Attempt)
		}
	}
}

func TestPlan_SkipsResolvedInstances(t *testing.T) {
	regimen := testRegimen(models.TrackedItem{
		ID:       "aspirin",
		Name:     "Aspirin",
		Schedule: models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing},
	})
	inst := pendingInstance("i1", "aspirin", "08:00")
	inst.Status = models.StatusCompleted

	alerts := Plan(regimen, []models.DailyCareInstance{inst}, time.UTC)
	if len(alerts) != 0 {
		t.Errorf("Resolved instances must not produce alerts, got %d", len(alerts))
	}
}

func TestPlan_RespectsNotificationFlag(t *testing.T) {
	regimen := testRegimen(models.TrackedItem{
		ID:       "aspirin",
		Name:     "Aspirin",
		Schedule: models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing},
	})
	meds := regimen.Buckets[models.BucketMedications]
	meds.NotificationsEnabled = false
	regimen.Buckets[models.BucketMedications] = meds

	alerts := Plan(regimen, []models.DailyCareInstance{pendingInstance("i1", "aspirin", "08:00")}, time.UTC)
	if len(alerts) != 0 {
		t.Errorf("Muted bucket must not produce alerts, got %d", len(alerts))
	}
}

func TestPlan_SortedByTime(t *testing.T) {
	regimen := testRegimen(
		models.TrackedItem{ID: "a", Name: "A", Schedule: models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing}},
		models.TrackedItem{ID: "b", Name: "B", Schedule: models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing}},
	)
	instances := []models.DailyCareInstance{
		pendingInstance("i2", "b", "18:00"),
		pendingInstance("i1", "a", "08:00"),
	}

	alerts := Plan(regimen, instances, time.UTC)
	if len(alerts) != 2 {
		t.Fatalf("Expected 2 alerts, got %d", len(alerts))
	}
	if alerts[0].InstanceID != "i1" || alerts[1].InstanceID != "i2" {
		t.Errorf("Alerts out of time order: %s, %s", alerts[0].InstanceID, alerts[1].InstanceID)
	}
}
