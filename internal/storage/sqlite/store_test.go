package sqlite

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store := NewStore(filepath.Join(t.TempDir(), "caretrack.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLoad_RequiresInit(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.db"))
	err := store.Load()
	assert.Error(t, err, "loading an uninitialized database must fail")
}

func TestRegimenRoundtrip(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetRegimen("self")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	now := time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC)
	regimen := models.DefaultRegimen("self", now)
	meds := regimen.Buckets[models.BucketMedications]
	meds.Items = []models.TrackedItem{{
		ID:        "aspirin",
		Name:      "Aspirin",
		Dosage:    "81mg",
		CreatedOn: "2026-01-01",
		Schedule:  models.Schedule{Frequency: models.FrequencyDaily, EndCondition: models.EndOngoing},
	}}
	regimen.Buckets[models.BucketMedications] = meds
	require.NoError(t, store.SaveRegimen(regimen))

	loaded, err := store.GetRegimen("self")
	require.NoError(t, err)
	assert.Equal(t, regimen.Version, loaded.Version)
	assert.Len(t, loaded.Buckets, len(models.AllBucketTypes()))
	require.Len(t, loaded.Buckets[models.BucketMedications].Items, 1)
	assert.Equal(t, "81mg", loaded.Buckets[models.BucketMedications].Items[0].Dosage)

	// Save again with a bumped version (upsert, not insert)
	regimen.Version++
	require.NoError(t, store.SaveRegimen(regimen))
	loaded, err = store.GetRegimen("self")
	require.NoError(t, err)
	assert.Equal(t, regimen.Version, loaded.Version)
}

func testInstance(id, date string, window models.Window) models.DailyCareInstance {
	return models.DailyCareInstance{
		ID:          id,
		PatientID:   "self",
		Date:        date,
		Bucket:      models.BucketMedications,
		ItemID:      "aspirin",
		ItemName:    "Aspirin",
		Detail:      "81mg",
		Window:      window,
		ScheduledAt: "08:00",
		Status:      models.StatusPending,
		CreatedAt:   time.Date(2026, 3, 5, 0, 0, 0, 0, time.UTC),
	}
}

func TestUpsertInstances_ConflictKeyIgnored(t *testing.T) {
	store := newTestStore(t)

	first := testInstance("i1", "2026-03-05", models.WindowMorning)
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{first}))

	// Same (patient, day, item, window) under a different ID is dropped
	duplicate := testInstance("i2", "2026-03-05", models.WindowMorning)
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{duplicate}))

	instances, err := store.GetInstances("self", "2026-03-05")
	require.NoError(t, err)
	require.Len(t, instances, 1)
	assert.Equal(t, "i1", instances[0].ID, "the first writer wins")
}

func TestTransitionInstance_Guarded(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{testInstance("i1", "2026-03-05", models.WindowMorning)}))

	at := time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC)
	applied, err := store.TransitionInstance("i1", models.StatusPending, models.StatusCompleted, at)
	require.NoError(t, err)
	assert.True(t, applied)

	// Second transition from pending no longer matches
	applied, err = store.TransitionInstance("i1", models.StatusPending, models.StatusSkipped, at)
	require.NoError(t, err)
	assert.False(t, applied)

	inst, err := store.GetInstance("i1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, inst.Status)
	require.NotNil(t, inst.ResolvedAt)
}

func TestGetInstance_NotFound(t *testing.T) {
	store := newTestStore(t)
	_, err := store.GetInstance("nope")
	assert.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPendingInstancesThrough(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{
		testInstance("i1", "2026-03-03", models.WindowMorning),
		testInstance("i2", "2026-03-04", models.WindowMorning),
		testInstance("i3", "2026-03-06", models.WindowMorning),
	}))

	_, err := store.TransitionInstance("i1", models.StatusPending, models.StatusCompleted, time.Now())
	require.NoError(t, err)

	pending, err := store.PendingInstancesThrough("self", "2026-03-05")
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "i2", pending[0].ID)
}

func TestLogEntries(t *testing.T) {
	store := newTestStore(t)
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{testInstance("i1", "2026-03-05", models.WindowMorning)}))

	entry := models.LogEntry{
		ID:         "e1",
		InstanceID: "i1",
		PatientID:  "self",
		Date:       "2026-03-05",
		Outcome:    models.OutcomeTaken,
		Payload:    map[string]any{"value": "120/80"},
		Note:       "after breakfast",
		Audit:      models.AuditMeta{Surface: "cli", Action: "complete"},
		CreatedAt:  time.Date(2026, 3, 5, 8, 30, 0, 0, time.UTC),
	}
	require.NoError(t, store.AddLogEntry(entry))

	byDay, err := store.GetLogEntriesForDay("self", "2026-03-05")
	require.NoError(t, err)
	require.Len(t, byDay, 1)
	assert.Equal(t, "after breakfast", byDay[0].Note)
	assert.Equal(t, "120/80", byDay[0].Payload["value"])
	assert.Equal(t, "cli", byDay[0].Audit.Surface)

	byInstance, err := store.GetLogEntriesForInstance("i1")
	require.NoError(t, err)
	assert.Len(t, byInstance, 1)
}

func TestSuppressions(t *testing.T) {
	store := newTestStore(t)

	// Missing row means an empty set, not an error
	set, err := store.GetSuppressions("self", "2026-03-05")
	require.NoError(t, err)
	assert.Empty(t, set.Hidden)

	set.PatientID = "self"
	set.Date = "2026-03-05"
	set.Toggle(models.WindowMorning, "aspirin")
	require.NoError(t, store.SaveSuppressions(set))

	loaded, err := store.GetSuppressions("self", "2026-03-05")
	require.NoError(t, err)
	assert.True(t, loaded.Contains(models.WindowMorning, "aspirin"))

	// Saving an empty set clears the row
	loaded.Toggle(models.WindowMorning, "aspirin")
	require.NoError(t, store.SaveSuppressions(loaded))
	cleared, err := store.GetSuppressions("self", "2026-03-05")
	require.NoError(t, err)
	assert.Empty(t, cleared.Hidden)
}

func TestStreaksAndAchievements(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetStreak("self", "medications")
	assert.True(t, errors.Is(err, storage.ErrNotFound))

	record := models.StreakRecord{PatientID: "self", Category: "medications", Current: 3, Longest: 5, LastDate: "2026-03-05"}
	require.NoError(t, store.SaveStreak(record))

	loaded, err := store.GetStreak("self", "medications")
	require.NoError(t, err)
	assert.Equal(t, 3, loaded.Current)
	assert.Equal(t, 5, loaded.Longest)

	// Upsert updates in place
	record.Current = 4
	require.NoError(t, store.SaveStreak(record))
	all, err := store.GetStreaks("self")
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, 4, all[0].Current)

	has, err := store.HasAchievement("self", "medications-3")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, store.AddAchievement(models.Achievement{
		ID:        "medications-3",
		PatientID: "self",
		Category:  "medications",
		Threshold: 3,
		AwardedAt: time.Date(2026, 3, 5, 9, 0, 0, 0, time.UTC),
	}))

	has, err = store.HasAchievement("self", "medications-3")
	require.NoError(t, err)
	assert.True(t, has)

	achievements, err := store.GetAchievements("self")
	require.NoError(t, err)
	require.Len(t, achievements, 1)
	assert.Equal(t, 3, achievements[0].Threshold)
}

func TestMaterializationMarker(t *testing.T) {
	store := newTestStore(t)

	day, err := store.GetLastMaterialized("self")
	require.NoError(t, err)
	assert.Empty(t, day)

	require.NoError(t, store.SetLastMaterialized("self", "2026-03-05"))
	day, err = store.GetLastMaterialized("self")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-05", day)

	require.NoError(t, store.SetLastMaterialized("self", "2026-03-06"))
	day, err = store.GetLastMaterialized("self")
	require.NoError(t, err)
	assert.Equal(t, "2026-03-06", day)
}
