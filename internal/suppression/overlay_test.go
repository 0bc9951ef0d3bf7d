package suppression

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

func seedInstances(t *testing.T, store storage.Provider, date string) []models.DailyCareInstance {
	t.Helper()
	instances := []models.DailyCareInstance{
		{ID: "i1", PatientID: "self", Date: date, ItemID: "aspirin", Window: models.WindowMorning, ScheduledAt: "08:00", Status: models.StatusPending, CreatedAt: time.Now()},
		{ID: "i2", PatientID: "self", Date: date, ItemID: "walk", Window: models.WindowAfternoon, ScheduledAt: "13:00", Status: models.StatusPending, CreatedAt: time.Now()},
	}
	require.NoError(t, store.UpsertInstances(instances))
	return instances
}

func TestToggle_HidesWithoutTouchingInstances(t *testing.T) {
	store := storage.NewMemoryStore()
	instances := seedInstances(t, store, "2026-03-05")

	o := NewOverlay(store)
	hidden, err := o.Toggle("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)
	assert.True(t, hidden)

	visible, err := o.Apply("self", "2026-03-05", instances)
	require.NoError(t, err)
	require.Len(t, visible, 1)
	assert.Equal(t, "walk", visible[0].ItemID)

	// The instance itself is untouched
	stored, err := store.GetInstance("i1")
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestToggle_SecondToggleUnhides(t *testing.T) {
	store := storage.NewMemoryStore()
	instances := seedInstances(t, store, "2026-03-05")

	o := NewOverlay(store)
	_, err := o.Toggle("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)
	hidden, err := o.Toggle("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)
	assert.False(t, hidden)

	visible, err := o.Apply("self", "2026-03-05", instances)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestSuppression_IsDateScoped(t *testing.T) {
	store := storage.NewMemoryStore()
	seedInstances(t, store, "2026-03-05")

	o := NewOverlay(store)
	_, err := o.Toggle("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)

	// Same item on the next date is unaffected
	tomorrow := []models.DailyCareInstance{
		{ID: "i3", PatientID: "self", Date: "2026-03-06", ItemID: "aspirin", Window: models.WindowMorning, ScheduledAt: "08:00", Status: models.StatusPending, CreatedAt: time.Now()},
	}
	require.NoError(t, store.UpsertInstances(tomorrow))

	visible, err := o.Apply("self", "2026-03-06", tomorrow)
	require.NoError(t, err)
	assert.Len(t, visible, 1, "suppression must not leak into the next day")

	suppressed, err := o.IsSuppressed("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)
	assert.True(t, suppressed)
}

func TestResetToDefaults(t *testing.T) {
	store := storage.NewMemoryStore()
	instances := seedInstances(t, store, "2026-03-05")

	o := NewOverlay(store)
	_, err := o.Toggle("self", "2026-03-05", models.WindowMorning, "aspirin")
	require.NoError(t, err)
	_, err = o.Toggle("self", "2026-03-05", models.WindowAfternoon, "walk")
	require.NoError(t, err)

	require.NoError(t, o.ResetToDefaults("self", "2026-03-05"))

	visible, err := o.Apply("self", "2026-03-05", instances)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}

func TestApply_MissingSetMeansNothingHidden(t *testing.T) {
	store := storage.NewMemoryStore()
	instances := seedInstances(t, store, "2026-03-05")

	o := NewOverlay(store)
	visible, err := o.Apply("self", "2026-03-05", instances)
	require.NoError(t, err)
	assert.Len(t, visible, 2)
}
