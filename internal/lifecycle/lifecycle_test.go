package lifecycle

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

func seedInstance(t *testing.T, store storage.Provider, window models.Window, date string) models.DailyCareInstance {
	t.Helper()
	inst := models.DailyCareInstance{
		ID:          "inst-" + string(window) + "-" + date,
		PatientID:   "self",
		Date:        date,
		Bucket:      models.BucketMedications,
		ItemID:      "aspirin",
		ItemName:    "Aspirin",
		Window:      window,
		ScheduledAt: "08:00",
		Status:      models.StatusPending,
		CreatedAt:   time.Now(),
	}
	require.NoError(t, store.UpsertInstances([]models.DailyCareInstance{inst}))
	return inst
}

func TestComplete_WritesLogEntryAndResolves(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	m := NewMachine(store)
	result, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "with breakfast", models.AuditMeta{Surface: "cli", Action: "complete"})
	require.NoError(t, err)
	require.True(t, result.Applied)
	assert.Equal(t, models.StatusCompleted, result.Instance.Status)
	require.NotNil(t, result.Entry)
	assert.Equal(t, models.OutcomeTaken, result.Entry.Outcome)
	assert.Equal(t, "with breakfast", result.Entry.Note)

	entries, err := store.GetLogEntriesForInstance(inst.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	stored, err := store.GetInstance(inst.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, stored.Status)
	assert.NotNil(t, stored.ResolvedAt)
}

func TestComplete_TerminalInstanceIsNoOp(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	m := NewMachine(store)
	first, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	require.NoError(t, err)
	require.True(t, first.Applied)

	// Second completion: no error, not applied, no second log entry
	second, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	require.NoError(t, err)
	assert.False(t, second.Applied)
	assert.Nil(t, second.Entry)

	entries, err := store.GetLogEntriesForInstance(inst.ID)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "terminal no-op must not write a log entry")

	// Skip after complete is also a no-op
	skip, err := m.Skip(inst.ID, "", models.AuditMeta{})
	require.NoError(t, err)
	assert.False(t, skip.Applied)
}

func TestSkip_ResolvesAsSkipped(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	m := NewMachine(store)
	result, err := m.Skip(inst.ID, "nausea", models.AuditMeta{Surface: "cli", Action: "skip"})
	require.NoError(t, err)
	require.True(t, result.Applied)
	assert.Equal(t, models.StatusSkipped, result.Instance.Status)
	assert.Equal(t, models.OutcomeSkipped, result.Entry.Outcome)
}

type recordingUpdater struct {
	calls []models.LogEntry
	err   error
}

func (r *recordingUpdater) OnCompletion(inst models.DailyCareInstance, entry models.LogEntry) error {
	r.calls = append(r.calls, entry)
	return r.err
}

func TestComplete_NotifiesUpdatersOnce(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	updater := &recordingUpdater{}
	m := NewMachine(store, updater)

	_, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	require.NoError(t, err)
	assert.Len(t, updater.calls, 1)

	// The no-op repeat must not notify again
	_, err = m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	require.NoError(t, err)
	assert.Len(t, updater.calls, 1)
}

func TestComplete_UpdaterErrorPropagates(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	updater := &recordingUpdater{err: errors.New("aggregate store down")}
	m := NewMachine(store, updater)

	_, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	assert.Error(t, err)
}

func TestMarkMissed_RequiresElapsedWindow(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-05")

	m := NewMachine(store)

	// 11:00 on the same day: morning has not elapsed
	early := time.Date(2026, 3, 5, 11, 0, 0, 0, time.UTC)
	result, err := m.MarkMissed(inst.ID, early)
	require.NoError(t, err)
	assert.False(t, result.Applied)

	stored, _ := store.GetInstance(inst.ID)
	assert.Equal(t, models.StatusPending, stored.Status)

	// 12:00: morning is over
	noon := time.Date(2026, 3, 5, 12, 0, 0, 0, time.UTC)
	result, err = m.MarkMissed(inst.ID, noon)
	require.NoError(t, err)
	assert.True(t, result.Applied)
	assert.Equal(t, models.StatusMissed, result.Instance.Status)
}

func TestMarkMissed_NightWindowWaitsForNextDay(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowNight, "2026-03-05")

	m := NewMachine(store)

	lateNight := time.Date(2026, 3, 5, 23, 59, 0, 0, time.UTC)
	result, err := m.MarkMissed(inst.ID, lateNight)
	require.NoError(t, err)
	assert.False(t, result.Applied, "night window does not elapse until the date rolls over")

	nextDay := time.Date(2026, 3, 6, 0, 5, 0, 0, time.UTC)
	result, err = m.MarkMissed(inst.ID, nextDay)
	require.NoError(t, err)
	assert.True(t, result.Applied)
}

func TestSweepMissed(t *testing.T) {
	store := storage.NewMemoryStore()

	yesterdayMorning := seedInstance(t, store, models.WindowMorning, "2026-03-04")
	todayMorning := seedInstance(t, store, models.WindowMorning, "2026-03-05")
	todayEvening := seedInstance(t, store, models.WindowEvening, "2026-03-05")

	m := NewMachine(store)

	// 13:00 today: yesterday fully elapsed, today's morning elapsed,
	// evening still ahead
	now := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	swept, err := m.SweepMissed("self", now)
	require.NoError(t, err)
	assert.Equal(t, 2, swept)

	for id, want := range map[string]models.InstanceStatus{
		yesterdayMorning.ID: models.StatusMissed,
		todayMorning.ID:     models.StatusMissed,
		todayEvening.ID:     models.StatusPending,
	} {
		stored, err := store.GetInstance(id)
		require.NoError(t, err)
		assert.Equal(t, want, stored.Status, "instance %s", id)
	}

	// Sweeping again finds nothing
	swept, err = m.SweepMissed("self", now)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)
}

func TestSweepMissed_LeavesResolvedAlone(t *testing.T) {
	store := storage.NewMemoryStore()
	inst := seedInstance(t, store, models.WindowMorning, "2026-03-04")

	m := NewMachine(store)
	_, err := m.Complete(inst.ID, models.OutcomeTaken, nil, "", models.AuditMeta{})
	require.NoError(t, err)

	now := time.Date(2026, 3, 5, 13, 0, 0, 0, time.UTC)
	swept, err := m.SweepMissed("self", now)
	require.NoError(t, err)
	assert.Equal(t, 0, swept)

	stored, _ := store.GetInstance(inst.ID)
	assert.Equal(t, models.StatusCompleted, stored.Status)
}
