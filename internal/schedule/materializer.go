// Package schedule turns the persisted regimen into the concrete set of
// daily care instances for a calendar date.
package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/logger"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/recurrence"
	"github.com/mwhitaker/caretrack/internal/storage"
	"github.com/mwhitaker/caretrack/internal/windows"
)

// Materializer derives a day's instances from the regimen. It is the
// only writer of new instances: completion, sweeps, and suppression all
// operate on the persisted collection and never call back into
// EnsureInstances, which keeps regeneration from ever re-entering
// itself.
type Materializer struct {
	store storage.Provider
	now   func() time.Time
}

func NewMaterializer(store storage.Provider) *Materializer {
	return &Materializer{
		store: store,
		now:   time.Now,
	}
}

// EnsureInstances materializes the given date for a patient and returns
// the full instance set. Idempotent: existing (item, window) keys are
// left untouched along with their status and log history, so the call
// is safe to repeat any number of times, including concurrently. It
// never creates instances for dates other than the one requested.
func (m *Materializer) EnsureInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	day, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return nil, fmt.Errorf("invalid date format: %w", err)
	}

	regimen, err := m.store.GetRegimen(patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load regimen: %w", err)
	}

	// Read existing state before deciding what to create. This is the
	// idempotency contract: materialization is a set union keyed by
	// (item, window), never an append.
	existing, err := m.store.GetInstances(patientID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load existing instances: %w", err)
	}
	seen := make(map[models.InstanceKey]bool, len(existing))
	for _, inst := range existing {
		seen[inst.Key()] = true
	}

	var created []models.DailyCareInstance
	for _, bt := range models.AllBucketTypes() {
		bucket := regimen.Buckets[bt]
		if !bucket.EffectiveEnabled() {
			continue
		}
		for _, item := range bucket.Trackables() {
			if !recurrence.Occurs(item, day) {
				continue
			}
			for _, occ := range occurrences(bucket, item) {
				key := models.InstanceKey{ItemID: item.ID, Window: occ.window}
				if seen[key] {
					continue
				}
				seen[key] = true
				created = append(created, models.DailyCareInstance{
					ID:          uuid.New().String(),
					PatientID:   patientID,
					Date:        date,
					Bucket:      bt,
					ItemID:      item.ID,
					ItemName:    item.Name,
					Detail:      detail(item),
					Window:      occ.window,
					ScheduledAt: occ.clock,
					Status:      models.StatusPending,
					CreatedAt:   m.now(),
				})
			}
		}
	}

	if len(created) > 0 {
		if err := m.store.UpsertInstances(created); err != nil {
			return nil, fmt.Errorf("failed to persist instances: %w", err)
		}
		logger.Debug("Materialized instances", "patient", patientID, "date", date, "created", len(created))
	}

	if err := m.store.SetLastMaterialized(patientID, date); err != nil {
		return nil, fmt.Errorf("failed to record materialization: %w", err)
	}

	// Re-read rather than merge in memory: racing materializers may
	// have written the same keys, and the persisted set is the truth.
	return m.store.GetInstances(patientID, date)
}

type occurrence struct {
	window models.Window
	clock  string // HH:MM format
}

// occurrences computes the (window, time) pairs for one item: the
// item's custom time when set, otherwise the bucket's times-of-day plus
// any bucket custom times. At most one occurrence per window survives;
// the first computed time wins.
func occurrences(bucket models.BucketConfig, item models.TrackedItem) []occurrence {
	var clocks []string
	if item.CustomTime != "" {
		clocks = []string{item.CustomTime}
	} else {
		for _, tod := range bucket.TimesOfDay {
			if c := tod.ClockTime(); c != "" {
				clocks = append(clocks, c)
			}
		}
		clocks = append(clocks, bucket.CustomTimes...)
	}

	var occs []occurrence
	used := make(map[models.Window]bool)
	for _, clock := range clocks {
		w := windows.For(clock)
		if bucket.Type == models.BucketAppointments && item.CustomTime != "" {
			w = models.WindowCustom
		}
		if used[w] {
			continue
		}
		used[w] = true
		occs = append(occs, occurrence{window: w, clock: clock})
	}
	return occs
}

func detail(item models.TrackedItem) string {
	if item.Dosage != "" {
		return item.Dosage
	}
	return item.Unit
}
