// Package streaks maintains consecutive-day counters per category and
// awards one-time achievements at fixed thresholds.
package streaks

import (
	"errors"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/logger"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

type Deriver struct {
	store storage.Provider
	now   func() time.Time
}

func NewDeriver(store storage.Provider) *Deriver {
	return &Deriver{
		store: store,
		now:   time.Now,
	}
}

// RecordQualifyingEvent updates the streak for (patient, category) on
// the given date. Idempotent per calendar day: a second event on the
// same date is a no-op, as is any event dated before the last recorded
// day. A consecutive date extends the run, a gap resets it to 1, and
// the longest-run high-water mark never decreases.
func (d *Deriver) RecordQualifyingEvent(patientID, category, date string) (models.StreakRecord, error) {
	day, err := time.Parse(constants.DateFormat, date)
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("invalid date format: %w", err)
	}

	record, err := d.store.GetStreak(patientID, category)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			return models.StreakRecord{}, fmt.Errorf("failed to load streak: %w", err)
		}
		record = models.StreakRecord{PatientID: patientID, Category: category}
	}

	if record.LastDate == date {
		return record, nil
	}
	// A backdated completion (resolving an older day's leftover) must
	// not rewind a live run. ISO dates compare correctly as strings.
	if record.LastDate > date {
		return record, nil
	}

	previous := day.AddDate(0, 0, -1).Format(constants.DateFormat)
	if record.LastDate == previous {
		record.Current++
	} else {
		record.Current = 1
	}
	if record.Current > record.Longest {
		record.Longest = record.Current
	}
	record.LastDate = date

	if err := d.store.SaveStreak(record); err != nil {
		return models.StreakRecord{}, fmt.Errorf("failed to save streak: %w", err)
	}

	if err := d.awardThresholds(record); err != nil {
		return record, err
	}
	return record, nil
}

// awardThresholds grants each crossed threshold at most once,
// deduplicated by achievement ID. The reset rule makes a re-crossing
// reach HasAchievement anyway, so a double award cannot slip through.
func (d *Deriver) awardThresholds(record models.StreakRecord) error {
	for _, threshold := range constants.StreakThresholds {
		if record.Current != threshold {
			continue
		}
		id := fmt.Sprintf("%s-%d", record.Category, threshold)
		has, err := d.store.HasAchievement(record.PatientID, id)
		if err != nil {
			return fmt.Errorf("failed to check achievement: %w", err)
		}
		if has {
			continue
		}
		err = d.store.AddAchievement(models.Achievement{
			ID:        id,
			PatientID: record.PatientID,
			Category:  record.Category,
			Threshold: threshold,
			AwardedAt: d.now(),
		})
		if err != nil {
			return fmt.Errorf("failed to award achievement: %w", err)
		}
		logger.Info("Achievement awarded", "patient", record.PatientID, "achievement", id)
	}
	return nil
}

// GetStreaks lists every streak record for a patient.
func (d *Deriver) GetStreaks(patientID string) ([]models.StreakRecord, error) {
	return d.store.GetStreaks(patientID)
}

// OnCompletion makes the deriver an aggregate updater for the
// completion state machine: completed instances (not skips) qualify
// toward the owning bucket's streak.
func (d *Deriver) OnCompletion(inst models.DailyCareInstance, entry models.LogEntry) error {
	if entry.Outcome == models.OutcomeSkipped {
		return nil
	}
	_, err := d.RecordQualifyingEvent(inst.PatientID, string(inst.Bucket), inst.Date)
	return err
}
