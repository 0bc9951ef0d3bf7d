// Package care is the application facade over the care-tracking core:
// regimen management, daily materialization, completion, suppression,
// and streaks, all against a storage.Provider.
package care

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/hashstructure/v2"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/lifecycle"
	"github.com/mwhitaker/caretrack/internal/logger"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/reminders"
	"github.com/mwhitaker/caretrack/internal/schedule"
	"github.com/mwhitaker/caretrack/internal/storage"
	"github.com/mwhitaker/caretrack/internal/streaks"
	"github.com/mwhitaker/caretrack/internal/suppression"
)

type Service struct {
	store        storage.Provider
	materializer *schedule.Materializer
	machine      *lifecycle.Machine
	overlay      *suppression.Overlay
	deriver      *streaks.Deriver
	now          func() time.Time
}

func NewService(store storage.Provider) *Service {
	s := &Service{
		store:        store,
		materializer: schedule.NewMaterializer(store),
		overlay:      suppression.NewOverlay(store),
		deriver:      streaks.NewDeriver(store),
		now:          time.Now,
	}
	// Updaters run synchronously inside each completion so aggregates
	// and completions stay in step.
	s.machine = lifecycle.NewMachine(store, s.deriver, &supplyUpdater{store: store})
	return s
}

// GetRegimen loads a patient's regimen, constructing and persisting the
// default configuration when none exists. A missing config is a
// recoverable condition, never surfaced to callers.
func (s *Service) GetRegimen(patientID string) (models.RegimenConfig, error) {
	regimen, err := s.store.GetRegimen(patientID)
	if err == nil {
		return regimen, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return models.RegimenConfig{}, fmt.Errorf("failed to load regimen: %w", err)
	}

	regimen = models.DefaultRegimen(patientID, s.now())
	if err := s.store.SaveRegimen(regimen); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to persist default regimen: %w", err)
	}
	logger.Info("Created default regimen", "patient", patientID)
	return regimen, nil
}

// BucketPatch is a partial bucket update; nil fields are left
// unchanged. Items are managed through AddItem/UpdateItem/RemoveItem.
type BucketPatch struct {
	Enabled              *bool
	Priority             *models.Priority
	TimesOfDay           []models.TimeOfDay
	CustomTimes          []string
	NotificationsEnabled *bool
}

// UpdateBucket applies a partial update to one bucket. The regimen
// version is bumped only when the patch actually changes the bucket.
func (s *Service) UpdateBucket(patientID string, bt models.BucketType, patch BucketPatch) (models.RegimenConfig, error) {
	regimen, err := s.GetRegimen(patientID)
	if err != nil {
		return models.RegimenConfig{}, err
	}

	bucket := regimen.Buckets[bt]
	before, err := hashstructure.Hash(bucket, hashstructure.FormatV2, nil)
	if err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to hash bucket config: %w", err)
	}

	if patch.Enabled != nil {
		bucket.Enabled = *patch.Enabled
	}
	if patch.Priority != nil {
		bucket.Priority = *patch.Priority
	}
	if patch.TimesOfDay != nil {
		bucket.TimesOfDay = patch.TimesOfDay
	}
	if patch.CustomTimes != nil {
		bucket.CustomTimes = patch.CustomTimes
	}
	if patch.NotificationsEnabled != nil {
		bucket.NotificationsEnabled = *patch.NotificationsEnabled
	}

	after, err := hashstructure.Hash(bucket, hashstructure.FormatV2, nil)
	if err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to hash bucket config: %w", err)
	}
	if before == after {
		return regimen, nil
	}

	regimen.Buckets[bt] = bucket
	return s.saveBumped(regimen)
}

// AddItem adds a trackable item to a bucket, assigning an ID and a
// created-on date when absent.
func (s *Service) AddItem(patientID string, bt models.BucketType, item models.TrackedItem) (models.RegimenConfig, error) {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}
	if item.CreatedOn == "" {
		item.CreatedOn = s.now().Format(constants.DateFormat)
	}
	if err := item.Validate(); err != nil {
		return models.RegimenConfig{}, err
	}

	regimen, err := s.GetRegimen(patientID)
	if err != nil {
		return models.RegimenConfig{}, err
	}

	bucket := regimen.Buckets[bt]
	bucket.Items = append(bucket.Items, item)
	regimen.Buckets[bt] = bucket
	return s.saveBumped(regimen)
}

func (s *Service) UpdateItem(patientID string, bt models.BucketType, item models.TrackedItem) (models.RegimenConfig, error) {
	if err := item.Validate(); err != nil {
		return models.RegimenConfig{}, err
	}

	regimen, err := s.GetRegimen(patientID)
	if err != nil {
		return models.RegimenConfig{}, err
	}

	bucket := regimen.Buckets[bt]
	for i, existing := range bucket.Items {
		if existing.ID == item.ID {
			bucket.Items[i] = item
			regimen.Buckets[bt] = bucket
			return s.saveBumped(regimen)
		}
	}
	return models.RegimenConfig{}, fmt.Errorf("item %s not found in bucket %s", item.ID, bt)
}

func (s *Service) RemoveItem(patientID string, bt models.BucketType, itemID string) (models.RegimenConfig, error) {
	regimen, err := s.GetRegimen(patientID)
	if err != nil {
		return models.RegimenConfig{}, err
	}

	bucket := regimen.Buckets[bt]
	for i, existing := range bucket.Items {
		if existing.ID == itemID {
			bucket.Items = append(bucket.Items[:i], bucket.Items[i+1:]...)
			regimen.Buckets[bt] = bucket
			return s.saveBumped(regimen)
		}
	}
	return models.RegimenConfig{}, fmt.Errorf("item %s not found in bucket %s", itemID, bt)
}

func (s *Service) saveBumped(regimen models.RegimenConfig) (models.RegimenConfig, error) {
	if err := regimen.Validate(); err != nil {
		return models.RegimenConfig{}, err
	}
	regimen.Version++
	regimen.UpdatedAt = s.now()
	if err := s.store.SaveRegimen(regimen); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to save regimen: %w", err)
	}
	return regimen, nil
}

// EnsureInstances materializes and returns the instance set for a date.
// Safe to call on every screen focus and data change.
func (s *Service) EnsureInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	// The materializer requires a regimen; GetRegimen creates the
	// default one for new patients.
	if _, err := s.GetRegimen(patientID); err != nil {
		return nil, err
	}
	return s.materializer.EnsureInstances(patientID, date)
}

// ListDailyInstances reads a date's instances without forcing
// materialization, for read-only views.
func (s *Service) ListDailyInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	return s.store.GetInstances(patientID, date)
}

// VisibleInstances is the display read path: materialized instances
// with the suppression overlay applied.
func (s *Service) VisibleInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	instances, err := s.EnsureInstances(patientID, date)
	if err != nil {
		return nil, err
	}
	return s.overlay.Apply(patientID, date, instances)
}

func (s *Service) CompleteInstance(instanceID string, outcome models.Outcome, payload map[string]any, note string, audit models.AuditMeta) (lifecycle.Transition, error) {
	return s.machine.Complete(instanceID, outcome, payload, note, audit)
}

func (s *Service) SkipInstance(instanceID string, note string, audit models.AuditMeta) (lifecycle.Transition, error) {
	return s.machine.Skip(instanceID, note, audit)
}

func (s *Service) MarkMissed(instanceID string) (lifecycle.Transition, error) {
	return s.machine.MarkMissed(instanceID, s.now())
}

func (s *Service) SweepMissed(patientID string) (int, error) {
	return s.machine.SweepMissed(patientID, s.now())
}

func (s *Service) IsSuppressed(patientID, date string, window models.Window, itemID string) (bool, error) {
	return s.overlay.IsSuppressed(patientID, date, window, itemID)
}

func (s *Service) ToggleSuppression(patientID, date string, window models.Window, itemID string) (bool, error) {
	return s.overlay.Toggle(patientID, date, window, itemID)
}

func (s *Service) ResetSuppression(patientID, date string) error {
	return s.overlay.ResetToDefaults(patientID, date)
}

func (s *Service) RecordQualifyingEvent(patientID, category, date string) (models.StreakRecord, error) {
	return s.deriver.RecordQualifyingEvent(patientID, category, date)
}

func (s *Service) GetStreaks(patientID string) ([]models.StreakRecord, error) {
	return s.deriver.GetStreaks(patientID)
}

func (s *Service) GetAchievements(patientID string) ([]models.Achievement, error) {
	return s.store.GetAchievements(patientID)
}

func (s *Service) GetLogEntries(patientID, date string) ([]models.LogEntry, error) {
	return s.store.GetLogEntriesForDay(patientID, date)
}

// PlanReminders projects a date's pending instances into alert times
// for the external notification scheduler.
func (s *Service) PlanReminders(patientID, date string, loc *time.Location) ([]reminders.Alert, error) {
	regimen, err := s.GetRegimen(patientID)
	if err != nil {
		return nil, err
	}
	instances, err := s.store.GetInstances(patientID, date)
	if err != nil {
		return nil, err
	}
	return reminders.Plan(regimen, instances, loc), nil
}
