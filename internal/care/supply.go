package care

import (
	"fmt"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

// supplyUpdater consumes completion events for until_supply items and
// advances their used-supply counter. Supply decrements on completed
// outcomes only: a skipped dose leaves the supply untouched. The
// counter moves at most once per (item, date), so an item taken twice
// a day still spends one day of supply.
type supplyUpdater struct {
	store storage.Provider
}

func (u *supplyUpdater) OnCompletion(inst models.DailyCareInstance, entry models.LogEntry) error {
	if entry.Outcome == models.OutcomeSkipped {
		return nil
	}

	regimen, err := u.store.GetRegimen(inst.PatientID)
	if err != nil {
		return fmt.Errorf("failed to load regimen for supply update: %w", err)
	}

	bucket := regimen.Buckets[inst.Bucket]
	idx := -1
	for i, item := range bucket.Items {
		if item.ID == inst.ItemID {
			idx = i
			break
		}
	}
	if idx < 0 || bucket.Items[idx].Schedule.EndCondition != models.EndUntilSupply {
		return nil
	}

	first, err := u.firstCompletionToday(inst)
	if err != nil {
		return err
	}
	if !first {
		return nil
	}

	bucket.Items[idx].SupplyUsed++
	regimen.Buckets[inst.Bucket] = bucket
	// Supply bookkeeping is not a configuration edit; the version
	// stays put so consumers do not see a phantom regimen change.
	if err := u.store.SaveRegimen(regimen); err != nil {
		return fmt.Errorf("failed to save supply update: %w", err)
	}
	return nil
}

// firstCompletionToday reports whether inst is the only completed
// instance of its item on its date.
func (u *supplyUpdater) firstCompletionToday(inst models.DailyCareInstance) (bool, error) {
	instances, err := u.store.GetInstances(inst.PatientID, inst.Date)
	if err != nil {
		return false, fmt.Errorf("failed to list instances for supply update: %w", err)
	}

	completed := 0
	for _, other := range instances {
		if other.ItemID == inst.ItemID && other.Status == models.StatusCompleted {
			completed++
		}
	}
	return completed <= 1, nil
}
