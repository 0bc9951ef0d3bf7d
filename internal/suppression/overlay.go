// Package suppression provides the date-scoped hide layer applied to a
// day's view. It filters what consumers see and never mutates the
// underlying instances or the regimen.
package suppression

import (
	"fmt"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

type Overlay struct {
	store storage.Provider
}

func NewOverlay(store storage.Provider) *Overlay {
	return &Overlay{store: store}
}

func (o *Overlay) IsSuppressed(patientID, date string, window models.Window, itemID string) (bool, error) {
	set, err := o.store.GetSuppressions(patientID, date)
	if err != nil {
		return false, fmt.Errorf("failed to load suppressions: %w", err)
	}
	return set.Contains(window, itemID), nil
}

// Toggle flips the hidden state of one (window, item) pair and returns
// the new state.
func (o *Overlay) Toggle(patientID, date string, window models.Window, itemID string) (bool, error) {
	set, err := o.store.GetSuppressions(patientID, date)
	if err != nil {
		return false, fmt.Errorf("failed to load suppressions: %w", err)
	}

	suppressed := set.Toggle(window, itemID)
	if err := o.store.SaveSuppressions(set); err != nil {
		return false, fmt.Errorf("failed to save suppressions: %w", err)
	}
	return suppressed, nil
}

// ResetToDefaults clears every suppression for the given date only.
// Other dates are untouched; future dates are empty by construction.
func (o *Overlay) ResetToDefaults(patientID, date string) error {
	set := models.SuppressionSet{PatientID: patientID, Date: date}
	if err := o.store.SaveSuppressions(set); err != nil {
		return fmt.Errorf("failed to reset suppressions: %w", err)
	}
	return nil
}

// Apply filters a day's instances down to the visible ones.
func (o *Overlay) Apply(patientID, date string, instances []models.DailyCareInstance) ([]models.DailyCareInstance, error) {
	set, err := o.store.GetSuppressions(patientID, date)
	if err != nil {
		return nil, fmt.Errorf("failed to load suppressions: %w", err)
	}
	if len(set.Hidden) == 0 {
		return instances, nil
	}

	visible := make([]models.DailyCareInstance, 0, len(instances))
	for _, inst := range instances {
		if set.Contains(inst.Window, inst.ItemID) {
			continue
		}
		visible = append(visible, inst)
	}
	return visible, nil
}
