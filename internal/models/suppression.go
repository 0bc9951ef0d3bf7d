package models

// SuppressionKey hides one (window, item) pair from a day's view.
type SuppressionKey struct {
	Window Window `json:"window"`
	ItemID string `json:"item_id"`
}

// SuppressionSet is the per (patient, date) collection of hidden pairs.
// It never touches the underlying instances and expires by construction
// when the date rolls over, since a new date has no entries.
type SuppressionSet struct {
	PatientID string           `json:"patient_id"`
	Date      string           `json:"date"` // YYYY-MM-DD format
	Hidden    []SuppressionKey `json:"hidden,omitempty"`
}

func (s SuppressionSet) Contains(window Window, itemID string) bool {
	for _, k := range s.Hidden {
		if k.Window == window && k.ItemID == itemID {
			return true
		}
	}
	return false
}

// Toggle adds the pair if absent and removes it if present, returning
// the new suppressed state.
func (s *SuppressionSet) Toggle(window Window, itemID string) bool {
	for i, k := range s.Hidden {
		if k.Window == window && k.ItemID == itemID {
			s.Hidden = append(s.Hidden[:i], s.Hidden[i+1:]...)
			return false
		}
	}
	s.Hidden = append(s.Hidden, SuppressionKey{Window: window, ItemID: itemID})
	return true
}
