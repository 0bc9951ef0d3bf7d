package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mwhitaker/caretrack/internal/models"
)

// GetSuppressions returns the suppression set for a (patient, date).
// A missing row is an empty set: a new date starts unsuppressed by
// construction.
func (s *Store) GetSuppressions(patientID, date string) (models.SuppressionSet, error) {
	set := models.SuppressionSet{PatientID: patientID, Date: date}

	row := s.db.QueryRow(`
		SELECT hidden FROM suppressions WHERE patient_id = ? AND day = ?`,
		patientID, date)

	var hiddenJSON string
	err := row.Scan(&hiddenJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return set, nil
		}
		return models.SuppressionSet{}, err
	}

	if err := json.Unmarshal([]byte(hiddenJSON), &set.Hidden); err != nil {
		return models.SuppressionSet{}, fmt.Errorf("failed to decode suppression set: %w", err)
	}
	return set, nil
}

func (s *Store) SaveSuppressions(set models.SuppressionSet) error {
	if len(set.Hidden) == 0 {
		_, err := s.db.Exec(`DELETE FROM suppressions WHERE patient_id = ? AND day = ?`,
			set.PatientID, set.Date)
		return err
	}

	hiddenJSON, err := json.Marshal(set.Hidden)
	if err != nil {
		return fmt.Errorf("failed to encode suppression set: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO suppressions (patient_id, day, hidden)
		VALUES (?, ?, ?)
		ON CONFLICT(patient_id, day) DO UPDATE SET
			hidden = excluded.hidden`,
		set.PatientID, set.Date, string(hiddenJSON))
	return err
}
