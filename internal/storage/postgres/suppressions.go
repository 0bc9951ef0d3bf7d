package postgres

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mwhitaker/caretrack/internal/models"
)

func (s *Store) GetSuppressions(patientID, date string) (models.SuppressionSet, error) {
	set := models.SuppressionSet{PatientID: patientID, Date: date}

	row := s.db.QueryRow(`
		SELECT hidden FROM suppressions WHERE patient_id = $1 AND day = $2`,
		patientID, date)

	var hiddenJSON []byte
	err := row.Scan(&hiddenJSON)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return set, nil
		}
		return models.SuppressionSet{}, err
	}

	if err := json.Unmarshal(hiddenJSON, &set.Hidden); err != nil {
		return models.SuppressionSet{}, fmt.Errorf("failed to decode suppression set: %w", err)
	}
	return set, nil
}

func (s *Store) SaveSuppressions(set models.SuppressionSet) error {
	if len(set.Hidden) == 0 {
		_, err := s.db.Exec(`DELETE FROM suppressions WHERE patient_id = $1 AND day = $2`,
			set.PatientID, set.Date)
		return err
	}

	hiddenJSON, err := json.Marshal(set.Hidden)
	if err != nil {
		return fmt.Errorf("failed to encode suppression set: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO suppressions (patient_id, day, hidden)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, day) DO UPDATE SET
			hidden = excluded.hidden`,
		set.PatientID, set.Date, hiddenJSON)
	return err
}
