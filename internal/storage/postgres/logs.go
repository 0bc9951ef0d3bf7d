package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/mwhitaker/caretrack/internal/models"
)

const logColumns = `id, instance_id, patient_id, day, outcome, payload, note, surface, action, created_at`

func (s *Store) AddLogEntry(entry models.LogEntry) error {
	var payload any
	if entry.Payload != nil {
		data, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode log payload: %w", err)
		}
		payload = data
	}

	_, err := s.db.Exec(`
		INSERT INTO log_entries (`+logColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		entry.ID, entry.InstanceID, entry.PatientID, entry.Date, entry.Outcome,
		payload, entry.Note, entry.Audit.Surface, entry.Audit.Action, entry.CreatedAt)
	return err
}

func (s *Store) GetLogEntriesForDay(patientID, date string) ([]models.LogEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+logColumns+`
		FROM log_entries WHERE patient_id = $1 AND day = $2
		ORDER BY created_at`, patientID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

func (s *Store) GetLogEntriesForInstance(instanceID string) ([]models.LogEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+logColumns+`
		FROM log_entries WHERE instance_id = $1
		ORDER BY created_at`, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanLogEntries(rows)
}

func scanLogEntries(rows *sql.Rows) ([]models.LogEntry, error) {
	var entries []models.LogEntry
	for rows.Next() {
		var e models.LogEntry
		var payload []byte

		err := rows.Scan(&e.ID, &e.InstanceID, &e.PatientID, &e.Date, &e.Outcome,
			&payload, &e.Note, &e.Audit.Surface, &e.Audit.Action, &e.CreatedAt)
		if err != nil {
			return nil, err
		}

		if len(payload) > 0 {
			if err := json.Unmarshal(payload, &e.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload for log entry %s: %w", e.ID, err)
			}
		}

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
