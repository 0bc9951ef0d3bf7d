package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

const logColumns = `id, instance_id, patient_id, day, outcome, payload, note, surface, action, created_at`

// AddLogEntry appends one immutable record. There is no update path by
// design.
func (s *Store) AddLogEntry(entry models.LogEntry) error {
	var payload sql.NullString
	if entry.Payload != nil {
		data, err := json.Marshal(entry.Payload)
		if err != nil {
			return fmt.Errorf("failed to encode log payload: %w", err)
		}
		payload = sql.NullString{String: string(data), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT INTO log_entries (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID, entry.InstanceID, entry.PatientID, entry.Date, entry.Outcome,
		payload, entry.Note, entry.Audit.Surface, entry.Audit.Action,
		entry.CreatedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetLogEntriesForDay(patientID, date string) ([]models.LogEntry, error) {
	rows, err := s.db.Query(`
		SELECT `+logColumns+`
		FROM log_entries WHERE patient_id = ? AND day = ?
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
		FROM log_entries WHERE instance_id = ?
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
		var payload sql.NullString
		var createdAt string

		err := rows.Scan(&e.ID, &e.InstanceID, &e.PatientID, &e.Date, &e.Outcome,
			&payload, &e.Note, &e.Audit.Surface, &e.Audit.Action, &createdAt)
		if err != nil {
			return nil, err
		}

		if payload.Valid {
			if err := json.Unmarshal([]byte(payload.String), &e.Payload); err != nil {
				return nil, fmt.Errorf("failed to decode payload for log entry %s: %w", e.ID, err)
			}
		}
		if e.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse created_at for log entry %s: %w", e.ID, err)
		}

		entries = append(entries, e)
	}
	return entries, rows.Err()
}
