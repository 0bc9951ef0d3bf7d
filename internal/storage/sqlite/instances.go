package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

const instanceColumns = `id, patient_id, day, bucket, item_id, item_name, detail, "window", scheduled_at, status, created_at, resolved_at`

// UpsertInstances inserts new instances keyed by
// (patient, day, item, window). An existing key is left untouched, so
// re-materialization and racing writers never duplicate an instance or
// revert its status.
func (s *Store) UpsertInstances(instances []models.DailyCareInstance) error {
	for _, inst := range instances {
		var resolvedAt sql.NullString
		if inst.ResolvedAt != nil {
			resolvedAt = sql.NullString{String: inst.ResolvedAt.Format(time.RFC3339), Valid: true}
		}

		_, err := s.db.Exec(`
			INSERT INTO instances (`+instanceColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(patient_id, day, item_id, "window") DO NOTHING`,
			inst.ID, inst.PatientID, inst.Date, inst.Bucket, inst.ItemID, inst.ItemName,
			inst.Detail, inst.Window, inst.ScheduledAt, inst.Status,
			inst.CreatedAt.Format(time.RFC3339), resolvedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert instance %s: %w", inst.ID, err)
		}
	}
	return nil
}

func (s *Store) GetInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	rows, err := s.db.Query(`
		SELECT `+instanceColumns+`
		FROM instances WHERE patient_id = ? AND day = ?
		ORDER BY scheduled_at, item_name`, patientID, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstances(rows)
}

func (s *Store) GetInstance(id string) (models.DailyCareInstance, error) {
	row := s.db.QueryRow(`
		SELECT `+instanceColumns+`
		FROM instances WHERE id = ?`, id)

	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyCareInstance{}, storage.ErrNotFound
		}
		return models.DailyCareInstance{}, err
	}
	return inst, nil
}

// TransitionInstance performs a guarded status update. The WHERE clause
// carries the expected current status, so a lost race or a repeated
// call reports applied=false instead of overwriting a terminal state.
func (s *Store) TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE instances SET status = ?, resolved_at = ?
		WHERE id = ? AND status = ?`,
		to, at.Format(time.RFC3339), id, from)
	if err != nil {
		return false, err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *Store) PendingInstancesThrough(patientID, date string) ([]models.DailyCareInstance, error) {
	rows, err := s.db.Query(`
		SELECT `+instanceColumns+`
		FROM instances
		WHERE patient_id = ? AND status = ? AND day <= ?
		ORDER BY day, scheduled_at`, patientID, models.StatusPending, date)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanInstances(rows)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInstance(row rowScanner) (models.DailyCareInstance, error) {
	var inst models.DailyCareInstance
	var createdAt string
	var resolvedAt sql.NullString

	err := row.Scan(&inst.ID, &inst.PatientID, &inst.Date, &inst.Bucket, &inst.ItemID,
		&inst.ItemName, &inst.Detail, &inst.Window, &inst.ScheduledAt, &inst.Status,
		&createdAt, &resolvedAt)
	if err != nil {
		return models.DailyCareInstance{}, err
	}

	if inst.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.DailyCareInstance{}, fmt.Errorf("failed to parse created_at for instance %s: %w", inst.ID, err)
	}
	if resolvedAt.Valid {
		t, err := time.Parse(time.RFC3339, resolvedAt.String)
		if err != nil {
			return models.DailyCareInstance{}, fmt.Errorf("failed to parse resolved_at for instance %s: %w", inst.ID, err)
		}
		inst.ResolvedAt = &t
	}

	return inst, nil
}

func scanInstances(rows *sql.Rows) ([]models.DailyCareInstance, error) {
	var instances []models.DailyCareInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, inst)
	}
	return instances, rows.Err()
}
