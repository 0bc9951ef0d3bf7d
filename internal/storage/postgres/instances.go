package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

const instanceColumns = `id, patient_id, day, bucket, item_id, item_name, detail, "window", scheduled_at, status, created_at, resolved_at`

func (s *Store) UpsertInstances(instances []models.DailyCareInstance) error {
	for _, inst := range instances {
		var resolvedAt sql.NullTime
		if inst.ResolvedAt != nil {
			resolvedAt = sql.NullTime{Time: *inst.ResolvedAt, Valid: true}
		}

		_, err := s.db.Exec(`
			INSERT INTO instances (`+instanceColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			ON CONFLICT (patient_id, day, item_id, "window") DO NOTHING`,
			inst.ID, inst.PatientID, inst.Date, inst.Bucket, inst.ItemID, inst.ItemName,
			inst.Detail, inst.Window, inst.ScheduledAt, inst.Status,
			inst.CreatedAt, resolvedAt)
		if err != nil {
			return fmt.Errorf("failed to upsert instance %s: %w", inst.ID, err)
		}
	}
	return nil
}

func (s *Store) GetInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	rows, err := s.db.Query(`
		SELECT `+instanceColumns+`
		FROM instances WHERE patient_id = $1 AND day = $2
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
		FROM instances WHERE id = $1`, id)

	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.DailyCareInstance{}, storage.ErrNotFound
		}
		return models.DailyCareInstance{}, err
	}
	return inst, nil
}

func (s *Store) TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error) {
	result, err := s.db.Exec(`
		UPDATE instances SET status = $1, resolved_at = $2
		WHERE id = $3 AND status = $4`,
		to, at, id, from)
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
		WHERE patient_id = $1 AND status = $2 AND day <= $3
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
	var resolvedAt sql.NullTime

	err := row.Scan(&inst.ID, &inst.PatientID, &inst.Date, &inst.Bucket, &inst.ItemID,
		&inst.ItemName, &inst.Detail, &inst.Window, &inst.ScheduledAt, &inst.Status,
		&inst.CreatedAt, &resolvedAt)
	if err != nil {
		return models.DailyCareInstance{}, err
	}

	if resolvedAt.Valid {
		t := resolvedAt.Time
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
