package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

func (s *Store) GetRegimen(patientID string) (models.RegimenConfig, error) {
	row := s.db.QueryRow(`
		SELECT patient_id, version, config, created_at, updated_at
		FROM regimens WHERE patient_id = ?`, patientID)

	var r models.RegimenConfig
	var version int
	var configJSON, createdAt, updatedAt string
	err := row.Scan(&r.PatientID, &version, &configJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RegimenConfig{}, storage.ErrNotFound
		}
		return models.RegimenConfig{}, err
	}

	if err := json.Unmarshal([]byte(configJSON), &r); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to decode regimen config: %w", err)
	}
	// The dedicated columns are authoritative over the JSON payload.
	r.PatientID = patientID
	r.Version = version
	if r.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if r.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	r.Normalize()
	return r, nil
}

func (s *Store) SaveRegimen(r models.RegimenConfig) error {
	configJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("failed to encode regimen config: %w", err)
	}

	_, err = s.db.Exec(`
		INSERT INTO regimens (patient_id, version, config, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(patient_id) DO UPDATE SET
			version = excluded.version,
			config = excluded.config,
			updated_at = excluded.updated_at`,
		r.PatientID, r.Version, string(configJSON),
		r.CreatedAt.Format(time.RFC3339), r.UpdatedAt.Format(time.RFC3339))

	return err
}
