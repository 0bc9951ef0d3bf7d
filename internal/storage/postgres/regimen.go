package postgres

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
		FROM regimens WHERE patient_id = $1`, patientID)

	var r models.RegimenConfig
	var version int
	var configJSON []byte
	var createdAt, updatedAt time.Time
	err := row.Scan(&r.PatientID, &version, &configJSON, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.RegimenConfig{}, storage.ErrNotFound
		}
		return models.RegimenConfig{}, err
	}

	if err := json.Unmarshal(configJSON, &r); err != nil {
		return models.RegimenConfig{}, fmt.Errorf("failed to decode regimen config: %w", err)
	}
	// The dedicated columns are authoritative over the JSON payload.
	r.PatientID = patientID
	r.Version = version
	r.CreatedAt = createdAt
	r.UpdatedAt = updatedAt

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
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (patient_id) DO UPDATE SET
			version = excluded.version,
			config = excluded.config,
			updated_at = excluded.updated_at`,
		r.PatientID, r.Version, configJSON, r.CreatedAt, r.UpdatedAt)

	return err
}
