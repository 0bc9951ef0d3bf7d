package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
)

func (s *Store) GetStreak(patientID, category string) (models.StreakRecord, error) {
	row := s.db.QueryRow(`
		SELECT patient_id, category, current, longest, last_date
		FROM streaks WHERE patient_id = ? AND category = ?`, patientID, category)

	var r models.StreakRecord
	err := row.Scan(&r.PatientID, &r.Category, &r.Current, &r.Longest, &r.LastDate)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.StreakRecord{}, storage.ErrNotFound
		}
		return models.StreakRecord{}, err
	}
	return r, nil
}

func (s *Store) GetStreaks(patientID string) ([]models.StreakRecord, error) {
	rows, err := s.db.Query(`
		SELECT patient_id, category, current, longest, last_date
		FROM streaks WHERE patient_id = ?
		ORDER BY category`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.StreakRecord
	for rows.Next() {
		var r models.StreakRecord
		if err := rows.Scan(&r.PatientID, &r.Category, &r.Current, &r.Longest, &r.LastDate); err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func (s *Store) SaveStreak(r models.StreakRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO streaks (patient_id, category, current, longest, last_date)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(patient_id, category) DO UPDATE SET
			current = excluded.current,
			longest = excluded.longest,
			last_date = excluded.last_date`,
		r.PatientID, r.Category, r.Current, r.Longest, r.LastDate)
	return err
}

func (s *Store) HasAchievement(patientID, achievementID string) (bool, error) {
	var count int
	row := s.db.QueryRow(`
		SELECT count(*) FROM achievements WHERE patient_id = ? AND id = ?`,
		patientID, achievementID)
	if err := row.Scan(&count); err != nil {
		return false, err
	}
	return count > 0, nil
}

// AddAchievement awards once; a repeated award is a no-op by key.
func (s *Store) AddAchievement(a models.Achievement) error {
	_, err := s.db.Exec(`
		INSERT INTO achievements (id, patient_id, category, threshold, awarded_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(patient_id, id) DO NOTHING`,
		a.ID, a.PatientID, a.Category, a.Threshold, a.AwardedAt.Format(time.RFC3339))
	return err
}

func (s *Store) GetAchievements(patientID string) ([]models.Achievement, error) {
	rows, err := s.db.Query(`
		SELECT id, patient_id, category, threshold, awarded_at
		FROM achievements WHERE patient_id = ?
		ORDER BY awarded_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var achievements []models.Achievement
	for rows.Next() {
		var a models.Achievement
		var awardedAt string
		if err := rows.Scan(&a.ID, &a.PatientID, &a.Category, &a.Threshold, &awardedAt); err != nil {
			return nil, err
		}
		if a.AwardedAt, err = time.Parse(time.RFC3339, awardedAt); err != nil {
			return nil, fmt.Errorf("failed to parse awarded_at for achievement %s: %w", a.ID, err)
		}
		achievements = append(achievements, a)
	}
	return achievements, rows.Err()
}

func (s *Store) GetLastMaterialized(patientID string) (string, error) {
	var day string
	row := s.db.QueryRow(`
		SELECT last_day FROM materializations WHERE patient_id = ?`, patientID)
	err := row.Scan(&day)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", err
	}
	return day, nil
}

func (s *Store) SetLastMaterialized(patientID, date string) error {
	_, err := s.db.Exec(`
		INSERT INTO materializations (patient_id, last_day)
		VALUES (?, ?)
		ON CONFLICT(patient_id) DO UPDATE SET
			last_day = excluded.last_day`,
		patientID, date)
	return err
}
