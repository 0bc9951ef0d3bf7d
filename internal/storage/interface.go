package storage

import (
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
// Providers translate their driver's not-found error into this sentinel.
var ErrNotFound = errors.New("record not found")

// Provider is the persistence boundary for the care-tracking core. The
// core treats it as a generic keyed store: it assumes per-statement
// atomicity but no multi-key transactions, so every caller is written
// to be safe if interrupted between a read and a write.
type Provider interface {
	// Lifecycle
	Init() error
	Load() error
	Close() error

	// Regimen
	GetRegimen(patientID string) (models.RegimenConfig, error)
	SaveRegimen(models.RegimenConfig) error

	// Daily care instances. UpsertInstances must be keyed on
	// (patient, date, item, window): an instance whose key already
	// exists is left untouched, so racing materializers converge on
	// one set instead of appending duplicates.
	UpsertInstances([]models.DailyCareInstance) error
	GetInstances(patientID, date string) ([]models.DailyCareInstance, error)
	GetInstance(id string) (models.DailyCareInstance, error)
	// TransitionInstance moves an instance from one status to another
	// and reports whether the guarded update actually applied.
	TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error)
	// PendingInstancesThrough lists pending instances dated on or
	// before the given date, for the missed sweep.
	PendingInstancesThrough(patientID, date string) ([]models.DailyCareInstance, error)

	// Log entries (append-only)
	AddLogEntry(models.LogEntry) error
	GetLogEntriesForDay(patientID, date string) ([]models.LogEntry, error)
	GetLogEntriesForInstance(instanceID string) ([]models.LogEntry, error)

	// Suppressions. A missing set is an empty set, not an error.
	GetSuppressions(patientID, date string) (models.SuppressionSet, error)
	SaveSuppressions(models.SuppressionSet) error

	// Streaks and achievements
	GetStreak(patientID, category string) (models.StreakRecord, error)
	GetStreaks(patientID string) ([]models.StreakRecord, error)
	SaveStreak(models.StreakRecord) error
	HasAchievement(patientID, achievementID string) (bool, error)
	AddAchievement(models.Achievement) error
	GetAchievements(patientID string) ([]models.Achievement, error)

	// Materialization bookkeeping. The last-materialized marker is a
	// persisted value, never ambient process state.
	GetLastMaterialized(patientID string) (string, error)
	SetLastMaterialized(patientID, date string) error

	// Utils
	GetConfigPath() string
}

// HasEmbeddedCredentials reports whether a PostgreSQL connection string
// carries a password inline. Credentials must come from the OS keyring
// or the environment instead.
func HasEmbeddedCredentials(connStr string) bool {
	if strings.HasPrefix(connStr, "postgres://") || strings.HasPrefix(connStr, "postgresql://") {
		u, err := url.Parse(connStr)
		if err != nil {
			return false
		}
		if u.User != nil {
			if _, set := u.User.Password(); set {
				return true
			}
		}
		return false
	}

	// DSN format: space-separated key=value pairs.
	for _, part := range strings.Fields(connStr) {
		kv := strings.SplitN(part, "=", 2)
		if len(kv) == 2 && strings.EqualFold(kv[0], "password") {
			return true
		}
	}
	return false
}
