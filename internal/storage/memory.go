package storage

import (
	"sort"
	"sync"
	"time"

	"github.com/mwhitaker/caretrack/internal/models"
)

// MemoryStore is an in-memory Provider. It backs tests and mirrors the
// key semantics of the SQL providers: instance upserts are keyed by
// (patient, day, item, window) and status transitions are guarded by
// the expected current status.
type MemoryStore struct {
	mu sync.Mutex

	regimens     map[string]models.RegimenConfig
	instances    map[string]models.DailyCareInstance // by instance ID
	instanceKeys map[memInstanceKey]string           // key -> instance ID
	logs         []models.LogEntry
	suppressions map[memDayKey]models.SuppressionSet
	streaks      map[memStreakKey]models.StreakRecord
	achievements map[memStreakKey]models.Achievement
	lastDays     map[string]string
}

type memDayKey struct {
	patientID string
	date      string
}

type memInstanceKey struct {
	patientID string
	date      string
	itemID    string
	window    models.Window
}

type memStreakKey struct {
	patientID string
	name      string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		regimens:     make(map[string]models.RegimenConfig),
		instances:    make(map[string]models.DailyCareInstance),
		instanceKeys: make(map[memInstanceKey]string),
		suppressions: make(map[memDayKey]models.SuppressionSet),
		streaks:      make(map[memStreakKey]models.StreakRecord),
		achievements: make(map[memStreakKey]models.Achievement),
		lastDays:     make(map[string]string),
	}
}

func (m *MemoryStore) Init() error  { return nil }
func (m *MemoryStore) Load() error  { return nil }
func (m *MemoryStore) Close() error { return nil }

func (m *MemoryStore) GetRegimen(patientID string) (models.RegimenConfig, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.regimens[patientID]
	if !ok {
		return models.RegimenConfig{}, ErrNotFound
	}
	r.Normalize()
	return r, nil
}

func (m *MemoryStore) SaveRegimen(r models.RegimenConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.regimens[r.PatientID] = r
	return nil
}

func (m *MemoryStore) UpsertInstances(instances []models.DailyCareInstance) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, inst := range instances {
		key := memInstanceKey{inst.PatientID, inst.Date, inst.ItemID, inst.Window}
		if _, exists := m.instanceKeys[key]; exists {
			continue
		}
		m.instanceKeys[key] = inst.ID
		m.instances[inst.ID] = inst
	}
	return nil
}

func (m *MemoryStore) GetInstances(patientID, date string) ([]models.DailyCareInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.DailyCareInstance
	for _, inst := range m.instances {
		if inst.PatientID == patientID && inst.Date == date {
			out = append(out, inst)
		}
	}
	sortInstances(out)
	return out, nil
}

func (m *MemoryStore) GetInstance(id string) (models.DailyCareInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok {
		return models.DailyCareInstance{}, ErrNotFound
	}
	return inst, nil
}

func (m *MemoryStore) TransitionInstance(id string, from, to models.InstanceStatus, at time.Time) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	inst, ok := m.instances[id]
	if !ok || inst.Status != from {
		return false, nil
	}
	inst.Status = to
	resolved := at
	inst.ResolvedAt = &resolved
	m.instances[id] = inst
	return true, nil
}

func (m *MemoryStore) PendingInstancesThrough(patientID, date string) ([]models.DailyCareInstance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.DailyCareInstance
	for _, inst := range m.instances {
		if inst.PatientID == patientID && inst.Status == models.StatusPending && inst.Date <= date {
			out = append(out, inst)
		}
	}
	sortInstances(out)
	return out, nil
}

func (m *MemoryStore) AddLogEntry(entry models.LogEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.logs = append(m.logs, entry)
	return nil
}

func (m *MemoryStore) GetLogEntriesForDay(patientID, date string) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.LogEntry
	for _, e := range m.logs {
		if e.PatientID == patientID && e.Date == date {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetLogEntriesForInstance(instanceID string) ([]models.LogEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.LogEntry
	for _, e := range m.logs {
		if e.InstanceID == instanceID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetSuppressions(patientID, date string) (models.SuppressionSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.suppressions[memDayKey{patientID, date}]
	if !ok {
		return models.SuppressionSet{PatientID: patientID, Date: date}, nil
	}
	set.Hidden = append([]models.SuppressionKey(nil), set.Hidden...)
	return set, nil
}

func (m *MemoryStore) SaveSuppressions(set models.SuppressionSet) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memDayKey{set.PatientID, set.Date}
	if len(set.Hidden) == 0 {
		delete(m.suppressions, key)
		return nil
	}
	set.Hidden = append([]models.SuppressionKey(nil), set.Hidden...)
	m.suppressions[key] = set
	return nil
}

func (m *MemoryStore) GetStreak(patientID, category string) (models.StreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.streaks[memStreakKey{patientID, category}]
	if !ok {
		return models.StreakRecord{}, ErrNotFound
	}
	return r, nil
}

func (m *MemoryStore) GetStreaks(patientID string) ([]models.StreakRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.StreakRecord
	for _, r := range m.streaks {
		if r.PatientID == patientID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *MemoryStore) SaveStreak(r models.StreakRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.streaks[memStreakKey{r.PatientID, r.Category}] = r
	return nil
}

func (m *MemoryStore) HasAchievement(patientID, achievementID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	_, ok := m.achievements[memStreakKey{patientID, achievementID}]
	return ok, nil
}

func (m *MemoryStore) AddAchievement(a models.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memStreakKey{a.PatientID, a.ID}
	if _, exists := m.achievements[key]; exists {
		return nil
	}
	m.achievements[key] = a
	return nil
}

func (m *MemoryStore) GetAchievements(patientID string) ([]models.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.Achievement
	for _, a := range m.achievements {
		if a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (m *MemoryStore) GetLastMaterialized(patientID string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.lastDays[patientID], nil
}

func (m *MemoryStore) SetLastMaterialized(patientID, date string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.lastDays[patientID] = date
	return nil
}

func (m *MemoryStore) GetConfigPath() string {
	return ":memory:"
}

func sortInstances(instances []models.DailyCareInstance) {
	sort.Slice(instances, func(i, j int) bool {
		a, b := instances[i], instances[j]
		if a.Date != b.Date {
			return a.Date < b.Date
		}
		if a.ScheduledAt != b.ScheduledAt {
			return a.ScheduledAt < b.ScheduledAt
		}
		return a.ItemName < b.ItemName
	})
}
