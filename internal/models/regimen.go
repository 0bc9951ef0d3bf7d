package models

import (
	"fmt"
	"time"

	"github.com/mwhitaker/caretrack/internal/constants"
)

type BucketType string

const (
	BucketMedications  BucketType = "medications"
	BucketVitals       BucketType = "vitals"
	BucketMeals        BucketType = "meals"
	BucketHydration    BucketType = "hydration"
	BucketSleep        BucketType = "sleep"
	BucketActivity     BucketType = "activity"
	BucketWellness     BucketType = "wellness"
	BucketAppointments BucketType = "appointments"
)

// AllBucketTypes returns the closed set of bucket types in canonical order.
func AllBucketTypes() []BucketType {
	return []BucketType{
		BucketMedications,
		BucketVitals,
		BucketMeals,
		BucketHydration,
		BucketSleep,
		BucketActivity,
		BucketWellness,
		BucketAppointments,
	}
}

type Priority string

const (
	PriorityRequired    Priority = "required"
	PriorityRecommended Priority = "recommended"
	PriorityOptional    Priority = "optional"
)

type TimeOfDay string

const (
	TimeMorning   TimeOfDay = "morning"
	TimeAfternoon TimeOfDay = "afternoon"
	TimeEvening   TimeOfDay = "evening"
	TimeNight     TimeOfDay = "night"
)

// ClockTime maps a coarse time-of-day to its canonical HH:MM clock time.
func (t TimeOfDay) ClockTime() string {
	switch t {
	case TimeMorning:
		return constants.MorningTime
	case TimeAfternoon:
		return constants.AfternoonTime
	case TimeEvening:
		return constants.EveningTime
	case TimeNight:
		return constants.NightTime
	default:
		return ""
	}
}

type BucketConfig struct {
	Type                 BucketType    `json:"type"`
	Enabled              bool          `json:"enabled"`
	Priority             Priority      `json:"priority"`
	TimesOfDay           []TimeOfDay   `json:"times_of_day,omitempty"`
	CustomTimes          []string      `json:"custom_times,omitempty"` // HH:MM format
	NotificationsEnabled bool          `json:"notifications_enabled"`
	Items                []TrackedItem `json:"items,omitempty"`
}

// EffectiveEnabled reports whether the bucket participates in
// materialization. Wellness is always enabled regardless of its stored
// flag.
func (b BucketConfig) EffectiveEnabled() bool {
	if b.Type == BucketWellness {
		return true
	}
	return b.Enabled
}

// Trackables returns the items the materializer should evaluate for this
// bucket. Routine buckets (meals, hydration, sleep, activity, wellness)
// are tracked as a single synthetic item carrying the bucket's schedule;
// medications, vitals, and appointments track only configured items, so
// an empty one materializes nothing.
func (b BucketConfig) Trackables() []TrackedItem {
	if len(b.Items) > 0 {
		return b.Items
	}
	switch b.Type {
	case BucketMedications, BucketVitals, BucketAppointments:
		return nil
	}
	return []TrackedItem{{
		ID:       string(b.Type),
		Name:     string(b.Type),
		Schedule: Schedule{Frequency: FrequencyDaily, EndCondition: EndOngoing},
	}}
}

type RegimenConfig struct {
	ID        string                      `json:"id"`
	PatientID string                      `json:"patient_id"`
	Version   int                         `json:"version"`
	Buckets   map[BucketType]BucketConfig `json:"buckets"`
	CreatedAt time.Time                   `json:"created_at"`
	UpdatedAt time.Time                   `json:"updated_at"`
}

// Normalize enforces the closed-bucket-set invariant: every bucket type
// is present (disabled if absent) and each bucket's Type field matches
// its key. Applied at every read so older stored configs stay valid.
func (r *RegimenConfig) Normalize() {
	if r.Buckets == nil {
		r.Buckets = make(map[BucketType]BucketConfig)
	}
	for _, bt := range AllBucketTypes() {
		b, ok := r.Buckets[bt]
		if !ok {
			b = defaultBucket(bt)
			b.Enabled = bt == BucketWellness
		}
		b.Type = bt
		r.Buckets[bt] = b
	}
}

func (r *RegimenConfig) Validate() error {
	if r.PatientID == "" {
		return fmt.Errorf("regimen patient id cannot be empty")
	}
	for bt, b := range r.Buckets {
		for _, ct := range b.CustomTimes {
			if _, err := time.Parse(constants.TimeFormat, ct); err != nil {
				return fmt.Errorf("bucket %s: invalid custom time %q (expected HH:MM): %w", bt, ct, err)
			}
		}
		for _, item := range b.Items {
			if err := item.Validate(); err != nil {
				return fmt.Errorf("bucket %s: %w", bt, err)
			}
		}
	}
	return nil
}

func defaultBucket(bt BucketType) BucketConfig {
	b := BucketConfig{
		Type:                 bt,
		Enabled:              true,
		Priority:             PriorityRecommended,
		TimesOfDay:           []TimeOfDay{TimeMorning},
		NotificationsEnabled: true,
	}
	switch bt {
	case BucketMedications:
		b.Priority = PriorityRequired
	case BucketMeals:
		b.TimesOfDay = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening}
	case BucketHydration:
		b.TimesOfDay = []TimeOfDay{TimeMorning, TimeAfternoon, TimeEvening}
	case BucketSleep:
		b.TimesOfDay = []TimeOfDay{TimeNight}
	case BucketActivity:
		b.TimesOfDay = []TimeOfDay{TimeAfternoon}
	case BucketWellness:
		b.TimesOfDay = []TimeOfDay{TimeEvening}
	case BucketAppointments:
		b.Enabled = false
		b.Priority = PriorityOptional
		b.TimesOfDay = nil
	}
	return b
}

// DefaultRegimen builds the configuration persisted when a patient has
// none. Every bucket is present; medications and appointments start
// without items.
func DefaultRegimen(patientID string, now time.Time) RegimenConfig {
	r := RegimenConfig{
		ID:        "regimen-" + patientID,
		PatientID: patientID,
		Version:   1,
		Buckets:   make(map[BucketType]BucketConfig),
		CreatedAt: now,
		UpdatedAt: now,
	}
	for _, bt := range AllBucketTypes() {
		r.Buckets[bt] = defaultBucket(bt)
	}
	return r
}
