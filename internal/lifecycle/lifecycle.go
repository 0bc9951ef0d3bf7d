// Package lifecycle advances daily care instances through their status
// state machine: pending to completed or skipped on user action,
// pending to missed via the sweep. Terminal states are final.
package lifecycle

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mwhitaker/caretrack/internal/constants"
	"github.com/mwhitaker/caretrack/internal/logger"
	"github.com/mwhitaker/caretrack/internal/models"
	"github.com/mwhitaker/caretrack/internal/storage"
	"github.com/mwhitaker/caretrack/internal/windows"
)

// AggregateUpdater receives each applied completion synchronously, in
// the same logical operation as the status write, so aggregates never
// observe a completion without its side effects.
type AggregateUpdater interface {
	OnCompletion(instance models.DailyCareInstance, entry models.LogEntry) error
}

// Transition reports the result of an attempted status change. A
// request against a terminal instance is a no-op with Applied=false,
// not an error, so callers can tell "nothing happened" from a hard
// failure.
type Transition struct {
	Applied  bool
	Instance models.DailyCareInstance
	Entry    *models.LogEntry
}

type Machine struct {
	store    storage.Provider
	updaters []AggregateUpdater
	now      func() time.Time
}

func NewMachine(store storage.Provider, updaters ...AggregateUpdater) *Machine {
	return &Machine{
		store:    store,
		updaters: updaters,
		now:      time.Now,
	}
}

// Complete resolves a pending instance with the given outcome, writing
// exactly one immutable log entry and notifying aggregate updaters.
func (m *Machine) Complete(instanceID string, outcome models.Outcome, payload map[string]any, note string, audit models.AuditMeta) (Transition, error) {
	inst, err := m.store.GetInstance(instanceID)
	if err != nil {
		return Transition{}, fmt.Errorf("failed to load instance: %w", err)
	}

	target := outcome.Status()
	now := m.now()

	applied, err := m.store.TransitionInstance(instanceID, models.StatusPending, target, now)
	if err != nil {
		return Transition{}, fmt.Errorf("failed to transition instance: %w", err)
	}
	if !applied {
		// Already terminal, or lost a race to another caller.
		return Transition{Applied: false, Instance: inst}, nil
	}

	inst.Status = target
	inst.ResolvedAt = &now

	entry := models.LogEntry{
		ID:         uuid.New().String(),
		InstanceID: inst.ID,
		PatientID:  inst.PatientID,
		Date:       inst.Date,
		Outcome:    outcome,
		Payload:    payload,
		Note:       note,
		Audit:      audit,
		CreatedAt:  now,
	}
	if err := m.store.AddLogEntry(entry); err != nil {
		return Transition{}, fmt.Errorf("failed to write log entry: %w", err)
	}

	for _, u := range m.updaters {
		if err := u.OnCompletion(inst, entry); err != nil {
			return Transition{}, fmt.Errorf("aggregate update failed: %w", err)
		}
	}

	logger.Debug("Instance resolved", "instance", inst.ID, "outcome", outcome, "status", target)
	return Transition{Applied: true, Instance: inst, Entry: &entry}, nil
}

// Skip resolves a pending instance as skipped.
func (m *Machine) Skip(instanceID string, note string, audit models.AuditMeta) (Transition, error) {
	return m.Complete(instanceID, models.OutcomeSkipped, nil, note, audit)
}

// MarkMissed moves a pending instance to missed, but only once its
// scheduled window has fully elapsed relative to now. Time-driven only;
// user actions go through Complete/Skip.
func (m *Machine) MarkMissed(instanceID string, now time.Time) (Transition, error) {
	inst, err := m.store.GetInstance(instanceID)
	if err != nil {
		return Transition{}, fmt.Errorf("failed to load instance: %w", err)
	}

	if !windowElapsed(inst, now) {
		return Transition{Applied: false, Instance: inst}, nil
	}

	applied, err := m.store.TransitionInstance(instanceID, models.StatusPending, models.StatusMissed, now)
	if err != nil {
		return Transition{}, fmt.Errorf("failed to transition instance: %w", err)
	}
	if applied {
		inst.Status = models.StatusMissed
		inst.ResolvedAt = &now
	}
	return Transition{Applied: applied, Instance: inst}, nil
}

// SweepMissed marks every elapsed pending instance for a patient as
// missed, through today. This sweep is the only path to the missed
// status; materialization never touches prior dates.
func (m *Machine) SweepMissed(patientID string, now time.Time) (int, error) {
	today := now.Format(constants.DateFormat)
	pending, err := m.store.PendingInstancesThrough(patientID, today)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending instances: %w", err)
	}

	swept := 0
	for _, inst := range pending {
		if !windowElapsed(inst, now) {
			continue
		}
		applied, err := m.store.TransitionInstance(inst.ID, models.StatusPending, models.StatusMissed, now)
		if err != nil {
			return swept, fmt.Errorf("failed to mark instance %s missed: %w", inst.ID, err)
		}
		if applied {
			swept++
		}
	}

	if swept > 0 {
		logger.Info("Swept missed instances", "patient", patientID, "count", swept)
	}
	return swept, nil
}

// windowElapsed reports whether the instance's window lies entirely in
// the past. Prior dates have always elapsed; future dates never have.
func windowElapsed(inst models.DailyCareInstance, now time.Time) bool {
	today := now.Format(constants.DateFormat)
	if inst.Date < today {
		return true
	}
	if inst.Date > today {
		return false
	}
	nowMinutes := now.Hour()*60 + now.Minute()
	return nowMinutes >= windows.End(inst.Window)
}
