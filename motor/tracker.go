/*
tracker.go - Snapshot-on-write revision control for motors/loads

EDIT FLOW:
  1. DetectChanges proposes a revision class from the changed fields
  2. The caller picks the final class (major/minor/overwrite)
  3. ApplyEdit snapshots the full pre-change state tagged with the
     current revision number, applies the new state, and bumps the
     revision - all in one transaction

REVERT:
  Reverting to revision N first snapshots the live state (so the revert
  itself is undoable), then copies N's snapshot back onto the live row
  and takes a major bump. Reverting to a revision that never existed is
  a not-found error.
*/
package motor

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/costing"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the motor persistence surface. Single-record getters return
// (nil, nil) when the record does not exist.
type Store interface {
	GetMotor(ctx context.Context, id string) (*Motor, error)
	SaveMotor(ctx context.Context, m Motor) error
	UpdateMotor(ctx context.Context, m Motor) error
	ListMotors(ctx context.Context, projectID string) ([]Motor, error)

	AppendSnapshot(ctx context.Context, snap Snapshot) error
	GetSnapshot(ctx context.Context, motorID string, rev Revision) (*Snapshot, error)
	ListSnapshots(ctx context.Context, motorID string) ([]Snapshot, error)

	// NECFullLoadAmps looks up the NEC full-load current for an hp and
	// voltage column. Nil when the table has no row for that hp.
	NECFullLoadAmps(ctx context.Context, hp decimal.Decimal, voltage int) (*decimal.Decimal, error)
}

// TxStore is a Store that can scope a function to one transaction.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Tracker applies revision-controlled edits to motors.
type Tracker struct {
	Store TxStore
	Now   func() time.Time
}

func NewTracker(store TxStore) *Tracker {
	return &Tracker{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// EditResult reports what an ApplyEdit call did. NoChanges=true is a
// successful no-op, not a failure.
type EditResult struct {
	Motor     *Motor
	Changes   []FieldChange
	Revision  Revision
	NoChanges bool
}

// =============================================================================
// APPLY EDIT
// =============================================================================

// ApplyEdit snapshots the motor's pre-change state, applies the proposed
// field values, and bumps the revision per class. When nothing differs
// the call is a no-op.
func (t *Tracker) ApplyEdit(ctx context.Context, motorID string, proposed Motor, changedBy, description string, class Class) (*EditResult, error) {
	current, err := t.mustGet(ctx, motorID)
	if err != nil {
		return nil, err
	}

	changes, _ := DetectChanges(current, &proposed)
	if len(changes) == 0 {
		return &EditResult{Motor: current, Revision: current.Revision, NoChanges: true}, nil
	}

	changedJSON, err := json.Marshal(changes)
	if err != nil {
		return nil, fmt.Errorf("encoding change set: %w", err)
	}

	now := t.Now()
	next := current.Revision.Bump(class)

	err = t.Store.WithTx(ctx, func(s Store) error {
		snap := t.snapshotOf(current, string(changedJSON), changedBy, description, class, now)
		if err := s.AppendSnapshot(ctx, snap); err != nil {
			return err
		}

		updated := proposed
		updated.ID = current.ID
		updated.ProjectID = current.ProjectID
		updated.Revision = next
		updated.RevisionClass = class
		updated.CreatedAt = current.CreatedAt
		updated.UpdatedAt = now
		return s.UpdateMotor(ctx, updated)
	})
	if err != nil {
		return nil, err
	}

	result := proposed
	result.ID = current.ID
	result.ProjectID = current.ProjectID
	result.Revision = next
	result.RevisionClass = class
	result.CreatedAt = current.CreatedAt
	result.UpdatedAt = now
	return &EditResult{Motor: &result, Changes: changes, Revision: next}, nil
}

// =============================================================================
// REVERT
// =============================================================================

// RevertToRevision copies the snapshot for the target revision back onto
// the live record. The live state is snapshotted first so the revert can
// itself be undone; the revert takes a major bump.
func (t *Tracker) RevertToRevision(ctx context.Context, motorID string, target Revision, changedBy string) (*Motor, error) {
	current, err := t.mustGet(ctx, motorID)
	if err != nil {
		return nil, err
	}

	snap, err := t.Store.GetSnapshot(ctx, motorID, target)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &costing.NotFoundError{Kind: "motor revision", ID: target.String()}
	}

	now := t.Now()
	next := current.Revision.Bump(ClassMajor)
	var reverted Motor

	err = t.Store.WithTx(ctx, func(s Store) error {
		backup := t.snapshotOf(current, "", changedBy,
			fmt.Sprintf("Reverted to revision %s", target), ClassMajor, now)
		if err := s.AppendSnapshot(ctx, backup); err != nil {
			return err
		}

		reverted = snap.State()
		reverted.ID = current.ID
		reverted.ProjectID = current.ProjectID
		reverted.SortOrder = current.SortOrder
		reverted.Revision = next
		reverted.RevisionClass = ClassMajor
		reverted.CreatedAt = current.CreatedAt
		reverted.UpdatedAt = now
		return s.UpdateMotor(ctx, reverted)
	})
	if err != nil {
		return nil, err
	}
	return &reverted, nil
}

// =============================================================================
// COMPARE
// =============================================================================

// CompareRevisions diffs the snapshots of two revision numbers,
// returning only the differing fields.
func (t *Tracker) CompareRevisions(ctx context.Context, motorID string, a, b Revision) ([]FieldChange, error) {
	snapA, err := t.mustGetSnapshot(ctx, motorID, a)
	if err != nil {
		return nil, err
	}
	snapB, err := t.mustGetSnapshot(ctx, motorID, b)
	if err != nil {
		return nil, err
	}
	stateA, stateB := snapA.State(), snapB.State()
	changes, _ := DetectChanges(&stateA, &stateB)
	return changes, nil
}

// CompareWithCurrent diffs a snapshot against the live record.
func (t *Tracker) CompareWithCurrent(ctx context.Context, motorID string, rev Revision) ([]FieldChange, error) {
	current, err := t.mustGet(ctx, motorID)
	if err != nil {
		return nil, err
	}
	snap, err := t.mustGetSnapshot(ctx, motorID, rev)
	if err != nil {
		return nil, err
	}
	state := snap.State()
	changes, _ := DetectChanges(&state, current)
	return changes, nil
}

// History returns a motor's snapshots, newest revision first.
func (t *Tracker) History(ctx context.Context, motorID string) ([]Snapshot, error) {
	if _, err := t.mustGet(ctx, motorID); err != nil {
		return nil, err
	}
	return t.Store.ListSnapshots(ctx, motorID)
}

// =============================================================================
// HELPERS
// =============================================================================

func (t *Tracker) snapshotOf(m *Motor, fieldsChanged, changedBy, description string, class Class, at time.Time) Snapshot {
	return Snapshot{
		ID:                uuid.NewString(),
		MotorID:           m.ID,
		Revision:          m.Revision,
		RevisionClass:     class,
		FieldsChanged:     fieldsChanged,
		LoadType:          m.LoadType,
		Name:              m.Name,
		Location:          m.Location,
		Enclosure:         m.Enclosure,
		Frame:             m.Frame,
		Notes:             m.Notes,
		HP:                m.HP,
		SpeedRange:        m.SpeedRange,
		OverloadPercent:   m.OverloadPercent,
		Voltage:           m.Voltage,
		Qty:               m.Qty,
		ContinuousLoad:    m.ContinuousLoad,
		VFDTypeID:         m.VFDTypeID,
		PowerRating:       m.PowerRating,
		PowerUnit:         m.PowerUnit,
		PhaseConfig:       m.PhaseConfig,
		NECAmpsOverride:   m.NECAmpsOverride,
		ManualAmps:        m.ManualAmps,
		VFDOverride:       m.VFDOverride,
		SelectedVFDPartID: m.SelectedVFDPartID,
		DutyType:          m.DutyType,
		ChangedBy:         changedBy,
		ChangeDescription: description,
		CreatedAt:         at,
	}
}

func (t *Tracker) mustGet(ctx context.Context, motorID string) (*Motor, error) {
	m, err := t.Store.GetMotor(ctx, motorID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, &costing.NotFoundError{Kind: "motor", ID: motorID}
	}
	return m, nil
}

func (t *Tracker) mustGetSnapshot(ctx context.Context, motorID string, rev Revision) (*Snapshot, error) {
	snap, err := t.Store.GetSnapshot(ctx, motorID, rev)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, &costing.NotFoundError{Kind: "motor revision", ID: rev.String()}
	}
	return snap, nil
}
