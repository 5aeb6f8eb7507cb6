/*
Package motor tracks configurable motor and electrical-load records with
snapshot-on-write revision control.

PURPOSE:
  A motor/load row belongs to a project and carries either motor fields
  (hp, frame, VFD selection) or load fields (power rating, phase),
  selected by the LoadType discriminator. Before every edit the full
  field state is snapshotted into a revision history, tagged with the
  pre-change revision number, enabling compare and revert.

REVISIONS:
  Revision numbers are "major.minor" pairs (see revision.go). Edits to
  electrically significant fields suggest a major bump, operational
  fields a minor bump, and trivial fields an overwrite - a suggestion
  only; the caller makes the final call.

SEE ALSO:
  - tracker.go: detect/apply/revert/compare operations
  - electrical.go: amp and drive-sizing derivations
*/
package motor

import (
	"time"

	"github.com/shopspring/decimal"
)

// Load type discriminator values.
const (
	LoadTypeMotor = "motor"
	LoadTypeLoad  = "load"
)

// Power unit values for loads.
const (
	PowerUnitKVA  = "kVA"
	PowerUnitAmps = "Amps"
)

// Phase configuration values for loads.
const (
	PhaseSingle = "single"
	PhaseThree  = "three"
)

// VFD duty ratings.
const (
	DutyNormal = "ND"
	DutyHeavy  = "HD"
)

// Motor is a motor or electrical load attached to a project.
type Motor struct {
	ID        string
	ProjectID string
	LoadType  string // LoadTypeMotor or LoadTypeLoad
	Name      string
	Location  string
	Enclosure string
	Frame     string
	Notes     string

	// Motor-specific fields. HP is nil for loads.
	HP              *decimal.Decimal
	SpeedRange      string
	OverloadPercent decimal.Decimal // e.g. 1.15

	Voltage        decimal.Decimal // 115, 200, 208, 230, 460, 575, 2300
	Qty            int
	ContinuousLoad bool
	VFDTypeID      string

	// Load-specific fields. PowerRating is nil for motors.
	PowerRating *decimal.Decimal
	PowerUnit   string // PowerUnitKVA or PowerUnitAmps
	PhaseConfig string // PhaseSingle or PhaseThree

	// Overrides.
	NECAmpsOverride   bool
	ManualAmps        *decimal.Decimal
	VFDOverride       bool
	SelectedVFDPartID string
	DutyType          string // DutyNormal or DutyHeavy

	SortOrder     int
	Revision      Revision
	RevisionClass Class
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Snapshot is a full field-state copy of a motor, written before each
// edit and tagged with the pre-change revision number.
type Snapshot struct {
	ID            string
	MotorID       string
	Revision      Revision
	RevisionClass Class

	// FieldsChanged is the JSON-encoded change set that triggered the
	// snapshot, empty for system snapshots (e.g. revert backups).
	FieldsChanged string

	LoadType  string
	Name      string
	Location  string
	Enclosure string
	Frame     string
	Notes     string

	HP              *decimal.Decimal
	SpeedRange      string
	OverloadPercent decimal.Decimal

	Voltage        decimal.Decimal
	Qty            int
	ContinuousLoad bool
	VFDTypeID      string

	PowerRating *decimal.Decimal
	PowerUnit   string
	PhaseConfig string

	NECAmpsOverride   bool
	ManualAmps        *decimal.Decimal
	VFDOverride       bool
	SelectedVFDPartID string
	DutyType          string

	ChangedBy         string
	ChangeDescription string
	CreatedAt         time.Time
}

// FieldChange records one differing field between two states.
type FieldChange struct {
	Field string `json:"field"`
	Old   any    `json:"old"`
	New   any    `json:"new"`
}
