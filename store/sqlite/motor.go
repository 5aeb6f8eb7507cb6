package sqlite

import (
	"context"
	"database/sql"

	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/motor"
)

// =============================================================================
// MOTORS
// =============================================================================

func (c conn) SaveMotor(ctx context.Context, m motor.Motor) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO motors
		 (id, project_id, load_type, name, location, enclosure, frame, notes, hp, speed_range,
		  overload_percent, voltage, qty, continuous_load, vfd_type_id, power_rating, power_unit,
		  phase_config, nec_amps_override, manual_amps, vfd_override, selected_vfd_part_id,
		  duty_type, sort_order, revision_major, revision_minor, revision_class, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.ProjectID, m.LoadType, m.Name, m.Location, m.Enclosure, m.Frame, m.Notes,
		nullDecimal(m.HP), m.SpeedRange, m.OverloadPercent.String(), m.Voltage.String(), m.Qty,
		m.ContinuousLoad, nullString(m.VFDTypeID), nullDecimal(m.PowerRating), m.PowerUnit,
		m.PhaseConfig, m.NECAmpsOverride, nullDecimal(m.ManualAmps), m.VFDOverride,
		nullString(m.SelectedVFDPartID), m.DutyType, m.SortOrder,
		m.Revision.Major, m.Revision.Minor, string(m.RevisionClass),
		formatTime(m.CreatedAt), formatTime(m.UpdatedAt),
	)
	return err
}

func (c conn) UpdateMotor(ctx context.Context, m motor.Motor) error {
	res, err := c.q.ExecContext(ctx,
		`UPDATE motors SET
			load_type = ?, name = ?, location = ?, enclosure = ?, frame = ?, notes = ?,
			hp = ?, speed_range = ?, overload_percent = ?, voltage = ?, qty = ?,
			continuous_load = ?, vfd_type_id = ?, power_rating = ?, power_unit = ?,
			phase_config = ?, nec_amps_override = ?, manual_amps = ?, vfd_override = ?,
			selected_vfd_part_id = ?, duty_type = ?, sort_order = ?,
			revision_major = ?, revision_minor = ?, revision_class = ?, updated_at = ?
		 WHERE id = ?`,
		m.LoadType, m.Name, m.Location, m.Enclosure, m.Frame, m.Notes,
		nullDecimal(m.HP), m.SpeedRange, m.OverloadPercent.String(), m.Voltage.String(), m.Qty,
		m.ContinuousLoad, nullString(m.VFDTypeID), nullDecimal(m.PowerRating), m.PowerUnit,
		m.PhaseConfig, m.NECAmpsOverride, nullDecimal(m.ManualAmps), m.VFDOverride,
		nullString(m.SelectedVFDPartID), m.DutyType, m.SortOrder,
		m.Revision.Major, m.Revision.Minor, string(m.RevisionClass), formatTime(m.UpdatedAt),
		m.ID,
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &costing.NotFoundError{Kind: "motor", ID: m.ID}
	}
	return nil
}

const motorColumns = `id, project_id, load_type, name, location, enclosure, frame, notes, hp, speed_range,
	overload_percent, voltage, qty, continuous_load, vfd_type_id, power_rating, power_unit,
	phase_config, nec_amps_override, manual_amps, vfd_override, selected_vfd_part_id,
	duty_type, sort_order, revision_major, revision_minor, revision_class, created_at, updated_at`

func scanMotor(row interface{ Scan(...any) error }) (motor.Motor, error) {
	var m motor.Motor
	var hp, vfdTypeID, powerRating, manualAmps, selectedVFD sql.NullString
	var overload, voltage, revisionClass, createdAt, updatedAt string
	err := row.Scan(
		&m.ID, &m.ProjectID, &m.LoadType, &m.Name, &m.Location, &m.Enclosure, &m.Frame, &m.Notes,
		&hp, &m.SpeedRange, &overload, &voltage, &m.Qty, &m.ContinuousLoad, &vfdTypeID,
		&powerRating, &m.PowerUnit, &m.PhaseConfig, &m.NECAmpsOverride, &manualAmps,
		&m.VFDOverride, &selectedVFD, &m.DutyType, &m.SortOrder,
		&m.Revision.Major, &m.Revision.Minor, &revisionClass, &createdAt, &updatedAt,
	)
	if err != nil {
		return m, err
	}
	m.HP = scanNullDecimal(hp)
	m.OverloadPercent = parseDecimal(overload)
	m.Voltage = parseDecimal(voltage)
	m.VFDTypeID = vfdTypeID.String
	m.PowerRating = scanNullDecimal(powerRating)
	m.ManualAmps = scanNullDecimal(manualAmps)
	m.SelectedVFDPartID = selectedVFD.String
	m.RevisionClass = motor.Class(revisionClass)
	m.CreatedAt = parseTime(createdAt)
	m.UpdatedAt = parseTime(updatedAt)
	return m, nil
}

func (c conn) GetMotor(ctx context.Context, id string) (*motor.Motor, error) {
	row := c.q.QueryRowContext(ctx, "SELECT "+motorColumns+" FROM motors WHERE id = ?", id)
	m, err := scanMotor(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (c conn) ListMotors(ctx context.Context, projectID string) ([]motor.Motor, error) {
	rows, err := c.q.QueryContext(ctx,
		"SELECT "+motorColumns+" FROM motors WHERE project_id = ? ORDER BY sort_order, created_at",
		projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var motors []motor.Motor
	for rows.Next() {
		m, err := scanMotor(rows)
		if err != nil {
			return nil, err
		}
		motors = append(motors, m)
	}
	return motors, rows.Err()
}

// =============================================================================
// SNAPSHOTS
// =============================================================================

func (c conn) AppendSnapshot(ctx context.Context, snap motor.Snapshot) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO motor_snapshots
		 (id, motor_id, revision_major, revision_minor, revision_class, fields_changed,
		  load_type, name, location, enclosure, frame, notes, hp, speed_range, overload_percent,
		  voltage, qty, continuous_load, vfd_type_id, power_rating, power_unit, phase_config,
		  nec_amps_override, manual_amps, vfd_override, selected_vfd_part_id, duty_type,
		  changed_by, change_description, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		snap.ID, snap.MotorID, snap.Revision.Major, snap.Revision.Minor, string(snap.RevisionClass),
		snap.FieldsChanged, snap.LoadType, snap.Name, snap.Location, snap.Enclosure, snap.Frame,
		snap.Notes, nullDecimal(snap.HP), snap.SpeedRange, snap.OverloadPercent.String(),
		snap.Voltage.String(), snap.Qty, snap.ContinuousLoad, nullString(snap.VFDTypeID),
		nullDecimal(snap.PowerRating), snap.PowerUnit, snap.PhaseConfig, snap.NECAmpsOverride,
		nullDecimal(snap.ManualAmps), snap.VFDOverride, nullString(snap.SelectedVFDPartID),
		snap.DutyType, snap.ChangedBy, snap.ChangeDescription, formatTime(snap.CreatedAt),
	)
	return err
}

const snapshotColumns = `id, motor_id, revision_major, revision_minor, revision_class, fields_changed,
	load_type, name, location, enclosure, frame, notes, hp, speed_range, overload_percent,
	voltage, qty, continuous_load, vfd_type_id, power_rating, power_unit, phase_config,
	nec_amps_override, manual_amps, vfd_override, selected_vfd_part_id, duty_type,
	changed_by, change_description, created_at`

func scanSnapshot(row interface{ Scan(...any) error }) (motor.Snapshot, error) {
	var s motor.Snapshot
	var hp, vfdTypeID, powerRating, manualAmps, selectedVFD sql.NullString
	var overload, voltage, revisionClass, createdAt string
	err := row.Scan(
		&s.ID, &s.MotorID, &s.Revision.Major, &s.Revision.Minor, &revisionClass, &s.FieldsChanged,
		&s.LoadType, &s.Name, &s.Location, &s.Enclosure, &s.Frame, &s.Notes, &hp, &s.SpeedRange,
		&overload, &voltage, &s.Qty, &s.ContinuousLoad, &vfdTypeID, &powerRating, &s.PowerUnit,
		&s.PhaseConfig, &s.NECAmpsOverride, &manualAmps, &s.VFDOverride, &selectedVFD,
		&s.DutyType, &s.ChangedBy, &s.ChangeDescription, &createdAt,
	)
	if err != nil {
		return s, err
	}
	s.RevisionClass = motor.Class(revisionClass)
	s.HP = scanNullDecimal(hp)
	s.OverloadPercent = parseDecimal(overload)
	s.Voltage = parseDecimal(voltage)
	s.VFDTypeID = vfdTypeID.String
	s.PowerRating = scanNullDecimal(powerRating)
	s.ManualAmps = scanNullDecimal(manualAmps)
	s.SelectedVFDPartID = selectedVFD.String
	s.CreatedAt = parseTime(createdAt)
	return s, nil
}

// GetSnapshot returns the newest snapshot tagged with the revision.
func (c conn) GetSnapshot(ctx context.Context, motorID string, rev motor.Revision) (*motor.Snapshot, error) {
	row := c.q.QueryRowContext(ctx,
		`SELECT `+snapshotColumns+` FROM motor_snapshots
		 WHERE motor_id = ? AND revision_major = ? AND revision_minor = ?
		 ORDER BY created_at DESC LIMIT 1`,
		motorID, rev.Major, rev.Minor)
	s, err := scanSnapshot(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (c conn) ListSnapshots(ctx context.Context, motorID string) ([]motor.Snapshot, error) {
	rows, err := c.q.QueryContext(ctx,
		`SELECT `+snapshotColumns+` FROM motor_snapshots
		 WHERE motor_id = ?
		 ORDER BY revision_major DESC, revision_minor DESC, created_at DESC`,
		motorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []motor.Snapshot
	for rows.Next() {
		s, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// =============================================================================
// NEC FULL-LOAD CURRENT TABLE
// =============================================================================

func (c conn) NECFullLoadAmps(ctx context.Context, hp decimal.Decimal, voltage int) (*decimal.Decimal, error) {
	var amps string
	err := c.q.QueryRowContext(ctx,
		"SELECT amps FROM nec_flc WHERE hp = ? AND voltage = ?",
		hp.String(), voltage,
	).Scan(&amps)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	d := parseDecimal(amps)
	return &d, nil
}

// SeedNECAmps loads one NEC full-load current row. Used by the server's
// startup seeding and by tests.
func (c conn) SeedNECAmps(ctx context.Context, hp decimal.Decimal, voltage int, amps decimal.Decimal) error {
	_, err := c.q.ExecContext(ctx,
		`INSERT INTO nec_flc (hp, voltage, amps) VALUES (?, ?, ?)
		 ON CONFLICT(hp, voltage) DO UPDATE SET amps = excluded.amps`,
		hp.String(), voltage, amps.String())
	return err
}
