package motor

import "github.com/shopspring/decimal"

// fieldSpec describes one tracked field: its wire name, the revision
// class its changes suggest, and how to read it from a Motor.
type fieldSpec struct {
	name  string
	class Class
	get   func(m *Motor) any
}

// Field significance drives the revision suggestion: anything that
// changes the electrical design is major, operational details are minor,
// and bookkeeping fields suggest an overwrite.
var fieldSpecs = []fieldSpec{
	{"load_type", ClassMajor, func(m *Motor) any { return m.LoadType }},
	{"hp", ClassMajor, func(m *Motor) any { return m.HP }},
	{"voltage", ClassMajor, func(m *Motor) any { return m.Voltage }},
	{"vfd_type_id", ClassMajor, func(m *Motor) any { return m.VFDTypeID }},
	{"power_rating", ClassMajor, func(m *Motor) any { return m.PowerRating }},
	{"phase_config", ClassMajor, func(m *Motor) any { return m.PhaseConfig }},
	{"duty_type", ClassMajor, func(m *Motor) any { return m.DutyType }},

	{"name", ClassMinor, func(m *Motor) any { return m.Name }},
	{"location", ClassMinor, func(m *Motor) any { return m.Location }},
	{"enclosure", ClassMinor, func(m *Motor) any { return m.Enclosure }},
	{"frame", ClassMinor, func(m *Motor) any { return m.Frame }},
	{"speed_range", ClassMinor, func(m *Motor) any { return m.SpeedRange }},
	{"qty", ClassMinor, func(m *Motor) any { return m.Qty }},
	{"overload_percent", ClassMinor, func(m *Motor) any { return m.OverloadPercent }},
	{"continuous_load", ClassMinor, func(m *Motor) any { return m.ContinuousLoad }},
	{"power_unit", ClassMinor, func(m *Motor) any { return m.PowerUnit }},
	{"nec_amps_override", ClassMinor, func(m *Motor) any { return m.NECAmpsOverride }},
	{"manual_amps", ClassMinor, func(m *Motor) any { return m.ManualAmps }},
	{"vfd_override", ClassMinor, func(m *Motor) any { return m.VFDOverride }},
	{"selected_vfd_part_id", ClassMinor, func(m *Motor) any { return m.SelectedVFDPartID }},

	{"notes", ClassOverwrite, func(m *Motor) any { return m.Notes }},
	{"sort_order", ClassOverwrite, func(m *Motor) any { return m.SortOrder }},
}

// DetectChanges compares the current state against a proposed state
// field by field. It returns the changed fields and a suggested revision
// class - a heuristic only; the caller chooses the final class.
func DetectChanges(current, proposed *Motor) ([]FieldChange, Class) {
	var changes []FieldChange
	suggested := ClassOverwrite

	for _, spec := range fieldSpecs {
		oldVal := spec.get(current)
		newVal := spec.get(proposed)
		if fieldEqual(oldVal, newVal) {
			continue
		}
		changes = append(changes, FieldChange{
			Field: spec.name,
			Old:   displayValue(oldVal),
			New:   displayValue(newVal),
		})
		switch spec.class {
		case ClassMajor:
			suggested = ClassMajor
		case ClassMinor:
			if suggested != ClassMajor {
				suggested = ClassMinor
			}
		}
	}
	return changes, suggested
}

// fieldEqual compares field values with decimal-aware equality: 1.15
// and 1.150 are the same overload, whatever their representation.
func fieldEqual(a, b any) bool {
	switch av := a.(type) {
	case decimal.Decimal:
		bv, ok := b.(decimal.Decimal)
		return ok && av.Equal(bv)
	case *decimal.Decimal:
		bv, ok := b.(*decimal.Decimal)
		if !ok {
			return false
		}
		if av == nil || bv == nil {
			return av == bv
		}
		return av.Equal(*bv)
	default:
		return a == b
	}
}

// displayValue renders field values for the change log: decimals become
// strings so the JSON form is stable.
func displayValue(v any) any {
	switch val := v.(type) {
	case decimal.Decimal:
		return val.String()
	case *decimal.Decimal:
		if val == nil {
			return nil
		}
		return val.String()
	default:
		return v
	}
}

// State reconstructs the motor field-state captured in a snapshot. The
// returned Motor carries no identity or revision metadata.
func (s Snapshot) State() Motor {
	return Motor{
		LoadType:          s.LoadType,
		Name:              s.Name,
		Location:          s.Location,
		Enclosure:         s.Enclosure,
		Frame:             s.Frame,
		Notes:             s.Notes,
		HP:                s.HP,
		SpeedRange:        s.SpeedRange,
		OverloadPercent:   s.OverloadPercent,
		Voltage:           s.Voltage,
		Qty:               s.Qty,
		ContinuousLoad:    s.ContinuousLoad,
		VFDTypeID:         s.VFDTypeID,
		PowerRating:       s.PowerRating,
		PowerUnit:         s.PowerUnit,
		PhaseConfig:       s.PhaseConfig,
		NECAmpsOverride:   s.NECAmpsOverride,
		ManualAmps:        s.ManualAmps,
		VFDOverride:       s.VFDOverride,
		SelectedVFDPartID: s.SelectedVFDPartID,
		DutyType:          s.DutyType,
	}
}
