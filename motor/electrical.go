/*
electrical.go - Amp and drive-sizing derivations

  Load amps:  kVA loads convert to amps by (kVA x 1000) / V (single
              phase) or (kVA x 1000) / (V x sqrt(3)) (three phase);
              Amps-rated loads pass through.
  Per phase:  a single-phase load balanced across three phases
              contributes a third of its amps to each.
  Motors:     full-load amps come from the NEC table for the hp and
              voltage, unless the manual override is set.
  Drive size: required drive current is amps x overload factor.
*/
package motor

import (
	"context"
	"math"

	"github.com/shopspring/decimal"
)

var (
	sqrt3    = decimal.NewFromFloat(math.Sqrt(3))
	thousand = decimal.NewFromInt(1000)
	three    = decimal.NewFromInt(3)
)

// CalculatedLoadAmps converts a load's power rating to amps. Zero when
// the rating or voltage is missing.
func CalculatedLoadAmps(m *Motor) decimal.Decimal {
	if m.PowerRating == nil || m.Voltage.IsZero() {
		return decimal.Zero
	}
	switch m.PowerUnit {
	case PowerUnitAmps:
		return *m.PowerRating
	case PowerUnitKVA:
		watts := m.PowerRating.Mul(thousand)
		if m.PhaseConfig == PhaseThree {
			return watts.Div(m.Voltage.Mul(sqrt3))
		}
		return watts.Div(m.Voltage)
	}
	return decimal.Zero
}

// AmpsPerPhase returns the per-phase contribution of a load. A
// single-phase load balanced across three phases contributes a third of
// its amps to each phase.
func AmpsPerPhase(m *Motor) decimal.Decimal {
	amps := CalculatedLoadAmps(m)
	if m.LoadType == LoadTypeLoad && m.PhaseConfig == PhaseSingle {
		return amps.Div(three)
	}
	return amps
}

// Amps resolves a record's operating current: the manual override when
// set, the power-rating conversion for loads, and the NEC full-load
// table for motors.
func (t *Tracker) Amps(ctx context.Context, m *Motor) (decimal.Decimal, error) {
	if m.NECAmpsOverride && m.ManualAmps != nil {
		return *m.ManualAmps, nil
	}
	if m.LoadType == LoadTypeLoad {
		return CalculatedLoadAmps(m), nil
	}
	if m.HP == nil {
		return decimal.Zero, nil
	}
	amps, err := t.Store.NECFullLoadAmps(ctx, *m.HP, int(m.Voltage.IntPart()))
	if err != nil {
		return decimal.Zero, err
	}
	if amps == nil {
		return decimal.Zero, nil
	}
	return *amps, nil
}

// TotalAmps is qty x operating amps.
func (t *Tracker) TotalAmps(ctx context.Context, m *Motor) (decimal.Decimal, error) {
	amps, err := t.Amps(ctx, m)
	if err != nil {
		return decimal.Zero, err
	}
	return amps.Mul(decimal.NewFromInt(int64(m.Qty))), nil
}

// DriveRequiredCurrent is the minimum drive rating for the record:
// operating amps x overload factor.
func (t *Tracker) DriveRequiredCurrent(ctx context.Context, m *Motor) (decimal.Decimal, error) {
	amps, err := t.Amps(ctx, m)
	if err != nil {
		return decimal.Zero, err
	}
	if m.OverloadPercent.IsZero() {
		return amps, nil
	}
	return amps.Mul(m.OverloadPercent), nil
}
