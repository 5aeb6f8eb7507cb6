package motor_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/motor"
)

// =============================================================================
// LOAD CONVERSIONS
// =============================================================================

func TestCalculatedLoadAmps_SinglePhaseKVA(t *testing.T) {
	// 5 kVA at 230V single phase: 5000 / 230 = 21.739...
	m := &motor.Motor{
		LoadType: motor.LoadTypeLoad, PowerRating: dptr("5"),
		PowerUnit: motor.PowerUnitKVA, PhaseConfig: motor.PhaseSingle,
		Voltage: d("230"),
	}

	amps := motor.CalculatedLoadAmps(m)
	assert.Equal(t, "21.74", amps.StringFixed(2))
}

func TestCalculatedLoadAmps_ThreePhaseKVA(t *testing.T) {
	// 15 kVA at 460V three phase: 15000 / (460 x sqrt(3)) = 18.826...
	m := &motor.Motor{
		LoadType: motor.LoadTypeLoad, PowerRating: dptr("15"),
		PowerUnit: motor.PowerUnitKVA, PhaseConfig: motor.PhaseThree,
		Voltage: d("460"),
	}

	amps := motor.CalculatedLoadAmps(m)
	assert.Equal(t, "18.83", amps.StringFixed(2))
}

func TestCalculatedLoadAmps_AmpsRatedPassesThrough(t *testing.T) {
	m := &motor.Motor{
		LoadType: motor.LoadTypeLoad, PowerRating: dptr("40"),
		PowerUnit: motor.PowerUnitAmps, Voltage: d("460"),
	}

	assert.Equal(t, "40", motor.CalculatedLoadAmps(m).String())
}

func TestCalculatedLoadAmps_MissingRatingOrVoltageIsZero(t *testing.T) {
	assert.True(t, motor.CalculatedLoadAmps(&motor.Motor{Voltage: d("460")}).IsZero())
	assert.True(t, motor.CalculatedLoadAmps(&motor.Motor{PowerRating: dptr("5"), PowerUnit: motor.PowerUnitKVA}).IsZero())
}

func TestAmpsPerPhase_SinglePhaseLoadSplitsAcrossThree(t *testing.T) {
	// A 30A single-phase load balanced over three phases puts 10A on each.
	m := &motor.Motor{
		LoadType: motor.LoadTypeLoad, PowerRating: dptr("30"),
		PowerUnit: motor.PowerUnitAmps, PhaseConfig: motor.PhaseSingle,
		Voltage: d("230"),
	}

	assert.Equal(t, "10.00", motor.AmpsPerPhase(m).StringFixed(2))
}

// =============================================================================
// MOTOR AMPS AND DRIVE SIZING
// =============================================================================

func TestAmps_MotorUsesNECTable(t *testing.T) {
	// GIVEN: The NEC table says a 10HP 460V motor draws 14A
	// WHEN: Resolving the motor's amps
	// THEN: 14A comes back from the table

	ctx := context.Background()
	store, tracker := newTracker(t)
	store.SeedNECAmps(d("10"), 460, d("14"))
	seedMotor(t, store, "m-1")

	m, err := store.GetMotor(ctx, "m-1")
	require.NoError(t, err)

	amps, err := tracker.Amps(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "14", amps.String())
}

func TestAmps_ManualOverrideWins(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	store.SeedNECAmps(d("10"), 460, d("14"))

	m := &motor.Motor{
		LoadType: motor.LoadTypeMotor, HP: dptr("10"), Voltage: d("460"),
		NECAmpsOverride: true, ManualAmps: dptr("16.5"),
	}

	amps, err := tracker.Amps(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "16.5", amps.String())
}

func TestAmps_MissingNECEntryIsZero(t *testing.T) {
	// A hp/voltage pair outside the table resolves to zero amps, not an
	// error: sizing simply is not possible yet.
	ctx := context.Background()
	store, tracker := newTracker(t)
	seedMotor(t, store, "m-1")

	m, err := store.GetMotor(ctx, "m-1")
	require.NoError(t, err)

	amps, err := tracker.Amps(ctx, m)
	require.NoError(t, err)
	assert.True(t, amps.IsZero())
}

func TestTotalAmps_ScalesByQuantity(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	store.SeedNECAmps(d("10"), 460, d("14"))

	m := &motor.Motor{
		LoadType: motor.LoadTypeMotor, HP: dptr("10"), Voltage: d("460"), Qty: 3,
	}

	total, err := tracker.TotalAmps(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "42", total.String())
}

func TestDriveRequiredCurrent_AppliesOverloadFactor(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	store.SeedNECAmps(d("10"), 460, d("14"))

	m := &motor.Motor{
		LoadType: motor.LoadTypeMotor, HP: dptr("10"), Voltage: d("460"),
		OverloadPercent: d("1.15"),
	}

	drive, err := tracker.DriveRequiredCurrent(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "16.10", drive.StringFixed(2))
}

func TestDriveRequiredCurrent_ZeroOverloadPassesAmpsThrough(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	store.SeedNECAmps(d("10"), 460, d("14"))

	m := &motor.Motor{LoadType: motor.LoadTypeMotor, HP: dptr("10"), Voltage: d("460")}

	drive, err := tracker.DriveRequiredCurrent(ctx, m)
	require.NoError(t, err)
	assert.Equal(t, "14", drive.String())
}
