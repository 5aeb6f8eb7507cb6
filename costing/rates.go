package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// Shop default hourly rates, used to seed new estimates and as the
// fallback when an assembly has no owning estimate.
var (
	DefaultEngineeringRate     = decimal.NewFromInt(145)
	DefaultPanelShopRate       = decimal.NewFromInt(125)
	DefaultMachineAssemblyRate = decimal.NewFromInt(125)
)

// DefaultRates returns the shop default rate set snapshotted at t.
func DefaultRates(t time.Time) LaborRates {
	return LaborRates{
		Engineering:     DefaultEngineeringRate,
		PanelShop:       DefaultPanelShopRate,
		MachineAssembly: DefaultMachineAssemblyRate,
		SnapshotDate:    t,
	}
}

// EffectiveHourlyRate derives an hourly rate from a cost and an hour
// count. Zero hours yields zero, not an error: "rate" is simply
// undefined for unlabored work.
func EffectiveHourlyRate(cost, hours decimal.Decimal) decimal.Decimal {
	if hours.IsZero() {
		return decimal.Zero
	}
	return cost.Div(hours)
}
