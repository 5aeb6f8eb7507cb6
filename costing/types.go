/*
Package costing implements cost rollup for panel-shop estimating.

PURPOSE:
  This package contains the records and arithmetic for deriving material
  and labor totals at every level of the estimating hierarchy:

      Project -> Estimate -> Assembly -> AssemblyPart

  plus individual components attached directly to an estimate.

KEY CONCEPTS IN THIS FILE (types.go):
  - LaborRates: per-discipline hourly rates snapshotted onto an estimate
  - LaborHours: per-discipline hour counts
  - Project/Estimate/Assembly/AssemblyPart/Component: plain data records

DESIGN PRINCIPLES:
  1. Precision: all money and quantity math uses decimal.Decimal
  2. Live pricing: part unit prices are never stored on line items; they
     are resolved through the catalog at read time
  3. Stable history: estimates carry a labor-rate snapshot so totals do
     not drift when global rates change
  4. Explicit fetches: records are loaded through typed Store queries,
     never lazy object graphs

SEE ALSO:
  - aggregator.go: total derivation
  - rates.go: rate defaults and guards
  - catalog package: part identity and price history
*/
package costing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// LABOR RATES AND HOURS
// =============================================================================

// LaborRates is the per-discipline hourly rate set captured onto an
// estimate at creation time. Historical totals stay stable even if the
// shop's global rates later change.
type LaborRates struct {
	Engineering     decimal.Decimal
	PanelShop       decimal.Decimal
	MachineAssembly decimal.Decimal
	SnapshotDate    time.Time
}

// LaborHours is a per-discipline hour count.
type LaborHours struct {
	Engineering     decimal.Decimal
	PanelShop       decimal.Decimal
	MachineAssembly decimal.Decimal
}

func (h LaborHours) Total() decimal.Decimal {
	return h.Engineering.Add(h.PanelShop).Add(h.MachineAssembly)
}

func (h LaborHours) Add(o LaborHours) LaborHours {
	return LaborHours{
		Engineering:     h.Engineering.Add(o.Engineering),
		PanelShop:       h.PanelShop.Add(o.PanelShop),
		MachineAssembly: h.MachineAssembly.Add(o.MachineAssembly),
	}
}

func (h LaborHours) IsZero() bool {
	return h.Engineering.IsZero() && h.PanelShop.IsZero() && h.MachineAssembly.IsZero()
}

// Cost returns the labor cost of h at rates r.
func (r LaborRates) Cost(h LaborHours) decimal.Decimal {
	return h.Engineering.Mul(r.Engineering).
		Add(h.PanelShop.Mul(r.PanelShop)).
		Add(h.MachineAssembly.Mul(r.MachineAssembly))
}

// =============================================================================
// RECORDS
// =============================================================================

// Project is the top-level container. Deleting a project cascades to its
// estimates, assemblies, parts lists, and motors.
type Project struct {
	ID          string
	Name        string
	Client      string
	Description string
	Status      string
	Revision    string
	Remarks     string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Estimate is a costed proposal belonging to a project. It owns assemblies
// and individual components, and carries the labor-rate snapshot plus
// estimate-level labor hours.
type Estimate struct {
	ID             string
	ProjectID      string
	Number         string
	Name           string
	Description    string
	SortOrder      int
	RevisionNumber int
	Optional       bool // optional estimates are excluded from project totals
	Rates          LaborRates
	Hours          LaborHours
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Assembly is a named group of catalog parts inside an estimate,
// optionally materialized from a standard-assembly template.
type Assembly struct {
	ID          string
	EstimateID  string
	Name        string
	Description string
	SortOrder   int

	// Set when the assembly was applied from a standard assembly:
	// the template id and the version string in effect at apply time.
	TemplateID      string
	TemplateVersion string

	// Quantity is the assembly multiplier used when the template was
	// applied. Line quantities are stored already scaled.
	Quantity decimal.Decimal

	Hours     LaborHours
	CreatedAt time.Time
}

// AssemblyPart binds an assembly to a catalog part with a quantity.
// The unit price is always read live from the part's price history, so a
// catalog price update is visible retroactively to every assembly.
type AssemblyPart struct {
	ID            string
	AssemblyID    string
	PartID        string
	Quantity      decimal.Decimal
	UnitOfMeasure string
	Notes         string
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Component is an individual line added directly to an estimate, outside
// any assembly. Unlike AssemblyPart it carries its own unit price and may
// be a custom (non-catalog) item with an empty PartID.
type Component struct {
	ID            string
	EstimateID    string
	PartID        string
	Name          string
	Description   string
	PartNumber    string
	Manufacturer  string
	UnitPrice     decimal.Decimal
	Quantity      decimal.Decimal
	UnitOfMeasure string
	Category      string
	Notes         string
	SortOrder     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TotalPrice is quantity x unit price for an individual component.
func (c Component) TotalPrice() decimal.Decimal {
	return c.UnitPrice.Mul(c.Quantity)
}

// EstimateRevision is one entry in an estimate's revision log.
// Revision numbers are sequential integers, unique per estimate.
type EstimateRevision struct {
	ID              string
	EstimateID      string
	RevisionNumber  int
	ChangesSummary  string
	DetailedChanges string
	CreatedBy       string
	CreatedAt       time.Time
}

// =============================================================================
// DERIVED TOTALS
// =============================================================================

// LineTotal is one priced assembly line.
type LineTotal struct {
	AssemblyPartID string
	PartID         string
	Quantity       decimal.Decimal
	UnitPrice      decimal.Decimal
	Total          decimal.Decimal
}

// AssemblyTotals holds derived totals for a single assembly.
type AssemblyTotals struct {
	AssemblyID    string
	MaterialTotal decimal.Decimal
	LaborCost     decimal.Decimal
	Lines         []LineTotal
}

// EstimateTotals holds derived totals for an estimate.
// GrandTotal = MaterialTotal + LaborCost.
type EstimateTotals struct {
	EstimateID    string
	MaterialTotal decimal.Decimal
	LaborHours    LaborHours
	LaborCost     decimal.Decimal
	GrandTotal    decimal.Decimal
}

// ProjectTotals holds derived totals for a project. Optional estimates
// are counted but excluded from the sums.
type ProjectTotals struct {
	ProjectID       string
	MaterialTotal   decimal.Decimal
	LaborCost       decimal.Decimal
	GrandTotal      decimal.Decimal
	EstimateCount   int
	OptionalSkipped int
}
