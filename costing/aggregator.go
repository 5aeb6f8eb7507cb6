/*
aggregator.go - Deterministic cost rollup

PURPOSE:
  Derives current-price-based totals at every level of the hierarchy.
  Nothing here is cached or stored: totals are always recomputed from the
  line records and the catalog's current prices, so a price update is
  visible retroactively in every total.

ROLLUP RULES:
  line total       = quantity x part current price
  assembly material = sum of line totals
  assembly labor    = assembly hours x owning estimate's snapshot rates
                      (shop defaults when the assembly is orphaned)
  estimate material = assembly materials + individual component totals
  estimate labor    = (estimate hours + assembly hours) x snapshot rates
  grand total       = material + labor
  project totals    = sum over non-optional estimates

NOT-FOUND POLICY:
  A missing project/estimate/assembly id is an error, never a zero total.
  A part with no price history prices at zero: that is the valid
  "new part, not priced yet" state.
*/
package costing

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// STORE - Typed read queries the aggregator depends on
// =============================================================================

// Store is the read surface the aggregator walks. Implementations return
// (nil, nil) for a missing single record; the aggregator converts that
// into a NotFoundError so callers never mistake absence for zero cost.
type Store interface {
	GetProject(ctx context.Context, id string) (*Project, error)
	ListEstimates(ctx context.Context, projectID string) ([]Estimate, error)
	GetEstimate(ctx context.Context, id string) (*Estimate, error)
	ListAssemblies(ctx context.Context, estimateID string) ([]Assembly, error)
	GetAssembly(ctx context.Context, id string) (*Assembly, error)
	ListAssemblyParts(ctx context.Context, assemblyID string) ([]AssemblyPart, error)
	ListComponents(ctx context.Context, estimateID string) ([]Component, error)

	// CurrentPrice resolves a part's current catalog price. Zero when the
	// part has no price history yet.
	CurrentPrice(ctx context.Context, partID string) (decimal.Decimal, error)
}

// Aggregator computes rolled-up totals from a Store.
type Aggregator struct {
	Store Store
}

func NewAggregator(store Store) *Aggregator {
	return &Aggregator{Store: store}
}

// =============================================================================
// ASSEMBLY LEVEL
// =============================================================================

// AssemblyTotals prices every line of an assembly at the catalog's
// current prices and costs its labor hours.
func (a *Aggregator) AssemblyTotals(ctx context.Context, assemblyID string) (*AssemblyTotals, error) {
	assembly, err := a.Store.GetAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	if assembly == nil {
		return nil, &NotFoundError{Kind: "assembly", ID: assemblyID}
	}

	lines, material, err := a.priceLines(ctx, assemblyID)
	if err != nil {
		return nil, err
	}

	rates, err := a.ratesFor(ctx, assembly.EstimateID)
	if err != nil {
		return nil, err
	}

	return &AssemblyTotals{
		AssemblyID:    assemblyID,
		MaterialTotal: material,
		LaborCost:     rates.Cost(assembly.Hours),
		Lines:         lines,
	}, nil
}

func (a *Aggregator) priceLines(ctx context.Context, assemblyID string) ([]LineTotal, decimal.Decimal, error) {
	parts, err := a.Store.ListAssemblyParts(ctx, assemblyID)
	if err != nil {
		return nil, decimal.Zero, err
	}

	lines := make([]LineTotal, 0, len(parts))
	material := decimal.Zero
	for _, ap := range parts {
		price, err := a.Store.CurrentPrice(ctx, ap.PartID)
		if err != nil {
			return nil, decimal.Zero, err
		}
		total := ap.Quantity.Mul(price)
		lines = append(lines, LineTotal{
			AssemblyPartID: ap.ID,
			PartID:         ap.PartID,
			Quantity:       ap.Quantity,
			UnitPrice:      price,
			Total:          total,
		})
		material = material.Add(total)
	}
	return lines, material, nil
}

// ratesFor resolves the rate snapshot of the owning estimate, or the
// shop defaults for an assembly with no owning estimate.
func (a *Aggregator) ratesFor(ctx context.Context, estimateID string) (LaborRates, error) {
	if estimateID == "" {
		return DefaultRates(time.Time{}), nil
	}
	est, err := a.Store.GetEstimate(ctx, estimateID)
	if err != nil {
		return LaborRates{}, err
	}
	if est == nil {
		return DefaultRates(time.Time{}), nil
	}
	return est.Rates, nil
}

// =============================================================================
// ESTIMATE LEVEL
// =============================================================================

// EstimateTotals computes material, labor, and grand totals for an
// estimate.
func (a *Aggregator) EstimateTotals(ctx context.Context, estimateID string) (*EstimateTotals, error) {
	est, err := a.Store.GetEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, &NotFoundError{Kind: "estimate", ID: estimateID}
	}

	assemblies, err := a.Store.ListAssemblies(ctx, estimateID)
	if err != nil {
		return nil, err
	}

	material := decimal.Zero
	hours := est.Hours
	for _, asm := range assemblies {
		_, m, err := a.priceLines(ctx, asm.ID)
		if err != nil {
			return nil, err
		}
		material = material.Add(m)
		hours = hours.Add(asm.Hours)
	}

	components, err := a.Store.ListComponents(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	for _, c := range components {
		material = material.Add(c.TotalPrice())
	}

	labor := est.Rates.Cost(hours)
	return &EstimateTotals{
		EstimateID:    estimateID,
		MaterialTotal: material,
		LaborHours:    hours,
		LaborCost:     labor,
		GrandTotal:    material.Add(labor),
	}, nil
}

// =============================================================================
// PROJECT LEVEL
// =============================================================================

// ProjectTotals sums estimate totals across a project. Optional
// estimates are excluded from the sums but counted in OptionalSkipped.
func (a *Aggregator) ProjectTotals(ctx context.Context, projectID string) (*ProjectTotals, error) {
	project, err := a.Store.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, &NotFoundError{Kind: "project", ID: projectID}
	}

	estimates, err := a.Store.ListEstimates(ctx, projectID)
	if err != nil {
		return nil, err
	}

	totals := &ProjectTotals{
		ProjectID:     projectID,
		MaterialTotal: decimal.Zero,
		LaborCost:     decimal.Zero,
		GrandTotal:    decimal.Zero,
	}
	for _, est := range estimates {
		totals.EstimateCount++
		if est.Optional {
			totals.OptionalSkipped++
			continue
		}
		et, err := a.EstimateTotals(ctx, est.ID)
		if err != nil {
			return nil, err
		}
		totals.MaterialTotal = totals.MaterialTotal.Add(et.MaterialTotal)
		totals.LaborCost = totals.LaborCost.Add(et.LaborCost)
		totals.GrandTotal = totals.GrandTotal.Add(et.GrandTotal)
	}
	return totals, nil
}
