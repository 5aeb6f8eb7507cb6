package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newFixture(t *testing.T) (*memory.Store, *costing.Aggregator) {
	t.Helper()
	store := memory.New()
	return store, costing.NewAggregator(store.Costing())
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func seedProject(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	require.NoError(t, store.SaveProject(context.Background(), costing.Project{
		ID: id, Name: "Line 4 Rebuild", Active: true, CreatedAt: time.Now(),
	}))
}

func seedEstimate(t *testing.T, store *memory.Store, id, projectID string, optional bool, hours costing.LaborHours) {
	t.Helper()
	require.NoError(t, store.SaveEstimate(context.Background(), costing.Estimate{
		ID: id, ProjectID: projectID, Name: "Main Panel",
		Optional: optional, Rates: costing.DefaultRates(time.Now()), Hours: hours,
	}))
}

func seedPricedPart(t *testing.T, store *memory.Store, id, price string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: id, PartNumber: "PN-" + id}))
	require.NoError(t, store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-" + id, PartID: id, NewPrice: d(price), ChangedAt: time.Now(), Current: true,
	}))
}

// =============================================================================
// ASSEMBLY TOTALS
// =============================================================================

func TestAssemblyTotals_LinesPricedAtCurrentCatalogPrice(t *testing.T) {
	// GIVEN: An assembly with 3 x $10.50 part and 2 engineering hours
	// WHEN: Computing assembly totals
	// THEN: Material is 31.50 and labor is 2 x $145 = 290

	ctx := context.Background()
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{})
	seedPricedPart(t, store, "part-1", "10.50")

	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{
		ID: "asm-1", EstimateID: "est-1", Name: "Enclosure",
		Hours: costing.LaborHours{Engineering: d("2")},
	}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-1", Quantity: d("3"),
	}))

	totals, err := agg.AssemblyTotals(ctx, "asm-1")
	require.NoError(t, err)

	assert.Equal(t, "31.50", totals.MaterialTotal.StringFixed(2))
	assert.Equal(t, "290.00", totals.LaborCost.StringFixed(2))
	require.Len(t, totals.Lines, 1)
	assert.Equal(t, "10.50", totals.Lines[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "31.50", totals.Lines[0].Total.StringFixed(2))
}

func TestAssemblyTotals_UnpricedPartCostsZero(t *testing.T) {
	// GIVEN: An assembly line whose part has no price history
	// WHEN: Computing totals
	// THEN: The line prices at zero, not an error

	ctx := context.Background()
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{})
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "part-new", PartNumber: "PN-NEW"}))

	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{ID: "asm-1", EstimateID: "est-1"}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-new", Quantity: d("5"),
	}))

	totals, err := agg.AssemblyTotals(ctx, "asm-1")
	require.NoError(t, err)
	assert.True(t, totals.MaterialTotal.IsZero())
}

func TestAssemblyTotals_PriceUpdateVisibleRetroactively(t *testing.T) {
	// GIVEN: An assembly priced once at $10
	// WHEN: The part's current price moves to $12
	// THEN: Recomputing the totals reflects $12 without touching the line

	ctx := context.Background()
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{})
	seedPricedPart(t, store, "part-1", "10.00")

	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{ID: "asm-1", EstimateID: "est-1"}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-1", Quantity: d("2"),
	}))

	before, err := agg.AssemblyTotals(ctx, "asm-1")
	require.NoError(t, err)
	assert.Equal(t, "20.00", before.MaterialTotal.StringFixed(2))

	require.NoError(t, store.ClearCurrentPrice(ctx, "part-1"))
	require.NoError(t, store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-2", PartID: "part-1", NewPrice: d("12.00"), ChangedAt: time.Now(), Current: true,
	}))

	after, err := agg.AssemblyTotals(ctx, "asm-1")
	require.NoError(t, err)
	assert.Equal(t, "24.00", after.MaterialTotal.StringFixed(2))
}

func TestAssemblyTotals_MissingAssemblyIsNotFound(t *testing.T) {
	_, agg := newFixture(t)

	_, err := agg.AssemblyTotals(context.Background(), "nope")
	assert.True(t, costing.IsNotFound(err))
}

// =============================================================================
// ESTIMATE TOTALS
// =============================================================================

func TestEstimateTotals_SumsAssembliesComponentsAndLabor(t *testing.T) {
	// GIVEN: An estimate with 1 estimate-level panel shop hour, one
	//        assembly (2 x $10, 2 engineering hours), and a $25 component
	// WHEN: Computing estimate totals
	// THEN: material = 20 + 25 = 45, labor = 2x145 + 1x125 = 415,
	//       grand total = 460

	ctx := context.Background()
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{PanelShop: d("1")})
	seedPricedPart(t, store, "part-1", "10.00")

	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{
		ID: "asm-1", EstimateID: "est-1",
		Hours: costing.LaborHours{Engineering: d("2")},
	}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-1", Quantity: d("2"),
	}))
	require.NoError(t, store.AddComponent(ctx, costing.Component{
		ID: "comp-1", EstimateID: "est-1", Name: "Custom bracket",
		UnitPrice: d("25.00"), Quantity: d("1"),
	}))

	totals, err := agg.EstimateTotals(ctx, "est-1")
	require.NoError(t, err)

	assert.Equal(t, "45.00", totals.MaterialTotal.StringFixed(2))
	assert.Equal(t, "415.00", totals.LaborCost.StringFixed(2))
	assert.Equal(t, "460.00", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, "2", totals.LaborHours.Engineering.String())
	assert.Equal(t, "1", totals.LaborHours.PanelShop.String())
}

func TestEstimateTotals_MissingEstimateIsNotFound(t *testing.T) {
	_, agg := newFixture(t)

	_, err := agg.EstimateTotals(context.Background(), "nope")
	assert.True(t, costing.IsNotFound(err))
}

// =============================================================================
// PROJECT TOTALS
// =============================================================================

func TestProjectTotals_OptionalEstimatesCountedButExcluded(t *testing.T) {
	// GIVEN: A project with one base estimate ($25 component) and one
	//        optional alternate ($999 component)
	// WHEN: Computing project totals
	// THEN: The sums cover the base only; the alternate shows up in
	//       OptionalSkipped

	ctx := context.Background()
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-base", "proj-1", false, costing.LaborHours{})
	seedEstimate(t, store, "est-alt", "proj-1", true, costing.LaborHours{})

	require.NoError(t, store.AddComponent(ctx, costing.Component{
		ID: "comp-1", EstimateID: "est-base", Name: "PLC", UnitPrice: d("25.00"), Quantity: d("1"),
	}))
	require.NoError(t, store.AddComponent(ctx, costing.Component{
		ID: "comp-2", EstimateID: "est-alt", Name: "Bigger PLC", UnitPrice: d("999.00"), Quantity: d("1"),
	}))

	totals, err := agg.ProjectTotals(ctx, "proj-1")
	require.NoError(t, err)

	assert.Equal(t, "25.00", totals.GrandTotal.StringFixed(2))
	assert.Equal(t, 2, totals.EstimateCount)
	assert.Equal(t, 1, totals.OptionalSkipped)
}

func TestProjectTotals_EmptyProjectIsZero(t *testing.T) {
	store, agg := newFixture(t)
	seedProject(t, store, "proj-1")

	totals, err := agg.ProjectTotals(context.Background(), "proj-1")
	require.NoError(t, err)
	assert.True(t, totals.GrandTotal.IsZero())
	assert.Equal(t, 0, totals.EstimateCount)
}

// =============================================================================
// RATES
// =============================================================================

func TestEffectiveHourlyRate_ZeroHoursIsZeroNotError(t *testing.T) {
	rate := costing.EffectiveHourlyRate(d("500"), decimal.Zero)
	assert.True(t, rate.IsZero())
}
