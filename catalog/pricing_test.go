package catalog_test

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

func newTracker(t *testing.T) (*memory.Store, *catalog.Tracker) {
	t.Helper()
	store := memory.New()
	return store, catalog.NewTracker(store.Catalog())
}

func seedPart(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	require.NoError(t, store.SavePart(context.Background(), catalog.Part{
		ID: id, PartNumber: "1489-M2C100", Manufacturer: "Allen-Bradley",
		Description: "Circuit breaker, 10A", CreatedAt: time.Now(),
	}))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// =============================================================================
// PRICE UPDATES
// =============================================================================

func TestUpdatePrice_FirstPriceHasNoOldPrice(t *testing.T) {
	// GIVEN: A part that was never priced
	// WHEN: Recording its first price
	// THEN: The record carries no old price and becomes current

	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	update, err := tracker.UpdatePrice(ctx, "part-1", d("42.17"), "vendor quote", "import", nil)
	require.NoError(t, err)

	assert.True(t, update.Changed)
	require.NotNil(t, update.Record)
	assert.Nil(t, update.Record.OldPrice)
	assert.True(t, update.Record.Current)

	price, err := tracker.CurrentPrice(ctx, "part-1")
	require.NoError(t, err)
	assert.Equal(t, "42.17", price.StringFixed(2))
}

func TestUpdatePrice_SubCentChangeIsNoOp(t *testing.T) {
	// GIVEN: A part priced at $42.17
	// WHEN: Updating to $42.174
	// THEN: Nothing is written; the update reports unchanged

	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	_, err := tracker.UpdatePrice(ctx, "part-1", d("42.17"), "", "import", nil)
	require.NoError(t, err)

	update, err := tracker.UpdatePrice(ctx, "part-1", d("42.174"), "", "import", nil)
	require.NoError(t, err)
	assert.False(t, update.Changed)
	assert.Nil(t, update.Record)

	history, err := tracker.History(ctx, "part-1", 0)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestUpdatePrice_MovesCurrentFlagNotRows(t *testing.T) {
	// GIVEN: A part with two price updates
	// WHEN: Reading the ledger
	// THEN: Both rows survive, exactly one is current, and the newer
	//       record links back to the old price

	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	_, err := tracker.UpdatePrice(ctx, "part-1", d("42.17"), "", "import", nil)
	require.NoError(t, err)
	update, err := tracker.UpdatePrice(ctx, "part-1", d("45.99"), "vendor increase", "api", nil)
	require.NoError(t, err)

	require.NotNil(t, update.Record.OldPrice)
	assert.Equal(t, "42.17", update.Record.OldPrice.StringFixed(2))

	history, err := tracker.History(ctx, "part-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)

	currentCount := 0
	for _, rec := range history {
		if rec.Current {
			currentCount++
			assert.Equal(t, "45.99", rec.NewPrice.StringFixed(2))
		}
	}
	assert.Equal(t, 1, currentCount)
}

func TestUpdatePrice_NegativePriceRejected(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	_, err := tracker.UpdatePrice(ctx, "part-1", d("-1"), "", "api", nil)
	assert.True(t, costing.IsValidation(err))
}

func TestUpdatePrice_MissingPartIsNotFound(t *testing.T) {
	_, tracker := newTracker(t)

	_, err := tracker.UpdatePrice(context.Background(), "nope", d("10"), "", "api", nil)
	assert.True(t, costing.IsNotFound(err))
}

func TestUpdatePrice_ExplicitEffectiveDate(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	effective := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	update, err := tracker.UpdatePrice(ctx, "part-1", d("42.17"), "contract", "api", &effective)
	require.NoError(t, err)
	assert.True(t, update.Record.EffectiveDate.Equal(effective))
}

// =============================================================================
// HISTORY
// =============================================================================

func TestPriceHistory_NewestFirstWithLimit(t *testing.T) {
	// GIVEN: Three price updates over three days
	// WHEN: Reading history with limit 2
	// THEN: The two newest come back, newest first

	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	day := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, price := range []string{"10.00", "11.00", "12.00"} {
		at := day.AddDate(0, 0, i)
		tracker.Now = func() time.Time { return at }
		_, err := tracker.UpdatePrice(ctx, "part-1", d(price), "", "import", nil)
		require.NoError(t, err)
	}

	history, err := tracker.History(ctx, "part-1", 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "12.00", history[0].NewPrice.StringFixed(2))
	assert.Equal(t, "11.00", history[1].NewPrice.StringFixed(2))
}

func TestCurrentPrice_UnpricedPartIsZero(t *testing.T) {
	ctx := context.Background()
	store, tracker := newTracker(t)
	seedPart(t, store, "part-1")

	price, err := tracker.CurrentPrice(ctx, "part-1")
	require.NoError(t, err)
	assert.True(t, price.IsZero())
}
