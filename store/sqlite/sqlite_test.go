package sqlite_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(filepath.Join(t.TempDir(), "estimator.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func d(s string) decimal.Decimal {
	v, _ := decimal.NewFromString(s)
	return v
}

// =============================================================================
// PART IDENTITY
// =============================================================================

func TestPartRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "part-1", PartNumber: "1489-M2C100", Manufacturer: "Allen-Bradley",
		MasterItemNumber: "AB-1489", UPC: "662015002721",
		Description: "Circuit breaker, 10A", CreatedAt: now, UpdatedAt: now,
	}))

	p, err := store.GetPart(ctx, "part-1")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "1489-M2C100", p.PartNumber)
	assert.Equal(t, "AB-1489", p.MasterItemNumber)
	assert.Equal(t, "662015002721", p.UPC)

	missing, err := store.GetPart(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestFindPartByIdentifier_PriorityOrder(t *testing.T) {
	// GIVEN: One part whose UPC collides with another part's number
	// WHEN: Resolving the shared identifier
	// THEN: The part-number match wins

	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "p-1", PartNumber: "ABC", UPC: "999", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "p-2", PartNumber: "999", CreatedAt: now, UpdatedAt: now,
	}))

	p, err := store.FindPartByIdentifier(ctx, "999")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-2", p.ID)

	unknown, err := store.FindPartByIdentifier(ctx, "nothing")
	require.NoError(t, err)
	assert.Nil(t, unknown)
}

// =============================================================================
// PRICE LEDGER
// =============================================================================

func TestAppendPriceRecord_PartialIndexRejectsSecondCurrent(t *testing.T) {
	// GIVEN: A part with a current-flagged ledger row
	// WHEN: Appending another current row without clearing the flag
	// THEN: idx_price_history_current rejects it as a retryable conflict

	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "part-1", PartNumber: "PN-1", CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-1", PartID: "part-1", NewPrice: d("10"), ChangedAt: now, Current: true,
	}))

	err := store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-2", PartID: "part-1", NewPrice: d("11"), ChangedAt: now, Current: true,
	})
	assert.True(t, costing.IsRetryable(err))
}

func TestUpdatePrice_LedgerGrowsAndFlagMoves(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()
	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "part-1", PartNumber: "PN-1", CreatedAt: now, UpdatedAt: now,
	}))

	tracker := catalog.NewTracker(store.Catalog())
	clock := now
	tracker.Now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}

	first, err := tracker.UpdatePrice(ctx, "part-1", d("42.00"), "initial", "manual", nil)
	require.NoError(t, err)
	assert.True(t, first.Changed)
	assert.Nil(t, first.Record.OldPrice)

	second, err := tracker.UpdatePrice(ctx, "part-1", d("45.50"), "vendor increase", "manual", nil)
	require.NoError(t, err)
	assert.True(t, second.Changed)

	cur, err := store.CurrentPriceRecord(ctx, "part-1")
	require.NoError(t, err)
	require.NotNil(t, cur)
	assert.True(t, cur.NewPrice.Equal(d("45.50")))
	require.NotNil(t, cur.OldPrice)
	assert.True(t, cur.OldPrice.Equal(d("42.00")))

	history, err := store.PriceHistory(ctx, "part-1", 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.True(t, history[0].NewPrice.Equal(d("45.50")))
	assert.True(t, history[1].NewPrice.Equal(d("42.00")))
	assert.False(t, history[1].Current)
}

// =============================================================================
// TRANSACTIONS AND CASCADES
// =============================================================================

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	boom := errors.New("boom")
	err := store.Catalog().WithTx(ctx, func(s catalog.Store) error {
		if err := s.SavePart(ctx, catalog.Part{ID: "part-1", PartNumber: "PN-1"}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	p, err := store.GetPart(ctx, "part-1")
	require.NoError(t, err)
	assert.Nil(t, p)
}

func TestDeleteProject_CascadesThroughHierarchy(t *testing.T) {
	// GIVEN: A project holding an estimate, an assembly, and a parts line
	// WHEN: Deleting the project
	// THEN: Foreign keys cascade the delete through every level

	ctx := context.Background()
	store := newStore(t)
	now := time.Now().UTC()

	require.NoError(t, store.SaveProject(ctx, costing.Project{
		ID: "proj-1", Name: "Line 4", Active: true, CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.SaveEstimate(ctx, costing.Estimate{
		ID: "est-1", ProjectID: "proj-1", Name: "Main Panel",
		Rates:     costing.DefaultRates(now),
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{
		ID: "asm-1", EstimateID: "est-1", Name: "Enclosure",
		Quantity: d("1"), CreatedAt: now,
	}))
	require.NoError(t, store.SavePart(ctx, catalog.Part{
		ID: "part-1", PartNumber: "PN-1", CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-1",
		Quantity: d("3"), CreatedAt: now, UpdatedAt: now,
	}))

	require.NoError(t, store.DeleteProject(ctx, "proj-1"))

	est, err := store.GetEstimate(ctx, "est-1")
	require.NoError(t, err)
	assert.Nil(t, est)

	asm, err := store.GetAssembly(ctx, "asm-1")
	require.NoError(t, err)
	assert.Nil(t, asm)

	lines, err := store.ListAssemblyParts(ctx, "asm-1")
	require.NoError(t, err)
	assert.Empty(t, lines)

	// The catalog part survives: it belongs to the shop, not the project.
	p, err := store.GetPart(ctx, "part-1")
	require.NoError(t, err)
	assert.NotNil(t, p)
}

// =============================================================================
// NEC TABLE
// =============================================================================

func TestSeedNECAmps_IdempotentUpsert(t *testing.T) {
	ctx := context.Background()
	store := newStore(t)

	require.NoError(t, store.SeedNECAmps(ctx, d("10"), 460, d("14")))
	require.NoError(t, store.SeedNECAmps(ctx, d("10"), 460, d("14")))

	amps, err := store.NECFullLoadAmps(ctx, d("10"), 460)
	require.NoError(t, err)
	require.NotNil(t, amps)
	assert.True(t, amps.Equal(d("14")))

	missing, err := store.NECFullLoadAmps(ctx, d("300"), 460)
	require.NoError(t, err)
	assert.Nil(t, missing)
}
