package memory_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/catalog"
	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/store/memory"
)

func TestWithTx_RollsBackOnError(t *testing.T) {
	// GIVEN: An empty store
	// WHEN: A transaction writes a part and then fails
	// THEN: The part is gone after the rollback

	ctx := context.Background()
	store := memory.New()

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

func TestAppendPriceRecord_SecondCurrentRowConflicts(t *testing.T) {
	// GIVEN: A part with a current price row
	// WHEN: Appending another row flagged current without clearing first
	// THEN: The write is rejected as a retryable conflict

	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "part-1", PartNumber: "PN-1"}))

	require.NoError(t, store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-1", PartID: "part-1", NewPrice: decimal.NewFromInt(10),
		ChangedAt: time.Now(), Current: true,
	}))

	err := store.AppendPriceRecord(ctx, catalog.PriceRecord{
		ID: "rec-2", PartID: "part-1", NewPrice: decimal.NewFromInt(11),
		ChangedAt: time.Now(), Current: true,
	})
	assert.True(t, costing.IsRetryable(err))
}

func TestDeleteProject_CascadesToChildren(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.SaveProject(ctx, costing.Project{ID: "proj-1", Name: "Line 4"}))
	require.NoError(t, store.SaveEstimate(ctx, costing.Estimate{ID: "est-1", ProjectID: "proj-1", Name: "Main"}))
	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{ID: "asm-1", EstimateID: "est-1"}))
	require.NoError(t, store.AddAssemblyPart(ctx, costing.AssemblyPart{
		ID: "ap-1", AssemblyID: "asm-1", PartID: "part-1", Quantity: decimal.NewFromInt(1),
	}))

	require.NoError(t, store.DeleteProject(ctx, "proj-1"))

	est, err := store.GetEstimate(ctx, "est-1")
	require.NoError(t, err)
	assert.Nil(t, est)

	asm, err := store.GetAssembly(ctx, "asm-1")
	require.NoError(t, err)
	assert.Nil(t, asm)

	parts, err := store.ListAssemblyParts(ctx, "asm-1")
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestFindPartByIdentifier_PartNumberWinsOverUPC(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "p-1", PartNumber: "ABC", UPC: "999"}))
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "p-2", PartNumber: "999", UPC: "111"}))

	// "999" matches p-2's part number and p-1's UPC; part number wins.
	p, err := store.FindPartByIdentifier(ctx, "999")
	require.NoError(t, err)
	require.NotNil(t, p)
	assert.Equal(t, "p-2", p.ID)
}
