package costing_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/costing"
	"github.com/voltworks/estimator/store/memory"
)

func TestRevisionLog_SequentialNumbering(t *testing.T) {
	// GIVEN: A fresh estimate at revision 0
	// WHEN: Creating two revisions
	// THEN: They number 1 and 2 and the estimate tracks the latest

	ctx := context.Background()
	store := memory.New()
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{})

	log := costing.NewRevisionLog(store)

	first, err := log.CreateRevision(ctx, "est-1", "Initial release", "", "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 1, first.RevisionNumber)

	second, err := log.CreateRevision(ctx, "est-1", "Added spare I/O", "16 spare inputs", "jdoe")
	require.NoError(t, err)
	assert.Equal(t, 2, second.RevisionNumber)

	est, err := store.GetEstimate(ctx, "est-1")
	require.NoError(t, err)
	assert.Equal(t, 2, est.RevisionNumber)
}

func TestRevisionLog_HistoryNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedProject(t, store, "proj-1")
	seedEstimate(t, store, "est-1", "proj-1", false, costing.LaborHours{})

	log := costing.NewRevisionLog(store)
	log.Now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	_, err := log.CreateRevision(ctx, "est-1", "first", "", "jdoe")
	require.NoError(t, err)
	log.Now = func() time.Time { return time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC) }
	_, err = log.CreateRevision(ctx, "est-1", "second", "", "jdoe")
	require.NoError(t, err)

	history, err := log.History(ctx, "est-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "second", history[0].ChangesSummary)
	assert.Equal(t, "first", history[1].ChangesSummary)
}

func TestRevisionLog_MissingEstimateIsNotFound(t *testing.T) {
	log := costing.NewRevisionLog(memory.New())

	_, err := log.CreateRevision(context.Background(), "nope", "s", "", "jdoe")
	assert.True(t, costing.IsNotFound(err))

	_, err = log.History(context.Background(), "nope")
	assert.True(t, costing.IsNotFound(err))
}
