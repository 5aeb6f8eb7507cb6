package costing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// RevisionStore is the write surface for the estimate revision log.
type RevisionStore interface {
	GetEstimate(ctx context.Context, id string) (*Estimate, error)
	UpdateEstimateRevision(ctx context.Context, estimateID string, revisionNumber int, at time.Time) error
	AppendEstimateRevision(ctx context.Context, rev EstimateRevision) error
	ListEstimateRevisions(ctx context.Context, estimateID string) ([]EstimateRevision, error)
}

// RevisionLog appends sequential integer revisions to estimates. Each
// call bumps the estimate's revision number and records who changed what.
type RevisionLog struct {
	Store RevisionStore
	Now   func() time.Time
}

func NewRevisionLog(store RevisionStore) *RevisionLog {
	return &RevisionLog{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// CreateRevision bumps the estimate revision number and appends a log
// entry tagged with the new number.
func (l *RevisionLog) CreateRevision(ctx context.Context, estimateID, summary, detailed, createdBy string) (*EstimateRevision, error) {
	est, err := l.Store.GetEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, &NotFoundError{Kind: "estimate", ID: estimateID}
	}

	now := l.Now()
	rev := EstimateRevision{
		ID:              uuid.NewString(),
		EstimateID:      estimateID,
		RevisionNumber:  est.RevisionNumber + 1,
		ChangesSummary:  summary,
		DetailedChanges: detailed,
		CreatedBy:       createdBy,
		CreatedAt:       now,
	}
	if err := l.Store.AppendEstimateRevision(ctx, rev); err != nil {
		return nil, err
	}
	if err := l.Store.UpdateEstimateRevision(ctx, estimateID, rev.RevisionNumber, now); err != nil {
		return nil, err
	}
	return &rev, nil
}

// History returns the revision log newest-first.
func (l *RevisionLog) History(ctx context.Context, estimateID string) ([]EstimateRevision, error) {
	est, err := l.Store.GetEstimate(ctx, estimateID)
	if err != nil {
		return nil, err
	}
	if est == nil {
		return nil, &NotFoundError{Kind: "estimate", ID: estimateID}
	}
	return l.Store.ListEstimateRevisions(ctx, estimateID)
}
