/*
pricing.go - Price ledger operations

UPDATE FLOW:
  1. Read the current price (zero if the part was never priced)
  2. If the change is under a cent, report "unchanged" and stop
  3. Otherwise, inside one transaction: clear the old current flag,
     append the new record flagged current, touch the part

  The clear-then-append sequence is the one read-modify-write race in the
  system: two concurrent updates for the same part must not leave zero or
  two current rows. The store's partial unique index is the backstop; on
  a constraint conflict the transaction is retried once, then surfaced as
  a transient conflict.
*/
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/costing"
)

// priceEpsilon is the change threshold below which an update is a no-op.
var priceEpsilon = decimal.RequireFromString("0.01")

// =============================================================================
// STORE
// =============================================================================

// Store is the catalog persistence surface. Single-record getters return
// (nil, nil) when the record does not exist.
type Store interface {
	GetPart(ctx context.Context, id string) (*Part, error)
	FindPartByIdentifier(ctx context.Context, identifier string) (*Part, error)
	SavePart(ctx context.Context, p Part) error
	ListParts(ctx context.Context) ([]Part, error)
	GetOrCreatePartCategory(ctx context.Context, name string) (*PartCategory, error)

	CurrentPriceRecord(ctx context.Context, partID string) (*PriceRecord, error)
	PriceHistory(ctx context.Context, partID string, limit int) ([]PriceRecord, error)
	ClearCurrentPrice(ctx context.Context, partID string) error
	AppendPriceRecord(ctx context.Context, rec PriceRecord) error
	TouchPart(ctx context.Context, partID string, at time.Time) error
}

// TxStore is a Store that can scope a function to one transaction.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// =============================================================================
// TRACKER
// =============================================================================

// Tracker maintains the price ledger.
type Tracker struct {
	Store TxStore
	Now   func() time.Time
}

func NewTracker(store TxStore) *Tracker {
	return &Tracker{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// CurrentPrice returns the part's live price, zero when never priced.
func (t *Tracker) CurrentPrice(ctx context.Context, partID string) (decimal.Decimal, error) {
	rec, err := t.Store.CurrentPriceRecord(ctx, partID)
	if err != nil {
		return decimal.Zero, err
	}
	if rec == nil {
		return decimal.Zero, nil
	}
	return rec.NewPrice, nil
}

// UpdatePrice appends a ledger entry for the part and moves the current
// flag to it. Changes under one cent are reported as unchanged without a
// write. The clear+append runs in a single transaction, retried once on
// a concurrent-writer conflict.
func (t *Tracker) UpdatePrice(ctx context.Context, partID string, newPrice decimal.Decimal, reason, source string, effectiveDate *time.Time) (*PriceUpdate, error) {
	if err := costing.ValidatePrice(newPrice); err != nil {
		return nil, err
	}

	part, err := t.Store.GetPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, &costing.NotFoundError{Kind: "part", ID: partID}
	}

	current, err := t.Store.CurrentPriceRecord(ctx, partID)
	if err != nil {
		return nil, err
	}
	oldPrice := decimal.Zero
	if current != nil {
		oldPrice = current.NewPrice
	}

	if oldPrice.Sub(newPrice).Abs().LessThan(priceEpsilon) {
		return &PriceUpdate{
			PartID:   partID,
			Changed:  false,
			OldPrice: oldPrice,
			NewPrice: oldPrice,
			Message:  "price unchanged",
		}, nil
	}

	now := t.Now()
	effective := now.Truncate(24 * time.Hour)
	if effectiveDate != nil {
		effective = *effectiveDate
	}

	rec := PriceRecord{
		ID:            uuid.NewString(),
		PartID:        partID,
		NewPrice:      newPrice,
		ChangedAt:     now,
		Reason:        reason,
		Source:        source,
		EffectiveDate: effective,
		Current:       true,
	}
	if current != nil {
		old := oldPrice
		rec.OldPrice = &old
	}

	write := func(s Store) error {
		if err := s.ClearCurrentPrice(ctx, partID); err != nil {
			return err
		}
		if err := s.AppendPriceRecord(ctx, rec); err != nil {
			return err
		}
		return s.TouchPart(ctx, partID, now)
	}

	err = t.Store.WithTx(ctx, write)
	if costing.IsRetryable(err) {
		// A concurrent writer moved the flag; one more attempt with a
		// fresh record id.
		rec.ID = uuid.NewString()
		err = t.Store.WithTx(ctx, write)
	}
	if err != nil {
		return nil, err
	}

	return &PriceUpdate{
		PartID:   partID,
		Changed:  true,
		OldPrice: oldPrice,
		NewPrice: newPrice,
		Record:   &rec,
		Message:  "price updated from " + oldPrice.StringFixed(2) + " to " + newPrice.StringFixed(2),
	}, nil
}

// History returns the part's ledger newest-first. limit <= 0 returns all.
func (t *Tracker) History(ctx context.Context, partID string, limit int) ([]PriceRecord, error) {
	part, err := t.Store.GetPart(ctx, partID)
	if err != nil {
		return nil, err
	}
	if part == nil {
		return nil, &costing.NotFoundError{Kind: "part", ID: partID}
	}
	return t.Store.PriceHistory(ctx, partID, limit)
}
