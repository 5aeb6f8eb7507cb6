/*
Package catalog manages the part catalog and its append-only price ledger.

PURPOSE:
  Parts have manufacturer/part-number identity but no stored price field.
  "Current price" is derived: it is the newest ledger entry flagged
  current. Every price change appends an immutable record with who/why/
  when, so any historical price is explainable.

CRITICAL INVARIANTS:
  1. APPEND-ONLY: price records are never updated or deleted
  2. SINGLE CURRENT: at most one current-flagged record per part
  3. ZERO IS VALID: a part with no ledger entries prices at zero -
     that is the "new part, not priced yet" state, not an error

SEE ALSO:
  - pricing.go: the update/read operations
  - store/sqlite: partial unique index backing invariant 2
*/
package catalog

import (
	"time"

	"github.com/shopspring/decimal"
)

// Part is a catalog item. Identity is manufacturer + part number;
// master item number and UPC are alternate lookup keys.
type Part struct {
	ID               string
	CategoryID       string
	Model            string
	Rating           string
	MasterItemNumber string
	Manufacturer     string
	PartNumber       string
	UPC              string
	Description      string
	Vendor           string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// PartCategory is a lookup row. Category references resolve through
// foreign keys, never free-text strings.
type PartCategory struct {
	ID          string
	Name        string
	Description string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PriceRecord is one immutable entry in a part's price ledger.
type PriceRecord struct {
	ID     string
	PartID string

	// OldPrice is nil for a part's first pricing.
	OldPrice *decimal.Decimal
	NewPrice decimal.Decimal

	ChangedAt     time.Time
	Reason        string
	Source        string // "manual", "csv_import", "api"
	EffectiveDate time.Time

	// Current marks the record whose NewPrice is the part's live price.
	// At most one per part.
	Current bool
}

// PriceUpdate is the outcome of an UpdatePrice call. Changed=false is a
// successful no-op ("price unchanged"), not a failure.
type PriceUpdate struct {
	PartID   string
	Changed  bool
	OldPrice decimal.Decimal
	NewPrice decimal.Decimal
	Record   *PriceRecord
	Message  string
}
