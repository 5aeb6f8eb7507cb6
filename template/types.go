/*
Package template manages versioned standard-assembly templates.

PURPOSE:
  A standard assembly is a reusable, named parts list independent of any
  estimate. Templates are versioned as a lineage: the root row has no
  base reference; every derived version points back at the root. Exactly
  one version per lineage carries the template flag - that is the version
  "apply" uses by default.

LIFECYCLE:
  Versions are created, never edited in place once superseded; the
  template flag moves forward to the newest version. Applying a template
  materializes its parts list into a live estimate assembly, scaled by a
  quantity multiplier. Live assemblies remember which version they were
  built from so they can later be refreshed, re-targeted, or compared.

SEE ALSO:
  - versioner.go: create/apply/refresh/change-version operations
  - diff.go: three-way component set comparison
*/
package template

import (
	"time"

	"github.com/shopspring/decimal"
)

// StandardAssembly is one version row of a template lineage.
type StandardAssembly struct {
	ID             string
	Name           string
	AssemblyNumber string
	Description    string
	CategoryID     string

	// BaseAssemblyID is empty on a lineage root; derived versions carry
	// the root's id.
	BaseAssemblyID string

	// Version is a one-decimal string ("1.0", "1.1", ...).
	Version string

	Active bool

	// Template marks the lineage's active version.
	Template bool

	CreatedBy string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RootID returns the lineage identity shared by every version.
func (sa StandardAssembly) RootID() string {
	if sa.BaseAssemblyID != "" {
		return sa.BaseAssemblyID
	}
	return sa.ID
}

// Component is one line of a standard assembly's parts list.
type Component struct {
	ID                 string
	StandardAssemblyID string
	PartID             string
	Quantity           decimal.Decimal
	UnitOfMeasure      string
	Notes              string
	SortOrder          int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// VersionRecord is the audit entry written whenever a version is created.
type VersionRecord struct {
	ID                 string
	StandardAssemblyID string
	Version            string
	Notes              string
	CreatedBy          string
	CreatedAt          time.Time
}

// AssemblyCategory is the lookup table standard assemblies are filed
// under.
type AssemblyCategory struct {
	ID          string
	Code        string
	Name        string
	Description string
	SortOrder   int
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ComponentDetail is a component joined with its part identity and the
// part's current catalog price. Comparison keys on PartNumber, not on
// row ids.
type ComponentDetail struct {
	PartID        string
	PartNumber    string
	Description   string
	Quantity      decimal.Decimal
	UnitPrice     decimal.Decimal
	UnitOfMeasure string
	Notes         string
}

// ModifiedComponent is a component present in both compared versions
// with at least one difference.
type ModifiedComponent struct {
	ComponentDetail
	Changes []string
}

// Diff classifies every part present in either compared version.
type Diff struct {
	Added     []ComponentDetail
	Removed   []ComponentDetail
	Modified  []ModifiedComponent
	Unchanged []ComponentDetail
}
