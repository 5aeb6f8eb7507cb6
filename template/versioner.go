/*
versioner.go - Template lineage management and materialization

OPERATIONS:
  CreateNewVersion  clone a version's parts list into the next version
                    number (max numeric version + 0.1) and move the
                    template flag forward, with an audit entry
  ApplyToEstimate   materialize a version into a new estimate assembly,
                    quantities scaled by a multiplier
  RefreshToActive   re-point an applied assembly at the lineage's active
                    template and merge in newly introduced parts
  ChangeVersion     same merge, but against an explicitly chosen version
  Compare           three-way component diff between two versions

MERGE RULE (refresh/change-version):
  Parts the assembly already has keep their possibly hand-edited
  quantity. Parts the target version introduces are added at
  template qty x assembly multiplier. Parts the target dropped are left
  in place - removal is an estimator's call, not the machine's.

Each mutation runs in one store transaction: two concurrent "create next
version" calls must not both compute the same number and both win.
*/
package template

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/voltworks/estimator/costing"
)

// =============================================================================
// STORE
// =============================================================================

// Store is the persistence surface for template operations. Single-record
// getters return (nil, nil) when the record does not exist.
type Store interface {
	GetStandardAssembly(ctx context.Context, id string) (*StandardAssembly, error)
	SaveStandardAssembly(ctx context.Context, sa StandardAssembly) error
	SetTemplateFlag(ctx context.Context, id string, template bool) error

	// ListLineage returns every version sharing the given root id,
	// including the root itself.
	ListLineage(ctx context.Context, rootID string) ([]StandardAssembly, error)

	ListTemplateComponents(ctx context.Context, standardAssemblyID string) ([]Component, error)
	AddTemplateComponent(ctx context.Context, c Component) error
	AppendVersionRecord(ctx context.Context, rec VersionRecord) error
	ListVersionRecords(ctx context.Context, standardAssemblyID string) ([]VersionRecord, error)

	// ComponentDetails joins a version's components with part identity
	// and current catalog prices.
	ComponentDetails(ctx context.Context, standardAssemblyID string) ([]ComponentDetail, error)

	GetEstimate(ctx context.Context, id string) (*costing.Estimate, error)
	GetAssembly(ctx context.Context, id string) (*costing.Assembly, error)
	NextAssemblySortOrder(ctx context.Context, estimateID string) (int, error)
	CreateAssembly(ctx context.Context, a costing.Assembly) error
	AddAssemblyPart(ctx context.Context, ap costing.AssemblyPart) error
	ListAssemblyParts(ctx context.Context, assemblyID string) ([]costing.AssemblyPart, error)
	SetAssemblyTemplate(ctx context.Context, assemblyID, templateID, version string) error
}

// TxStore is a Store that can scope a function to one transaction.
type TxStore interface {
	Store
	WithTx(ctx context.Context, fn func(Store) error) error
}

// Versioner manages template lineages.
type Versioner struct {
	Store TxStore
	Now   func() time.Time
}

func NewVersioner(store TxStore) *Versioner {
	return &Versioner{Store: store, Now: func() time.Time { return time.Now().UTC() }}
}

// =============================================================================
// LINEAGE READS
// =============================================================================

// VersionHistory returns every version in the assembly's lineage,
// newest first.
func (v *Versioner) VersionHistory(ctx context.Context, id string) ([]StandardAssembly, error) {
	sa, err := v.mustGet(ctx, v.Store, id)
	if err != nil {
		return nil, err
	}
	versions, err := v.Store.ListLineage(ctx, sa.RootID())
	if err != nil {
		return nil, err
	}
	sort.Slice(versions, func(i, j int) bool {
		return versions[i].CreatedAt.After(versions[j].CreatedAt)
	})
	return versions, nil
}

// ActiveTemplate returns the lineage's template-flagged version. When no
// version carries the flag the requested version itself is returned.
func (v *Versioner) ActiveTemplate(ctx context.Context, id string) (*StandardAssembly, error) {
	sa, err := v.mustGet(ctx, v.Store, id)
	if err != nil {
		return nil, err
	}
	versions, err := v.Store.ListLineage(ctx, sa.RootID())
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].Template {
			return &versions[i], nil
		}
	}
	return sa, nil
}

// =============================================================================
// CREATE NEW VERSION
// =============================================================================

// CreateNewVersion clones base's parts list into a new version numbered
// max(existing)+0.1, moves the template flag to it, and records an audit
// entry. Returns the new version.
func (v *Versioner) CreateNewVersion(ctx context.Context, baseID, notes string) (*StandardAssembly, error) {
	var created *StandardAssembly
	err := v.Store.WithTx(ctx, func(s Store) error {
		base, err := v.mustGet(ctx, s, baseID)
		if err != nil {
			return err
		}

		lineage, err := s.ListLineage(ctx, base.RootID())
		if err != nil {
			return err
		}

		now := v.Now()
		next := StandardAssembly{
			ID:             uuid.NewString(),
			Name:           base.Name,
			AssemblyNumber: base.AssemblyNumber,
			Description:    base.Description,
			CategoryID:     base.CategoryID,
			BaseAssemblyID: base.RootID(),
			Version:        nextVersion(lineage),
			Active:         true,
			Template:       true,
			CreatedBy:      base.CreatedBy,
			CreatedAt:      now,
			UpdatedAt:      now,
		}

		// The flag moves forward: clear it wherever it currently sits.
		for _, member := range lineage {
			if member.Template {
				if err := s.SetTemplateFlag(ctx, member.ID, false); err != nil {
					return err
				}
			}
		}

		if err := s.SaveStandardAssembly(ctx, next); err != nil {
			return err
		}

		components, err := s.ListTemplateComponents(ctx, base.ID)
		if err != nil {
			return err
		}
		for _, c := range components {
			clone := c
			clone.ID = uuid.NewString()
			clone.StandardAssemblyID = next.ID
			clone.CreatedAt = now
			clone.UpdatedAt = now
			if err := s.AddTemplateComponent(ctx, clone); err != nil {
				return err
			}
		}

		if err := s.AppendVersionRecord(ctx, VersionRecord{
			ID:                 uuid.NewString(),
			StandardAssemblyID: next.ID,
			Version:            next.Version,
			Notes:              notes,
			CreatedBy:          base.CreatedBy,
			CreatedAt:          now,
		}); err != nil {
			return err
		}

		created = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// nextVersion computes max numeric version + 0.1, one decimal place.
// Non-numeric version strings are skipped; an empty lineage starts a
// fresh 1.1.
func nextVersion(lineage []StandardAssembly) string {
	max := 1.0
	found := false
	for _, sa := range lineage {
		f, err := strconv.ParseFloat(sa.Version, 64)
		if err != nil {
			continue
		}
		if !found || f > max {
			max = f
			found = true
		}
	}
	return fmt.Sprintf("%.1f", max+0.1)
}

// =============================================================================
// APPLY TO ESTIMATE
// =============================================================================

// ApplyToEstimate materializes a template version into a new assembly
// under the estimate. Every component becomes an assembly part with its
// quantity scaled by multiplier; the assembly records which version it
// was built from. A zero multiplier defaults to 1.
func (v *Versioner) ApplyToEstimate(ctx context.Context, standardAssemblyID, estimateID string, multiplier decimal.Decimal) (*costing.Assembly, error) {
	if err := costing.ValidateQuantity(multiplier); err != nil {
		return nil, err
	}
	if multiplier.IsZero() {
		multiplier = decimal.NewFromInt(1)
	}

	var created *costing.Assembly
	err := v.Store.WithTx(ctx, func(s Store) error {
		sa, err := v.mustGet(ctx, s, standardAssemblyID)
		if err != nil {
			return err
		}
		est, err := s.GetEstimate(ctx, estimateID)
		if err != nil {
			return err
		}
		if est == nil {
			return &costing.NotFoundError{Kind: "estimate", ID: estimateID}
		}

		sortOrder, err := s.NextAssemblySortOrder(ctx, estimateID)
		if err != nil {
			return err
		}

		name := sa.Name
		description := fmt.Sprintf("%s\n(Applied from standard assembly v%s", sa.Description, sa.Version)
		if multiplier.GreaterThan(decimal.NewFromInt(1)) {
			name = fmt.Sprintf("%s (x%s)", sa.Name, multiplier)
			description += fmt.Sprintf(" with quantity %s", multiplier)
		}
		description += ")"

		now := v.Now()
		assembly := costing.Assembly{
			ID:              uuid.NewString(),
			EstimateID:      estimateID,
			Name:            name,
			Description:     description,
			SortOrder:       sortOrder,
			TemplateID:      sa.ID,
			TemplateVersion: sa.Version,
			Quantity:        multiplier,
			CreatedAt:       now,
		}
		if err := s.CreateAssembly(ctx, assembly); err != nil {
			return err
		}

		components, err := s.ListTemplateComponents(ctx, sa.ID)
		if err != nil {
			return err
		}
		for _, c := range components {
			if err := s.AddAssemblyPart(ctx, costing.AssemblyPart{
				ID:            uuid.NewString(),
				AssemblyID:    assembly.ID,
				PartID:        c.PartID,
				Quantity:      c.Quantity.Mul(multiplier),
				UnitOfMeasure: c.UnitOfMeasure,
				Notes:         c.Notes,
				SortOrder:     c.SortOrder,
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}

		created = &assembly
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// =============================================================================
// REFRESH / CHANGE VERSION
// =============================================================================

// RefreshToActive merges the lineage's active template version into an
// applied assembly and advances its version pointer.
func (v *Versioner) RefreshToActive(ctx context.Context, assemblyID string) (*costing.Assembly, error) {
	assembly, err := v.appliedAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	target, err := v.ActiveTemplate(ctx, assembly.TemplateID)
	if err != nil {
		return nil, err
	}
	return v.mergeVersion(ctx, assembly, target)
}

// ChangeVersion merges an explicitly chosen version of the assembly's
// lineage into the assembly.
func (v *Versioner) ChangeVersion(ctx context.Context, assemblyID, targetVersion string) (*costing.Assembly, error) {
	assembly, err := v.appliedAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}

	versions, err := v.VersionHistory(ctx, assembly.TemplateID)
	if err != nil {
		return nil, err
	}
	for i := range versions {
		if versions[i].Version == targetVersion {
			return v.mergeVersion(ctx, assembly, &versions[i])
		}
	}
	return nil, &costing.NotFoundError{Kind: "template version", ID: targetVersion}
}

func (v *Versioner) appliedAssembly(ctx context.Context, assemblyID string) (*costing.Assembly, error) {
	assembly, err := v.Store.GetAssembly(ctx, assemblyID)
	if err != nil {
		return nil, err
	}
	if assembly == nil {
		return nil, &costing.NotFoundError{Kind: "assembly", ID: assemblyID}
	}
	if assembly.TemplateID == "" {
		return nil, fmt.Errorf("assembly %q was not applied from a standard assembly", assemblyID)
	}
	return assembly, nil
}

// mergeVersion applies the merge rule: existing parts keep their
// quantity, new parts come in scaled by the assembly multiplier.
func (v *Versioner) mergeVersion(ctx context.Context, assembly *costing.Assembly, target *StandardAssembly) (*costing.Assembly, error) {
	err := v.Store.WithTx(ctx, func(s Store) error {
		existing, err := s.ListAssemblyParts(ctx, assembly.ID)
		if err != nil {
			return err
		}
		have := make(map[string]bool, len(existing))
		for _, ap := range existing {
			have[ap.PartID] = true
		}

		components, err := s.ListTemplateComponents(ctx, target.ID)
		if err != nil {
			return err
		}

		multiplier := assembly.Quantity
		if multiplier.IsZero() {
			multiplier = decimal.NewFromInt(1)
		}

		now := v.Now()
		for _, c := range components {
			if have[c.PartID] {
				continue // hand-edited quantities survive a refresh
			}
			if err := s.AddAssemblyPart(ctx, costing.AssemblyPart{
				ID:            uuid.NewString(),
				AssemblyID:    assembly.ID,
				PartID:        c.PartID,
				Quantity:      c.Quantity.Mul(multiplier),
				UnitOfMeasure: c.UnitOfMeasure,
				Notes:         c.Notes,
				SortOrder:     c.SortOrder,
				CreatedAt:     now,
				UpdatedAt:     now,
			}); err != nil {
				return err
			}
		}

		return s.SetAssemblyTemplate(ctx, assembly.ID, target.ID, target.Version)
	})
	if err != nil {
		return nil, err
	}
	assembly.TemplateID = target.ID
	assembly.TemplateVersion = target.Version
	return assembly, nil
}

// =============================================================================
// COMPARE
// =============================================================================

// Compare diffs two versions' component sets, keyed by part number.
func (v *Versioner) Compare(ctx context.Context, versionAID, versionBID string) (*Diff, error) {
	if _, err := v.mustGet(ctx, v.Store, versionAID); err != nil {
		return nil, err
	}
	if _, err := v.mustGet(ctx, v.Store, versionBID); err != nil {
		return nil, err
	}

	a, err := v.Store.ComponentDetails(ctx, versionAID)
	if err != nil {
		return nil, err
	}
	b, err := v.Store.ComponentDetails(ctx, versionBID)
	if err != nil {
		return nil, err
	}
	return DiffComponents(a, b), nil
}

func (v *Versioner) mustGet(ctx context.Context, s Store, id string) (*StandardAssembly, error) {
	sa, err := s.GetStandardAssembly(ctx, id)
	if err != nil {
		return nil, err
	}
	if sa == nil {
		return nil, &costing.NotFoundError{Kind: "standard assembly", ID: id}
	}
	return sa, nil
}
