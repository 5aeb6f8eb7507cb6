package template_test

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
	"github.com/voltworks/estimator/template"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newVersioner(t *testing.T) (*memory.Store, *template.Versioner) {
	t.Helper()
	store := memory.New()
	return store, template.NewVersioner(store.Templates())
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// seedTemplate creates a v1.0 standard assembly with two components.
func seedTemplate(t *testing.T, store *memory.Store, id string) {
	t.Helper()
	ctx := context.Background()
	now := time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC)

	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "part-cb", PartNumber: "1489-M2C100"}))
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "part-tb", PartNumber: "1492-J4"}))

	require.NoError(t, store.SaveStandardAssembly(ctx, template.StandardAssembly{
		ID: id, Name: "24VDC Power Distribution", AssemblyNumber: "SA-100",
		Version: "1.0", Active: true, Template: true, CreatedBy: "jdoe",
		CreatedAt: now, UpdatedAt: now,
	}))
	require.NoError(t, store.AddTemplateComponent(ctx, template.Component{
		ID: "tc-1", StandardAssemblyID: id, PartID: "part-cb", Quantity: d("1"), SortOrder: 1,
	}))
	require.NoError(t, store.AddTemplateComponent(ctx, template.Component{
		ID: "tc-2", StandardAssemblyID: id, PartID: "part-tb", Quantity: d("10"), SortOrder: 2,
	}))
}

func seedEstimate(t *testing.T, store *memory.Store, estimateID string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, store.SaveProject(ctx, costing.Project{ID: "proj-1", Name: "Line 4", Active: true}))
	require.NoError(t, store.SaveEstimate(ctx, costing.Estimate{
		ID: estimateID, ProjectID: "proj-1", Name: "Main Panel",
		Rates: costing.DefaultRates(time.Now()),
	}))
}

// =============================================================================
// CREATE NEW VERSION
// =============================================================================

func TestCreateNewVersion_IncrementsByTenth(t *testing.T) {
	// GIVEN: A lineage at v1.0
	// WHEN: Creating two new versions
	// THEN: They number 1.1 and 1.2, each cloning the parts list

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")

	v11, err := v.CreateNewVersion(ctx, "sa-1", "tightened torque spec")
	require.NoError(t, err)
	assert.Equal(t, "1.1", v11.Version)
	assert.Equal(t, "sa-1", v11.BaseAssemblyID)

	v12, err := v.CreateNewVersion(ctx, v11.ID, "swapped breaker vendor")
	require.NoError(t, err)
	assert.Equal(t, "1.2", v12.Version)
	assert.Equal(t, "sa-1", v12.BaseAssemblyID)

	components, err := store.ListTemplateComponents(ctx, v12.ID)
	require.NoError(t, err)
	assert.Len(t, components, 2)
}

func TestCreateNewVersion_MovesTemplateFlagForward(t *testing.T) {
	// GIVEN: v1.0 carries the template flag
	// WHEN: Creating v1.1
	// THEN: Only v1.1 carries the flag afterward

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")

	v11, err := v.CreateNewVersion(ctx, "sa-1", "")
	require.NoError(t, err)

	active, err := v.ActiveTemplate(ctx, "sa-1")
	require.NoError(t, err)
	assert.Equal(t, v11.ID, active.ID)

	original, err := store.GetStandardAssembly(ctx, "sa-1")
	require.NoError(t, err)
	assert.False(t, original.Template)
}

func TestCreateNewVersion_WritesAuditRecord(t *testing.T) {
	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")

	v11, err := v.CreateNewVersion(ctx, "sa-1", "tightened torque spec")
	require.NoError(t, err)

	records, err := store.ListVersionRecords(ctx, v11.ID)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "1.1", records[0].Version)
	assert.Equal(t, "tightened torque spec", records[0].Notes)
}

func TestCreateNewVersion_MissingBaseIsNotFound(t *testing.T) {
	_, v := newVersioner(t)

	_, err := v.CreateNewVersion(context.Background(), "nope", "")
	assert.True(t, costing.IsNotFound(err))
}

// =============================================================================
// APPLY TO ESTIMATE
// =============================================================================

func TestApplyToEstimate_MaterializesScaledParts(t *testing.T) {
	// GIVEN: A v1.0 template with 1 breaker and 10 terminal blocks
	// WHEN: Applying it to an estimate with multiplier 2
	// THEN: A new assembly appears with quantities doubled and a "(x2)"
	//       name suffix, remembering the applied version

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")
	seedEstimate(t, store, "est-1")

	assembly, err := v.ApplyToEstimate(ctx, "sa-1", "est-1", d("2"))
	require.NoError(t, err)

	assert.Contains(t, assembly.Name, "(x2)")
	assert.Equal(t, "sa-1", assembly.TemplateID)
	assert.Equal(t, "1.0", assembly.TemplateVersion)
	assert.Equal(t, "2", assembly.Quantity.String())

	parts, err := store.ListAssemblyParts(ctx, assembly.ID)
	require.NoError(t, err)
	require.Len(t, parts, 2)

	byPart := map[string]decimal.Decimal{}
	for _, p := range parts {
		byPart[p.PartID] = p.Quantity
	}
	assert.Equal(t, "2", byPart["part-cb"].String())
	assert.Equal(t, "20", byPart["part-tb"].String())
}

func TestApplyToEstimate_ZeroMultiplierDefaultsToOne(t *testing.T) {
	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")
	seedEstimate(t, store, "est-1")

	assembly, err := v.ApplyToEstimate(ctx, "sa-1", "est-1", decimal.Zero)
	require.NoError(t, err)

	assert.NotContains(t, assembly.Name, "(x")
	assert.Equal(t, "1", assembly.Quantity.String())
}

func TestApplyToEstimate_MissingEstimateRollsBack(t *testing.T) {
	// GIVEN: A valid template but no such estimate
	// WHEN: Applying
	// THEN: Not-found, and no assembly was left behind

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")

	_, err := v.ApplyToEstimate(ctx, "sa-1", "nope", d("1"))
	assert.True(t, costing.IsNotFound(err))

	assemblies, err := store.ListAssemblies(ctx, "nope")
	require.NoError(t, err)
	assert.Empty(t, assemblies)
}

// =============================================================================
// REFRESH AND CHANGE VERSION
// =============================================================================

func TestRefreshToActive_AddsNewPartsKeepsHandEdits(t *testing.T) {
	// GIVEN: An assembly applied from v1.0 with a hand-edited breaker
	//        quantity, and a v1.1 that adds a relay
	// WHEN: Refreshing to the active version
	// THEN: The relay comes in, the edited quantity survives, and the
	//       assembly points at v1.1

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")
	seedEstimate(t, store, "est-1")

	assembly, err := v.ApplyToEstimate(ctx, "sa-1", "est-1", d("1"))
	require.NoError(t, err)

	parts, err := store.ListAssemblyParts(ctx, assembly.ID)
	require.NoError(t, err)
	for _, p := range parts {
		if p.PartID == "part-cb" {
			require.NoError(t, store.UpdateAssemblyPartQuantity(ctx, p.ID, d("7"), time.Now()))
		}
	}

	v11, err := v.CreateNewVersion(ctx, "sa-1", "added relay")
	require.NoError(t, err)
	require.NoError(t, store.SavePart(ctx, catalog.Part{ID: "part-relay", PartNumber: "700-HLT1Z24"}))
	require.NoError(t, store.AddTemplateComponent(ctx, template.Component{
		ID: "tc-relay", StandardAssemblyID: v11.ID, PartID: "part-relay", Quantity: d("2"), SortOrder: 3,
	}))

	refreshed, err := v.RefreshToActive(ctx, assembly.ID)
	require.NoError(t, err)
	assert.Equal(t, v11.ID, refreshed.TemplateID)
	assert.Equal(t, "1.1", refreshed.TemplateVersion)

	parts, err = store.ListAssemblyParts(ctx, assembly.ID)
	require.NoError(t, err)
	require.Len(t, parts, 3)

	byPart := map[string]decimal.Decimal{}
	for _, p := range parts {
		byPart[p.PartID] = p.Quantity
	}
	assert.Equal(t, "7", byPart["part-cb"].String())
	assert.Equal(t, "2", byPart["part-relay"].String())
}

func TestChangeVersion_UnknownVersionIsNotFound(t *testing.T) {
	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")
	seedEstimate(t, store, "est-1")

	assembly, err := v.ApplyToEstimate(ctx, "sa-1", "est-1", d("1"))
	require.NoError(t, err)

	_, err = v.ChangeVersion(ctx, assembly.ID, "9.9")
	assert.True(t, costing.IsNotFound(err))
}

func TestChangeVersion_RequiresAppliedAssembly(t *testing.T) {
	// GIVEN: A hand-built assembly with no template lineage
	// WHEN: Changing its version
	// THEN: The call is rejected

	ctx := context.Background()
	store, v := newVersioner(t)
	seedEstimate(t, store, "est-1")
	require.NoError(t, store.CreateAssembly(ctx, costing.Assembly{
		ID: "asm-manual", EstimateID: "est-1", Name: "Hand built",
	}))

	_, err := v.ChangeVersion(ctx, "asm-manual", "1.0")
	assert.Error(t, err)
}

// =============================================================================
// VERSION HISTORY
// =============================================================================

func TestVersionHistory_CoversWholeLineageFromAnyMember(t *testing.T) {
	// GIVEN: A lineage 1.0 -> 1.1 -> 1.2
	// WHEN: Asking any member for history
	// THEN: All three versions come back, newest first

	ctx := context.Background()
	store, v := newVersioner(t)
	seedTemplate(t, store, "sa-1")

	v11, err := v.CreateNewVersion(ctx, "sa-1", "")
	require.NoError(t, err)
	_, err = v.CreateNewVersion(ctx, v11.ID, "")
	require.NoError(t, err)

	history, err := v.VersionHistory(ctx, v11.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, "1.2", history[0].Version)
	assert.Equal(t, "1.0", history[2].Version)
}
