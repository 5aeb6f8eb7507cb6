package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltworks/estimator/template"
)

func detail(partNumber, qty, price, notes string) template.ComponentDetail {
	return template.ComponentDetail{
		PartID:     "id-" + partNumber,
		PartNumber: partNumber,
		Quantity:   d(qty),
		UnitPrice:  d(price),
		Notes:      notes,
	}
}

func TestDiffComponents_ClassifiesEveryPart(t *testing.T) {
	// GIVEN: v1 has breaker + terminal, v2 drops the terminal, adds a
	//        relay, and doubles the breaker quantity
	// WHEN: Diffing v1 against v2
	// THEN: relay added, terminal removed, breaker modified

	a := []template.ComponentDetail{
		detail("1489-M2C100", "1", "42.17", ""),
		detail("1492-J4", "10", "1.05", ""),
	}
	b := []template.ComponentDetail{
		detail("1489-M2C100", "2", "42.17", ""),
		detail("700-HLT1Z24", "2", "18.40", ""),
	}

	diff := template.DiffComponents(a, b)

	require.Len(t, diff.Added, 1)
	assert.Equal(t, "700-HLT1Z24", diff.Added[0].PartNumber)

	require.Len(t, diff.Removed, 1)
	assert.Equal(t, "1492-J4", diff.Removed[0].PartNumber)

	require.Len(t, diff.Modified, 1)
	assert.Equal(t, "1489-M2C100", diff.Modified[0].PartNumber)
	require.Len(t, diff.Modified[0].Changes, 1)
	assert.Contains(t, diff.Modified[0].Changes[0], "quantity")

	assert.Empty(t, diff.Unchanged)
}

func TestDiffComponents_PriceAndNotesChangesReported(t *testing.T) {
	a := []template.ComponentDetail{detail("1489-M2C100", "1", "42.17", "")}
	b := []template.ComponentDetail{detail("1489-M2C100", "1", "45.99", "torque to 20 in-lb")}

	diff := template.DiffComponents(a, b)

	require.Len(t, diff.Modified, 1)
	changes := diff.Modified[0].Changes
	require.Len(t, changes, 2)
	assert.Contains(t, changes[0], "unit price")
	assert.Contains(t, changes[1], "notes")
}

func TestDiffComponents_IdenticalListsAllUnchanged(t *testing.T) {
	a := []template.ComponentDetail{
		detail("1489-M2C100", "1", "42.17", ""),
		detail("1492-J4", "10", "1.05", ""),
	}

	diff := template.DiffComponents(a, a)

	assert.Empty(t, diff.Added)
	assert.Empty(t, diff.Removed)
	assert.Empty(t, diff.Modified)
	assert.Len(t, diff.Unchanged, 2)
}

func TestDiffComponents_OutputSortedByPartNumber(t *testing.T) {
	a := []template.ComponentDetail{}
	b := []template.ComponentDetail{
		detail("800T-FX", "1", "30", ""),
		detail("1489-M2C100", "1", "42.17", ""),
		detail("700-HLT1Z24", "2", "18.40", ""),
	}

	diff := template.DiffComponents(a, b)

	require.Len(t, diff.Added, 3)
	assert.Equal(t, "1489-M2C100", diff.Added[0].PartNumber)
	assert.Equal(t, "700-HLT1Z24", diff.Added[1].PartNumber)
	assert.Equal(t, "800T-FX", diff.Added[2].PartNumber)
}
