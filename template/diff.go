package template

import (
	"fmt"
	"sort"
)

// DiffComponents classifies every part number present in either list:
// added (in b only), removed (in a only), modified (in both with a
// quantity, unit price, or notes difference), or unchanged. The result
// slices are sorted by part number for stable output.
func DiffComponents(a, b []ComponentDetail) *Diff {
	byNumber := func(list []ComponentDetail) map[string]ComponentDetail {
		m := make(map[string]ComponentDetail, len(list))
		for _, c := range list {
			m[c.PartNumber] = c
		}
		return m
	}
	av, bv := byNumber(a), byNumber(b)

	d := &Diff{}
	for num, comp := range av {
		if _, ok := bv[num]; !ok {
			d.Removed = append(d.Removed, comp)
		}
	}
	for num, after := range bv {
		before, ok := av[num]
		if !ok {
			d.Added = append(d.Added, after)
			continue
		}

		var changes []string
		if !before.Quantity.Equal(after.Quantity) {
			changes = append(changes, fmt.Sprintf("quantity: %s -> %s", before.Quantity, after.Quantity))
		}
		if !before.UnitPrice.Equal(after.UnitPrice) {
			changes = append(changes, fmt.Sprintf("unit price: $%s -> $%s", before.UnitPrice.StringFixed(2), after.UnitPrice.StringFixed(2)))
		}
		if before.Notes != after.Notes {
			changes = append(changes, fmt.Sprintf("notes: %q -> %q", before.Notes, after.Notes))
		}

		if len(changes) > 0 {
			d.Modified = append(d.Modified, ModifiedComponent{ComponentDetail: after, Changes: changes})
		} else {
			d.Unchanged = append(d.Unchanged, after)
		}
	}

	sortDetails(d.Added)
	sortDetails(d.Removed)
	sortDetails(d.Unchanged)
	sort.Slice(d.Modified, func(i, j int) bool {
		return d.Modified[i].PartNumber < d.Modified[j].PartNumber
	})
	return d
}

func sortDetails(list []ComponentDetail) {
	sort.Slice(list, func(i, j int) bool { return list[i].PartNumber < list[j].PartNumber })
}
