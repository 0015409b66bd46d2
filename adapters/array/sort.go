package array

import (
	"cmp"
	"sort"
	"strings"

	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/textutil"
)

// sortRecords orders records in place by the given keys. The first key is
// primary; later keys break ties. The sort is stable, so records equal on
// every key keep their filtered order.
func sortRecords(records []core.Record, orders []core.Order) {
	if len(orders) == 0 || len(records) < 2 {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		return compareRecords(records[i], records[j], orders) < 0
	})
}

func compareRecords(a, b core.Record, orders []core.Order) int {
	for _, order := range orders {
		if order.Column == nil {
			continue
		}
		va, _ := order.Column.PropertyPath.Resolve(a)
		vb, _ := order.Column.PropertyPath.Resolve(b)
		if c := compareValues(va, vb, order.Direction); c != 0 {
			return c
		}
	}
	return 0
}

// compareValues compares two sort key values.
//
// Two numeric values (numbers or numeric-looking strings) compare
// numerically. Two strings compare lexically, but the rule is asymmetric:
// ascending is a case-sensitive byte comparison, while descending compares
// the lowercased strings in ascending order. Existing tables depend on this
// ordering; keep it until clients agree on a change.
// Any other pairing (mixed types, nil) is treated as equal.
func compareValues(a, b any, direction core.SortDirection) int {
	if fa, ok := textutil.Numeric(a); ok {
		if fb, ok := textutil.Numeric(b); ok {
			c := cmp.Compare(fa, fb)
			if direction == core.SortDesc {
				return -c
			}
			return c
		}
	}

	sa, aok := a.(string)
	sb, bok := b.(string)
	if !aok || !bok {
		return 0
	}
	if direction == core.SortDesc {
		return strings.Compare(strings.ToLower(sa), strings.ToLower(sb))
	}
	return strings.Compare(sa, sb)
}
