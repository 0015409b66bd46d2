package array

import (
	"regexp"
	"sort"

	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/textutil"
)

// columnFilter is a compiled per-column search predicate
type columnFilter struct {
	name    string
	path    core.Path
	pattern *regexp.Regexp
}

// compileFilters compiles every non-empty per-column term before any record
// is inspected, so an invalid pattern fails the request deterministically.
// Terms are processed in column name order.
func (a *Adapter) compileFilters(state *core.State) ([]columnFilter, error) {
	names := make([]string, 0, len(state.SearchColumns))
	for name, term := range state.SearchColumns {
		if term != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	filters := make([]columnFilter, 0, len(names))
	for _, name := range names {
		re, err := a.patterns.Compile(state.SearchColumns[name])
		if err != nil {
			return nil, core.NewConfigurationError("filter", name, core.ErrInvalidPattern, err)
		}

		// Terms for undeclared columns read the top-level field of that name.
		path := core.FieldPath(name)
		if column, ok := state.Table.Column(name); ok {
			path = column.PropertyPath
		}
		filters = append(filters, columnFilter{name: name, path: path, pattern: re})
	}
	return filters, nil
}

// applyFilters returns a new slice holding the records matching every
// filter, in input order. A record that has no readable value for a filtered
// column satisfies that filter.
func applyFilters(records []core.Record, filters []columnFilter) []core.Record {
	if len(filters) == 0 {
		out := make([]core.Record, len(records))
		copy(out, records)
		return out
	}

	out := make([]core.Record, 0, len(records))
	for _, record := range records {
		if matchesAll(record, filters) {
			out = append(out, record)
		}
	}
	return out
}

func matchesAll(record core.Record, filters []columnFilter) bool {
	for _, f := range filters {
		value, ok := f.path.Resolve(record)
		if !ok {
			continue
		}
		if !f.pattern.MatchString(textutil.ToText(value)) {
			return false
		}
	}
	return true
}
