package ui

import (
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/DawidMiftadinow/datatables-bundle/core"
)

// Request parameters of the DataTables server-side protocol
const (
	paramDraw         = "draw"
	paramStart        = "start"
	paramLength       = "length"
	paramGlobalSearch = "search[value]"
	paramFormat       = "format"
)

var (
	columnParam = regexp.MustCompile(`^columns\[(\d+)\]\[data\]$`)
	orderParam  = regexp.MustCompile(`^order\[(\d+)\]\[column\]$`)
)

// requestColumn is one entry of the client's columns[] array
type requestColumn struct {
	index  int
	column *core.Column
	search string
}

// parseState builds the State described by the request parameters.
// Unknown column names are configuration errors; terms for columns that are
// not searchable and sort keys on columns that are not orderable are dropped.
func parseState(r *http.Request, table *core.Table, pageSize, maxPageSize int) (*core.State, error) {
	if err := r.ParseForm(); err != nil {
		return nil, fmt.Errorf("invalid form data: %w", err)
	}
	params := r.Form

	state := core.NewState(table)
	state.WithDraw(intParam(params, paramDraw, 0))

	length := intParam(params, paramLength, pageSize)
	if maxPageSize > 0 && length > maxPageSize {
		length = maxPageSize
	}
	state.WithPagination(intParam(params, paramStart, 0), length)
	state.WithGlobalSearch(params.Get(paramGlobalSearch))

	columns, err := parseColumns(params, table)
	if err != nil {
		return nil, err
	}
	for _, rc := range columns {
		if rc.search != "" && rc.column.Searchable {
			state.WithColumnSearch(rc.column.Name, rc.search)
		}
	}

	for _, i := range indexes(params, orderParam) {
		ref := params.Get(fmt.Sprintf("order[%d][column]", i))
		position, err := strconv.Atoi(ref)
		if err != nil {
			return nil, core.NewConfigurationError("order", ref, core.ErrUnknownColumn, err)
		}
		column, err := orderColumn(columns, table, position)
		if err != nil {
			return nil, err
		}
		if !column.Orderable {
			continue
		}
		direction, ok := core.ParseSortDirection(params.Get(fmt.Sprintf("order[%d][dir]", i)))
		if !ok {
			direction = core.SortAsc
		}
		state.AddOrder(column, direction)
	}

	return state, nil
}

// parseColumns resolves the columns[] array. An entry without a data name
// refers to the table column at the same position.
func parseColumns(params url.Values, table *core.Table) ([]requestColumn, error) {
	var columns []requestColumn
	for _, i := range indexes(params, columnParam) {
		name := params.Get(fmt.Sprintf("columns[%d][data]", i))

		var column *core.Column
		var ok bool
		if name == "" {
			column, ok = table.ColumnAt(i)
		} else {
			column, ok = table.Column(name)
		}
		if !ok {
			return nil, core.NewConfigurationError("columns", name, core.ErrUnknownColumn, nil)
		}

		columns = append(columns, requestColumn{
			index:  i,
			column: column,
			search: params.Get(fmt.Sprintf("columns[%d][search][value]", i)),
		})
	}
	return columns, nil
}

// orderColumn resolves an order[][column] position. Without a columns[]
// array the position refers to the table's own column order.
func orderColumn(columns []requestColumn, table *core.Table, position int) (*core.Column, error) {
	if len(columns) == 0 {
		if column, ok := table.ColumnAt(position); ok {
			return column, nil
		}
	}
	for _, rc := range columns {
		if rc.index == position {
			return rc.column, nil
		}
	}
	return nil, core.NewConfigurationError("order", strconv.Itoa(position), core.ErrUnknownColumn, nil)
}

// indexes returns the sorted numeric indexes of the keys matching pattern
func indexes(params url.Values, pattern *regexp.Regexp) []int {
	var out []int
	for key := range params {
		match := pattern.FindStringSubmatch(key)
		if match == nil {
			continue
		}
		if i, err := strconv.Atoi(match[1]); err == nil {
			out = append(out, i)
		}
	}
	sort.Ints(out)
	return out
}

func intParam(params url.Values, key string, fallback int) int {
	value := strings.TrimSpace(params.Get(key))
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return n
}
