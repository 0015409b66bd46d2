package core

// Record is one raw unit of backing data. Values may be scalars or nested
// structures (Record, map[string]any, []any). Records are owned by the caller
// and never mutated by this package.
type Record map[string]any

// Row is a projected output row keyed by column name.
type Row map[string]any

// ResultSet is the output envelope of an adapter call.
type ResultSet struct {
	Rows            []Row
	TotalRecords    int // size of the unfiltered dataset
	FilteredRecords int // size after per-column filtering, before pagination
}

// GetTotalRecords returns the number of records before filtering
func (rs *ResultSet) GetTotalRecords() int {
	return rs.TotalRecords
}

// GetFilteredRecords returns the number of records after filtering
func (rs *ResultSet) GetFilteredRecords() int {
	return rs.FilteredRecords
}

// GetData returns the projected rows in display order
func (rs *ResultSet) GetData() []Row {
	return rs.Rows
}
