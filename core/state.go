package core

import (
	"os"
	"strconv"
	"strings"
)

// DefaultPageSize is used when DATATABLES_PAGE_SIZE is unset or invalid
const DefaultPageSize = 10

// SortDirection represents the sort order
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// Order is one (column, direction) sort key
type Order struct {
	Column    *Column
	Direction SortDirection
}

// State is the client-requested view of a table for a single request:
// pagination window, sort keys, per-column and global search terms.
type State struct {
	Table         *Table
	Draw          int
	Start         int
	Length        int // <= 0 disables pagination
	OrderBy       []Order
	SearchColumns map[string]string // column name -> per-column search term
	GlobalSearch  string
}

// NewState creates a State for table with default pagination
func NewState(table *Table) *State {
	return &State{
		Table:         table,
		Length:        getPageSizeFromEnv(),
		OrderBy:       []Order{},
		SearchColumns: make(map[string]string),
	}
}

// WithDraw sets the draw counter echoed back to the client
func (s *State) WithDraw(draw int) *State {
	s.Draw = draw
	return s
}

// WithPagination sets the pagination window. A negative start is treated as
// zero; a length <= 0 disables pagination.
func (s *State) WithPagination(start, length int) *State {
	if start < 0 {
		start = 0
	}
	s.Start = start
	s.Length = length
	return s
}

// AddOrder appends a sort key. Earlier keys take precedence.
func (s *State) AddOrder(column *Column, direction SortDirection) *State {
	if column == nil {
		return s
	}
	if !direction.IsValid() {
		direction = SortAsc
	}
	s.OrderBy = append(s.OrderBy, Order{Column: column, Direction: direction})
	return s
}

// WithColumnSearch sets the per-column search term for the named column
func (s *State) WithColumnSearch(name, term string) *State {
	if s.SearchColumns == nil {
		s.SearchColumns = make(map[string]string)
	}
	s.SearchColumns[name] = term
	return s
}

// WithGlobalSearch sets the global search term
func (s *State) WithGlobalSearch(term string) *State {
	s.GlobalSearch = term
	return s
}

// IsPaginated returns true when a page window applies
func (s *State) IsPaginated() bool {
	return s.Length > 0
}

// IsCallback reports whether the state answers a client draw request
func (s *State) IsCallback() bool {
	return s.Draw > 0
}

// HasOrder returns true if the state has sorting
func (s *State) HasOrder() bool {
	return len(s.OrderBy) > 0
}

// HasColumnSearch returns true if any per-column term is non-empty
func (s *State) HasColumnSearch() bool {
	for _, term := range s.SearchColumns {
		if term != "" {
			return true
		}
	}
	return false
}

// ApplyDefaultOrder copies the table's default order when no order is set
func (s *State) ApplyDefaultOrder() {
	if s.HasOrder() || s.Table == nil {
		return
	}
	s.OrderBy = append(s.OrderBy, s.Table.DefaultOrder()...)
}

// getPageSizeFromEnv gets page size from environment variable or default
func getPageSizeFromEnv() int {
	if envSize := os.Getenv("DATATABLES_PAGE_SIZE"); envSize != "" {
		if size, err := strconv.Atoi(envSize); err == nil && size > 0 {
			return size
		}
	}
	return DefaultPageSize
}

// String returns a string representation of the sort direction
func (sd SortDirection) String() string {
	return string(sd)
}

// IsValid checks if the sort direction is valid
func (sd SortDirection) IsValid() bool {
	return sd == SortAsc || sd == SortDesc
}

// Opposite returns the opposite sort direction
func (sd SortDirection) Opposite() SortDirection {
	if sd == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// ParseSortDirection parses "asc" or "desc" case-insensitively
func ParseSortDirection(s string) (SortDirection, bool) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	}
	return "", false
}
