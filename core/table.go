package core

import (
	"context"
	"fmt"
	"strings"
)

// Table is a configured data table: ordered columns, an optional row
// transformer and the adapter producing its data. A built Table is
// read-only and may be shared across concurrent requests.
type Table struct {
	Name         string
	columns      []*Column
	columnIndex  map[string]*Column
	transformer  RowTransformer
	adapter      Adapter
	defaultOrder []Order
}

// Columns returns the columns in declaration order
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Column returns the column with the given name
func (t *Table) Column(name string) (*Column, bool) {
	column, ok := t.columnIndex[name]
	return column, ok
}

// ColumnAt returns the column at the given position
func (t *Table) ColumnAt(index int) (*Column, bool) {
	if index < 0 || index >= len(t.columns) {
		return nil, false
	}
	return t.columns[index], true
}

// Transformer returns the row transformer, or nil
func (t *Table) Transformer() RowTransformer {
	return t.transformer
}

// Adapter returns the adapter backing the table, or nil
func (t *Table) Adapter() Adapter {
	return t.adapter
}

// DefaultOrder returns a copy of the order applied when a request has none
func (t *Table) DefaultOrder() []Order {
	out := make([]Order, len(t.defaultOrder))
	copy(out, t.defaultOrder)
	return out
}

// NewState creates a fresh State bound to this table
func (t *Table) NewState() *State {
	return NewState(t)
}

// GetResultSet runs state through the table's adapter. The table's default
// order is applied when the state carries none. The caller's state is left
// unchanged; the adapter receives a copy.
func (t *Table) GetResultSet(ctx context.Context, state *State) (*ResultSet, error) {
	if t.adapter == nil {
		return nil, NewConfigurationError("get result set", t.Name, ErrNoAdapter, nil)
	}

	var request State
	if state == nil {
		request = *t.NewState()
	} else {
		request = *state
		request.OrderBy = append([]Order(nil), state.OrderBy...)
	}
	if request.Table == nil {
		request.Table = t
	}
	request.ApplyDefaultOrder()

	rs, err := t.adapter.GetData(ctx, &request)
	if err != nil {
		return nil, fmt.Errorf("table %s: %w", t.Name, err)
	}
	return rs, nil
}

// TableBuilder provides fluent API for table configuration. The first
// configuration error is kept and returned by Build.
type TableBuilder struct {
	table *Table
	order []orderRef
	err   error
}

type orderRef struct {
	column    string
	direction SortDirection
}

// NewTable starts the configuration of a table
func NewTable(name string) *TableBuilder {
	return &TableBuilder{
		table: &Table{
			Name:        name,
			columns:     []*Column{},
			columnIndex: make(map[string]*Column),
		},
	}
}

// Add declares a column. configure may be nil to accept the defaults.
func (tb *TableBuilder) Add(name string, configure func(*ColumnBuilder)) *TableBuilder {
	builder := NewColumnBuilder(name)
	if configure != nil {
		configure(builder)
	}

	column, err := builder.Build()
	if err != nil {
		tb.setErr(fmt.Errorf("column %s: %w", name, err))
		return tb
	}
	return tb.AddColumn(column)
}

// AddColumn declares an already built column. Unset fields of a column
// built by hand get the same defaults as NewColumnBuilder: the path reads
// Field (or Name) and an empty type is text.
func (tb *TableBuilder) AddColumn(column *Column) *TableBuilder {
	if column == nil || column.Name == "" {
		tb.setErr(NewConfigurationError("add column", tb.table.Name, ErrInvalidColumn, nil))
		return tb
	}
	if _, exists := tb.table.columnIndex[column.Name]; exists {
		tb.setErr(NewConfigurationError("add column", column.Name, ErrDuplicateColumn, nil))
		return tb
	}
	if err := applyColumnDefaults(column); err != nil {
		tb.setErr(fmt.Errorf("column %s: %w", column.Name, err))
		return tb
	}

	column.index = len(tb.table.columns)
	tb.table.columns = append(tb.table.columns, column)
	tb.table.columnIndex[column.Name] = column
	return tb
}

func applyColumnDefaults(column *Column) error {
	if column.Type == "" {
		column.Type = TypeText
	}
	if !column.Type.IsValid() {
		return NewConfigurationError("column type", string(column.Type), ErrInvalidColumnType, nil)
	}
	if column.Label == "" {
		column.Label = generateLabel(column.Name)
	}
	if column.TrueValue == "" && column.FalseValue == "" {
		column.TrueValue, column.FalseValue = "true", "false"
	}
	if column.Field == "" {
		column.Field = column.Name
	}
	if !column.PropertyPath.IsZero() {
		return nil
	}

	field := column.Field
	if strings.ContainsAny(field, ".[") {
		path, err := ParsePath(field)
		if err != nil {
			return err
		}
		column.PropertyPath = path
		return nil
	}
	column.PropertyPath = FieldPath(field)
	return nil
}

// WithTransformer sets the row transformer
func (tb *TableBuilder) WithTransformer(transformer RowTransformer) *TableBuilder {
	tb.table.transformer = transformer
	return tb
}

// WithTransformerFunc sets the row transformer from a function
func (tb *TableBuilder) WithTransformerFunc(fn func(row Row, record Record) Row) *TableBuilder {
	return tb.WithTransformer(RowTransformerFunc(fn))
}

// WithAdapter sets the adapter producing the table's data
func (tb *TableBuilder) WithAdapter(adapter Adapter) *TableBuilder {
	tb.table.adapter = adapter
	return tb
}

// WithDefaultOrder adds a default sort key (additive - can be called multiple times)
func (tb *TableBuilder) WithDefaultOrder(column string, direction SortDirection) *TableBuilder {
	tb.order = append(tb.order, orderRef{column: column, direction: direction})
	return tb
}

// Build validates the configuration and returns the table
func (tb *TableBuilder) Build() (*Table, error) {
	if tb.err != nil {
		return nil, tb.err
	}

	for _, ref := range tb.order {
		column, ok := tb.table.columnIndex[ref.column]
		if !ok {
			return nil, NewConfigurationError("default order", ref.column, ErrUnknownColumn, nil)
		}
		direction := ref.direction
		if !direction.IsValid() {
			direction = SortAsc
		}
		tb.table.defaultOrder = append(tb.table.defaultOrder, Order{Column: column, Direction: direction})
	}

	return tb.table, nil
}

// MustBuild is like Build but panics on configuration errors
func (tb *TableBuilder) MustBuild() *Table {
	table, err := tb.Build()
	if err != nil {
		panic(fmt.Sprintf("failed to build table %s: %v", tb.table.Name, err))
	}
	return table
}

func (tb *TableBuilder) setErr(err error) {
	if tb.err == nil {
		tb.err = err
	}
}
