package core

import (
	"context"
	"errors"
	"testing"
)

// stubAdapter records the state it receives and returns a fixed result.
type stubAdapter struct {
	state  *State
	result *ResultSet
	err    error
}

func (s *stubAdapter) GetData(ctx context.Context, state *State) (*ResultSet, error) {
	s.state = state
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func TestTableBuilder(t *testing.T) {
	table, err := NewTable("people").
		Add("id", nil).
		Add("name", func(c *ColumnBuilder) { c.Label("Full name") }).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	columns := table.Columns()
	if len(columns) != 2 {
		t.Fatalf("Expected 2 columns, got %d", len(columns))
	}
	if columns[0].Name != "id" || columns[1].Name != "name" {
		t.Errorf("Expected declaration order [id name], got [%s %s]", columns[0].Name, columns[1].Name)
	}
	if columns[1].Index() != 1 {
		t.Errorf("Expected index 1, got %d", columns[1].Index())
	}

	name, ok := table.Column("name")
	if !ok || name.Label != "Full name" {
		t.Errorf("Expected configured label, got %+v", name)
	}
	if at, ok := table.ColumnAt(0); !ok || at.Name != "id" {
		t.Error("ColumnAt(0) should return id")
	}
	if _, ok := table.ColumnAt(2); ok {
		t.Error("ColumnAt out of range should fail")
	}

	// Columns returns a copy
	columns[0] = nil
	if table.Columns()[0] == nil {
		t.Error("Mutating Columns() should not affect the table")
	}
}

func TestTableBuilderErrors(t *testing.T) {
	tests := []struct {
		name    string
		builder *TableBuilder
		kind    error
	}{
		{"duplicate column", NewTable("t").Add("a", nil).Add("a", nil), ErrDuplicateColumn},
		{"nameless column", NewTable("t").AddColumn(&Column{}), ErrInvalidColumn},
		{"nil column", NewTable("t").AddColumn(nil), ErrInvalidColumn},
		{"bad path", NewTable("t").Add("a", func(c *ColumnBuilder) { c.PropertyPath("[") }), ErrInvalidPath},
		{"unknown default order", NewTable("t").Add("a", nil).WithDefaultOrder("b", SortAsc), ErrUnknownColumn},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			if !errors.Is(err, tt.kind) {
				t.Errorf("Expected %v, got %v", tt.kind, err)
			}
			if !IsConfigurationError(err) {
				t.Errorf("Expected a configuration error, got %v", err)
			}
		})
	}
}

func TestTableMustBuildPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustBuild to panic")
		}
	}()
	NewTable("t").Add("a", nil).Add("a", nil).MustBuild()
}

func TestTableGetResultSet(t *testing.T) {
	stub := &stubAdapter{result: &ResultSet{TotalRecords: 3}}
	table := NewTable("people").
		Add("age", nil).
		WithDefaultOrder("age", SortDesc).
		WithAdapter(stub).
		MustBuild()

	rs, err := table.GetResultSet(context.Background(), nil)
	if err != nil {
		t.Fatalf("GetResultSet failed: %v", err)
	}
	if rs.GetTotalRecords() != 3 {
		t.Errorf("Expected adapter result, got %+v", rs)
	}
	if stub.state == nil || stub.state.Table != table {
		t.Fatal("Adapter should receive a state bound to the table")
	}
	if len(stub.state.OrderBy) != 1 || stub.state.OrderBy[0].Direction != SortDesc {
		t.Errorf("Expected default order to be applied, got %+v", stub.state.OrderBy)
	}
}

func TestTableGetResultSetLeavesStateUnchanged(t *testing.T) {
	stub := &stubAdapter{result: &ResultSet{}}
	table := NewTable("people").
		Add("name", nil).
		Add("age", nil).
		WithDefaultOrder("age", SortDesc).
		WithAdapter(stub).
		MustBuild()

	state := &State{Length: 10, SearchColumns: map[string]string{}}
	if _, err := table.GetResultSet(context.Background(), state); err != nil {
		t.Fatalf("GetResultSet failed: %v", err)
	}
	if state.Table != nil {
		t.Error("Caller's state should not be bound to the table")
	}
	if len(state.OrderBy) != 0 {
		t.Errorf("Caller's state should keep its empty order, got %+v", state.OrderBy)
	}
	if stub.state == state {
		t.Error("Adapter should receive a copy of the state")
	}
	if stub.state.Table != table || len(stub.state.OrderBy) != 1 {
		t.Errorf("Adapter state should carry the table and default order, got %+v", stub.state)
	}

	name, _ := table.Column("name")
	ordered := table.NewState().AddOrder(name, SortAsc)
	if _, err := table.GetResultSet(context.Background(), ordered); err != nil {
		t.Fatalf("GetResultSet failed: %v", err)
	}
	stub.state.OrderBy[0].Direction = SortDesc
	if ordered.OrderBy[0].Direction != SortAsc {
		t.Error("Adapter state should not share the caller's order slice")
	}
}

func TestTableAddColumnDefaults(t *testing.T) {
	table, err := NewTable("t").
		AddColumn(&Column{Name: "v", Type: TypeNumber}).
		AddColumn(&Column{Name: "city", Field: "address.city"}).
		AddColumn(&Column{Name: "label"}).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	projector := NewProjector(table, "")
	row, _ := projector.Project(Record{
		"v":       10,
		"address": map[string]any{"city": "Sofia"},
		"label":   "<b>x</b>",
	})

	if row["v"] != int64(10) {
		t.Errorf("Expected v to read its own field, got %v", row["v"])
	}
	if row["city"] != "Sofia" {
		t.Errorf("Expected city from the nested field path, got %v", row["city"])
	}
	if row["label"] != "&lt;b&gt;x&lt;/b&gt;" {
		t.Errorf("Expected an untyped column to be escaped text, got %v", row["label"])
	}

	label, _ := table.Column("label")
	if label.Type != TypeText || label.Field != "label" || label.Label != "Label" {
		t.Errorf("Unexpected defaults %+v", label)
	}
}

func TestTableAddColumnInvalid(t *testing.T) {
	_, err := NewTable("t").AddColumn(&Column{Name: "v", Type: "money"}).Build()
	if !errors.Is(err, ErrInvalidColumnType) {
		t.Errorf("Expected ErrInvalidColumnType, got %v", err)
	}

	_, err = NewTable("t").AddColumn(&Column{Name: "v", Field: "a..b"}).Build()
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}
}

func TestTableGetResultSetErrors(t *testing.T) {
	table := NewTable("orphan").Add("a", nil).MustBuild()
	if _, err := table.GetResultSet(context.Background(), nil); !errors.Is(err, ErrNoAdapter) {
		t.Errorf("Expected ErrNoAdapter, got %v", err)
	}

	failure := errors.New("boom")
	failing := NewTable("failing").Add("a", nil).WithAdapter(&stubAdapter{err: failure}).MustBuild()
	rs, err := failing.GetResultSet(context.Background(), failing.NewState())
	if rs != nil {
		t.Error("Expected no result set on error")
	}
	if !errors.Is(err, failure) {
		t.Errorf("Expected wrapped adapter error, got %v", err)
	}
}

func TestRegistry(t *testing.T) {
	registry := NewRegistry()
	for _, name := range []string{"zeta", "alpha", "mid"} {
		if err := registry.Register(NewTable(name).Add("a", nil).MustBuild()); err != nil {
			t.Fatalf("Register(%s) failed: %v", name, err)
		}
	}

	tables := registry.Tables()
	expected := []string{"zeta", "alpha", "mid"}
	if len(tables) != len(expected) {
		t.Fatalf("Expected %d tables, got %d", len(expected), len(tables))
	}
	for i, name := range expected {
		if tables[i].Name != name {
			t.Errorf("Position %d: expected %s, got %s", i, name, tables[i].Name)
		}
	}

	if _, ok := registry.Get("alpha"); !ok {
		t.Error("Expected to find alpha")
	}
	if _, ok := registry.Get("missing"); ok {
		t.Error("Expected missing table to be absent")
	}

	err := registry.Register(NewTable("alpha").Add("a", nil).MustBuild())
	if !errors.Is(err, ErrDuplicateTable) {
		t.Errorf("Expected ErrDuplicateTable, got %v", err)
	}
	if err := registry.Register(nil); !errors.Is(err, ErrInvalidTable) {
		t.Errorf("Expected ErrInvalidTable, got %v", err)
	}
}
