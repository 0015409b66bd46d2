package core

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestNewColumnBuilderDefaults(t *testing.T) {
	column, err := NewColumnBuilder("firstName").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if column.Label != "First name" {
		t.Errorf("Expected label 'First name', got %q", column.Label)
	}
	if column.Field != "firstName" {
		t.Errorf("Expected field firstName, got %q", column.Field)
	}
	if column.PropertyPath.String() != "[firstName]" {
		t.Errorf("Expected path [firstName], got %s", column.PropertyPath.String())
	}
	if column.Type != TypeText {
		t.Errorf("Expected text type, got %s", column.Type)
	}
	if !column.GlobalSearchable || !column.Searchable || !column.Orderable {
		t.Error("Columns should be searchable and orderable by default")
	}
}

func TestColumnBuilderField(t *testing.T) {
	column, err := NewColumnBuilder("company").Field("company.name").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if got := column.PropertyPath.Segments(); len(got) != 2 || got[1] != "name" {
		t.Errorf("Expected nested path segments, got %v", got)
	}

	column, err = NewColumnBuilder("title").Field("headline").Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if column.PropertyPath.String() != "[headline]" {
		t.Errorf("Expected plain field path [headline], got %s", column.PropertyPath.String())
	}

	_, err = NewColumnBuilder("broken").Field("items[").Build()
	if !errors.Is(err, ErrInvalidPath) {
		t.Errorf("Expected ErrInvalidPath, got %v", err)
	}

	_, err = NewColumnBuilder("broken").Type(ColumnType("money")).Build()
	if !errors.Is(err, ErrInvalidColumnType) {
		t.Errorf("Expected ErrInvalidColumnType, got %v", err)
	}
}

func TestColumnTransformText(t *testing.T) {
	column, _ := NewColumnBuilder("bio").Build()
	raw, _ := NewColumnBuilder("bio").Raw(true).Build()

	if got := column.Transform("<b>hi</b>", nil); got != "&lt;b&gt;hi&lt;/b&gt;" {
		t.Errorf("Expected escaped text, got %v", got)
	}
	if got := raw.Transform("<b>hi</b>", nil); got != "<b>hi</b>" {
		t.Errorf("Expected raw text, got %v", got)
	}
	if got := column.Transform(nil, nil); got != "" {
		t.Errorf("Expected empty text for nil, got %v", got)
	}
	if got := column.Transform(42, nil); got != "42" {
		t.Errorf("Expected '42', got %v", got)
	}
	if got := column.Transform(true, nil); got != "true" {
		t.Errorf("Expected 'true', got %v", got)
	}
}

func TestColumnTransformNumber(t *testing.T) {
	column, _ := NewColumnBuilder("price").Type(TypeNumber).Build()

	tests := []struct {
		name     string
		value    any
		expected any
	}{
		{"integral string", "42", int64(42)},
		{"fraction", 4.5, 4.5},
		{"integral float", 3.0, int64(3)},
		{"not numeric", "abc", nil},
		{"nil", nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := column.Transform(tt.value, nil); got != tt.expected {
				t.Errorf("Expected %v (%T), got %v (%T)", tt.expected, tt.expected, got, got)
			}
		})
	}
}

func TestColumnTransformBool(t *testing.T) {
	column, _ := NewColumnBuilder("active").Type(TypeBool).Build()
	custom, _ := NewColumnBuilder("active").Type(TypeBool).BoolValues("Yes", "No", "-").Build()

	if got := column.Transform(true, nil); got != "true" {
		t.Errorf("Expected 'true', got %v", got)
	}
	if got := column.Transform("0", nil); got != "false" {
		t.Errorf("Expected 'false', got %v", got)
	}
	if got := column.Transform(nil, nil); got != "" {
		t.Errorf("Expected empty null value, got %v", got)
	}
	if got := custom.Transform(1, nil); got != "Yes" {
		t.Errorf("Expected 'Yes', got %v", got)
	}
	if got := custom.Transform(nil, nil); got != "-" {
		t.Errorf("Expected '-', got %v", got)
	}
	if got := custom.Transform("maybe", nil); got != "-" {
		t.Errorf("Expected unparseable value to use null value, got %v", got)
	}
}

func TestColumnTransformDateTime(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	column, _ := NewColumnBuilder("createdAt").Type(TypeDateTime).Build()
	dateOnly, _ := NewColumnBuilder("createdAt").Type(TypeDateTime).Format("2006-01-02").NullValue("never").Build()

	if got := column.Transform(ts, nil); got != "2024-01-02 03:04:05" {
		t.Errorf("Expected default layout, got %v", got)
	}
	if got := dateOnly.Transform(ts, nil); got != "2024-01-02" {
		t.Errorf("Expected date layout, got %v", got)
	}
	if got := dateOnly.Transform(nil, nil); got != "never" {
		t.Errorf("Expected null value, got %v", got)
	}
}

func TestColumnTransformDateTimeUnparsed(t *testing.T) {
	column, _ := NewColumnBuilder("createdAt").Type(TypeDateTime).Build()
	raw, _ := NewColumnBuilder("createdAt").Type(TypeDateTime).Raw(true).Build()

	value := "<script>alert(1)</script>"
	if got := column.Transform(value, nil); got != "&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Errorf("Expected unparsed text to be escaped, got %v", got)
	}
	if got := raw.Transform(value, nil); got != value {
		t.Errorf("Expected raw column to keep the text, got %v", got)
	}
}

func TestColumnTransformHooks(t *testing.T) {
	record := Record{"first": "Ada", "last": "Lovelace"}

	column, _ := NewColumnBuilder("name").
		Data(func(r Record, value any) any { return r["first"].(string) + " " + r["last"].(string) }).
		Render(func(value string, r Record) string { return strings.ToUpper(value) }).
		Build()
	if got := column.Transform(nil, record); got != "ADA LOVELACE" {
		t.Errorf("Expected data then render, got %v", got)
	}

	withDefault, _ := NewColumnBuilder("nickname").Default("n/a").Build()
	if got := withDefault.Transform(nil, record); got != "n/a" {
		t.Errorf("Expected default value, got %v", got)
	}
	if got := withDefault.Transform("Ada", record); got != "Ada" {
		t.Errorf("Expected resolved value to win over default, got %v", got)
	}
}
