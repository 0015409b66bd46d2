package core

import (
	"errors"
	"reflect"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		expr     string
		segments []string
	}{
		{"name", []string{"name"}},
		{"[name]", []string{"name"}},
		{"company.name", []string{"company", "name"}},
		{"[company][name]", []string{"company", "name"}},
		{"[company].name", []string{"company", "name"}},
		{"items[0].name", []string{"items", "0", "name"}},
		{"[first.name]", []string{"first.name"}},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			path, err := ParsePath(tt.expr)
			if err != nil {
				t.Fatalf("ParsePath(%q) failed: %v", tt.expr, err)
			}
			if !reflect.DeepEqual(path.Segments(), tt.segments) {
				t.Errorf("Expected segments %v, got %v", tt.segments, path.Segments())
			}
			if path.String() != tt.expr {
				t.Errorf("Expected String() %q, got %q", tt.expr, path.String())
			}
		})
	}
}

func TestParsePathInvalid(t *testing.T) {
	for _, expr := range []string{"", "[", "[]", "[a[b]]", "a]", ".a", "a..b", "a.", "[a]b"} {
		t.Run(expr, func(t *testing.T) {
			_, err := ParsePath(expr)
			if err == nil {
				t.Fatalf("Expected ParsePath(%q) to fail", expr)
			}
			if !errors.Is(err, ErrInvalidPath) {
				t.Errorf("Expected ErrInvalidPath, got %v", err)
			}
			if !IsConfigurationError(err) {
				t.Errorf("Expected a configuration error, got %v", err)
			}
		})
	}
}

func TestMustParsePathPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Expected MustParsePath to panic on a malformed path")
		}
	}()
	MustParsePath("[")
}

func TestFieldPath(t *testing.T) {
	path := FieldPath("first.name")

	if path.String() != "[first.name]" {
		t.Errorf("Expected [first.name], got %s", path.String())
	}
	field, ok := path.TopLevelField()
	if !ok || field != "first.name" {
		t.Errorf("Expected top-level field first.name, got %q (%v)", field, ok)
	}
	if path.IsZero() {
		t.Error("FieldPath should not be zero")
	}
	if !(Path{}).IsZero() {
		t.Error("Zero Path should report IsZero")
	}
	if _, ok := MustParsePath("a.b").TopLevelField(); ok {
		t.Error("Nested path should not report a top-level field")
	}
}

func TestPathResolve(t *testing.T) {
	record := Record{
		"name":    "Alice",
		"nothing": nil,
		"company": Record{"name": "Acme", "address": map[string]any{"city": "Berlin"}},
		"tags":    map[string]string{"primary": "admin"},
		"items":   []any{"first", map[string]any{"sku": "X-1"}},
		"orders":  []Record{{"total": 12}},
	}

	tests := []struct {
		expr     string
		expected any
		found    bool
	}{
		{"name", "Alice", true},
		{"nothing", nil, true},
		{"company.name", "Acme", true},
		{"[company][address].city", "Berlin", true},
		{"tags.primary", "admin", true},
		{"items[0]", "first", true},
		{"items[1].sku", "X-1", true},
		{"orders[0].total", 12, true},
		{"items[2]", nil, false},
		{"items[x]", nil, false},
		{"missing", nil, false},
		{"company.missing", nil, false},
		{"name.first", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			value, found := MustParsePath(tt.expr).Resolve(record)
			if found != tt.found {
				t.Fatalf("Expected found=%v, got %v", tt.found, found)
			}
			if value != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, value)
			}
		})
	}

	if _, ok := MustParsePath("name").Resolve(nil); ok {
		t.Error("Expected nil record to resolve nothing")
	}
}
