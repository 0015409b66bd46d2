package core

import (
	"html"
	"math"
	"strings"

	"github.com/DawidMiftadinow/datatables-bundle/internal/textutil"
	"github.com/iancoleman/strcase"
	"github.com/spf13/cast"
)

// ColumnType defines how a column normalizes its values for display
type ColumnType string

const (
	TypeText     ColumnType = "text"     // String, HTML-escaped unless raw
	TypeNumber   ColumnType = "number"   // Numeric value, nil when not numeric
	TypeBool     ColumnType = "bool"     // TrueValue / FalseValue / NullValue
	TypeDateTime ColumnType = "datetime" // Formatted with Format
)

// IsValid reports whether t is one of the known column types
func (t ColumnType) IsValid() bool {
	switch t {
	case TypeText, TypeNumber, TypeBool, TypeDateTime:
		return true
	}
	return false
}

// DefaultDateTimeFormat is the layout used by datetime columns without a Format
const DefaultDateTimeFormat = "2006-01-02 15:04:05"

// DataFunc computes a column value from the record. It receives the value
// resolved from the column's property path (nil when not readable).
type DataFunc func(record Record, value any) any

// RenderFunc post-processes the normalized display text of a column
type RenderFunc func(value string, record Record) string

// Column is a named projection of a Record field into display output
type Column struct {
	Name             string
	Label            string
	Field            string
	PropertyPath     Path
	Type             ColumnType
	GlobalSearchable bool
	Searchable       bool
	Orderable        bool
	Raw              bool
	Data             DataFunc
	DefaultValue     any
	Render           RenderFunc
	Format           string
	TrueValue        string
	FalseValue       string
	NullValue        string

	index int
}

// Index returns the position of the column in its table
func (c *Column) Index() int {
	return c.index
}

// Transform turns the raw value resolved for a record into the display value.
// The data callback (or default value) is applied first, then type
// normalization, then the render hook.
func (c *Column) Transform(value any, record Record) any {
	if c.Data != nil {
		value = c.Data(record, value)
	} else if value == nil {
		value = c.DefaultValue
	}

	normalized := c.normalize(value)
	if c.Render != nil {
		return c.Render(textutil.ToText(normalized), record)
	}
	return normalized
}

func (c *Column) normalize(value any) any {
	switch c.Type {
	case TypeNumber:
		f, ok := textutil.Numeric(value)
		if !ok {
			return nil
		}
		if f == math.Trunc(f) && math.Abs(f) < 1<<53 {
			return int64(f)
		}
		return f
	case TypeBool:
		if value == nil {
			return c.NullValue
		}
		b, err := cast.ToBoolE(value)
		if err != nil {
			return c.NullValue
		}
		if b {
			return c.TrueValue
		}
		return c.FalseValue
	case TypeDateTime:
		if value == nil {
			return c.NullValue
		}
		t, err := cast.ToTimeE(value)
		if err != nil {
			return c.text(value)
		}
		format := c.Format
		if format == "" {
			format = DefaultDateTimeFormat
		}
		return t.Format(format)
	default:
		return c.text(value)
	}
}

// text renders value as display text, escaped unless the column is raw
func (c *Column) text(value any) string {
	text := textutil.ToText(value)
	if c.Raw {
		return text
	}
	return html.EscapeString(text)
}

// ColumnBuilder provides fluent API for configuring columns
type ColumnBuilder struct {
	column *Column
	err    error
}

// NewColumnBuilder creates a builder for a column with default settings
func NewColumnBuilder(name string) *ColumnBuilder {
	return &ColumnBuilder{
		column: &Column{
			Name:             name,
			Label:            generateLabel(name),
			Field:            name,
			PropertyPath:     FieldPath(name),
			Type:             TypeText,
			GlobalSearchable: true,
			Searchable:       true,
			Orderable:        true,
			TrueValue:        "true",
			FalseValue:       "false",
		},
	}
}

// Label sets the human readable column label
func (cb *ColumnBuilder) Label(label string) *ColumnBuilder {
	cb.column.Label = label
	return cb
}

// Field sets the logical field the column reads. Plain names read a
// top-level key; dotted or bracketed names are parsed as a property path.
func (cb *ColumnBuilder) Field(field string) *ColumnBuilder {
	cb.column.Field = field
	if strings.ContainsAny(field, ".[") {
		return cb.PropertyPath(field)
	}
	cb.column.PropertyPath = FieldPath(field)
	return cb
}

// PropertyPath sets an explicit property path expression
func (cb *ColumnBuilder) PropertyPath(expr string) *ColumnBuilder {
	path, err := ParsePath(expr)
	if err != nil {
		cb.setErr(err)
		return cb
	}
	cb.column.PropertyPath = path
	return cb
}

// Type sets the column type
func (cb *ColumnBuilder) Type(t ColumnType) *ColumnBuilder {
	if !t.IsValid() {
		cb.setErr(NewConfigurationError("column type", string(t), ErrInvalidColumnType, nil))
		return cb
	}
	cb.column.Type = t
	return cb
}

// Raw disables HTML escaping of text values
func (cb *ColumnBuilder) Raw(raw bool) *ColumnBuilder {
	cb.column.Raw = raw
	return cb
}

// GlobalSearchable controls whether global search inspects the column
func (cb *ColumnBuilder) GlobalSearchable(searchable bool) *ColumnBuilder {
	cb.column.GlobalSearchable = searchable
	return cb
}

// Searchable controls whether per-column search terms are accepted
func (cb *ColumnBuilder) Searchable(searchable bool) *ColumnBuilder {
	cb.column.Searchable = searchable
	return cb
}

// Orderable controls whether the column may be used as a sort key
func (cb *ColumnBuilder) Orderable(orderable bool) *ColumnBuilder {
	cb.column.Orderable = orderable
	return cb
}

// Data sets a callback computing the column value from the record
func (cb *ColumnBuilder) Data(fn DataFunc) *ColumnBuilder {
	cb.column.Data = fn
	return cb
}

// Default sets the value used when the resolved value is nil
func (cb *ColumnBuilder) Default(value any) *ColumnBuilder {
	cb.column.DefaultValue = value
	return cb
}

// Render sets the render hook applied to the normalized display text
func (cb *ColumnBuilder) Render(fn RenderFunc) *ColumnBuilder {
	cb.column.Render = fn
	return cb
}

// Format sets the layout used by datetime columns
func (cb *ColumnBuilder) Format(layout string) *ColumnBuilder {
	cb.column.Format = layout
	return cb
}

// BoolValues sets the display values of a bool column
func (cb *ColumnBuilder) BoolValues(trueValue, falseValue, nullValue string) *ColumnBuilder {
	cb.column.TrueValue = trueValue
	cb.column.FalseValue = falseValue
	cb.column.NullValue = nullValue
	return cb
}

// NullValue sets the display value used for nil bool and datetime values
func (cb *ColumnBuilder) NullValue(value string) *ColumnBuilder {
	cb.column.NullValue = value
	return cb
}

// Build returns the configured column or the first configuration error
func (cb *ColumnBuilder) Build() (*Column, error) {
	if cb.err != nil {
		return nil, cb.err
	}
	return cb.column, nil
}

func (cb *ColumnBuilder) setErr(err error) {
	if cb.err == nil {
		cb.err = err
	}
}

// generateLabel converts a column name such as "firstName" to "First name"
func generateLabel(name string) string {
	label := strcase.ToDelimited(name, ' ')
	if label == "" {
		return name
	}
	return strings.ToUpper(label[:1]) + label[1:]
}
