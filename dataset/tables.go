package dataset

import (
	"fmt"
	"os"

	"github.com/DawidMiftadinow/datatables-bundle/core"

	"gopkg.in/yaml.v3"
)

// File is the layout of a table definition file
type File struct {
	Tables []TableConfig `yaml:"tables"`
}

// TableConfig declares one table and where its data comes from. Exactly one
// of Data or SQLite is expected.
type TableConfig struct {
	Name     string         `yaml:"name"`
	Data     string         `yaml:"data"`     // JSON or YAML record file
	SQLite   string         `yaml:"sqlite"`   // SQLite DSN
	SQLTable string         `yaml:"sqlTable"` // defaults to Name
	Columns  []ColumnConfig `yaml:"columns"`
	Order    []OrderConfig  `yaml:"order"`
}

// ColumnConfig declares one column. Unset fields keep the column defaults.
type ColumnConfig struct {
	Name             string `yaml:"name"`
	Label            string `yaml:"label"`
	Field            string `yaml:"field"`
	Type             string `yaml:"type"`
	Raw              bool   `yaml:"raw"`
	Searchable       *bool  `yaml:"searchable"`
	Orderable        *bool  `yaml:"orderable"`
	GlobalSearchable *bool  `yaml:"globalSearchable"`
	Default          any    `yaml:"default"`
	Format           string `yaml:"format"`
	TrueValue        string `yaml:"trueValue"`
	FalseValue       string `yaml:"falseValue"`
	NullValue        string `yaml:"nullValue"`
	DBColumn         string `yaml:"dbColumn"` // SQL tables only
}

// OrderConfig is one default sort key
type OrderConfig struct {
	Column string `yaml:"column"`
	Dir    string `yaml:"dir"`
}

// LoadTables reads table definitions from a YAML file
func LoadTables(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read table definitions: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes table definitions
func ParseTables(data []byte) (*File, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to decode table definitions: %w", err)
	}
	return &file, nil
}

// Builder returns a table builder holding the declared columns and order
func (tc TableConfig) Builder() *core.TableBuilder {
	builder := core.NewTable(tc.Name)
	for _, cc := range tc.Columns {
		builder.Add(cc.Name, cc.apply)
	}
	for _, oc := range tc.Order {
		// Unknown directions fall back to ascending in the builder
		dir, _ := core.ParseSortDirection(oc.Dir)
		builder.WithDefaultOrder(oc.Column, dir)
	}
	return builder
}

func (cc ColumnConfig) apply(c *core.ColumnBuilder) {
	if cc.Label != "" {
		c.Label(cc.Label)
	}
	if cc.Field != "" {
		c.Field(cc.Field)
	}
	if cc.Type != "" {
		c.Type(core.ColumnType(cc.Type))
	}
	c.Raw(cc.Raw)
	if cc.Searchable != nil {
		c.Searchable(*cc.Searchable)
	}
	if cc.Orderable != nil {
		c.Orderable(*cc.Orderable)
	}
	if cc.GlobalSearchable != nil {
		c.GlobalSearchable(*cc.GlobalSearchable)
	}
	if cc.Default != nil {
		c.Default(cc.Default)
	}
	if cc.Format != "" {
		c.Format(cc.Format)
	}
	if cc.TrueValue != "" || cc.FalseValue != "" {
		c.BoolValues(cc.TrueValue, cc.FalseValue, cc.NullValue)
	} else if cc.NullValue != "" {
		c.NullValue(cc.NullValue)
	}
}
