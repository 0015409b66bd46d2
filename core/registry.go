package core

// Registry holds the tables served by an application
type Registry struct {
	tables     map[string]*Table
	tableOrder []string // Track registration order for consistent listing
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		tables:     make(map[string]*Table),
		tableOrder: make([]string, 0),
	}
}

// Register adds a table. Registration is expected to happen during startup,
// before the registry is shared with request handlers.
func (r *Registry) Register(table *Table) error {
	if table == nil || table.Name == "" {
		return NewConfigurationError("register table", "", ErrInvalidTable, nil)
	}
	if _, exists := r.tables[table.Name]; exists {
		return NewConfigurationError("register table", table.Name, ErrDuplicateTable, nil)
	}

	r.tables[table.Name] = table
	r.tableOrder = append(r.tableOrder, table.Name)
	return nil
}

// Get retrieves a registered table by name
func (r *Registry) Get(name string) (*Table, bool) {
	table, exists := r.tables[name]
	return table, exists
}

// Tables returns all registered tables in registration order
func (r *Registry) Tables() []*Table {
	ordered := make([]*Table, 0, len(r.tableOrder))
	for _, name := range r.tableOrder {
		if table, exists := r.tables[name]; exists {
			ordered = append(ordered, table)
		}
	}
	return ordered
}
