package core

import "github.com/DawidMiftadinow/datatables-bundle/internal/textutil"

// Projector turns records into display rows for one request. It resolves
// every column through its property path, applies the column transform and
// evaluates the global search term against globally searchable columns.
// A Projector holds per-call state and must not be shared between goroutines.
type Projector struct {
	columns     []*Column
	transformer RowTransformer
	matcher     *textutil.Matcher
}

// NewProjector creates a projector for table. An empty globalSearch keeps
// every row.
func NewProjector(table *Table, globalSearch string) *Projector {
	return &Projector{
		columns:     table.columns,
		transformer: table.transformer,
		matcher:     textutil.NewMatcher(globalSearch),
	}
}

// Project builds the display row for record. The second result is false when
// a global search term is set and no searchable column matched it.
func (p *Projector) Project(record Record) (Row, bool) {
	row := make(Row, len(p.columns))
	match := p.matcher.Empty()

	for _, column := range p.columns {
		value, ok := column.PropertyPath.Resolve(record)
		if !ok {
			value = nil
		}
		value = column.Transform(value, record)
		if !match && column.GlobalSearchable {
			match = p.matcher.Match(value)
		}
		row[column.Name] = value
	}

	if !match {
		return nil, false
	}
	return row, true
}

// Finish applies the row transformer, if any
func (p *Projector) Finish(row Row, record Record) Row {
	if p.transformer == nil {
		return row
	}
	return p.transformer.Transform(row, record)
}

// ProjectAll projects records in order, dropping rows that fail the global
// search and transforming the rest.
func (p *Projector) ProjectAll(records []Record) []Row {
	rows := make([]Row, 0, len(records))
	for _, record := range records {
		row, ok := p.Project(record)
		if !ok {
			continue
		}
		rows = append(rows, p.Finish(row, record))
	}
	return rows
}
