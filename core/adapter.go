package core

import "context"

// Adapter defines the interface for data source adapters
type Adapter interface {
	// GetData computes the page of rows described by state together with
	// the total and filtered record counts. No partial result is returned
	// alongside an error.
	GetData(ctx context.Context, state *State) (*ResultSet, error)
}

// RowTransformer post-processes a projected row given its source record.
// It runs once per emitted row, after projection and global search.
type RowTransformer interface {
	Transform(row Row, record Record) Row
}

// RowTransformerFunc adapts a function to the RowTransformer interface
type RowTransformerFunc func(row Row, record Record) Row

// Transform implements RowTransformer
func (f RowTransformerFunc) Transform(row Row, record Record) Row {
	return f(row, record)
}
