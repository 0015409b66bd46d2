// Package array implements core.Adapter over an in-memory slice of records.
//
// A request runs filter -> sort -> paginate -> project -> transform to
// completion. Filtering and sorting work on a per-call copy of the record
// slice, so concurrent requests against one Adapter never observe each
// other's intermediate state.
package array

import (
	"context"
	"log/slog"
	"time"

	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/pattern"
)

// unpaginatedUsesRawData selects what a request with Length <= 0 projects.
// When true the page is the unfiltered, unsorted dataset; existing clients
// that request "all rows" with length -1 depend on it. Set it to false to
// project the filtered, sorted set instead.
const unpaginatedUsesRawData = true

// Adapter implements the core.Adapter interface over a fixed dataset
type Adapter struct {
	data     []core.Record
	patterns *pattern.Cache
	logger   *slog.Logger
}

// Option configures an Adapter
type Option func(*Adapter)

// WithLogger sets the logger used for per-request debug records
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithPatternCache shares a compiled-pattern cache between adapters
func WithPatternCache(cache *pattern.Cache) Option {
	return func(a *Adapter) {
		if cache != nil {
			a.patterns = cache
		}
	}
}

// New creates an adapter over data. The slice is copied; the records
// themselves are shared and treated as read-only.
func New(data []core.Record, opts ...Option) *Adapter {
	records := make([]core.Record, len(data))
	copy(records, data)

	a := &Adapter{
		data:     records,
		patterns: pattern.NewCache(pattern.DefaultLimit),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Len returns the number of records in the dataset
func (a *Adapter) Len() int {
	return len(a.data)
}

// GetData implements core.Adapter
func (a *Adapter) GetData(ctx context.Context, state *core.State) (*core.ResultSet, error) {
	if state == nil || state.Table == nil {
		return nil, core.NewConfigurationError("get data", "", core.ErrInvalidTable, nil)
	}
	start := time.Now()

	filters, err := a.compileFilters(state)
	if err != nil {
		return nil, err
	}

	filtered := applyFilters(a.data, filters)
	sortRecords(filtered, state.OrderBy)

	var page []core.Record
	switch {
	case state.IsPaginated():
		page = paginate(filtered, state.Start, state.Length)
	case unpaginatedUsesRawData:
		page = a.data
	default:
		page = filtered
	}

	projector := core.NewProjector(state.Table, state.GlobalSearch)
	rows := projector.ProjectAll(page)

	a.logger.DebugContext(ctx, "array adapter query",
		slog.String("table", state.Table.Name),
		slog.Int("total", len(a.data)),
		slog.Int("filtered", len(filtered)),
		slog.Int("returned", len(rows)),
		slog.Duration("duration", time.Since(start)))

	return &core.ResultSet{
		Rows:            rows,
		TotalRecords:    len(a.data),
		FilteredRecords: len(filtered),
	}, nil
}

// paginate returns the window [start, start+length) clamped to records
func paginate(records []core.Record, start, length int) []core.Record {
	if start < 0 {
		start = 0
	}
	if start >= len(records) {
		return []core.Record{}
	}
	end := len(records)
	if length < end-start {
		end = start + length
	}
	return records[start:end]
}
