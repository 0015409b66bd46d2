// Package sql implements core.Adapter over a single database/sql table.
//
// Per-column search terms become REGEXP conditions and the global search term
// becomes a case-insensitive LIKE over globally searchable columns, so both
// narrow the filtered count. Sorting and pagination are pushed into the query.
// Columns that do not map to a database column (computed columns, nested
// paths) are projected but never searched or sorted.
package sql

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/pattern"

	"github.com/iancoleman/strcase"
)

// Adapter implements the core.Adapter interface using pure sql.DB
type Adapter struct {
	db       *sql.DB
	table    string
	columns  map[string]string // column name -> database column override
	patterns *pattern.Cache
	logger   *SQLLogger

	mu     sync.Mutex
	schema map[string]bool // database columns, loaded on first use
}

// Option configures an Adapter
type Option func(*Adapter)

// WithColumn maps a table column to an explicit database column
func WithColumn(name, dbColumn string) Option {
	return func(a *Adapter) {
		a.columns[name] = dbColumn
	}
}

// WithDebug enables or disables SQL debug logging
func WithDebug(enabled bool) Option {
	return func(a *Adapter) {
		a.logger.SetEnabled(enabled)
	}
}

// WithLogger sets the logger SQL debug records are written to
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) {
		a.logger = NewSQLLogger(logger, a.logger.IsEnabled())
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

// New creates a new SQL adapter reading from table
func New(db *sql.DB, table string, opts ...Option) *Adapter {
	a := &Adapter{
		db:       db,
		table:    table,
		columns:  make(map[string]string),
		patterns: pattern.NewCache(pattern.DefaultLimit),
		logger:   NewSQLLogger(slog.Default(), false), // Default to disabled
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// SetDebugEnabled enables or disables SQL debug logging
func (a *Adapter) SetDebugEnabled(enabled bool) {
	a.logger.SetEnabled(enabled)
}

// GetData implements core.Adapter
func (a *Adapter) GetData(ctx context.Context, state *core.State) (*core.ResultSet, error) {
	if state == nil || state.Table == nil {
		return nil, core.NewConfigurationError("get data", a.table, core.ErrInvalidTable, nil)
	}

	known, err := a.loadSchema(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read columns of %s: %w", a.table, err)
	}
	mapper := &columnMapper{overrides: a.columns, known: known, table: state.Table}

	where, args, err := a.buildWhere(state, mapper)
	if err != nil {
		return nil, err
	}

	total, err := a.count(ctx, "", nil)
	if err != nil {
		return nil, err
	}
	filtered := total
	if where != "" {
		if filtered, err = a.count(ctx, where, args); err != nil {
			return nil, err
		}
	}

	queryStr := fmt.Sprintf("SELECT * FROM %s", quoteIdent(a.table)) + where + buildOrderBy(state, mapper)
	queryArgs := append([]any{}, args...)
	if state.IsPaginated() {
		queryStr += " LIMIT ? OFFSET ?"
		queryArgs = append(queryArgs, state.Length, state.Start)
	}

	records, err := a.queryRecords(ctx, queryStr, queryArgs, mapper)
	if err != nil {
		return nil, err
	}

	// Global search already ran in the WHERE clause.
	rows := core.NewProjector(state.Table, "").ProjectAll(records)

	return &core.ResultSet{
		Rows:            rows,
		TotalRecords:    total,
		FilteredRecords: filtered,
	}, nil
}

// buildWhere compiles every per-column term before building the clause so an
// invalid pattern fails without touching the database.
func (a *Adapter) buildWhere(state *core.State, mapper *columnMapper) (string, []any, error) {
	names := make([]string, 0, len(state.SearchColumns))
	for name, term := range state.SearchColumns {
		if term != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	var conditions []string
	var args []any
	for _, name := range names {
		term := state.SearchColumns[name]
		if _, err := a.patterns.Compile(term); err != nil {
			return "", nil, core.NewConfigurationError("filter", name, core.ErrInvalidPattern, err)
		}
		dbColumn := mapper.forName(name)
		if dbColumn == "" {
			continue
		}
		conditions = append(conditions, fmt.Sprintf("%s REGEXP ?", quoteIdent(dbColumn)))
		args = append(args, term)
	}

	if state.GlobalSearch != "" {
		like := "%" + escapeLike(strings.ToLower(state.GlobalSearch)) + "%"
		var alternatives []string
		for _, column := range state.Table.Columns() {
			if !column.GlobalSearchable {
				continue
			}
			dbColumn := mapper.forColumn(column)
			if dbColumn == "" {
				continue
			}
			alternatives = append(alternatives, fmt.Sprintf(`LOWER(CAST(%s AS TEXT)) LIKE ? ESCAPE '\'`, quoteIdent(dbColumn)))
			args = append(args, like)
		}
		if len(alternatives) == 0 {
			conditions = append(conditions, "1 = 0")
		} else {
			conditions = append(conditions, "("+strings.Join(alternatives, " OR ")+")")
		}
	}

	if len(conditions) == 0 {
		return "", nil, nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args, nil
}

func buildOrderBy(state *core.State, mapper *columnMapper) string {
	var orderClauses []string
	for _, order := range state.OrderBy {
		if order.Column == nil {
			continue
		}
		// Computed columns have nothing to sort on in the database
		dbColumn := mapper.forColumn(order.Column)
		if dbColumn == "" {
			continue
		}
		direction := "ASC"
		if order.Direction == core.SortDesc {
			direction = "DESC"
		}
		orderClauses = append(orderClauses, fmt.Sprintf("%s %s", quoteIdent(dbColumn), direction))
	}
	if len(orderClauses) == 0 {
		return ""
	}
	return " ORDER BY " + strings.Join(orderClauses, ", ")
}

func (a *Adapter) count(ctx context.Context, where string, args []any) (int, error) {
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteIdent(a.table)) + where

	var n int
	start := time.Now()
	err := a.db.QueryRowContext(ctx, countQuery, args...).Scan(&n)
	duration := time.Since(start)
	if err != nil {
		a.logger.LogError(ctx, countQuery, args, duration, err)
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	a.logger.LogQuery(ctx, countQuery, args, duration, 1)
	return n, nil
}

func (a *Adapter) queryRecords(ctx context.Context, queryStr string, args []any, mapper *columnMapper) ([]core.Record, error) {
	start := time.Now()
	rows, err := a.db.QueryContext(ctx, queryStr, args...)
	if err != nil {
		a.logger.LogError(ctx, queryStr, args, time.Since(start), err)
		return nil, fmt.Errorf("failed to execute query: %w", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("failed to read result columns: %w", err)
	}
	aliases := mapper.aliases()

	records := []core.Record{}
	for rows.Next() {
		record, err := scanRecord(rows, columns)
		if err != nil {
			return nil, fmt.Errorf("failed to scan row: %w", err)
		}
		// Expose database columns under the field names the table reads
		for field, dbColumn := range aliases {
			if value, ok := record[dbColumn]; ok {
				record[field] = value
			}
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	a.logger.LogQuery(ctx, queryStr, args, time.Since(start), len(records))
	return records, nil
}

// scanRecord scans the current row into a Record keyed by column name
func scanRecord(rows *sql.Rows, columns []string) (core.Record, error) {
	values := make([]any, len(columns))
	valuePtrs := make([]any, len(columns))
	for i := range values {
		valuePtrs[i] = &values[i]
	}
	if err := rows.Scan(valuePtrs...); err != nil {
		return nil, err
	}

	record := make(core.Record, len(columns))
	for i, column := range columns {
		if b, ok := values[i].([]byte); ok {
			record[column] = string(b)
			continue
		}
		record[column] = values[i]
	}
	return record, nil
}

// loadSchema reads the column names of the table once
func (a *Adapter) loadSchema(ctx context.Context) (map[string]bool, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.schema != nil {
		return a.schema, nil
	}

	queryStr := fmt.Sprintf("SELECT * FROM %s LIMIT 0", quoteIdent(a.table))
	rows, err := a.db.QueryContext(ctx, queryStr)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	schema := make(map[string]bool, len(columns))
	for _, column := range columns {
		schema[column] = true
	}
	a.schema = schema
	return schema, nil
}

// columnMapper resolves table columns to database columns for one request
type columnMapper struct {
	overrides map[string]string
	known     map[string]bool
	table     *core.Table
}

// forName maps a column name, declared or not, to a database column. It
// returns "" when nothing in the database matches.
func (m *columnMapper) forName(name string) string {
	if column, ok := m.table.Column(name); ok {
		return m.forColumn(column)
	}
	return m.pick(name, strcase.ToSnake(name))
}

func (m *columnMapper) forColumn(column *core.Column) string {
	if dbColumn, ok := m.overrides[column.Name]; ok {
		return m.pick(dbColumn)
	}
	if column.Data != nil {
		return ""
	}
	field, ok := column.PropertyPath.TopLevelField()
	if !ok {
		return ""
	}
	return m.pick(field, strcase.ToSnake(field))
}

func (m *columnMapper) pick(candidates ...string) string {
	for _, candidate := range candidates {
		if m.known[candidate] {
			return candidate
		}
	}
	return ""
}

// aliases returns field -> database column for every column whose field name
// differs from the database column it reads
func (m *columnMapper) aliases() map[string]string {
	out := make(map[string]string)
	for _, column := range m.table.Columns() {
		field, ok := column.PropertyPath.TopLevelField()
		if !ok {
			continue
		}
		dbColumn, ok := m.overrides[column.Name]
		if !ok {
			dbColumn = m.pick(strcase.ToSnake(field))
		}
		if dbColumn != "" && dbColumn != field && m.known[dbColumn] {
			out[field] = dbColumn
		}
	}
	return out
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "%", `\%`)
	return strings.ReplaceAll(s, "_", `\_`)
}
