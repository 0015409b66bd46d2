package dataset

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/DawidMiftadinow/datatables-bundle/adapters/array"
	sqladapter "github.com/DawidMiftadinow/datatables-bundle/adapters/sql"
	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/internal/pattern"
)

// ErrNoSource is returned for a table that names neither a data file nor a
// SQLite database.
var ErrNoSource = errors.New("table has no data source")

// Loader builds a registry from table definitions. Tables share one compiled
// pattern cache. SQL connections stay open until Close.
type Loader struct {
	logger   *slog.Logger
	debugSQL bool
	patterns *pattern.Cache
	dbs      []*sql.DB
}

// NewLoader creates a loader. A nil logger selects slog.Default.
func NewLoader(logger *slog.Logger, debugSQL bool) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{
		logger:   logger,
		debugSQL: debugSQL,
		patterns: pattern.NewCache(pattern.DefaultLimit),
	}
}

// Load reads the definition file at path and registers every table it
// declares. Relative data paths resolve against the definition file.
func (l *Loader) Load(ctx context.Context, path string) (*core.Registry, error) {
	file, err := LoadTables(path)
	if err != nil {
		return nil, err
	}
	return l.Build(ctx, file, filepath.Dir(path))
}

// Build registers the tables of file. baseDir resolves relative data paths.
func (l *Loader) Build(ctx context.Context, file *File, baseDir string) (*core.Registry, error) {
	registry := core.NewRegistry()
	for _, tc := range file.Tables {
		adapter, err := l.adapterFor(ctx, tc, baseDir)
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}

		table, err := tc.Builder().WithAdapter(adapter).Build()
		if err != nil {
			return nil, fmt.Errorf("table %s: %w", tc.Name, err)
		}
		if err := registry.Register(table); err != nil {
			return nil, err
		}
		l.logger.InfoContext(ctx, "registered table",
			slog.String("table", table.Name),
			slog.Int("columns", len(table.Columns())))
	}
	return registry, nil
}

func (l *Loader) adapterFor(ctx context.Context, tc TableConfig, baseDir string) (core.Adapter, error) {
	switch {
	case tc.Data != "":
		records, err := LoadRecords(ctx, resolve(baseDir, tc.Data))
		if err != nil {
			return nil, err
		}
		return array.New(records,
			array.WithLogger(l.logger),
			array.WithPatternCache(l.patterns)), nil

	case tc.SQLite != "":
		db, err := sqladapter.OpenSQLite(tc.SQLite)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		l.dbs = append(l.dbs, db)

		sqlTable := tc.SQLTable
		if sqlTable == "" {
			sqlTable = tc.Name
		}
		opts := []sqladapter.Option{
			sqladapter.WithLogger(l.logger),
			sqladapter.WithDebug(l.debugSQL),
			sqladapter.WithPatternCache(l.patterns),
		}
		for _, cc := range tc.Columns {
			if cc.DBColumn != "" {
				opts = append(opts, sqladapter.WithColumn(cc.Name, cc.DBColumn))
			}
		}
		return sqladapter.New(db, sqlTable, opts...), nil

	default:
		return nil, ErrNoSource
	}
}

// Close closes the database connections opened by Load
func (l *Loader) Close() error {
	var errs []error
	for _, db := range l.dbs {
		errs = append(errs, db.Close())
	}
	l.dbs = nil
	return errors.Join(errs...)
}

func resolve(baseDir, path string) string {
	if filepath.IsAbs(path) || baseDir == "" {
		return path
	}
	return filepath.Join(baseDir, path)
}
