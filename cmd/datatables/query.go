package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/DawidMiftadinow/datatables-bundle/adapters/array"
	"github.com/DawidMiftadinow/datatables-bundle/config"
	"github.com/DawidMiftadinow/datatables-bundle/core"
	"github.com/DawidMiftadinow/datatables-bundle/dataset"

	"github.com/spf13/cobra"
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Run one table request and print the result as JSON",
	Long: `Run one table request and print the DataTables envelope.
The table comes from the definition file (--table) or, with --data, from a
JSON or YAML record file whose columns are the keys of its records.`,
	Example: `  datatables query --table people --order age:desc --length 5
  datatables query --data people.json --column-search lastName=^S --search ada`,
	RunE: runQuery,
}

func init() {
	addQueryFlags(queryCmd)
}

func addQueryFlags(cmd *cobra.Command) {
	cmd.Flags().String("table", "", "Name of the table to query")
	cmd.Flags().String("data", "", "Query a record file instead of a configured table")
	cmd.Flags().Int("start", 0, "Index of the first row")
	cmd.Flags().Int("length", 0, "Page length, <= 0 for all rows (default: the page-size setting)")
	cmd.Flags().StringArray("order", nil, "Sort key as column:asc or column:desc, repeatable")
	cmd.Flags().String("search", "", "Global search term")
	cmd.Flags().StringArray("column-search", nil, "Per-column pattern as column=regexp, repeatable")
}

func runQuery(cmd *cobra.Command, _ []string) error {
	cfg, err := bindFlags(cmd, v)
	if err != nil {
		return err
	}
	logger := newLogger(cfg, cmd.ErrOrStderr())
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var table *core.Table
	if dataPath := v.GetString("data"); dataPath != "" {
		table, err = tableFromFile(ctx, dataPath)
	} else {
		loader := dataset.NewLoader(logger, cfg.Debug)
		defer loader.Close()
		table, err = configuredTable(ctx, loader, cfg, v.GetString("table"))
	}
	if err != nil {
		return err
	}

	opts, err := readQueryOptions(cmd, cfg)
	if err != nil {
		return err
	}
	state, err := buildState(table, opts)
	if err != nil {
		return err
	}

	rs, err := table.GetResultSet(ctx, state)
	if err != nil {
		return err
	}
	return writeResult(cmd.OutOrStdout(), rs)
}

func configuredTable(ctx context.Context, loader *dataset.Loader, cfg *config.Config, name string) (*core.Table, error) {
	registry, err := loader.Load(ctx, cfg.Tables)
	if err != nil {
		return nil, err
	}
	if name == "" {
		tables := registry.Tables()
		if len(tables) != 1 {
			return nil, fmt.Errorf("--table is required when %s declares %d tables", cfg.Tables, len(tables))
		}
		return tables[0], nil
	}
	table, ok := registry.Get(name)
	if !ok {
		return nil, fmt.Errorf("table %q not found in %s", name, cfg.Tables)
	}
	return table, nil
}

// tableFromFile builds a table over a record file with one column per
// record key, in sorted key order
func tableFromFile(ctx context.Context, path string) (*core.Table, error) {
	records, err := dataset.LoadRecords(ctx, path)
	if err != nil {
		return nil, err
	}

	keys := make(map[string]bool)
	for _, record := range records {
		for key := range record {
			keys[key] = true
		}
	}
	names := make([]string, 0, len(keys))
	for key := range keys {
		names = append(names, key)
	}
	sort.Strings(names)

	builder := core.NewTable(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	for _, name := range names {
		builder.Add(name, nil)
	}
	return builder.WithAdapter(array.New(records)).Build()
}

type queryOptions struct {
	start        int
	length       int
	order        []string
	search       string
	columnSearch []string
}

// readQueryOptions reads the query flags. Without --length the configured
// page size applies, as it does for served requests.
func readQueryOptions(cmd *cobra.Command, cfg *config.Config) (queryOptions, error) {
	var (
		opts queryOptions
		err  error
	)
	flags := cmd.Flags()
	if opts.start, err = flags.GetInt("start"); err != nil {
		return opts, err
	}
	opts.length = cfg.PageSize
	if flags.Changed("length") {
		if opts.length, err = flags.GetInt("length"); err != nil {
			return opts, err
		}
	}
	if opts.order, err = flags.GetStringArray("order"); err != nil {
		return opts, err
	}
	if opts.search, err = flags.GetString("search"); err != nil {
		return opts, err
	}
	opts.columnSearch, err = flags.GetStringArray("column-search")
	return opts, err
}

// buildState turns command line options into a State
func buildState(table *core.Table, opts queryOptions) (*core.State, error) {
	state := table.NewState().
		WithPagination(opts.start, opts.length).
		WithGlobalSearch(opts.search)

	for _, key := range opts.order {
		name, dir, _ := strings.Cut(key, ":")
		column, ok := table.Column(name)
		if !ok {
			return nil, core.NewConfigurationError("order", name, core.ErrUnknownColumn, nil)
		}
		direction := core.SortAsc
		if dir != "" {
			parsed, ok := core.ParseSortDirection(dir)
			if !ok {
				return nil, fmt.Errorf("invalid sort direction %q for %s", dir, name)
			}
			direction = parsed
		}
		state.AddOrder(column, direction)
	}

	for _, term := range opts.columnSearch {
		name, pattern, ok := strings.Cut(term, "=")
		if !ok {
			return nil, fmt.Errorf("invalid column search %q: expected column=regexp", term)
		}
		state.WithColumnSearch(name, pattern)
	}
	return state, nil
}

func writeResult(w io.Writer, rs *core.ResultSet) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(map[string]any{
		"recordsTotal":    rs.GetTotalRecords(),
		"recordsFiltered": rs.GetFilteredRecords(),
		"data":            rs.GetData(),
	})
}
