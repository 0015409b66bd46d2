// Package ui serves registered tables over HTTP using the DataTables
// server-side processing protocol. Every table answers with a JSON envelope
// or, with format=html, a table body fragment with a load-more row.
package ui

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/DawidMiftadinow/datatables-bundle/core"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
)

// RequestIDHeader carries the request ID in both directions
const RequestIDHeader = "X-Request-ID"

// TablesHandler serves the tables of a registry
type TablesHandler struct {
	registry    *core.Registry
	basePath    string
	pageSize    int
	maxPageSize int
	logger      *slog.Logger
	metrics     *metrics.Set
}

// Option configures a TablesHandler
type Option func(*TablesHandler)

// WithPageSize sets the default page length and the largest length a client
// may request
func WithPageSize(pageSize, maxPageSize int) Option {
	return func(h *TablesHandler) {
		if pageSize > 0 {
			h.pageSize = pageSize
		}
		h.maxPageSize = maxPageSize
	}
}

// WithLogger sets the request logger
func WithLogger(logger *slog.Logger) Option {
	return func(h *TablesHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// WithMetrics sets the metrics set request counters are registered in
func WithMetrics(set *metrics.Set) Option {
	return func(h *TablesHandler) {
		if set != nil {
			h.metrics = set
		}
	}
}

// Handler returns an HTTP handler serving registry under basePath:
// basePath/ lists the tables and basePath/{table} returns table data.
func Handler(registry *core.Registry, basePath string, opts ...Option) http.Handler {
	h := NewTablesHandler(registry, basePath, opts...)

	mux := http.NewServeMux()
	mux.HandleFunc(h.basePath+"/", h.indexHandler)
	return mux
}

// NewTablesHandler creates the handler behind Handler
func NewTablesHandler(registry *core.Registry, basePath string, opts ...Option) *TablesHandler {
	h := &TablesHandler{
		registry:    registry,
		basePath:    strings.TrimRight(basePath, "/"),
		pageSize:    core.DefaultPageSize,
		maxPageSize: 100,
		logger:      slog.Default(),
		metrics:     metrics.NewSet(),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Metrics returns the set request metrics are registered in
func (h *TablesHandler) Metrics() *metrics.Set {
	return h.metrics
}

// indexHandler routes requests below the base path
func (h *TablesHandler) indexHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		w.Header().Set("Allow", "GET, POST")
		h.writeJSONError(w, 0, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	path := strings.TrimPrefix(r.URL.Path, h.basePath)
	path = strings.Trim(path, "/")

	if path == "" {
		h.renderIndex(w, r)
		return
	}
	if strings.Contains(path, "/") {
		http.NotFound(w, r)
		return
	}
	h.renderTable(w, r, path)
}

// tableInfo describes a table in the index listing
type tableInfo struct {
	Name    string       `json:"name"`
	URL     string       `json:"url"`
	Columns []columnInfo `json:"columns"`
}

type columnInfo struct {
	Name             string `json:"name"`
	Label            string `json:"label"`
	Type             string `json:"type"`
	Searchable       bool   `json:"searchable"`
	Orderable        bool   `json:"orderable"`
	GlobalSearchable bool   `json:"globalSearchable"`
}

// renderIndex lists the registered tables in registration order
func (h *TablesHandler) renderIndex(w http.ResponseWriter, r *http.Request) {
	tables := []tableInfo{}
	for _, table := range h.registry.Tables() {
		info := tableInfo{
			Name:    table.Name,
			URL:     NewTableURL(h.basePath, table.Name).String(),
			Columns: []columnInfo{},
		}
		for _, column := range table.Columns() {
			info.Columns = append(info.Columns, columnInfo{
				Name:             column.Name,
				Label:            column.Label,
				Type:             string(column.Type),
				Searchable:       column.Searchable,
				Orderable:        column.Orderable,
				GlobalSearchable: column.GlobalSearchable,
			})
		}
		tables = append(tables, info)
	}
	h.writeJSON(w, map[string]any{"tables": tables}, http.StatusOK)
}

// dataResponse is the DataTables server-side processing envelope
type dataResponse struct {
	Draw            int        `json:"draw"`
	RecordsTotal    int        `json:"recordsTotal"`
	RecordsFiltered int        `json:"recordsFiltered"`
	Data            []core.Row `json:"data"`
}

// renderTable answers one DataTables data request
func (h *TablesHandler) renderTable(w http.ResponseWriter, r *http.Request, name string) {
	start := time.Now()

	requestID := r.Header.Get(RequestIDHeader)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	w.Header().Set(RequestIDHeader, requestID)
	logger := h.logger.With(slog.String("request_id", requestID), slog.String("table", name))

	table, exists := h.registry.Get(name)
	if !exists {
		h.observe("unknown", http.StatusNotFound, start)
		h.writeJSONError(w, 0, fmt.Sprintf("Table '%s' not found", name), http.StatusNotFound)
		return
	}

	state, err := parseState(r, table, h.pageSize, h.maxPageSize)
	if err != nil {
		logger.WarnContext(r.Context(), "invalid table request", slog.Any("error", err))
		h.observe(name, http.StatusBadRequest, start)
		h.writeJSONError(w, 0, err.Error(), http.StatusBadRequest)
		return
	}

	rs, err := table.GetResultSet(r.Context(), state)
	if err != nil {
		status := http.StatusInternalServerError
		message := "Failed to get table data"
		if core.IsConfigurationError(err) {
			status = http.StatusBadRequest
			message = err.Error()
			logger.WarnContext(r.Context(), "rejected table request", slog.Any("error", err))
		} else {
			logger.ErrorContext(r.Context(), "failed to get table data", slog.Any("error", err))
		}
		h.observe(name, status, start)
		h.writeJSONError(w, state.Draw, message, status)
		return
	}

	logger.DebugContext(r.Context(), "served table data",
		slog.Int("draw", state.Draw),
		slog.Int("total", rs.TotalRecords),
		slog.Int("filtered", rs.FilteredRecords),
		slog.Int("returned", len(rs.Rows)),
		slog.Duration("duration", time.Since(start)))

	if r.Form.Get(paramFormat) == "html" {
		h.renderFragment(w, r, table, state, rs)
	} else {
		h.writeJSON(w, dataResponse{
			Draw:            state.Draw,
			RecordsTotal:    rs.TotalRecords,
			RecordsFiltered: rs.FilteredRecords,
			Data:            rs.Rows,
		}, http.StatusOK)
	}
	h.observe(name, http.StatusOK, start)
}

// renderFragment writes the rows as an HTML table body. A load-more row is
// appended while the filtered set extends past the current page.
func (h *TablesHandler) renderFragment(w http.ResponseWriter, r *http.Request, table *core.Table, state *core.State, rs *core.ResultSet) {
	nextURL := ""
	if state.IsPaginated() && len(rs.Rows) > 0 {
		nextStart := state.Start + state.Length
		if nextStart < rs.FilteredRecords {
			nextURL = NewTableURL(h.basePath, table.Name).
				PreserveFromRequest(r).
				WithPagination(nextStart, state.Length).
				WithParam(paramFormat, "html").
				String()
		}
	}

	// The first page carries the table skeleton; later pages are bare rows
	component := TableRows(table, rs.Rows, nextURL)
	if state.Start == 0 {
		component = Table(table, component)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		h.logger.ErrorContext(r.Context(), "failed to render table fragment", slog.Any("error", err))
	}
}

// observe records the outcome of a table request
func (h *TablesHandler) observe(table string, status int, start time.Time) {
	h.metrics.GetOrCreateCounter(fmt.Sprintf(`datatables_requests_total{table=%q,status="%d"}`, table, status)).Inc()
	h.metrics.GetOrCreateSummary(fmt.Sprintf(`datatables_request_duration_seconds{table=%q}`, table)).UpdateDuration(start)
}

// writeJSON writes v as a JSON response
func (h *TablesHandler) writeJSON(w http.ResponseWriter, v any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to encode response", slog.Any("error", err))
	}
}

// writeJSONError writes an error in the DataTables envelope
func (h *TablesHandler) writeJSONError(w http.ResponseWriter, draw int, message string, statusCode int) {
	h.writeJSON(w, map[string]any{"draw": draw, "error": message}, statusCode)
}
