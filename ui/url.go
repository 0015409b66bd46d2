package ui

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// TableURLBuilder provides a fluent interface for building table data URLs
type TableURLBuilder struct {
	basePath string
	params   url.Values
}

// NewTableURL creates a new URL builder for the named table below basePath
func NewTableURL(basePath, tableName string) *TableURLBuilder {
	return &TableURLBuilder{
		basePath: strings.TrimRight(basePath, "/") + "/" + url.PathEscape(tableName),
		params:   make(url.Values),
	}
}

// PreserveFromRequest copies all user-facing parameters from the current request
// Skips internal parameters like "draw" that shouldn't be preserved
func (b *TableURLBuilder) PreserveFromRequest(r *http.Request) *TableURLBuilder {
	for k, v := range r.URL.Query() {
		if !isInternalParam(k) {
			b.params[k] = v
		}
	}
	return b
}

// WithOrder replaces the sort keys with a single key on the column at position
func (b *TableURLBuilder) WithOrder(position int, direction string) *TableURLBuilder {
	for key := range b.params {
		if strings.HasPrefix(key, "order[") {
			b.params.Del(key)
		}
	}
	if position >= 0 {
		b.params.Set("order[0][column]", strconv.Itoa(position))
		if direction != "" {
			b.params.Set("order[0][dir]", direction)
		}
	}
	return b
}

// WithPagination sets pagination parameters
func (b *TableURLBuilder) WithPagination(start, length int) *TableURLBuilder {
	b.params.Set(paramStart, strconv.Itoa(start))
	b.params.Set(paramLength, strconv.Itoa(length))
	return b
}

// WithGlobalSearch sets the global search term
func (b *TableURLBuilder) WithGlobalSearch(term string) *TableURLBuilder {
	if term == "" {
		b.params.Del(paramGlobalSearch)
		return b
	}
	b.params.Set(paramGlobalSearch, term)
	return b
}

// WithColumnSearch declares the column at position and its search term
func (b *TableURLBuilder) WithColumnSearch(position int, column, term string) *TableURLBuilder {
	if column == "" {
		return b
	}
	prefix := "columns[" + strconv.Itoa(position) + "]"
	b.params.Set(prefix+"[data]", column)
	if term != "" {
		b.params.Set(prefix+"[search][value]", term)
	}
	return b
}

// WithParam sets an arbitrary parameter
func (b *TableURLBuilder) WithParam(key, value string) *TableURLBuilder {
	if key != "" {
		b.params.Set(key, value)
	}
	return b
}

// RemoveParam removes a parameter
func (b *TableURLBuilder) RemoveParam(key string) *TableURLBuilder {
	b.params.Del(key)
	return b
}

// String builds and returns the final URL
func (b *TableURLBuilder) String() string {
	if len(b.params) == 0 {
		return b.basePath
	}
	return b.basePath + "?" + b.params.Encode()
}

// isInternalParam checks if a parameter is internal and should not be preserved
// when building new URLs based on current request
func isInternalParam(key string) bool {
	internalParams := []string{
		"draw", // Per-request counter echoed by the server
		"_",    // Cache buster added by the DataTables client
	}

	for _, param := range internalParams {
		if strings.EqualFold(key, param) {
			return true
		}
	}
	return false
}
