package core

import (
	"errors"
	"fmt"
)

// Common errors returned by the core package and its adapters.
var (
	// ErrConfiguration is the category shared by every configuration error.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidPath is returned when a property path cannot be parsed.
	ErrInvalidPath = errors.New("invalid property path")

	// ErrInvalidColumn is returned when a column is declared without a name.
	ErrInvalidColumn = errors.New("invalid column")

	// ErrInvalidColumnType is returned for a column type that is not known.
	ErrInvalidColumnType = errors.New("invalid column type")

	// ErrDuplicateColumn is returned when a table declares a column name twice.
	ErrDuplicateColumn = errors.New("duplicate column name")

	// ErrInvalidTable is returned when a table without a name is registered.
	ErrInvalidTable = errors.New("invalid table")

	// ErrDuplicateTable is returned when a registry already holds a table name.
	ErrDuplicateTable = errors.New("duplicate table name")

	// ErrInvalidPattern is returned when a per-column search term is not a
	// valid regular expression.
	ErrInvalidPattern = errors.New("invalid search pattern")

	// ErrUnknownColumn is returned when a column name is not declared on the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNoAdapter is returned when a table is queried without an adapter.
	ErrNoAdapter = errors.New("table has no adapter")
)

// ConfigurationError describes a malformed table or query configuration.
// It matches ErrConfiguration as well as its Kind and underlying cause.
type ConfigurationError struct {
	Op      string // operation that detected the problem, e.g. "filter"
	Subject string // column, table or path the problem relates to
	Kind    error  // one of the Err* sentinels
	Err     error  // underlying cause, may be nil
}

// NewConfigurationError builds a ConfigurationError.
func NewConfigurationError(op, subject string, kind, err error) *ConfigurationError {
	return &ConfigurationError{Op: op, Subject: subject, Kind: kind, Err: err}
}

func (e *ConfigurationError) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Op, e.Kind)
	if e.Subject != "" {
		msg += fmt.Sprintf(" %q", e.Subject)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports ErrConfiguration as a match so callers can test the category.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

func (e *ConfigurationError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// IsConfigurationError reports whether err is, or wraps, a configuration error.
func IsConfigurationError(err error) bool {
	return errors.Is(err, ErrConfiguration)
}
