package core

import (
	"errors"
	"fmt"
	"testing"
)

func TestConfigurationError(t *testing.T) {
	cause := errors.New("missing closing ]")
	err := NewConfigurationError("filter", "name", ErrInvalidPattern, cause)

	if got := err.Error(); got != `filter: invalid search pattern "name": missing closing ]` {
		t.Errorf("Unexpected message: %s", got)
	}

	wrapped := fmt.Errorf("table people: %w", err)
	for _, target := range []error{ErrConfiguration, ErrInvalidPattern, cause} {
		if !errors.Is(wrapped, target) {
			t.Errorf("Expected wrapped error to match %v", target)
		}
	}
	if errors.Is(wrapped, ErrInvalidPath) {
		t.Error("Expected no match for an unrelated kind")
	}

	var cfgErr *ConfigurationError
	if !errors.As(wrapped, &cfgErr) || cfgErr.Subject != "name" {
		t.Errorf("Expected errors.As to find the configuration error, got %+v", cfgErr)
	}
}

func TestIsConfigurationError(t *testing.T) {
	if IsConfigurationError(errors.New("io failure")) {
		t.Error("Plain errors are not configuration errors")
	}
	if IsConfigurationError(nil) {
		t.Error("nil is not a configuration error")
	}
	if !IsConfigurationError(NewConfigurationError("register table", "", ErrInvalidTable, nil)) {
		t.Error("Expected configuration error to be detected")
	}
	if got := NewConfigurationError("register table", "", ErrInvalidTable, nil).Error(); got != "register table: invalid table" {
		t.Errorf("Unexpected message: %s", got)
	}
}
