// Package dataset loads table data and table definitions from files.
//
// Record files hold a list of objects in JSON (.json) or YAML (.yaml, .yml).
// They are read under a shared lock on "<path>.lock" so a writer holding the
// exclusive lock never exposes a half-written file.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/DawidMiftadinow/datatables-bundle/core"

	"github.com/gofrs/flock"
	"gopkg.in/yaml.v3"
)

const (
	lockTimeout       = 3 * time.Second
	lockRetryInterval = 50 * time.Millisecond
)

// ErrUnsupportedFormat is returned for files that are neither JSON nor YAML
var ErrUnsupportedFormat = errors.New("unsupported data format")

// LoadRecords reads the records stored at path
func LoadRecords(ctx context.Context, path string) ([]core.Record, error) {
	data, err := readLocked(ctx, path)
	if err != nil {
		return nil, err
	}
	return DecodeRecords(data, filepath.Ext(path))
}

// DecodeRecords decodes a list of objects. ext selects the format and must
// be ".json", ".yaml" or ".yml".
func DecodeRecords(data []byte, ext string) ([]core.Record, error) {
	var raw []map[string]any

	switch strings.ToLower(ext) {
	case ".json":
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.UseNumber()
		if err := decoder.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode JSON records: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("failed to decode YAML records: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}

	records := make([]core.Record, 0, len(raw))
	for _, item := range raw {
		records = append(records, core.Record(item))
	}
	return records, nil
}

// readLocked reads path while holding a shared lock on its lock file
func readLocked(ctx context.Context, path string) ([]byte, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, lockTimeout)
		defer cancel()
	}

	fileLock := flock.New(path + ".lock")
	locked, err := fileLock.TryRLockContext(ctx, lockRetryInterval)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("could not acquire file lock for %s", path)
	}
	defer func() { _ = fileLock.Unlock() }()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
