package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Path is a compiled property path into a Record.
//
// The grammar is a sequence of segments, each either a bracketed literal
// ("[field]") or a dotted identifier ("company.name"). The two forms may be
// mixed, e.g. "[company].name" or "items[0]". A bracketed or dotted segment
// reads a key from a mapping; on a []any value it reads a decimal index.
type Path struct {
	raw      string
	segments []string
}

// ParsePath compiles a path expression. Malformed expressions return a
// ConfigurationError wrapping ErrInvalidPath.
func ParsePath(expr string) (Path, error) {
	segments, err := parseSegments(expr)
	if err != nil {
		return Path{}, NewConfigurationError("parse path", expr, ErrInvalidPath, err)
	}
	return Path{raw: expr, segments: segments}, nil
}

// MustParsePath is like ParsePath but panics on malformed input. It is meant
// for paths known at compile time.
func MustParsePath(expr string) Path {
	p, err := ParsePath(expr)
	if err != nil {
		panic(err)
	}
	return p
}

// FieldPath returns the default bracket path for a top-level field.
func FieldPath(field string) Path {
	return Path{raw: "[" + field + "]", segments: []string{field}}
}

func parseSegments(expr string) ([]string, error) {
	if expr == "" {
		return nil, fmt.Errorf("empty expression")
	}

	var segments []string
	afterBracket := false
	i := 0
	for i < len(expr) {
		switch c := expr[i]; c {
		case '[':
			end := strings.IndexByte(expr[i+1:], ']')
			if end < 0 {
				return nil, fmt.Errorf("unbalanced '[' at offset %d", i)
			}
			literal := expr[i+1 : i+1+end]
			if literal == "" {
				return nil, fmt.Errorf("empty bracket at offset %d", i)
			}
			if strings.IndexByte(literal, '[') >= 0 {
				return nil, fmt.Errorf("nested '[' at offset %d", i)
			}
			segments = append(segments, literal)
			i += end + 2
			afterBracket = true
		case ']':
			return nil, fmt.Errorf("unexpected ']' at offset %d", i)
		case '.':
			if i == 0 {
				return nil, fmt.Errorf("leading '.'")
			}
			ident, n := scanIdent(expr[i+1:])
			if ident == "" {
				return nil, fmt.Errorf("empty segment at offset %d", i+1)
			}
			segments = append(segments, ident)
			i += n + 1
			afterBracket = false
		default:
			if afterBracket || i != 0 {
				return nil, fmt.Errorf("unexpected %q at offset %d", c, i)
			}
			ident, n := scanIdent(expr)
			segments = append(segments, ident)
			i += n
		}
	}
	return segments, nil
}

// scanIdent reads up to the next '.' or '['. A stray ']' ends the scan too
// so the caller reports it.
func scanIdent(s string) (string, int) {
	n := strings.IndexAny(s, ".[]")
	if n < 0 {
		n = len(s)
	}
	return s[:n], n
}

// String returns the expression the path was parsed from.
func (p Path) String() string {
	return p.raw
}

// IsZero reports whether the path was never set.
func (p Path) IsZero() bool {
	return len(p.segments) == 0
}

// Segments returns a copy of the path segments.
func (p Path) Segments() []string {
	out := make([]string, len(p.segments))
	copy(out, p.segments)
	return out
}

// TopLevelField returns the field name when the path is a single segment.
func (p Path) TopLevelField() (string, bool) {
	if len(p.segments) != 1 {
		return "", false
	}
	return p.segments[0], true
}

// Resolve returns the value at the path. The second result is false when any
// level is missing or not traversable; the record is never modified.
func (p Path) Resolve(record Record) (any, bool) {
	if record == nil || len(p.segments) == 0 {
		return nil, false
	}

	var current any = record
	for _, segment := range p.segments {
		next, ok := step(current, segment)
		if !ok {
			return nil, false
		}
		current = next
	}
	return current, true
}

func step(current any, segment string) (any, bool) {
	switch v := current.(type) {
	case Record:
		value, ok := v[segment]
		return value, ok
	case map[string]any:
		value, ok := v[segment]
		return value, ok
	case map[string]string:
		value, ok := v[segment]
		return value, ok
	case []any:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(v) {
			return nil, false
		}
		return v[index], true
	case []Record:
		index, err := strconv.Atoi(segment)
		if err != nil || index < 0 || index >= len(v) {
			return nil, false
		}
		return v[index], true
	default:
		return nil, false
	}
}
