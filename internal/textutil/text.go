// Package textutil holds the value coercion rules shared by filtering,
// sorting and searching.
package textutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cast"
	"golang.org/x/text/cases"
)

// ToText converts a value to the text used for matching.
// nil becomes the empty string; booleans become "true" / "false".
func ToText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		return strconv.FormatBool(v)
	}

	if s, err := cast.ToStringE(value); err == nil {
		return s
	}
	return fmt.Sprintf("%v", value)
}

// Numeric reports whether value is a number or a numeric-looking string and
// returns it as float64. Booleans and nil are never numeric. Strings follow a
// conservative decimal grammar: optional surrounding whitespace, optional
// sign, digits with an optional fraction and exponent. Hex, Inf and NaN
// spellings are rejected.
func Numeric(value any) (float64, bool) {
	switch v := value.(type) {
	case nil, bool:
		return 0, false
	case string:
		return parseDecimal(v)
	case []byte:
		return parseDecimal(string(v))
	case json.Number:
		return parseDecimal(v.String())
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		f, err := cast.ToFloat64E(v)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func parseDecimal(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	digits := 0
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= '0' && c <= '9':
			digits++
		case c == '+', c == '-', c == '.', c == 'e', c == 'E':
		default:
			return 0, false
		}
	}
	if digits == 0 {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Matcher performs case-insensitive substring matching using Unicode case
// folding. A Matcher is not safe for concurrent use.
type Matcher struct {
	folder cases.Caser
	needle string
}

// NewMatcher returns a Matcher for term. An empty term matches everything.
func NewMatcher(term string) *Matcher {
	folder := cases.Fold()
	return &Matcher{
		folder: folder,
		needle: folder.String(term),
	}
}

// Empty reports whether the matcher has no search term.
func (m *Matcher) Empty() bool {
	return m.needle == ""
}

// Match reports whether the text form of value contains the term.
func (m *Matcher) Match(value any) bool {
	if m.needle == "" {
		return true
	}
	return strings.Contains(m.folder.String(ToText(value)), m.needle)
}
