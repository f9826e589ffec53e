package store

import (
	"fmt"
	"strings"

	"github.com/roach88/convene/internal/ir"
)

// Filter restricts FindResolutions. Empty fields match every resolution.
type Filter struct {
	Host         string // host type spelling, see ir.ParseHostType
	Status       Status
	ManifestHash string
}

// equals is one "column = ?" term of a filter.
type equals struct {
	column string
	value  any
}

// compile converts f to a parameterized WHERE condition.
// Values are always bound as parameters, never interpolated.
func (f Filter) compile() (string, []any, error) {
	var terms []equals

	if f.Host != "" {
		host, err := ir.ParseHostType(f.Host)
		if err != nil {
			return "", nil, fmt.Errorf("filter: %w", err)
		}
		terms = append(terms, equals{"host_type", host.String()})
	}

	switch f.Status {
	case "":
	case StatusOK, StatusFailed:
		terms = append(terms, equals{"status", string(f.Status)})
	default:
		return "", nil, fmt.Errorf("filter: unknown status %q: must be ok or failed", f.Status)
	}

	if f.ManifestHash != "" {
		terms = append(terms, equals{"manifest_hash", f.ManifestHash})
	}

	where, params := and(terms)
	return where, params, nil
}

// and joins terms with AND. No terms is always true.
func and(terms []equals) (string, []any) {
	if len(terms) == 0 {
		return "1 = 1", nil
	}

	parts := make([]string, len(terms))
	params := make([]any, len(terms))
	for i, t := range terms {
		parts[i] = t.column + " = ?"
		params[i] = t.value
	}
	return strings.Join(parts, " AND "), params
}
