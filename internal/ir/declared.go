package ir

import (
	"fmt"
	"strings"
)

// Source says which contribution list a declared convention joins.
type Source int

const (
	SourceScanned Source = iota
	SourcePrepended
	SourceAppended
)

// String returns the manifest spelling of the source.
func (s Source) String() string {
	switch s {
	case SourceScanned:
		return "scanned"
	case SourcePrepended:
		return "prepended"
	case SourceAppended:
		return "appended"
	default:
		return fmt.Sprintf("source(%d)", int(s))
	}
}

// ParseSource parses the manifest spelling of a source. Empty means scanned.
func ParseSource(s string) (Source, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "scanned":
		return SourceScanned, nil
	case "prepended":
		return SourcePrepended, nil
	case "appended":
		return SourceAppended, nil
	default:
		return SourceScanned, fmt.Errorf("unknown source %q: must be one of scanned, prepended, appended", s)
	}
}

// Declared is a convention declared by name in a manifest rather than
// implemented as a Go type. Its type identity is its name.
type Declared struct {
	Name        string   `json:"name"`
	Priority    int      `json:"priority"`
	HostType    HostType `json:"host_type"`
	Category    Category `json:"category"`
	Source      Source   `json:"source"`
	After       []string `json:"after,omitempty"`
	Before      []string `json:"before,omitempty"`
	DependsOn   []string `json:"depends_on,omitempty"`
	DependentOf []string `json:"dependent_of,omitempty"`
}

// ConventionType implements Typed.
func (d *Declared) ConventionType() TypeID { return TypeID(d.Name) }

// ConventionMetadata implements Describer.
// Edges are emitted in the order after, depends_on, before, dependent_of.
func (d *Declared) ConventionMetadata() Metadata {
	category := d.Category
	if category == "" {
		category = DefaultCategory
	}
	return Metadata{
		Priority:     d.Priority,
		HostType:     d.HostType,
		Category:     category,
		Dependencies: d.Dependencies(),
	}
}

// Dependencies normalizes the four declaration forms into edges.
func (d *Declared) Dependencies() []Dependency {
	var deps []Dependency
	for _, n := range d.After {
		deps = append(deps, AfterID(TypeID(n)))
	}
	for _, n := range d.DependsOn {
		deps = append(deps, DependsOnID(TypeID(n)))
	}
	for _, n := range d.Before {
		deps = append(deps, BeforeID(TypeID(n)))
	}
	for _, n := range d.DependentOf {
		deps = append(deps, DependentOfID(TypeID(n)))
	}
	return deps
}

// String implements fmt.Stringer.
func (d *Declared) String() string { return d.Name }

// Canonical returns a map form of the declaration for canonical JSON hashing.
func (d *Declared) Canonical() map[string]any {
	return map[string]any{
		"name":         d.Name,
		"priority":     d.Priority,
		"host_type":    d.HostType.String(),
		"category":     string(d.ConventionMetadata().Category),
		"source":       d.Source.String(),
		"after":        stringsToAny(d.After),
		"before":       stringsToAny(d.Before),
		"depends_on":   stringsToAny(d.DependsOn),
		"dependent_of": stringsToAny(d.DependentOf),
	}
}

func stringsToAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}

// Contributions splits declarations into the three contribution lists a
// provider accepts, preserving declaration order within each list.
func Contributions(decls []Declared) (scanned, prepended, appended []any) {
	for i := range decls {
		d := &decls[i]
		switch d.Source {
		case SourcePrepended:
			prepended = append(prepended, d)
		case SourceAppended:
			appended = append(appended, d)
		default:
			scanned = append(scanned, d)
		}
	}
	return scanned, prepended, appended
}
