package ir

import (
	"fmt"
	"reflect"
	"strings"
)

// HostType selects which conventions apply in a given runtime mode.
//
// HostUndefined entries apply to every host. Live and UnitTest entries apply
// only when that exact host type is requested.
type HostType int

const (
	HostUndefined HostType = iota
	HostLive
	HostUnitTest
)

// HostTypes lists every known host type in declaration order.
var HostTypes = []HostType{HostUndefined, HostLive, HostUnitTest}

// String returns the manifest spelling of the host type.
func (h HostType) String() string {
	switch h {
	case HostUndefined:
		return "undefined"
	case HostLive:
		return "live"
	case HostUnitTest:
		return "unit_test"
	default:
		return fmt.Sprintf("host(%d)", int(h))
	}
}

// Valid reports whether h is one of the known host types.
func (h HostType) Valid() bool {
	return h >= HostUndefined && h <= HostUnitTest
}

// MarshalText encodes the host type by its manifest spelling.
func (h HostType) MarshalText() ([]byte, error) {
	if !h.Valid() {
		return nil, fmt.Errorf("invalid host type %d", int(h))
	}
	return []byte(h.String()), nil
}

// UnmarshalText decodes a host type from its manifest spelling.
func (h *HostType) UnmarshalText(text []byte) error {
	v, err := ParseHostType(string(text))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// ParseHostType parses the manifest spelling of a host type.
// The empty string parses as HostUndefined. Matching is case-insensitive and
// accepts "unittest" and "unit-test" as aliases of "unit_test".
func ParseHostType(s string) (HostType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "undefined":
		return HostUndefined, nil
	case "live":
		return HostLive, nil
	case "unit_test", "unittest", "unit-test":
		return HostUnitTest, nil
	default:
		return HostUndefined, fmt.Errorf("unknown host type %q: must be one of undefined, live, unit_test", s)
	}
}

// Category tags a convention so callers can select subsets of conventions.
type Category string

// Well-known categories.
const (
	CategoryApplication    Category = "Application"
	CategoryInfrastructure Category = "Infrastructure"
)

// DefaultCategory is assigned to entries that do not declare one.
const DefaultCategory = CategoryApplication

// Direction is the normalized direction of a dependency edge.
type Direction int

const (
	// DirectionDependsOn means "this type runs after the target type".
	DirectionDependsOn Direction = iota + 1
	// DirectionDependentOf means "this type runs before the target type".
	DirectionDependentOf
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case DirectionDependsOn:
		return "depends_on"
	case DirectionDependentOf:
		return "dependent_of"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// TypeID identifies a convention type.
//
// For Go types it is the package path qualified type name with pointer
// indirection stripped, so *Foo and Foo name the same convention type.
// Manifest-declared conventions use their declared name.
type TypeID string

// String implements fmt.Stringer.
func (t TypeID) String() string { return string(t) }

// TypeOf returns the TypeID of the Go type T.
func TypeOf[T any]() TypeID {
	return typeIDFromReflect(reflect.TypeFor[T]())
}

// TypeIDOf returns the TypeID of the dynamic type of v.
// Values implementing Typed report their own identity.
func TypeIDOf(v any) TypeID {
	if t, ok := v.(Typed); ok {
		return t.ConventionType()
	}
	if v == nil {
		return ""
	}
	return typeIDFromReflect(reflect.TypeOf(v))
}

func typeIDFromReflect(t reflect.Type) TypeID {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Name() == "" || t.PkgPath() == "" {
		return TypeID(t.String())
	}
	return TypeID(t.PkgPath() + "." + t.Name())
}

// Typed is implemented by convention values whose type identity is not their
// Go type (for example conventions compiled from a manifest).
type Typed interface {
	ConventionType() TypeID
}

// Dependency is one declared relationship between two convention types.
type Dependency struct {
	Direction Direction `json:"direction"`
	Target    TypeID    `json:"target"`
}

// String renders the dependency as "depends_on(T)" or "dependent_of(T)".
func (d Dependency) String() string {
	return fmt.Sprintf("%s(%s)", d.Direction, d.Target)
}

// After declares that the convention runs after T.
func After[T any]() Dependency { return AfterID(TypeOf[T]()) }

// DependsOn declares that the convention depends on T. Same as After.
func DependsOn[T any]() Dependency { return DependsOnID(TypeOf[T]()) }

// Before declares that the convention runs before T.
func Before[T any]() Dependency { return BeforeID(TypeOf[T]()) }

// DependentOf declares that T depends on the convention. Same as Before.
func DependentOf[T any]() Dependency { return DependentOfID(TypeOf[T]()) }

// AfterID is After for a type known only by its TypeID.
func AfterID(id TypeID) Dependency {
	return Dependency{Direction: DirectionDependsOn, Target: id}
}

// DependsOnID is DependsOn for a type known only by its TypeID.
func DependsOnID(id TypeID) Dependency {
	return Dependency{Direction: DirectionDependsOn, Target: id}
}

// BeforeID is Before for a type known only by its TypeID.
func BeforeID(id TypeID) Dependency {
	return Dependency{Direction: DirectionDependentOf, Target: id}
}

// DependentOfID is DependentOf for a type known only by its TypeID.
func DependentOfID(id TypeID) Dependency {
	return Dependency{Direction: DirectionDependentOf, Target: id}
}

// Metadata is what a convention declares about itself.
//
// It is the Go rendition of convention attributes: priority, host type
// applicability, category and dependency edges.
type Metadata struct {
	Priority     int          `json:"priority"`
	HostType     HostType     `json:"host_type"`
	Category     Category     `json:"category"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// Describer is implemented by conventions that declare metadata.
type Describer interface {
	ConventionMetadata() Metadata
}
