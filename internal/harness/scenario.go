package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/roach88/convene/internal/ir"
)

// Scenario defines a conformance test scenario.
// A scenario declares contributions, resolves them for one host type and
// asserts on the resulting order.
type Scenario struct {
	// Name uniquely identifies this scenario.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Host is the requested host type. Empty means undefined.
	Host string `yaml:"host,omitempty"`

	// Categories restricts the provider to these categories. Empty allows all.
	Categories []string `yaml:"categories,omitempty"`

	// Specs lists paths to CUE manifests whose conventions are declared after
	// the inline ones. Paths are relative to the scenario file location.
	Specs []string `yaml:"specs,omitempty"`

	// Conventions declares conventions inline.
	Conventions []ConventionDef `yaml:"conventions,omitempty"`

	// Delegates declares delegate funcs.
	Delegates []DelegateDef `yaml:"delegates,omitempty"`

	// Scanned, Prepended and Appended name the contributions of each list.
	// A name selects a delegate or every convention declared with that name.
	Scanned   []string `yaml:"scanned,omitempty"`
	Prepended []string `yaml:"prepended,omitempty"`
	Appended  []string `yaml:"appended,omitempty"`

	// Expect validates the overall outcome.
	Expect Expect `yaml:"expect"`

	// Assertions validate properties of the resolved order.
	// Supported types: order_before, contains, excludes, position
	Assertions []Assertion `yaml:"assertions,omitempty"`
}

// ConventionDef declares one convention by name.
type ConventionDef struct {
	Name        string   `yaml:"name"`
	Priority    int      `yaml:"priority,omitempty"`
	Host        string   `yaml:"host,omitempty"`
	Category    string   `yaml:"category,omitempty"`
	Source      string   `yaml:"source,omitempty"`
	After       []string `yaml:"after,omitempty"`
	Before      []string `yaml:"before,omitempty"`
	DependsOn   []string `yaml:"depends_on,omitempty"`
	DependentOf []string `yaml:"dependent_of,omitempty"`
}

// DelegateDef declares one delegate func.
type DelegateDef struct {
	// Name labels the delegate and is how lists refer to it.
	Name string `yaml:"name"`

	// Priority orders the delegate. Bare delegates cannot set it.
	Priority int `yaml:"priority,omitempty"`

	// Bare contributes the func without metadata, so the provider labels it
	// by position and assigns the default delegate priority.
	Bare bool `yaml:"bare,omitempty"`
}

// Expect specifies the expected outcome of a resolution.
type Expect struct {
	// Order is the expected full resolved order.
	Order []string `yaml:"order,omitempty"`

	// Error is the expected lower-case error code, e.g. cyclic_dependency.
	Error string `yaml:"error,omitempty"`

	// Cycle is the expected cycle path reported with the error.
	Cycle []string `yaml:"cycle,omitempty"`
}

// Assertion validates one property of the resolved order.
type Assertion struct {
	// Type is the assertion type.
	Type string `yaml:"type"`

	// First and Then are used by order_before.
	First string `yaml:"first,omitempty"`
	Then  string `yaml:"then,omitempty"`

	// Names is used by contains and excludes.
	Names []string `yaml:"names,omitempty"`

	// Name and Index are used by position.
	Name  string `yaml:"name,omitempty"`
	Index *int   `yaml:"index,omitempty"`
}

// Assertion type constants
const (
	AssertOrderBefore = "order_before"
	AssertContains    = "contains"
	AssertExcludes    = "excludes"
	AssertPosition    = "position"
)

// LoadScenario loads and validates a scenario from a YAML file.
// Spec paths are resolved relative to the scenario file directory.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath loads a scenario, resolving spec paths against
// basePath.
//
// Unknown fields are rejected, so a typo in a scenario fails loudly instead
// of being silently ignored.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario file: %w", err)
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	var scenario Scenario
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("parsing scenario YAML: %w", err)
	}

	for i, spec := range scenario.Specs {
		if !filepath.IsAbs(spec) {
			scenario.Specs[i] = filepath.Join(basePath, spec)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks that the scenario is internally consistent.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if _, err := ir.ParseHostType(s.Host); err != nil {
		return fmt.Errorf("host: %w", err)
	}

	defined := make(map[string]bool)
	for i, c := range s.Conventions {
		if c.Name == "" {
			return fmt.Errorf("conventions[%d]: name is required", i)
		}
		if _, err := ir.ParseHostType(c.Host); err != nil {
			return fmt.Errorf("conventions[%d].host: %w", i, err)
		}
		if _, err := ir.ParseSource(c.Source); err != nil {
			return fmt.Errorf("conventions[%d].source: %w", i, err)
		}
		defined[c.Name] = true
	}

	for i, d := range s.Delegates {
		if d.Name == "" {
			return fmt.Errorf("delegates[%d]: name is required", i)
		}
		if defined[d.Name] {
			return fmt.Errorf("delegates[%d]: name %q is already defined", i, d.Name)
		}
		if d.Bare && d.Priority != 0 {
			return fmt.Errorf("delegates[%d]: bare delegate %q cannot set a priority", i, d.Name)
		}
		defined[d.Name] = true
	}

	// Spec conventions are only known after compilation, so list names are
	// checked against them at run time.
	if len(s.Specs) == 0 {
		for _, l := range s.lists() {
			for i, name := range l.names {
				if !defined[name] {
					return fmt.Errorf("%s[%d]: unknown contribution %q", l.source, i, name)
				}
			}
		}
	}

	if len(s.Expect.Order) > 0 && s.Expect.Error != "" {
		return fmt.Errorf("expect: order and error are mutually exclusive")
	}
	if len(s.Expect.Cycle) > 0 && s.Expect.Error == "" {
		return fmt.Errorf("expect: cycle requires error")
	}

	for i, a := range s.Assertions {
		if err := validateAssertion(a); err != nil {
			return fmt.Errorf("assertions[%d]: %w", i, err)
		}
	}

	return nil
}

// validateAssertion checks that an assertion carries the fields its type needs.
func validateAssertion(a Assertion) error {
	switch a.Type {
	case AssertOrderBefore:
		if a.First == "" || a.Then == "" {
			return fmt.Errorf("order_before requires first and then")
		}
	case AssertContains, AssertExcludes:
		if len(a.Names) == 0 {
			return fmt.Errorf("%s requires names", a.Type)
		}
	case AssertPosition:
		if a.Name == "" || a.Index == nil {
			return fmt.Errorf("position requires name and index")
		}
	case "":
		return fmt.Errorf("type is required")
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
	return nil
}

type namedList struct {
	source ir.Source
	names  []string
}

func (s *Scenario) lists() []namedList {
	return []namedList{
		{ir.SourceScanned, s.Scanned},
		{ir.SourcePrepended, s.Prepended},
		{ir.SourceAppended, s.Appended},
	}
}

// hasLists reports whether the scenario names its contribution lists.
func (s *Scenario) hasLists() bool {
	return len(s.Scanned)+len(s.Prepended)+len(s.Appended) > 0
}

// HostType returns the parsed requested host type.
func (s *Scenario) HostType() ir.HostType {
	h, _ := ir.ParseHostType(s.Host)
	return h
}

// CategoryList returns the requested categories.
func (s *Scenario) CategoryList() []ir.Category {
	out := make([]ir.Category, len(s.Categories))
	for i, c := range s.Categories {
		out[i] = ir.Category(c)
	}
	return out
}

// Declared converts the definition into a declared convention.
func (c ConventionDef) Declared() ir.Declared {
	host, _ := ir.ParseHostType(c.Host)
	source, _ := ir.ParseSource(c.Source)
	return ir.Declared{
		Name:        c.Name,
		Priority:    c.Priority,
		HostType:    host,
		Category:    ir.Category(c.Category),
		Source:      source,
		After:       c.After,
		Before:      c.Before,
		DependsOn:   c.DependsOn,
		DependentOf: c.DependentOf,
	}
}
