package harness

import (
	"fmt"
	"slices"
	"strings"
)

// AssertionError is returned when an assertion fails.
// It includes the resolved order to help debug the failure.
type AssertionError struct {
	Type     string   // Assertion type for categorization
	Expected string   // Human-readable expected outcome
	Actual   string   // Human-readable actual outcome
	Order    []string // Full resolved order for context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	if len(e.Order) > 0 {
		fmt.Fprintf(&buf, "\nResolved order (%d entries):\n", len(e.Order))
		for i, name := range e.Order {
			fmt.Fprintf(&buf, "  [%d] %s\n", i, name)
		}
	}

	return buf.String()
}

// EvaluateAssertions evaluates all assertions against the result.
// Returns a slice of error messages for failed assertions.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errors []string

	for i, assertion := range assertions {
		var err error

		switch assertion.Type {
		case AssertOrderBefore:
			err = assertOrderBefore(result.Order, assertion)
		case AssertContains:
			err = assertContains(result.Order, assertion)
		case AssertExcludes:
			err = assertExcludes(result.Order, assertion)
		case AssertPosition:
			err = assertPosition(result.Order, assertion)
		default:
			err = fmt.Errorf("assertion[%d]: unknown assertion type %q", i, assertion.Type)
		}

		if err != nil {
			errors = append(errors, err.Error())
		}
	}

	return errors
}

// assertOrderBefore checks that First appears before Then.
// Both must be present.
func assertOrderBefore(order []string, assertion Assertion) error {
	first := slices.Index(order, assertion.First)
	then := slices.Index(order, assertion.Then)

	switch {
	case first < 0:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", assertion.First, assertion.Then),
			Actual:   fmt.Sprintf("%s not found", assertion.First),
			Order:    order,
		}
	case then < 0:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", assertion.First, assertion.Then),
			Actual:   fmt.Sprintf("%s not found", assertion.Then),
			Order:    order,
		}
	case first >= then:
		return &AssertionError{
			Type:     AssertOrderBefore,
			Expected: fmt.Sprintf("%s before %s", assertion.First, assertion.Then),
			Actual:   fmt.Sprintf("%s at %d, %s at %d", assertion.First, first, assertion.Then, then),
			Order:    order,
		}
	}
	return nil
}

// assertContains checks that every name appears in the order.
func assertContains(order []string, assertion Assertion) error {
	var missing []string
	for _, name := range assertion.Names {
		if !slices.Contains(order, name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &AssertionError{
			Type:     AssertContains,
			Expected: fmt.Sprintf("order containing %v", assertion.Names),
			Actual:   fmt.Sprintf("missing %v", missing),
			Order:    order,
		}
	}
	return nil
}

// assertExcludes checks that no name appears in the order.
func assertExcludes(order []string, assertion Assertion) error {
	var present []string
	for _, name := range assertion.Names {
		if slices.Contains(order, name) {
			present = append(present, name)
		}
	}
	if len(present) > 0 {
		return &AssertionError{
			Type:     AssertExcludes,
			Expected: fmt.Sprintf("order excluding %v", assertion.Names),
			Actual:   fmt.Sprintf("found %v", present),
			Order:    order,
		}
	}
	return nil
}

// assertPosition checks that Name sits at Index.
func assertPosition(order []string, assertion Assertion) error {
	if assertion.Index == nil {
		return fmt.Errorf("position assertion requires index")
	}
	want := *assertion.Index
	got := slices.Index(order, assertion.Name)
	if got != want {
		actual := fmt.Sprintf("at %d", got)
		if got < 0 {
			actual = "not found"
		}
		return &AssertionError{
			Type:     AssertPosition,
			Expected: fmt.Sprintf("%s at %d", assertion.Name, want),
			Actual:   actual,
			Order:    order,
		}
	}
	return nil
}
