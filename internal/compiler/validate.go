package compiler

import (
	"fmt"
	"strings"

	"github.com/roach88/convene/internal/ir"
)

// Validation error codes (E200-E299)
const (
	ErrConventionNameEmpty = "E201" // name is required
	ErrInvalidHostType     = "E202" // host type outside the known set
	ErrInvalidSource       = "E203" // source outside the known set
	ErrUnknownDependency   = "E204" // dependency names no declared convention
	ErrSelfDependency      = "E205" // convention depends on itself
	ErrDuplicateConvention = "E206" // name declared twice
)

// ValidationError represents a declaration validation error.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks declared conventions against each other.
// Returns all errors found (does not fail-fast), in declaration order.
func Validate(decls []ir.Declared) []ValidationError {
	var errs []ValidationError

	declared := make(map[string]bool, len(decls))
	for _, d := range decls {
		declared[d.Name] = true
	}

	seen := make(map[string]bool, len(decls))
	for i, d := range decls {
		prefix := fmt.Sprintf("convention[%d]", i)
		if d.Name != "" {
			prefix = "convention." + d.Name
		}

		// E201: name is required
		if strings.TrimSpace(d.Name) == "" {
			errs = append(errs, ValidationError{
				Field:   prefix + ".name",
				Message: "convention name is required and must be non-empty",
				Code:    ErrConventionNameEmpty,
			})
		}

		// E206: duplicate name
		if d.Name != "" && seen[d.Name] {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("duplicate convention name: %q", d.Name),
				Code:    ErrDuplicateConvention,
			})
		}
		seen[d.Name] = true

		// E202: host type
		if !d.HostType.Valid() {
			errs = append(errs, ValidationError{
				Field:   prefix + ".host",
				Message: fmt.Sprintf("invalid host type %s", d.HostType),
				Code:    ErrInvalidHostType,
			})
		}

		// E203: source
		if d.Source < ir.SourceScanned || d.Source > ir.SourceAppended {
			errs = append(errs, ValidationError{
				Field:   prefix + ".source",
				Message: fmt.Sprintf("invalid source %s", d.Source),
				Code:    ErrInvalidSource,
			})
		}

		for _, edge := range []struct {
			field string
			names []string
		}{
			{fieldAfter, d.After},
			{fieldDependsOn, d.DependsOn},
			{fieldBefore, d.Before},
			{fieldDependentOf, d.DependentOf},
		} {
			for j, target := range edge.names {
				field := fmt.Sprintf("%s.%s[%d]", prefix, edge.field, j)

				// E205: self dependency
				if target == d.Name {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("convention %q cannot depend on itself", d.Name),
						Code:    ErrSelfDependency,
					})
					continue
				}

				// E204: unknown target
				if !declared[target] {
					errs = append(errs, ValidationError{
						Field:   field,
						Message: fmt.Sprintf("unknown convention %q", target),
						Code:    ErrUnknownDependency,
					})
				}
			}
		}
	}

	return errs
}
