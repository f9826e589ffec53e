package compiler

import (
	"fmt"
	"slices"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/convene/internal/ir"
)

// Manifest fields of a convention declaration.
const (
	fieldPriority    = "priority"
	fieldHost        = "host"
	fieldCategory    = "category"
	fieldSource      = "source"
	fieldAfter       = "after"
	fieldBefore      = "before"
	fieldDependsOn   = "depends_on"
	fieldDependentOf = "dependent_of"
)

var knownFields = []string{
	fieldPriority, fieldHost, fieldCategory, fieldSource,
	fieldAfter, fieldBefore, fieldDependsOn, fieldDependentOf,
}

// CompileConvention parses a CUE value into a declared convention.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the convention struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`convention: Logging: { after: ["Configuration"] }`)
//	decl, err := CompileConvention(v.LookupPath(cue.ParsePath("convention.Logging")))
func CompileConvention(v cue.Value) (*ir.Declared, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	decl := &ir.Declared{}

	// Convention name is the struct label (the path selector)
	selectors := v.Path().Selectors()
	if len(selectors) > 0 {
		decl.Name = labelName(selectors[len(selectors)-1])
	}

	iter, err := v.Fields()
	if err != nil {
		return nil, &CompileError{
			Field:   "convention",
			Message: "convention must be a struct",
			Pos:     v.Pos(),
		}
	}
	for iter.Next() {
		if !slices.Contains(knownFields, iter.Label()) {
			return nil, &CompileError{
				Field:   iter.Label(),
				Message: fmt.Sprintf("unknown field %q", iter.Label()),
				Pos:     iter.Value().Pos(),
			}
		}
	}

	if p := v.LookupPath(cue.ParsePath(fieldPriority)); p.Exists() {
		n, err := p.Int64()
		if err != nil {
			return nil, &CompileError{
				Field:   fieldPriority,
				Message: "priority must be an integer",
				Pos:     p.Pos(),
			}
		}
		decl.Priority = int(n)
	}

	if h := v.LookupPath(cue.ParsePath(fieldHost)); h.Exists() {
		s, err := stringField(h, fieldHost)
		if err != nil {
			return nil, err
		}
		decl.HostType, err = ir.ParseHostType(s)
		if err != nil {
			return nil, &CompileError{Field: fieldHost, Message: err.Error(), Pos: h.Pos()}
		}
	}

	if c := v.LookupPath(cue.ParsePath(fieldCategory)); c.Exists() {
		s, err := stringField(c, fieldCategory)
		if err != nil {
			return nil, err
		}
		decl.Category = ir.Category(s)
	}

	if s := v.LookupPath(cue.ParsePath(fieldSource)); s.Exists() {
		str, err := stringField(s, fieldSource)
		if err != nil {
			return nil, err
		}
		decl.Source, err = ir.ParseSource(str)
		if err != nil {
			return nil, &CompileError{Field: fieldSource, Message: err.Error(), Pos: s.Pos()}
		}
	}

	if decl.After, err = stringList(v, fieldAfter); err != nil {
		return nil, err
	}
	if decl.Before, err = stringList(v, fieldBefore); err != nil {
		return nil, err
	}
	if decl.DependsOn, err = stringList(v, fieldDependsOn); err != nil {
		return nil, err
	}
	if decl.DependentOf, err = stringList(v, fieldDependentOf); err != nil {
		return nil, err
	}

	return decl, nil
}

// CompileManifest compiles every convention under the "convention" struct
// of v, in declaration order. It returns the first compile error.
func CompileManifest(v cue.Value) ([]ir.Declared, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	conventions := v.LookupPath(cue.ParsePath("convention"))
	if !conventions.Exists() {
		return nil, nil
	}

	iter, err := conventions.Fields()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var decls []ir.Declared
	for iter.Next() {
		decl, err := CompileConvention(iter.Value())
		if err != nil {
			return nil, err
		}
		decls = append(decls, *decl)
	}
	return decls, nil
}

func labelName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

func stringField(v cue.Value, field string) (string, error) {
	s, err := v.String()
	if err != nil {
		return "", &CompileError{
			Field:   field,
			Message: field + " must be a string",
			Pos:     v.Pos(),
		}
	}
	return s, nil
}

// stringList reads an optional list of convention names.
func stringList(v cue.Value, field string) ([]string, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, &CompileError{
			Field:   field,
			Message: field + " must be a list of convention names",
			Pos:     listVal.Pos(),
		}
	}

	var names []string
	for iter.Next() {
		name, err := iter.Value().String()
		if err != nil {
			return nil, &CompileError{
				Field:   field,
				Message: field + " entries must be strings",
				Pos:     iter.Value().Pos(),
			}
		}
		names = append(names, name)
	}
	return names, nil
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	firstErr := errs[0]
	positions := errors.Positions(firstErr)
	if len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: firstErr.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
