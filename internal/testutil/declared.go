// Package testutil provides shared fixtures for tests.
//
// Convention builds manifest-style declarations without spelling out every
// ir.Declared field:
//
//	decl := testutil.Convention("Logging", testutil.After("Configuration"), testutil.Priority(2))
package testutil

import "github.com/roach88/convene/internal/ir"

// Option sets one field of a declared convention.
type Option func(*ir.Declared)

// Convention builds a declared convention whose type identity is name.
func Convention(name string, opts ...Option) *ir.Declared {
	d := &ir.Declared{Name: name}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Manifest dereferences decls into a manifest slice, in order.
func Manifest(decls ...*ir.Declared) []ir.Declared {
	out := make([]ir.Declared, len(decls))
	for i, d := range decls {
		out[i] = *d
	}
	return out
}

func After(names ...string) Option {
	return func(d *ir.Declared) { d.After = append(d.After, names...) }
}

func Before(names ...string) Option {
	return func(d *ir.Declared) { d.Before = append(d.Before, names...) }
}

func DependsOn(names ...string) Option {
	return func(d *ir.Declared) { d.DependsOn = append(d.DependsOn, names...) }
}

func DependentOf(names ...string) Option {
	return func(d *ir.Declared) { d.DependentOf = append(d.DependentOf, names...) }
}

func Priority(p int) Option {
	return func(d *ir.Declared) { d.Priority = p }
}

func Host(h ir.HostType) Option {
	return func(d *ir.Declared) { d.HostType = h }
}

func Category(c ir.Category) Option {
	return func(d *ir.Declared) { d.Category = c }
}

// Source places the convention in a contribution list other than scanned.
func Source(s ir.Source) Option {
	return func(d *ir.Declared) { d.Source = s }
}
