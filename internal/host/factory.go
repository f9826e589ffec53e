package host

import "github.com/roach88/convene/internal/ir"

// ConventionFactory supplies the scanned conventions of an application.
// It replaces discovery: the application lists its conventions explicitly.
type ConventionFactory interface {
	Conventions(host ir.HostType) []any
}

// FactoryFunc adapts a func to ConventionFactory.
type FactoryFunc func(host ir.HostType) []any

// Conventions implements ConventionFactory.
func (f FactoryFunc) Conventions(host ir.HostType) []any { return f(host) }

// Static returns a factory that always supplies the given contributions.
func Static(contributions ...any) ConventionFactory {
	return FactoryFunc(func(ir.HostType) []any { return contributions })
}
