package ir

import (
	"fmt"
	"reflect"
	"slices"
)

// Kind is the payload tag of an Entry.
type Kind int

const (
	KindNone Kind = iota
	KindConvention
	KindDelegate
)

// String returns the lower-case kind name.
func (k Kind) String() string {
	switch k {
	case KindConvention:
		return "convention"
	case KindDelegate:
		return "delegate"
	default:
		return "none"
	}
}

// Entry is one unit of configuration behavior: a convention value or a
// delegate func, plus the metadata that places it in an ordering.
//
// Entries are immutable. The payload kind is resolved once at construction
// and never re-inspected.
type Entry struct {
	payload any
	kind    Kind
	typ     TypeID
	label   string
	meta    Metadata
}

// NewEntry wraps a convention value with precomputed metadata.
// Returns nil for nil or typed-nil payloads. A func payload is treated as a
// delegate, and its metadata is reduced to the priority (delegates cannot
// declare dependencies, host types or categories).
func NewEntry(payload any, meta Metadata) *Entry {
	if isNil(payload) {
		return nil
	}
	if isFunc(payload) {
		return newDelegateEntry(payload, meta.Priority, "")
	}
	if meta.Category == "" {
		meta.Category = DefaultCategory
	}
	return &Entry{
		payload: payload,
		kind:    KindConvention,
		typ:     TypeIDOf(payload),
		meta: Metadata{
			Priority:     meta.Priority,
			HostType:     meta.HostType,
			Category:     meta.Category,
			Dependencies: slices.Clone(meta.Dependencies),
		},
	}
}

// DelegateOption configures a delegate Entry built with Delegate.
type DelegateOption func(*delegateConfig)

type delegateConfig struct {
	priority int
	label    string
}

// WithPriority sets the delegate priority.
func WithPriority(p int) DelegateOption {
	return func(c *delegateConfig) { c.priority = p }
}

// WithLabel names the delegate in diagnostics and recorded resolutions.
func WithLabel(label string) DelegateOption {
	return func(c *delegateConfig) { c.label = label }
}

// Delegate wraps a func value as a delegate Entry.
// Returns nil if fn is nil. Panics if fn is not a func, since that is a
// programming error at the registration site.
func Delegate(fn any, opts ...DelegateOption) *Entry {
	if isNil(fn) {
		return nil
	}
	if !isFunc(fn) {
		panic(fmt.Sprintf("ir: Delegate called with non-func %T", fn))
	}
	var cfg delegateConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return newDelegateEntry(fn, cfg.priority, cfg.label)
}

func newDelegateEntry(fn any, priority int, label string) *Entry {
	return &Entry{
		payload: fn,
		kind:    KindDelegate,
		typ:     TypeIDOf(fn),
		label:   label,
		meta: Metadata{
			Priority: priority,
			HostType: HostUndefined,
			Category: DefaultCategory,
		},
	}
}

// FromContribution wraps a raw contribution in an Entry.
//
// Resolution order:
//   - nil and typed-nil values are sentinels: (nil, false)
//   - an *Entry is reused as is
//   - a func value is a bare delegate configured by opts
//   - a Describer supplies its own metadata
//   - any other value is a convention with default metadata
func FromContribution(c any, opts ...DelegateOption) (*Entry, bool) {
	if isNil(c) {
		return nil, false
	}
	if e, ok := c.(*Entry); ok {
		return e, e.kind != KindNone
	}
	if isFunc(c) {
		return Delegate(c, opts...), true
	}
	if d, ok := c.(Describer); ok {
		return NewEntry(c, d.ConventionMetadata()), true
	}
	return NewEntry(c, Metadata{}), true
}

// Payload returns the wrapped convention value or delegate func.
func (e *Entry) Payload() any { return e.payload }

// Kind returns the payload tag.
func (e *Entry) Kind() Kind { return e.kind }

// IsDelegate reports whether the payload is a delegate.
func (e *Entry) IsDelegate() bool { return e.kind == KindDelegate }

// Type returns the convention type identity.
func (e *Entry) Type() TypeID { return e.typ }

// Label returns the delegate label, or "" if none was given.
func (e *Entry) Label() string { return e.label }

// Name returns a display name: the label if set, else the type identity.
func (e *Entry) Name() string {
	if e.label != "" {
		return e.label
	}
	return string(e.typ)
}

// Priority returns the entry priority (lower sorts earlier).
func (e *Entry) Priority() int { return e.meta.Priority }

// HostType returns the host type the entry applies to.
func (e *Entry) HostType() HostType { return e.meta.HostType }

// Category returns the entry category.
func (e *Entry) Category() Category { return e.meta.Category }

// Dependencies returns a copy of the declared dependency edges.
func (e *Entry) Dependencies() []Dependency { return slices.Clone(e.meta.Dependencies) }

// HasDependencies reports whether the entry declares any edge.
func (e *Entry) HasDependencies() bool { return len(e.meta.Dependencies) > 0 }

// Metadata returns a copy of the entry metadata.
func (e *Entry) Metadata() Metadata {
	m := e.meta
	m.Dependencies = slices.Clone(e.meta.Dependencies)
	return m
}

// AppliesTo reports whether the entry is retained for a requested host type.
func (e *Entry) AppliesTo(host HostType) bool {
	return e.meta.HostType == HostUndefined || e.meta.HostType == host
}

// String implements fmt.Stringer.
func (e *Entry) String() string {
	return fmt.Sprintf("%s %s (priority=%d, host=%s, category=%s)",
		e.kind, e.Name(), e.meta.Priority, e.meta.HostType, e.meta.Category)
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Map, reflect.Slice, reflect.Interface, reflect.Chan:
		return rv.IsNil()
	}
	return false
}

// AsDelegate converts a delegate payload to the func type D. Besides a
// payload of type D itself, an unnamed func with D's signature (a func
// literal) converts too.
func AsDelegate[D any](payload any) (D, bool) {
	var zero D
	if payload == nil {
		return zero, false
	}
	want := reflect.TypeFor[D]()
	v := reflect.ValueOf(payload)
	if v.Type() == want {
		return payload.(D), true
	}
	if want.Kind() != reflect.Func || !v.Type().AssignableTo(want) {
		return zero, false
	}
	return v.Convert(want).Interface().(D), true
}

func isFunc(v any) bool {
	return reflect.TypeOf(v).Kind() == reflect.Func
}
