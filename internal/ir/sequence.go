package ir

import (
	"iter"
	"slices"
)

// Sequence is an immutable, ordered view of resolved entries.
//
// A provider builds one Sequence per host type and hands the same pointer to
// every caller. Accessors never expose the backing slices.
type Sequence struct {
	entries []*Entry
}

// NewSequence builds a Sequence from entries in their final order.
// The slice is copied.
func NewSequence(entries []*Entry) *Sequence {
	return &Sequence{entries: slices.Clone(entries)}
}

// Len returns the number of items.
func (s *Sequence) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// At returns the payload at position i.
func (s *Sequence) At(i int) any { return s.entries[i].Payload() }

// EntryAt returns the entry at position i.
func (s *Sequence) EntryAt(i int) *Entry { return s.entries[i] }

// Items returns a copy of the payloads in order.
func (s *Sequence) Items() []any {
	items := make([]any, s.Len())
	for i := range items {
		items[i] = s.entries[i].Payload()
	}
	return items
}

// Entries returns a copy of the entries in order.
func (s *Sequence) Entries() []*Entry {
	if s == nil {
		return nil
	}
	return slices.Clone(s.entries)
}

// Names returns the display name of every entry in order.
func (s *Sequence) Names() []string {
	names := make([]string, s.Len())
	for i := range names {
		names[i] = s.entries[i].Name()
	}
	return names
}

// All iterates over positions and payloads.
func (s *Sequence) All() iter.Seq2[int, any] {
	return func(yield func(int, any) bool) {
		for i := 0; i < s.Len(); i++ {
			if !yield(i, s.entries[i].Payload()) {
				return
			}
		}
	}
}

// Filter returns a new Sequence holding the entries for which keep is true.
func (s *Sequence) Filter(keep func(*Entry) bool) *Sequence {
	out := make([]*Entry, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		if keep(s.entries[i]) {
			out = append(out, s.entries[i])
		}
	}
	return &Sequence{entries: out}
}
