package compose

import (
	"fmt"
	"reflect"

	"github.com/roach88/convene/internal/ir"
)

// Source supplies ordered sequences. *engine.Provider implements it.
type Source interface {
	GetAll(host ir.HostType) (*ir.Sequence, error)
}

// Invocation describes one entry about to be applied.
type Invocation struct {
	// Index is the position of the entry in the resolved sequence.
	Index int

	// Entry is the entry being applied.
	Entry *ir.Entry
}

// Observer is called before every invocation.
type Observer func(Invocation)

// Composer invokes the C conventions and D delegates of a sequence against
// a context of type Ctx.
type Composer[Ctx, C, D any] struct {
	// Convention applies one convention to the context.
	Convention func(C, Ctx) error

	// Delegate applies one delegate to the context.
	Delegate func(D, Ctx) error

	// Observer, if set, sees every applied entry before it runs.
	Observer Observer
}

// Register resolves the sequence of src for host and applies it to ctx.
func (c Composer[Ctx, C, D]) Register(src Source, host ir.HostType, ctx Ctx) error {
	seq, err := src.GetAll(host)
	if err != nil {
		return err
	}
	return c.Apply(seq, ctx)
}

// Apply applies an already resolved sequence to ctx.
//
// A payload that matches but has no corresponding func on the Composer is
// skipped.
func (c Composer[Ctx, C, D]) Apply(seq *ir.Sequence, ctx Ctx) error {
	for i := 0; i < seq.Len(); i++ {
		e := seq.EntryAt(i)
		payload := e.Payload()

		if e.IsDelegate() {
			fn, ok := ir.AsDelegate[D](payload)
			if !ok || c.Delegate == nil {
				continue
			}
			c.observe(i, e)
			if err := c.Delegate(fn, ctx); err != nil {
				return err
			}
			continue
		}

		conv, ok := payload.(C)
		if !ok || c.Convention == nil {
			continue
		}
		c.observe(i, e)
		if err := c.Convention(conv, ctx); err != nil {
			return err
		}
	}
	return nil
}

func (c Composer[Ctx, C, D]) observe(i int, e *ir.Entry) {
	if c.Observer != nil {
		c.Observer(Invocation{Index: i, Entry: e})
	}
}

// String implements fmt.Stringer.
func (c Composer[Ctx, C, D]) String() string {
	return fmt.Sprintf("Composer[%s, %s, %s]", reflect.TypeFor[Ctx](), reflect.TypeFor[C](), reflect.TypeFor[D]())
}
