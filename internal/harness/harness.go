package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/convene/internal/compiler"
	"github.com/roach88/convene/internal/compose"
	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
	"github.com/roach88/convene/internal/store"
)

// Step is the delegate type scenarios contribute. A step records its
// definition name into the result when applied.
type Step func(*Result) error

// Harness is the test execution engine.
// It resolves scenarios against a store with deterministic resolution IDs.
type Harness struct {
	store  *store.Store
	ids    store.IDGenerator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation, and its
// resolution is recorded under the ID "scenario:<name>".
//
// Execution flow:
// 1. Compile inline conventions and CUE specs into declarations
// 2. Assemble the scanned, prepended and appended lists
// 3. Resolve the requested host view
// 4. Apply the view with a recording composer
// 5. Persist the resolution and read it back
// 6. Check the expectation and evaluate assertions
//
// A returned error means the scenario could not be executed. A scenario that
// ran but failed its checks is reported through Result.Pass.
func Run(scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h := &Harness{
		store:  st,
		ids:    store.NewFixedGenerator("scenario:" + scenario.Name),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}

	return h.run(context.Background(), scenario)
}

func (h *Harness) run(ctx context.Context, scenario *Scenario) (*Result, error) {
	decls, err := loadDeclared(scenario)
	if err != nil {
		return nil, err
	}

	scanned, prepended, appended, err := contributions(scenario, decls)
	if err != nil {
		return nil, err
	}

	host := scenario.HostType()
	categories := scenario.CategoryList()
	provider := engine.NewProvider(host, categories, scanned, prepended, appended,
		engine.WithLogger(h.logger))

	result := NewResult()
	seq, resolveErr := provider.GetAll(host)
	if resolveErr != nil {
		recordFailure(result, resolveErr)
	} else if err := apply(seq, result); err != nil {
		return nil, err
	}

	if err := h.persist(ctx, decls, host, categories, seq, resolveErr, result); err != nil {
		return nil, err
	}

	checkExpect(scenario.Expect, result)
	for _, msg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(msg)
	}

	return result, nil
}

// loadDeclared returns the inline conventions followed by those compiled
// from the scenario's CUE specs, in declaration order.
func loadDeclared(scenario *Scenario) ([]ir.Declared, error) {
	decls := make([]ir.Declared, 0, len(scenario.Conventions))
	for _, c := range scenario.Conventions {
		decls = append(decls, c.Declared())
	}
	if len(scenario.Specs) == 0 {
		return decls, nil
	}

	cctx := cuecontext.New()
	for _, path := range scenario.Specs {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading spec: %w", err)
		}
		v := cctx.CompileBytes(data, cue.Filename(path))
		if err := v.Err(); err != nil {
			return nil, fmt.Errorf("compiling spec %s: %w", path, err)
		}
		compiled, err := compiler.CompileManifest(v)
		if err != nil {
			return nil, fmt.Errorf("compiling spec %s: %w", path, err)
		}
		decls = append(decls, compiled...)
	}
	return decls, nil
}

// contributions assembles the provider input lists.
//
// With explicit lists each name contributes a delegate or every convention
// declared with that name, and the conventions' own sources are ignored.
// Otherwise conventions follow their source and delegates are scanned last.
func contributions(scenario *Scenario, decls []ir.Declared) (scanned, prepended, appended []any, err error) {
	delegates := make(map[string]any, len(scenario.Delegates))
	ordered := make([]any, 0, len(scenario.Delegates))
	for _, d := range scenario.Delegates {
		c := newDelegate(d)
		delegates[d.Name] = c
		ordered = append(ordered, c)
	}

	if !scenario.hasLists() {
		scanned, prepended, appended = ir.Contributions(decls)
		return append(scanned, ordered...), prepended, appended, nil
	}

	byName := make(map[string][]any, len(decls))
	for i := range decls {
		byName[decls[i].Name] = append(byName[decls[i].Name], &decls[i])
	}

	lists := make(map[ir.Source][]any, 3)
	for _, l := range scenario.lists() {
		out := make([]any, 0, len(l.names))
		for i, name := range l.names {
			if c, ok := delegates[name]; ok {
				out = append(out, c)
				continue
			}
			convs, ok := byName[name]
			if !ok {
				return nil, nil, nil, fmt.Errorf("%s[%d]: unknown contribution %q", l.source, i, name)
			}
			out = append(out, convs...)
		}
		lists[l.source] = out
	}
	return lists[ir.SourceScanned], lists[ir.SourcePrepended], lists[ir.SourceAppended], nil
}

func newDelegate(d DelegateDef) any {
	name := d.Name
	var step Step = func(r *Result) error {
		r.Applied = append(r.Applied, name)
		return nil
	}
	if d.Bare {
		return step
	}
	return ir.Delegate(step, ir.WithPriority(d.Priority), ir.WithLabel(d.Name))
}

// apply runs the resolved sequence through a recording composer.
func apply(seq *ir.Sequence, result *Result) error {
	result.Order = seq.Names()

	recorder := compose.Composer[*Result, *ir.Declared, Step]{
		Convention: func(d *ir.Declared, r *Result) error {
			r.Applied = append(r.Applied, d.Name)
			return nil
		},
		Delegate: func(s Step, r *Result) error {
			return s(r)
		},
		Observer: func(inv compose.Invocation) {
			result.AddTrace(inv.Index, inv.Entry.Name(), inv.Entry.Kind().String())
		},
	}
	if err := recorder.Apply(seq, result); err != nil {
		return fmt.Errorf("applying conventions: %w", err)
	}

	if len(result.Trace) != seq.Len() {
		result.AddError(fmt.Sprintf("composer applied %d of %d entries", len(result.Trace), seq.Len()))
	}
	return nil
}

func recordFailure(result *Result, err error) {
	result.Error = err.Error()
	var ce *engine.ConfigError
	if errors.As(err, &ce) {
		result.ErrorCode = strings.ToLower(string(ce.Code))
		result.Cycle = slices.Clone(ce.Path)
	}
}

// persist records the resolution and verifies it reads back unchanged.
func (h *Harness) persist(
	ctx context.Context,
	decls []ir.Declared,
	host ir.HostType,
	categories []ir.Category,
	seq *ir.Sequence,
	resolveErr error,
	result *Result,
) error {
	manifestHash, err := ir.ManifestHash(decls)
	if err != nil {
		return err
	}

	r, err := store.NewResolution(manifestHash, host, categories, seq, resolveErr)
	if err != nil {
		return err
	}
	written, err := h.store.WriteResolution(ctx, h.ids, r)
	if err != nil {
		return fmt.Errorf("recording resolution: %w", err)
	}

	read, err := h.store.ReadResolution(ctx, written.ID)
	if err != nil {
		return fmt.Errorf("reading resolution %s: %w", written.ID, err)
	}
	if !slices.Equal(read.Names(), result.Order) {
		result.AddError(fmt.Sprintf("persisted order %v does not match resolved order %v", read.Names(), result.Order))
	}

	result.ResolutionID = read.ID
	result.OrderingHash = read.OrderingHash
	return nil
}

// checkExpect compares the outcome with the scenario expectation.
func checkExpect(expect Expect, result *Result) {
	if expect.Error == "" {
		if result.Error != "" {
			result.AddError(fmt.Sprintf("unexpected resolution error: %s", result.Error))
			return
		}
		if len(expect.Order) > 0 && !slices.Equal(expect.Order, result.Order) {
			result.AddError(fmt.Sprintf("order mismatch: expected %v, got %v", expect.Order, result.Order))
		}
		return
	}

	if result.Error == "" {
		result.AddError(fmt.Sprintf("expected error %s, got order %v", expect.Error, result.Order))
		return
	}
	if expect.Error != result.ErrorCode {
		result.AddError(fmt.Sprintf("error mismatch: expected %s, got %s (%s)", expect.Error, result.ErrorCode, result.Error))
	}
	if len(expect.Cycle) > 0 && !slices.Equal(expect.Cycle, result.Cycle) {
		result.AddError(fmt.Sprintf("cycle mismatch: expected %v, got %v", expect.Cycle, result.Cycle))
	}
}
