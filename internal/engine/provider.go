package engine

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/roach88/convene/internal/ir"
)

// Provider resolves a bag of contributions into ordered sequences.
//
// Thread-safety model:
//   - the first GetAll, All, Entries or Get call resolves under a sync.Once
//   - every later call reads the memoized views without locking
//   - a resolution failure is memoized too and returned to every caller
type Provider struct {
	host          ir.HostType
	categories    []ir.Category
	contributions []any
	logger        *slog.Logger
	delegatePrio  int

	once  sync.Once
	views [len(hostSlots)]*ir.Sequence
	err   error
}

// hostSlots indexes the memoized views. It mirrors ir.HostTypes.
var hostSlots = [...]ir.HostType{ir.HostUndefined, ir.HostLive, ir.HostUnitTest}

// Option configures a Provider.
type Option func(*Provider)

// WithLogger sets the logger used for resolution diagnostics.
// Default: a logger that discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(p *Provider) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithDelegatePriority sets the priority given to bare delegate funcs.
// Delegates wrapped with ir.Delegate keep their own priority. Default: 0.
func WithDelegatePriority(priority int) Option {
	return func(p *Provider) {
		p.delegatePrio = priority
	}
}

// NewProvider creates a Provider over the given contributions.
//
// The working order is prepended, then scanned, then appended. Every input
// slice is copied, so later mutation by the caller has no effect. host is the
// default host type used by All. An empty categories list allows every
// category.
func NewProvider(
	host ir.HostType,
	categories []ir.Category,
	scanned, prepended, appended []any,
	opts ...Option,
) *Provider {
	contributions := make([]any, 0, len(prepended)+len(scanned)+len(appended))
	contributions = append(contributions, prepended...)
	contributions = append(contributions, scanned...)
	contributions = append(contributions, appended...)

	p := &Provider{
		host:          host,
		categories:    slices.Clone(categories),
		contributions: contributions,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(p)
	}

	return p
}

// HostType returns the default host type of the provider.
func (p *Provider) HostType() ir.HostType { return p.host }

// Categories returns a copy of the allowed categories.
func (p *Provider) Categories() []ir.Category { return slices.Clone(p.categories) }

// GetAll returns the ordered sequence for host.
//
// Repeated calls return the identical *ir.Sequence. A cyclic dependency
// yields a *ConfigError with code ErrCodeCyclicDependency, and every later
// call returns the same error.
func (p *Provider) GetAll(host ir.HostType) (*ir.Sequence, error) {
	p.once.Do(p.resolve)
	if p.err != nil {
		return nil, p.err
	}
	slot := slices.Index(hostSlots[:], host)
	if slot < 0 {
		return nil, newUnknownHostError(host)
	}
	return p.views[slot], nil
}

// All returns the ordered sequence for the provider's own host type.
func (p *Provider) All() (*ir.Sequence, error) {
	return p.GetAll(p.host)
}

// Entries returns the ordered entries for host.
func (p *Provider) Entries(host ir.HostType) ([]*ir.Entry, error) {
	seq, err := p.GetAll(host)
	if err != nil {
		return nil, err
	}
	return seq.Entries(), nil
}

// Get returns the entries of GetAll(host) whose payload implements the
// convention interface C or that is a delegate of func type D (see
// ir.AsDelegate).
func Get[C, D any](p *Provider, host ir.HostType) (*ir.Sequence, error) {
	seq, err := p.GetAll(host)
	if err != nil {
		return nil, err
	}
	return seq.Filter(Accepts[C, D]), nil
}

// Accepts reports whether e carries a C convention or a D delegate.
func Accepts[C, D any](e *ir.Entry) bool {
	payload := e.Payload()
	if e.IsDelegate() {
		_, ok := ir.AsDelegate[D](payload)
		return ok
	}
	_, ok := payload.(C)
	return ok
}

func (p *Provider) resolve() {
	entries := p.collect()

	var order []*ir.Entry
	var err error
	if !slices.ContainsFunc(entries, (*ir.Entry).HasDependencies) {
		order = sortByPriority(entries)
		p.logger.Debug("resolved conventions by priority",
			"entries", len(order),
		)
	} else {
		g := buildGraph(sortByPriority(entries))
		order, err = topoSort(g)
		if err != nil {
			p.logger.Error("convention resolution failed",
				"error", err,
				"entries", len(entries),
			)
			p.err = err
			return
		}
		p.logger.Debug("resolved conventions by dependency",
			"entries", len(order),
			"edges", g.edgeCount(),
		)
	}

	for i, host := range hostSlots {
		var kept []*ir.Entry
		for _, e := range order {
			if e.AppliesTo(host) {
				kept = append(kept, e)
			}
		}
		p.views[i] = ir.NewSequence(kept)
	}
}

// collect wraps contributions in entries, drops sentinels and applies the
// category filter.
func (p *Provider) collect() []*ir.Entry {
	entries := make([]*ir.Entry, 0, len(p.contributions))
	dropped := 0
	for i, c := range p.contributions {
		e, ok := ir.FromContribution(c,
			ir.WithPriority(p.delegatePrio),
			ir.WithLabel(fmt.Sprintf("delegate#%d", i)),
		)
		if !ok {
			continue
		}
		if !p.allows(e.Category()) {
			dropped++
			continue
		}
		entries = append(entries, e)
	}
	if dropped > 0 {
		p.logger.Debug("category filter dropped entries",
			"dropped", dropped,
			"categories", p.categories,
		)
	}
	return entries
}

func (p *Provider) allows(c ir.Category) bool {
	return len(p.categories) == 0 || slices.Contains(p.categories, c)
}
