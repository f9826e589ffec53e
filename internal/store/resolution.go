package store

import (
	"errors"

	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
)

// Status is the outcome of a resolution.
type Status string

const (
	StatusOK     Status = "ok"
	StatusFailed Status = "failed"
)

// Resolution is one recorded convention ordering.
type Resolution struct {
	ID            string        `json:"id"`
	Seq           int64         `json:"seq"`
	ManifestHash  string        `json:"manifest_hash"`
	OrderingHash  string        `json:"ordering_hash,omitempty"`
	HostType      ir.HostType   `json:"host_type"`
	Categories    []ir.Category `json:"categories"`
	Status        Status        `json:"status"`
	ErrorCode     string        `json:"error_code,omitempty"`
	Error         string        `json:"error,omitempty"`
	EngineVersion string        `json:"engine_version"`
	IRVersion     string        `json:"ir_version"`
	Entries       []EntryRecord `json:"entries"`
}

// EntryRecord is one ordered entry of a recorded resolution.
type EntryRecord struct {
	Position int         `json:"position"`
	Name     string      `json:"name"`
	Kind     string      `json:"kind"`
	HostType ir.HostType `json:"host_type"`
	Category ir.Category `json:"category"`
	Priority int         `json:"priority"`
}

// Names returns the entry names in order.
func (r Resolution) Names() []string {
	names := make([]string, len(r.Entries))
	for i, e := range r.Entries {
		names[i] = e.Name
	}
	return names
}

// NewResolution describes the outcome of resolving for host: seq on
// success, resolveErr on failure. ID and Seq are assigned when written.
func NewResolution(manifestHash string, host ir.HostType, categories []ir.Category, seq *ir.Sequence, resolveErr error) (Resolution, error) {
	r := Resolution{
		ManifestHash:  manifestHash,
		HostType:      host,
		Categories:    append([]ir.Category{}, categories...),
		EngineVersion: ir.EngineVersion,
		IRVersion:     ir.IRVersion,
		Entries:       []EntryRecord{},
	}

	if resolveErr != nil {
		r.Status = StatusFailed
		r.Error = resolveErr.Error()
		var ce *engine.ConfigError
		if errors.As(resolveErr, &ce) {
			r.ErrorCode = string(ce.Code)
		}
		return r, nil
	}

	r.Status = StatusOK
	for i, e := range seq.Entries() {
		r.Entries = append(r.Entries, EntryRecord{
			Position: i,
			Name:     e.Name(),
			Kind:     e.Kind().String(),
			HostType: e.HostType(),
			Category: e.Category(),
			Priority: e.Priority(),
		})
	}

	hash, err := ir.OrderingHash(host, seq.Names())
	if err != nil {
		return Resolution{}, err
	}
	r.OrderingHash = hash
	return r, nil
}
