package store

import (
	"context"
	"fmt"

	"github.com/roach88/convene/internal/ir"
)

// WriteResolution records r and its entries in one transaction.
//
// If r.ID is empty an ID is taken from gen. The resolution is stamped with
// the next seq of the database. Returns the stored resolution, with ID and
// Seq set.
func (s *Store) WriteResolution(ctx context.Context, gen IDGenerator, r Resolution) (Resolution, error) {
	if r.ID == "" {
		if gen == nil {
			return Resolution{}, fmt.Errorf("write resolution: no ID and no generator")
		}
		r.ID = gen.Generate()
	}

	categoriesJSON, err := marshalCategories(r.Categories)
	if err != nil {
		return Resolution{}, fmt.Errorf("write resolution: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Resolution{}, fmt.Errorf("write resolution: begin tx: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	if err := tx.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) + 1 FROM resolutions`).Scan(&r.Seq); err != nil {
		return Resolution{}, fmt.Errorf("write resolution: next seq: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO resolutions
		(id, seq, manifest_hash, ordering_hash, host_type, categories, status, error_code, error, engine_version, ir_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		r.ID,
		r.Seq,
		r.ManifestHash,
		r.OrderingHash,
		r.HostType.String(),
		categoriesJSON,
		string(r.Status),
		r.ErrorCode,
		r.Error,
		r.EngineVersion,
		r.IRVersion,
	)
	if err != nil {
		return Resolution{}, fmt.Errorf("write resolution: insert: %w", err)
	}

	for _, e := range r.Entries {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO resolution_entries
			(resolution_id, position, name, kind, host_type, category, priority)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			r.ID,
			e.Position,
			e.Name,
			e.Kind,
			e.HostType.String(),
			string(e.Category),
			e.Priority,
		)
		if err != nil {
			return Resolution{}, fmt.Errorf("write resolution: insert entry %d: %w", e.Position, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return Resolution{}, fmt.Errorf("write resolution: commit: %w", err)
	}

	return r, nil
}

// marshalCategories converts categories to canonical JSON TEXT for storage.
func marshalCategories(categories []ir.Category) (string, error) {
	names := make([]string, len(categories))
	for i, c := range categories {
		names[i] = string(c)
	}
	data, err := ir.MarshalCanonical(names)
	if err != nil {
		return "", fmt.Errorf("marshal categories: %w", err)
	}
	return string(data), nil
}
