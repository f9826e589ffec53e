package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/convene/internal/ir"
)

const resolutionColumns = `id, seq, manifest_hash, ordering_hash, host_type, categories, status, error_code, error, engine_version, ir_version`

// ReadResolution retrieves a resolution and its entries by ID.
// Returns sql.ErrNoRows if not found.
func (s *Store) ReadResolution(ctx context.Context, id string) (Resolution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+resolutionColumns+`
		FROM resolutions
		WHERE id = ?
	`, id)

	r, err := scanResolution(row)
	if err != nil {
		return Resolution{}, err
	}
	if r.Entries, err = s.readEntries(ctx, r.ID); err != nil {
		return Resolution{}, err
	}
	return r, nil
}

// LatestByManifest returns the most recent resolution recorded for a
// manifest hash, with its entries.
// Returns sql.ErrNoRows if none exists.
func (s *Store) LatestByManifest(ctx context.Context, manifestHash string) (Resolution, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+resolutionColumns+`
		FROM resolutions
		WHERE manifest_hash = ?
		ORDER BY seq DESC
		LIMIT 1
	`, manifestHash)

	r, err := scanResolution(row)
	if err != nil {
		return Resolution{}, err
	}
	if r.Entries, err = s.readEntries(ctx, r.ID); err != nil {
		return Resolution{}, err
	}
	return r, nil
}

// ListResolutions returns every recorded resolution without its entries.
// See FindResolutions.
func (s *Store) ListResolutions(ctx context.Context, limit int) ([]Resolution, error) {
	return s.FindResolutions(ctx, Filter{}, limit)
}

// FindResolutions returns the recorded resolutions matching f, without their
// entries, ordered by seq ASC, id ASC. A positive limit keeps only the most
// recent limit matches.
//
// Returns an empty slice (not nil) if nothing matches.
func (s *Store) FindResolutions(ctx context.Context, f Filter, limit int) ([]Resolution, error) {
	where, args, err := f.compile()
	if err != nil {
		return nil, err
	}

	query := `
		SELECT ` + resolutionColumns + `
		FROM resolutions
		WHERE ` + where + `
		ORDER BY seq ASC, id COLLATE BINARY ASC
	`
	if limit > 0 {
		query = `
			SELECT * FROM (
				SELECT ` + resolutionColumns + `
				FROM resolutions
				WHERE ` + where + `
				ORDER BY seq DESC
				LIMIT ?
			)
			ORDER BY seq ASC, id COLLATE BINARY ASC
		`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query resolutions: %w", err)
	}
	defer rows.Close()

	resolutions := []Resolution{}
	for rows.Next() {
		r, err := scanResolution(rows)
		if err != nil {
			return nil, err
		}
		resolutions = append(resolutions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolutions: %w", err)
	}

	return resolutions, nil
}

// readEntries returns the entries of a resolution in position order.
func (s *Store) readEntries(ctx context.Context, resolutionID string) ([]EntryRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT position, name, kind, host_type, category, priority
		FROM resolution_entries
		WHERE resolution_id = ?
		ORDER BY position ASC
	`, resolutionID)
	if err != nil {
		return nil, fmt.Errorf("query resolution entries: %w", err)
	}
	defer rows.Close()

	entries := []EntryRecord{}
	for rows.Next() {
		var e EntryRecord
		var host, category string
		if err := rows.Scan(&e.Position, &e.Name, &e.Kind, &host, &category, &e.Priority); err != nil {
			return nil, fmt.Errorf("scan resolution entry: %w", err)
		}
		if e.HostType, err = ir.ParseHostType(host); err != nil {
			return nil, fmt.Errorf("scan resolution entry: %w", err)
		}
		e.Category = ir.Category(category)
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate resolution entries: %w", err)
	}

	return entries, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanResolution scans a row into a Resolution. An error matching
// sql.ErrNoRows is returned as is.
func scanResolution(row rowScanner) (Resolution, error) {
	var r Resolution
	var host, categoriesJSON, status string

	if err := row.Scan(
		&r.ID, &r.Seq, &r.ManifestHash, &r.OrderingHash, &host, &categoriesJSON,
		&status, &r.ErrorCode, &r.Error, &r.EngineVersion, &r.IRVersion,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Resolution{}, err
		}
		return Resolution{}, fmt.Errorf("scan resolution: %w", err)
	}

	var err error
	if r.HostType, err = ir.ParseHostType(host); err != nil {
		return Resolution{}, fmt.Errorf("scan resolution: %w", err)
	}

	var names []string
	if err := json.Unmarshal([]byte(categoriesJSON), &names); err != nil {
		return Resolution{}, fmt.Errorf("unmarshal categories: %w", err)
	}
	r.Categories = make([]ir.Category, len(names))
	for i, n := range names {
		r.Categories[i] = ir.Category(n)
	}

	r.Status = Status(status)
	return r, nil
}
