package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/engine"
	"github.com/roach88/convene/internal/ir"
)

// createTestStore creates a new file-backed store for testing.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// resolve builds a provider over decls and describes its outcome for host.
func resolve(t *testing.T, host ir.HostType, decls ...ir.Declared) Resolution {
	t.Helper()
	hash, err := ir.ManifestHash(decls)
	require.NoError(t, err)

	scanned, prepended, appended := ir.Contributions(decls)
	p := engine.NewProvider(host, nil, scanned, prepended, appended)
	seq, resolveErr := p.GetAll(host)

	r, err := NewResolution(hash, host, nil, seq, resolveErr)
	require.NoError(t, err)
	return r
}
