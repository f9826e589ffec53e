package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/ir"
	"github.com/roach88/convene/internal/testutil"
)

func TestFilter_Compile(t *testing.T) {
	tests := []struct {
		name   string
		filter Filter
		where  string
		params []any
	}{
		{"empty", Filter{}, "1 = 1", nil},
		{"host", Filter{Host: "unit-test"}, "host_type = ?", []any{"unit_test"}},
		{"status", Filter{Status: StatusFailed}, "status = ?", []any{"failed"}},
		{
			"all",
			Filter{Host: "live", Status: StatusOK, ManifestHash: "abc"},
			"host_type = ? AND status = ? AND manifest_hash = ?",
			[]any{"live", "ok", "abc"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, params, err := tt.filter.compile()
			require.NoError(t, err)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestFilter_CompileErrors(t *testing.T) {
	_, _, err := Filter{Host: "staging"}.compile()
	assert.ErrorContains(t, err, "unknown host type")

	_, _, err = Filter{Status: "pending"}.compile()
	assert.ErrorContains(t, err, `unknown status "pending"`)
}

func TestAnd(t *testing.T) {
	tests := []struct {
		name   string
		terms  []equals
		where  string
		params []any
	}{
		{"none", nil, "1 = 1", nil},
		{"one", []equals{{"status", "ok"}}, "status = ?", []any{"ok"}},
		{"two", []equals{{"status", "ok"}, {"host_type", "live"}}, "status = ? AND host_type = ?", []any{"ok", "live"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			where, params := and(tt.terms)
			assert.Equal(t, tt.where, where)
			assert.Equal(t, tt.params, params)
		})
	}
}

func TestFindResolutions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	gen := NewFixedGenerator("live-ok", "test-ok", "live-failed", "live-ok-2")

	chain := testutil.Manifest(testutil.Convention("A"), testutil.Convention("B", testutil.After("A")))
	cycle := testutil.Manifest(
		testutil.Convention("A", testutil.After("B")),
		testutil.Convention("B", testutil.After("A")),
	)
	for _, r := range []Resolution{
		resolve(t, ir.HostLive, chain...),
		resolve(t, ir.HostUnitTest, chain...),
		resolve(t, ir.HostLive, cycle...),
		resolve(t, ir.HostLive, chain...),
	} {
		_, err := s.WriteResolution(ctx, gen, r)
		require.NoError(t, err)
	}

	ids := func(rs []Resolution) []string {
		out := make([]string, len(rs))
		for i, r := range rs {
			out[i] = r.ID
		}
		return out
	}

	live, err := s.FindResolutions(ctx, Filter{Host: "live"}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"live-ok", "live-failed", "live-ok-2"}, ids(live))

	failed, err := s.FindResolutions(ctx, Filter{Status: StatusFailed}, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"live-failed"}, ids(failed))

	hash, err := ir.ManifestHash(chain)
	require.NoError(t, err)
	latestLive, err := s.FindResolutions(ctx, Filter{Host: "live", ManifestHash: hash}, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{"live-ok-2"}, ids(latestLive))

	none, err := s.FindResolutions(ctx, Filter{Host: "undefined"}, 0)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	_, err = s.FindResolutions(ctx, Filter{Status: "pending"}, 0)
	assert.Error(t, err)
}
