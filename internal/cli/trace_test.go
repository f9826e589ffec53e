package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/store"
)

// recordedDB records one successful and one failed resolution and returns
// the database path with the ID of the successful one.
func recordedDB(t *testing.T) (string, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "convene.db")

	ok, err := orderJSON(t, writeFiles(t, map[string]string{"stages.cue": stagesSpec}), "--db", dbPath)
	require.NoError(t, err)

	_, err = orderJSON(t, writeFiles(t, map[string]string{"cycle.cue": cycleSpec}), "--db", dbPath)
	require.Error(t, err)

	return dbPath, ok.Data.ID
}

func TestTrace_List(t *testing.T) {
	dbPath, id := recordedDB(t)

	out, err := execute(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, id)
	assert.Contains(t, out, "CYCLIC_DEPENDENCY")

	out, err = execute(t, "--format", "json", "trace", "--db", dbPath)
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 2, resp.Data.Total)
	require.Len(t, resp.Data.Resolutions, 2)
	assert.Equal(t, id, resp.Data.Resolutions[0].ID)
	assert.Equal(t, store.StatusOK, resp.Data.Resolutions[0].Status)
	assert.Equal(t, store.StatusFailed, resp.Data.Resolutions[1].Status)
}

func TestTrace_Limit(t *testing.T) {
	dbPath, _ := recordedDB(t)

	out, err := execute(t, "--format", "json", "trace", "--db", dbPath, "--limit", "1")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Resolutions, 1)
	assert.Equal(t, int64(2), resp.Data.Resolutions[0].Seq)
}

func TestTrace_ByID(t *testing.T) {
	dbPath, id := recordedDB(t)

	out, err := execute(t, "trace", "--db", dbPath, "--id", id)
	require.NoError(t, err)
	assert.Contains(t, out, "Resolution "+id+" (seq 1)")
	assert.Contains(t, out, "Status: ok")
	assert.Contains(t, out, "Services")
	assert.NotContains(t, out, "Recorded resolution")

	out, err = execute(t, "--format", "json", "trace", "--db", dbPath, "--id", id)
	require.NoError(t, err)

	var resp orderResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, []string{"Configuration", "Logging", "Services"}, resp.Data.Names())
}

func TestTrace_Errors(t *testing.T) {
	dbPath, _ := recordedDB(t)

	t.Run("unknown id", func(t *testing.T) {
		_, err := execute(t, "trace", "--db", dbPath, "--id", "nope")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "resolution not found: nope")
	})

	t.Run("missing database", func(t *testing.T) {
		_, err := execute(t, "trace", "--db", filepath.Join(t.TempDir(), "none.db"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "database not found")
	})

	t.Run("no database", func(t *testing.T) {
		t.Chdir(t.TempDir())
		_, err := execute(t, "trace")
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), "no database")
	})
}

func TestTrace_DatabaseFromProjectConfig(t *testing.T) {
	dbPath, id := recordedDB(t)
	config := filepath.Join(writeFiles(t, map[string]string{
		"convene.toml": "db = " + `"` + filepath.ToSlash(dbPath) + `"` + "\n",
	}), "convene.toml")

	out, err := execute(t, "--config", config, "trace")
	require.NoError(t, err)
	assert.Contains(t, out, id)
}

func TestTrace_Empty(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	st, err := store.Open(dbPath)
	require.NoError(t, err)
	require.NoError(t, st.Close())

	out, err := execute(t, "trace", "--db", dbPath)
	require.NoError(t, err)
	assert.Equal(t, "No resolutions recorded.\n", out)
}

func TestTrace_Filter(t *testing.T) {
	dbPath, id := recordedDB(t)

	out, err := execute(t, "--format", "json", "trace", "--db", dbPath, "--status", "ok")
	require.NoError(t, err)

	var resp struct {
		Data TraceResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data.Resolutions, 1)
	assert.Equal(t, id, resp.Data.Resolutions[0].ID)

	out, err = execute(t, "trace", "--db", dbPath, "--host", "live")
	require.NoError(t, err)
	assert.Equal(t, "No resolutions recorded.\n", out)

	_, err = execute(t, "trace", "--db", dbPath, "--status", "pending")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "unknown status")
}
