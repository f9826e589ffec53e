package cli

import (
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/ir"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "convene", cmd.Use)
	assert.Contains(t, cmd.Long, "conventions")
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := []string{"order", "validate", "test", "trace", "version"}

	for _, cmdName := range commands {
		t.Run(cmdName, func(t *testing.T) {
			subCmd, _, err := cmd.Find([]string{cmdName})
			require.NoError(t, err, "Command %s should exist", cmdName)
			require.NotNil(t, subCmd)
			assert.Equal(t, cmdName, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	configFlag := cmd.PersistentFlags().Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "", configFlag.DefValue)
}

func TestOrderCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	orderCmd, _, err := cmd.Find([]string{"order"})
	require.NoError(t, err)

	for _, name := range []string{"host", "category", "db", "watch"} {
		assert.NotNil(t, orderCmd.Flags().Lookup(name), "order should have --%s", name)
	}
}

func TestInvalidFormat(t *testing.T) {
	_, err := execute(t, "--format", "xml", "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), `invalid format "xml"`)
}

func TestInvalidConfigFlag(t *testing.T) {
	_, err := execute(t, "--config", "/nonexistent/convene.yaml", "version")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, err.Error(), "failed to load project config")
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "convene "+ir.EngineVersion+" (ir "+ir.IRVersion+")\n", out)

	out, err = execute(t, "--format", "json", "version")
	require.NoError(t, err)

	var resp struct {
		Status string      `json:"status"`
		Data   VersionInfo `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, ir.EngineVersion, resp.Data.Engine)
	assert.Equal(t, ir.IRVersion, resp.Data.IR)
}

func TestRootOptions_Logger(t *testing.T) {
	quiet := (&RootOptions{}).Logger(nil)
	assert.False(t, quiet.Enabled(t.Context(), slog.LevelDebug))

	verbose := (&RootOptions{Verbose: true}).Logger(nil)
	assert.True(t, verbose.Enabled(t.Context(), slog.LevelDebug))
}
