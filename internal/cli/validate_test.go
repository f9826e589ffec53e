package cli

import (
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/compiler"
	"github.com/roach88/convene/internal/engine"
)

type validateResponse struct {
	Status string           `json:"status"`
	Data   ValidationResult `json:"data"`
	Error  *CLIError        `json:"error"`
}

func TestValidate_Valid(t *testing.T) {
	dir := writeFiles(t, map[string]string{"stages.cue": stagesSpec})

	out, err := execute(t, "validate", dir)
	require.NoError(t, err)
	assert.Equal(t, "✓ All specs valid (4 conventions)\n", out)

	out, err = execute(t, "--format", "json", "validate", dir)
	require.NoError(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	assert.Equal(t, 4, resp.Data.Conventions)
	assert.Empty(t, resp.Data.Errors)
}

func TestValidate_UnknownDependency(t *testing.T) {
	dir := writeFiles(t, map[string]string{"specs.cue": `package specs

convention: Logging: after: ["Configuration"]
`})

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "validation failed with 1 error(s)")
	assert.Contains(t, out, "✗ Validation failed")
	assert.Contains(t, out, `E204 convention.Logging.after[0]: unknown convention "Configuration"`)
}

func TestValidate_Cycles(t *testing.T) {
	dir := writeFiles(t, map[string]string{"cycle.cue": cycleSpec})

	out, err := execute(t, "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "CYCLIC_DEPENDENCY")

	out, err = execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, string(engine.ErrCodeCyclicDependency), resp.Error.Code)
	assert.False(t, resp.Data.Valid)
	require.Len(t, resp.Data.Cycles, 1)
	assert.ElementsMatch(t, []string{"A", "B"}, resp.Data.Cycles[0].Members)
}

func TestValidate_CollectsCompileErrors(t *testing.T) {
	dir := writeFiles(t, map[string]string{"bad.cue": badSpec})

	out, err := execute(t, "--format", "json", "validate", dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp validateResponse
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, compiler.ErrInvalidHostType, resp.Error.Code)
	assert.Equal(t, 1, resp.Data.Conventions)
	require.Len(t, resp.Data.Errors, 2)
	assert.Equal(t, "load", resp.Data.Errors[0].Field)
	assert.Equal(t, ErrCodeUnknownField, resp.Data.Errors[1].Code)
}

func TestValidate_LoadErrors(t *testing.T) {
	t.Run("missing dir", func(t *testing.T) {
		_, err := execute(t, "validate", filepath.Join(t.TempDir(), "missing"))
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, err.Error(), ErrCodeNotFound)
	})

	t.Run("no cue files", func(t *testing.T) {
		dir := writeFiles(t, map[string]string{"notes.txt": "x"})
		out, err := execute(t, "validate", dir)
		require.Error(t, err)
		assert.Equal(t, ExitCommandError, GetExitCode(err))
		assert.Contains(t, out, "Error [E003]")
	})
}

func TestValidateDeclared_MergesLoadErrors(t *testing.T) {
	result := validateDeclared(nil, []error{
		&LoadError{Code: ErrCodeNoFiles, Message: "none"},
		assert.AnError,
	})

	assert.False(t, result.Valid)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, ErrCodeNoFiles, result.Errors[0].Code)
	assert.Equal(t, ErrCodeGeneric, result.Errors[1].Code)
	assert.Empty(t, result.Cycles)
}
