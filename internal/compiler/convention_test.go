package compiler

import (
	"testing"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/convene/internal/ir"
)

func compile(t *testing.T, src string) cue.Value {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	require.NoError(t, v.Err())
	return v
}

func TestCompileConventionFull(t *testing.T) {
	v := compile(t, `
		convention: Logging: {
			priority: -2
			host:     "live"
			category: "Infrastructure"
			source:   "prepended"
			after:        ["Configuration"]
			before:       ["Services"]
			depends_on:   ["Secrets"]
			dependent_of: ["Hosting"]
		}
	`)

	decl, err := CompileConvention(v.LookupPath(cue.ParsePath("convention.Logging")))
	require.NoError(t, err)

	assert.Equal(t, ir.Declared{
		Name:        "Logging",
		Priority:    -2,
		HostType:    ir.HostLive,
		Category:    ir.CategoryInfrastructure,
		Source:      ir.SourcePrepended,
		After:       []string{"Configuration"},
		Before:      []string{"Services"},
		DependsOn:   []string{"Secrets"},
		DependentOf: []string{"Hosting"},
	}, *decl)
}

func TestCompileConventionDefaults(t *testing.T) {
	v := compile(t, `convention: Plain: {}`)

	decl, err := CompileConvention(v.LookupPath(cue.ParsePath("convention.Plain")))
	require.NoError(t, err)

	assert.Equal(t, "Plain", decl.Name)
	assert.Zero(t, decl.Priority)
	assert.Equal(t, ir.HostUndefined, decl.HostType)
	assert.Equal(t, ir.SourceScanned, decl.Source)
	assert.Empty(t, decl.Category)
	assert.Nil(t, decl.After)
}

func TestCompileConventionQuotedLabel(t *testing.T) {
	v := compile(t, `convention: "web-server": { host: "unit_test" }`)

	decls, err := CompileManifest(v)
	require.NoError(t, err)
	require.Len(t, decls, 1)
	assert.Equal(t, "web-server", decls[0].Name)
	assert.Equal(t, ir.HostUnitTest, decls[0].HostType)
}

func TestCompileConventionErrors(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"priority not int", `convention: X: { priority: "high" }`, "priority"},
		{"float priority", `convention: X: { priority: 1.5 }`, "priority"},
		{"unknown host", `convention: X: { host: "staging" }`, "host"},
		{"host not string", `convention: X: { host: 3 }`, "host"},
		{"unknown source", `convention: X: { source: "middle" }`, "source"},
		{"after not list", `convention: X: { after: "Y" }`, "after"},
		{"before entry not string", `convention: X: { before: [1] }`, "before"},
		{"category not string", `convention: X: { category: ["a"] }`, "category"},
		{"unknown field", `convention: X: { runs_after: ["Y"] }`, "runs_after"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := compile(t, tt.src)
			_, err := CompileConvention(v.LookupPath(cue.ParsePath("convention.X")))
			require.Error(t, err)

			var ce *CompileError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestCompileConventionNotStruct(t *testing.T) {
	v := compile(t, `convention: X: 3`)
	_, err := CompileConvention(v.LookupPath(cue.ParsePath("convention.X")))
	require.Error(t, err)
}

func TestCompileManifestOrder(t *testing.T) {
	v := compile(t, `
		convention: Services: { after: ["Logging"] }
		convention: Logging: { after: ["Configuration"] }
		convention: Configuration: { source: "prepended" }
	`)

	decls, err := CompileManifest(v)
	require.NoError(t, err)

	names := make([]string, len(decls))
	for i, d := range decls {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"Services", "Logging", "Configuration"}, names)
}

func TestCompileManifestEmpty(t *testing.T) {
	decls, err := CompileManifest(compile(t, `other: 1`))
	require.NoError(t, err)
	assert.Empty(t, decls)
}

func TestCompileErrorFormat(t *testing.T) {
	err := &CompileError{Field: "host", Message: "bad"}
	assert.Equal(t, "host: bad", err.Error())
}
