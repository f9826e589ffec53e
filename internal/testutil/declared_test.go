package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/convene/internal/ir"
)

func TestConvention(t *testing.T) {
	d := Convention("Logging",
		After("Configuration"),
		After("Tracing"),
		Before("Services"),
		DependsOn("Secrets"),
		DependentOf("Metrics"),
		Priority(2),
		Host(ir.HostLive),
		Category(ir.CategoryInfrastructure),
		Source(ir.SourceAppended),
	)

	assert.Equal(t, &ir.Declared{
		Name:        "Logging",
		Priority:    2,
		HostType:    ir.HostLive,
		Category:    ir.CategoryInfrastructure,
		Source:      ir.SourceAppended,
		After:       []string{"Configuration", "Tracing"},
		Before:      []string{"Services"},
		DependsOn:   []string{"Secrets"},
		DependentOf: []string{"Metrics"},
	}, d)
}

func TestManifest(t *testing.T) {
	a := Convention("A")
	b := Convention("B", After("A"))

	m := Manifest(a, b)
	assert.Equal(t, []ir.Declared{*a, *b}, m)

	m[0].Name = "changed"
	assert.Equal(t, "A", a.Name, "manifest entries are copies")
	assert.Empty(t, Manifest())
}
