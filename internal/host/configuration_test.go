package host

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigurationBuilder_LaterSourcesWin(t *testing.T) {
	conf, err := NewConfigurationBuilder().
		AddValues(map[string]any{"a": 1, "b": "one"}).
		AddYAML("inline.yaml", []byte("b: two\nc:\n  d: true\n")).
		AddTOML("inline.toml", []byte("a = 3\ntags = [\"x\", \"y\"]\n")).
		Build()
	require.NoError(t, err)

	assert.Equal(t, 3, conf.GetInt("a"))
	assert.Equal(t, "two", conf.GetString("B"))
	assert.True(t, conf.GetBool("c.d"))
	assert.Equal(t, []string{"x", "y"}, conf.GetStringSlice("tags"))
	assert.Equal(t, []string{"a", "b", "c.d", "tags"}, conf.Keys())
}

func TestConfigurationBuilder_MissingValues(t *testing.T) {
	conf, err := NewConfigurationBuilder().AddValues(map[string]any{"n": "not a number"}).Build()
	require.NoError(t, err)

	assert.Zero(t, conf.GetInt("n"))
	assert.Empty(t, conf.GetString("absent"))
	assert.False(t, conf.GetBool("absent"))
	assert.Nil(t, conf.GetStringSlice("absent"))

	var nilConf *Configuration
	_, ok := nilConf.Get("x")
	assert.False(t, ok)
}

func TestConfigurationBuilder_Errors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.toml")
	require.NoError(t, os.WriteFile(bad, []byte("= nope"), 0o644))

	tests := []struct {
		name    string
		builder *ConfigurationBuilder
		want    string
	}{
		{"required file missing", NewConfigurationBuilder().AddYAMLFile(filepath.Join(dir, "none.yaml"), false), "none.yaml"},
		{"invalid toml", NewConfigurationBuilder().AddTOMLFile(bad, false), "decode toml"},
		{"invalid yaml", NewConfigurationBuilder().AddYAML("x.yaml", []byte("a: [")), "decode yaml"},
		{"case collision", NewConfigurationBuilder().AddYAML("log.yaml", []byte("Level: debug\nlevel: info\n")), `duplicate key "level"`},
		{"nested case collision", NewConfigurationBuilder().AddValues(map[string]any{
			"Log": map[string]any{"level": "debug"},
			"log": map[string]any{"Level": "info"},
		}), `duplicate key "log.level"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.builder.Build()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestConfigurationBuilder_CaseOnlyOverridesAcrossSources(t *testing.T) {
	conf, err := NewConfigurationBuilder().
		AddYAML("base.yaml", []byte("Level: debug\n")).
		AddYAML("override.yaml", []byte("level: info\n")).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "info", conf.GetString("level"))
}

func TestConfigurationBuilder_EmptyYAML(t *testing.T) {
	conf, err := NewConfigurationBuilder().AddYAML("empty.yaml", nil).Build()
	require.NoError(t, err)
	assert.Empty(t, conf.Keys())
}

func TestLoggingBuilder(t *testing.T) {
	b, err := NewLoggingBuilder(nil)
	require.NoError(t, err)
	assert.Equal(t, FormatText, b.Format())

	require.NoError(t, b.SetFormat("JSON"))
	assert.Equal(t, FormatJSON, b.Format())
	assert.Error(t, b.SetFormat("xml"))

	require.NoError(t, b.SetLevelString("warn"))
	assert.Error(t, b.SetLevelString("loud"))
}

func TestServiceCollection(t *testing.T) {
	c := NewServiceCollection()
	require.NoError(t, c.AddSingleton("a", nil))
	require.NoError(t, c.Add(ServiceDescriptor{Name: "b", Lifetime: Scoped}))
	assert.ErrorIs(t, c.AddTransient("a", nil), ErrDuplicateService)
	assert.Error(t, c.Add(ServiceDescriptor{}))

	assert.Equal(t, 2, c.Len())
	assert.Equal(t, []string{"a", "b"}, c.Names())
	assert.Equal(t, "scoped", c.Descriptors()[1].Lifetime.String())
}
