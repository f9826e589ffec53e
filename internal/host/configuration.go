package host

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ConfigurationConvention contributes configuration sources.
type ConfigurationConvention interface {
	ConfigureConfiguration(b *ConfigurationBuilder) error
}

// ConfigurationDelegate is the delegate form of ConfigurationConvention.
type ConfigurationDelegate func(b *ConfigurationBuilder) error

// ConfigurationBuilder collects layered configuration sources.
//
// Sources are loaded in the order they were added. A key set by a later
// source overrides the same key from an earlier one. Keys are flattened to
// lower-case dotted paths, so the YAML document
//
//	Logging:
//	  Level: debug
//
// yields the key "logging.level".
type ConfigurationBuilder struct {
	sources []configSource
}

type configSource struct {
	name string
	load func() (map[string]any, error)
}

// NewConfigurationBuilder creates an empty builder.
func NewConfigurationBuilder() *ConfigurationBuilder {
	return &ConfigurationBuilder{}
}

// AddValues adds an in-memory source. Nested maps are flattened.
func (b *ConfigurationBuilder) AddValues(values map[string]any) *ConfigurationBuilder {
	snapshot := maps.Clone(values)
	b.sources = append(b.sources, configSource{
		name: "values",
		load: func() (map[string]any, error) { return snapshot, nil },
	})
	return b
}

// AddYAML adds a source decoded from a YAML document.
func (b *ConfigurationBuilder) AddYAML(name string, data []byte) *ConfigurationBuilder {
	b.sources = append(b.sources, configSource{
		name: name,
		load: func() (map[string]any, error) { return decodeYAML(data) },
	})
	return b
}

// AddTOML adds a source decoded from a TOML document.
func (b *ConfigurationBuilder) AddTOML(name string, data []byte) *ConfigurationBuilder {
	b.sources = append(b.sources, configSource{
		name: name,
		load: func() (map[string]any, error) { return decodeTOML(data) },
	})
	return b
}

// AddYAMLFile adds a YAML file source. A missing optional file is skipped.
func (b *ConfigurationBuilder) AddYAMLFile(path string, optional bool) *ConfigurationBuilder {
	return b.addFile(path, optional, decodeYAML)
}

// AddTOMLFile adds a TOML file source. A missing optional file is skipped.
func (b *ConfigurationBuilder) AddTOMLFile(path string, optional bool) *ConfigurationBuilder {
	return b.addFile(path, optional, decodeTOML)
}

func (b *ConfigurationBuilder) addFile(path string, optional bool, decode func([]byte) (map[string]any, error)) *ConfigurationBuilder {
	b.sources = append(b.sources, configSource{
		name: path,
		load: func() (map[string]any, error) {
			data, err := os.ReadFile(path)
			if err != nil {
				if optional && errors.Is(err, os.ErrNotExist) {
					return nil, nil
				}
				return nil, err
			}
			return decode(data)
		},
	})
	return b
}

// Len returns the number of sources added so far.
func (b *ConfigurationBuilder) Len() int { return len(b.sources) }

// Build loads every source in order and merges them.
func (b *ConfigurationBuilder) Build() (*Configuration, error) {
	data := make(map[string]any)
	for _, src := range b.sources {
		values, err := src.load()
		if err != nil {
			return nil, fmt.Errorf("load configuration source %s: %w", src.name, err)
		}
		flat := make(map[string]any)
		if err := flatten("", values, flat); err != nil {
			return nil, fmt.Errorf("load configuration source %s: %w", src.name, err)
		}
		maps.Copy(data, flat)
	}
	return &Configuration{data: data}, nil
}

func decodeYAML(data []byte) (map[string]any, error) {
	var out map[string]any
	dec := yaml.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	return out, nil
}

func decodeTOML(data []byte) (map[string]any, error) {
	var out map[string]any
	if err := toml.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("decode toml: %w", err)
	}
	return out, nil
}

// flatten writes the leaves of in to out under dotted lower-case keys.
// Two keys of one document that differ only in case are an error.
func flatten(prefix string, in, out map[string]any) error {
	for _, k := range slices.Sorted(maps.Keys(in)) {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "." + key
		}
		if nested, ok := in[k].(map[string]any); ok {
			if err := flatten(key, nested, out); err != nil {
				return err
			}
			continue
		}
		if _, dup := out[key]; dup {
			return fmt.Errorf("duplicate key %q: keys differ only in case", key)
		}
		out[key] = in[k]
	}
	return nil
}

// Configuration is the merged, read-only result of a ConfigurationBuilder.
type Configuration struct {
	data map[string]any
}

// Get retrieves a value by key. Lookup is case-insensitive.
func (c *Configuration) Get(key string) (any, bool) {
	if c == nil {
		return nil, false
	}
	v, ok := c.data[strings.ToLower(key)]
	return v, ok
}

// GetString retrieves a string value, or "" if absent or not a string.
func (c *Configuration) GetString(key string) string {
	v, ok := c.Get(key)
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// GetInt retrieves an integer value, or 0 if absent or not an integer.
func (c *Configuration) GetInt(key string) int {
	v, ok := c.Get(key)
	if !ok {
		return 0
	}

	// YAML integers decode as int, TOML integers as int64
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	default:
		return 0
	}
}

// GetBool retrieves a boolean value, or false if absent or not a boolean.
func (c *Configuration) GetBool(key string) bool {
	v, ok := c.Get(key)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		return false
	}
	return b
}

// GetStringSlice retrieves a string slice value.
func (c *Configuration) GetStringSlice(key string) []string {
	v, ok := c.Get(key)
	if !ok {
		return nil
	}

	switch s := v.(type) {
	case []string:
		return slices.Clone(s)
	case []any:
		out := make([]string, 0, len(s))
		for _, item := range s {
			if str, ok := item.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Keys returns every key in sorted order.
func (c *Configuration) Keys() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.data))
}
