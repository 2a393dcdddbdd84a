// Package prompts holds the named prompt presets offered to the user.
package prompts

import (
	"fmt"
	"os"
	"regexp"
	"sort"

	"gopkg.in/yaml.v3"
)

// FallbackPrompt is used when a mode is unknown or has no templates.
const FallbackPrompt = "A high-resolution photograph of a cat."

type PromptTemplate struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Template    string `json:"template" yaml:"template"`
}

type Mode struct {
	Key         string           `json:"key" yaml:"-"`
	Name        string           `json:"name" yaml:"name"`
	Description string           `json:"description" yaml:"description"`
	Templates   []PromptTemplate `json:"templates" yaml:"templates"`
}

// Catalog is a read-only set of modes keyed by mode key (e.g. "image_edit").
type Catalog struct {
	modes map[string]Mode
}

// NewCatalog validates modes and builds a catalog.
func NewCatalog(modes map[string]Mode) (*Catalog, error) {
	out := make(map[string]Mode, len(modes))
	for key, m := range modes {
		seen := make(map[string]bool, len(m.Templates))
		for _, t := range m.Templates {
			if t.Name == "" {
				return nil, fmt.Errorf("mode %q: template without name", key)
			}
			if seen[t.Name] {
				return nil, fmt.Errorf("mode %q: duplicate template %q", key, t.Name)
			}
			seen[t.Name] = true
		}
		m.Key = key
		out[key] = m
	}
	return &Catalog{modes: out}, nil
}

// Load reads modes from a YAML file shaped like `{<key>: {name, description, templates: [...]}}`.
// An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read modes file: %w", err)
	}
	return Parse(b)
}

// Parse builds a catalog from YAML bytes.
func Parse(b []byte) (*Catalog, error) {
	var modes map[string]Mode
	if err := yaml.Unmarshal(b, &modes); err != nil {
		return nil, fmt.Errorf("parse modes: %w", err)
	}
	return NewCatalog(modes)
}

// Get returns the mode for key.
func (c *Catalog) Get(key string) (Mode, bool) {
	m, ok := c.modes[key]
	return m, ok
}

// List returns modes sorted by key.
func (c *Catalog) List() []Mode {
	out := make([]Mode, 0, len(c.modes))
	for _, m := range c.modes {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

// DefaultPrompt is the first template of the mode, or FallbackPrompt.
func (c *Catalog) DefaultPrompt(key string) string {
	m, ok := c.modes[key]
	if !ok || len(m.Templates) == 0 || m.Templates[0].Template == "" {
		return FallbackPrompt
	}
	return m.Templates[0].Template
}

var placeholder = regexp.MustCompile(`\{(\w+)\}`)

// Fill replaces {key} tokens with values; tokens without a value are kept.
func Fill(template string, values map[string]string) string {
	return placeholder.ReplaceAllStringFunc(template, func(tok string) string {
		if v, ok := values[tok[1:len(tok)-1]]; ok {
			return v
		}
		return tok
	})
}

// Placeholders lists the distinct tokens of a template in order of appearance.
func Placeholders(template string) []string {
	var out []string
	seen := map[string]bool{}
	for _, m := range placeholder.FindAllStringSubmatch(template, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			out = append(out, m[1])
		}
	}
	return out
}
