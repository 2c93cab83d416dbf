package config

import "path/filepath"

// Config is the top-level sergey configuration, corresponding to sergey.yml.
type Config struct {
	Root           string         `yaml:"root" koanf:"root"`
	Imports        string         `yaml:"imports" koanf:"imports"`
	Content        string         `yaml:"content" koanf:"content"`
	Output         string         `yaml:"output" koanf:"output"`
	ActiveClass    string         `yaml:"active_class" koanf:"active_class"`
	Exclude        []string       `yaml:"exclude" koanf:"exclude"`
	Port           int            `yaml:"port" koanf:"port"`
	MaxConcurrency int            `yaml:"max_concurrency" koanf:"max_concurrency"`
	MaxDepth       int            `yaml:"max_depth" koanf:"max_depth"`
	Markdown       MarkdownConfig `yaml:"markdown" koanf:"markdown"`
	LiveReload     bool           `yaml:"live_reload" koanf:"live_reload"`
}

// MarkdownConfig holds settings for markdown content imports.
type MarkdownConfig struct {
	Highlight      bool   `yaml:"highlight" koanf:"highlight"`
	HighlightStyle string `yaml:"highlight_style" koanf:"highlight_style"`
}

// ImportsDir is the imports directory joined to the root.
func (c *Config) ImportsDir() string { return filepath.Join(c.Root, c.Imports) }

// ContentDir is the markdown content directory joined to the root. An empty
// content setting shares the imports directory.
func (c *Config) ContentDir() string {
	if c.Content == "" {
		return c.ImportsDir()
	}
	return filepath.Join(c.Root, c.Content)
}

// OutputDir is the output directory joined to the root.
func (c *Config) OutputDir() string { return filepath.Join(c.Root, c.Output) }
