package config

// DefaultConfigFile is the config file read when --config is not given.
const DefaultConfigFile = "sergey.yml"

// DefaultExcludes are names never compiled or copied, matched as a prefix of
// each path segment. The imports, content and output directory names are
// added by the walker.
var DefaultExcludes = []string{
	".git",
	".DS_Store",
	".prettierrc",
	"node_modules",
	"package.json",
	"package-lock.json",
}

// DefaultConfig returns a Config with the stock sergey layout.
func DefaultConfig() *Config {
	return &Config{
		Root:           ".",
		Imports:        "_imports",
		Content:        "_imports",
		Output:         "public",
		ActiveClass:    "active",
		Port:           8080,
		MaxConcurrency: 8,
		MaxDepth:       64,
		Markdown: MarkdownConfig{
			HighlightStyle: "github",
		},
		LiveReload: true,
	}
}
