package walker

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Filter decides which paths under the site root take part in a build.
//
// Names are matched as a prefix of every path segment, so "_imports" also
// hides "_imports-old" and ".git" hides ".gitignore". Patterns are doublestar
// globs matched against the slash-separated relative path and the base name.
type Filter struct {
	Names    []string
	Patterns []string
}

// NewFilter splits excludes into plain names and glob patterns.
func NewFilter(excludes ...string) *Filter {
	f := &Filter{}
	f.Add(excludes...)
	return f
}

// Add registers more excludes. Entries carrying glob metacharacters or an
// inner slash become patterns; leading and trailing slashes are dropped.
func (f *Filter) Add(excludes ...string) {
	for _, e := range excludes {
		e = strings.Trim(strings.TrimSpace(filepath.ToSlash(e)), "/")
		if e == "" {
			continue
		}
		if strings.ContainsAny(e, "*?[{") || strings.Contains(e, "/") {
			f.Patterns = append(f.Patterns, e)
			continue
		}
		f.Names = append(f.Names, e)
	}
}

// Excluded reports whether relPath, relative to the root, is filtered out.
func (f *Filter) Excluded(relPath string) bool {
	normalized := filepath.ToSlash(filepath.Clean(relPath))
	if normalized == "." || normalized == "" {
		return false
	}

	for _, segment := range strings.Split(normalized, "/") {
		for _, name := range f.Names {
			if strings.HasPrefix(segment, name) {
				return true
			}
		}
	}
	return matchesAny(normalized, f.Patterns)
}

// matchesAny checks if relPath matches any of the given glob patterns, either
// as a whole or by its base name.
func matchesAny(relPath string, patterns []string) bool {
	base := filepath.Base(relPath)
	for _, pattern := range patterns {
		if matched, err := doublestar.Match(pattern, relPath); err == nil && matched {
			return true
		}
		if matched, err := doublestar.Match(pattern, base); err == nil && matched {
			return true
		}
		// A pattern naming a directory hides everything below it.
		if matched, err := doublestar.Match(pattern+"/**", relPath); err == nil && matched {
			return true
		}
	}
	return false
}
