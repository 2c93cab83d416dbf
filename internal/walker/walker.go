package walker

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// FileInfo holds metadata about a single file discovered during traversal.
type FileInfo struct {
	Path    string // Path on disk, joined to the root.
	RelPath string // Slash-separated path relative to the root.
	Size    int64
}

// IsPage reports whether the file is an HTML page to compile rather than an
// asset to copy.
func (f FileInfo) IsPage() bool {
	return strings.EqualFold(filepath.Ext(f.RelPath), ".html")
}

// WalkerConfig controls the behaviour of the Walk function.
type WalkerConfig struct {
	RootDir string
	Filter  *Filter
	// Gitignore adds the entries of RootDir/.gitignore to the filter.
	Gitignore bool
}

// Walk traverses the directory tree rooted at config.RootDir and returns
// every regular file the filter lets through, in lexical order. Excluded
// directories are not descended into.
func Walk(config WalkerConfig) ([]FileInfo, error) {
	root := config.RootDir
	if root == "" {
		root = "."
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("walker: root: %w", err)
	}

	filter := config.Filter
	if filter == nil {
		filter = NewFilter()
	}
	if config.Gitignore {
		filter = &Filter{
			Names:    append([]string(nil), filter.Names...),
			Patterns: append([]string(nil), filter.Patterns...),
		}
		filter.Add(LoadGitignore(filepath.Join(root, ".gitignore"))...)
	}

	var files []FileInfo

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			// Skip entries we cannot read instead of aborting.
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil || relPath == "." {
			return nil
		}
		if filter.Excluded(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		files = append(files, FileInfo{
			Path:    path,
			RelPath: filepath.ToSlash(relPath),
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walker: traversal: %w", err)
	}

	return files, nil
}

// LoadGitignore reads a .gitignore file and returns its non-empty,
// non-comment, non-negated lines.
func LoadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "!") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}
