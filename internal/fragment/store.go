package fragment

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
)

// ErrImportsDirMissing means no import could ever resolve, so a build must
// not start.
var ErrImportsDirMissing = errors.New("imports directory not found")

const (
	htmlExt     = ".html"
	markdownExt = ".md"
)

// Key identifies a fragment: a slash-separated path under the imports or
// content directory, always ending in .html or .md.
type Key string

// Store maps fragment keys to raw file contents. It is filled once per build
// and only read while pages compile, so any number of pages may share it.
type Store struct {
	importsDir string
	contentDir string

	mu    sync.RWMutex
	items map[Key]string
}

// NewStore creates an empty store resolving import references against
// importsDir and markdown references against contentDir.
func NewStore(importsDir, contentDir string) *Store {
	return &Store{
		importsDir: importsDir,
		contentDir: contentDir,
		items:      make(map[Key]string),
	}
}

// ImportKey normalizes an import reference such as "header" or
// "nav/main.html".
func (s *Store) ImportKey(ref string) Key { return makeKey(s.importsDir, ref, htmlExt) }

// ContentKey normalizes a markdown content reference such as "posts/intro".
func (s *Store) ContentKey(ref string) Key { return makeKey(s.contentDir, ref, markdownExt) }

func makeKey(base, ref, ext string) Key {
	if !strings.HasSuffix(ref, ext) {
		ref += ext
	}
	return Key(path.Join(filepath.ToSlash(base), ref))
}

// Put stores raw text under key, replacing any previous value.
func (s *Store) Put(key Key, raw string) {
	s.mu.Lock()
	s.items[key] = raw
	s.mu.Unlock()
}

// Get returns the raw text stored under key.
func (s *Store) Get(key Key) (string, bool) {
	s.mu.RLock()
	raw, ok := s.items[key]
	s.mu.RUnlock()
	return raw, ok
}

// Len returns the number of stored fragments.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Load reads every .html and .md file below the imports directory and, when
// it is a different directory, below the content directory. A missing
// imports directory is fatal; a missing content directory is not.
func (s *Store) Load() error {
	if info, err := os.Stat(s.importsDir); err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrImportsDirMissing, s.importsDir)
	}
	if err := s.loadDir(s.importsDir); err != nil {
		return err
	}

	if filepath.Clean(s.contentDir) == filepath.Clean(s.importsDir) {
		return nil
	}
	if info, err := os.Stat(s.contentDir); err != nil || !info.IsDir() {
		return nil
	}
	return s.loadDir(s.contentDir)
}

func (s *Store) loadDir(dir string) error {
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if d.IsDir() {
			return nil
		}
		ext := filepath.Ext(p)
		if ext != htmlExt && ext != markdownExt {
			return nil
		}
		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(p)
		if err != nil {
			return err
		}
		s.Put(makeKey(dir, filepath.ToSlash(rel), ext), string(data))
		return nil
	})
	if err != nil {
		return fmt.Errorf("loading fragments from %s: %w", dir, err)
	}
	return nil
}
