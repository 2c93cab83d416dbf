package watch

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const settle = 300 * time.Millisecond

func startWatcher(t *testing.T, root string, ignore IgnoreFunc) <-chan struct{} {
	t.Helper()
	w, err := New(root, ignore, 20*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	changes := make(chan struct{}, 16)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})
	return changes
}

func waitChange(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}
}

func expectQuiet(t *testing.T, changes <-chan struct{}) {
	t.Helper()
	select {
	case <-changes:
		t.Fatal("unexpected change reported")
	case <-time.After(settle):
	}
}

func write(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestWatchReportsChanges(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "index.html"), "<p>v1</p>")
	changes := startWatcher(t, root, nil)

	write(t, filepath.Join(root, "index.html"), "<p>v2</p>")
	waitChange(t, changes)
	expectQuiet(t, changes)

	if err := os.Remove(filepath.Join(root, "index.html")); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changes)
}

func TestWatchDebouncesBursts(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, nil)

	for i := 0; i < 5; i++ {
		write(t, filepath.Join(root, "page.html"), strings.Repeat("x", i+1))
	}
	waitChange(t, changes)
	expectQuiet(t, changes)
}

func TestWatchNewDirectories(t *testing.T) {
	root := t.TempDir()
	changes := startWatcher(t, root, nil)

	if err := os.Mkdir(filepath.Join(root, "blog"), 0o755); err != nil {
		t.Fatal(err)
	}
	waitChange(t, changes)

	write(t, filepath.Join(root, "blog", "post.html"), "<p>post</p>")
	waitChange(t, changes)
}

func TestWatchIgnoresOutput(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "public"), 0o755); err != nil {
		t.Fatal(err)
	}
	changes := startWatcher(t, root, func(rel string) bool {
		return rel == "public" || strings.HasPrefix(rel, "public/")
	})

	write(t, filepath.Join(root, "public", "index.html"), "<p>built</p>")
	expectQuiet(t, changes)

	write(t, filepath.Join(root, "index.html"), "<p>src</p>")
	waitChange(t, changes)
}

func TestNewMissingRoot(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "nope"), nil, 0); err == nil {
		t.Error("expected error for a missing root")
	}
}
