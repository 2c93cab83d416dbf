// Package site turns a sergey project directory into a static site: pages
// are compiled, links activated and styles hoisted, and every other file is
// copied to the output directory unchanged.
package site

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/sergeyhtml/sergey/internal/compiler"
	"github.com/sergeyhtml/sergey/internal/config"
	"github.com/sergeyhtml/sergey/internal/fragment"
	"github.com/sergeyhtml/sergey/internal/links"
	"github.com/sergeyhtml/sergey/internal/markdown"
	"github.com/sergeyhtml/sergey/internal/progress"
	"github.com/sergeyhtml/sergey/internal/walker"
)

// Result summarizes one build.
type Result struct {
	Pages   int
	Assets  int
	Errors  []error
	Elapsed time.Duration
}

// Builder runs complete builds for one configuration. Each call to Build
// starts from a fresh fragment store.
type Builder struct {
	cfg      *config.Config
	reporter progress.Reporter
	md       *markdown.Renderer
	links    *links.Activator

	// Verbose logs every written file.
	Verbose bool
}

// NewBuilder creates a Builder. A nil reporter discards progress.
func NewBuilder(cfg *config.Config, reporter progress.Reporter) *Builder {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	return &Builder{
		cfg:      cfg,
		reporter: reporter,
		md: markdown.New(markdown.Options{
			Highlight: cfg.Markdown.Highlight,
			Style:     cfg.Markdown.HighlightStyle,
		}),
		links: links.NewActivator(cfg.ActiveClass),
	}
}

// Filter returns the exclusion policy applied to the site root: the default
// names, the imports, content and output directories, the configured
// excludes and, when the walk reads it, .gitignore.
func (b *Builder) Filter() *walker.Filter {
	f := walker.NewFilter(config.DefaultExcludes...)
	f.Add(b.cfg.Imports, b.cfg.Output)
	if b.cfg.Content != "" {
		f.Add(b.cfg.Content)
	}
	f.Add(b.cfg.Exclude...)
	return f
}

// Build compiles the whole site. The returned error is set only when the
// build could not run at all; per-page failures are listed in Result.Errors
// and do not stop the remaining pages.
func (b *Builder) Build(ctx context.Context) (*Result, error) {
	start := time.Now()

	store := fragment.NewStore(b.cfg.ImportsDir(), b.cfg.ContentDir())
	if err := store.Load(); err != nil {
		return nil, err
	}

	if err := clearDir(b.cfg.OutputDir()); err != nil {
		return nil, err
	}

	files, err := walker.Walk(walker.WalkerConfig{
		RootDir:   b.cfg.Root,
		Filter:    b.Filter(),
		Gitignore: true,
	})
	if err != nil {
		return nil, err
	}

	var pages, assets []walker.FileInfo
	for _, f := range files {
		if f.IsPage() {
			pages = append(pages, f)
		} else {
			assets = append(assets, f)
		}
	}

	comp := compiler.New(store, b.md)
	comp.MaxDepth = b.cfg.MaxDepth

	result := &Result{Pages: len(pages), Assets: len(assets)}

	b.reporter.Start(len(pages))
	pageBatch := newBatcher(b.cfg.MaxConcurrency, func(f walker.FileInfo) {
		b.reporter.Step(f.RelPath)
	})
	result.Errors = append(result.Errors, pageBatch.run(ctx, pages, func(ctx context.Context, f walker.FileInfo) error {
		return b.compilePage(comp, f)
	})...)
	b.reporter.Finish()

	assetBatch := newBatcher(b.cfg.MaxConcurrency, nil)
	result.Errors = append(result.Errors, assetBatch.run(ctx, assets, func(ctx context.Context, f walker.FileInfo) error {
		return b.copyAsset(f)
	})...)

	for _, err := range result.Errors {
		log.Printf("site: %v", err)
	}

	result.Elapsed = time.Since(start)
	return result, nil
}

// compilePage runs one page through compile, link activation and
// finalization and writes it to the mirrored output path.
func (b *Builder) compilePage(comp *compiler.Compiler, f walker.FileInfo) error {
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return fmt.Errorf("reading page: %w", err)
	}

	body, err := comp.Compile(string(raw))
	if err != nil {
		return fmt.Errorf("compiling page: %w", err)
	}
	body = b.links.Activate(body, CurrentPath(f.RelPath))
	body = compiler.Finalize(body)

	dst := b.outputPath(f)
	if err := writeFile(dst, []byte(body)); err != nil {
		return fmt.Errorf("writing page: %w", err)
	}
	if b.Verbose {
		log.Printf("site: compiled %s", f.RelPath)
	}
	return nil
}

func (b *Builder) copyAsset(f walker.FileInfo) error {
	if err := copyFile(f.Path, b.outputPath(f)); err != nil {
		return fmt.Errorf("copying: %w", err)
	}
	if b.Verbose {
		log.Printf("site: copied %s", f.RelPath)
	}
	return nil
}

func (b *Builder) outputPath(f walker.FileInfo) string {
	return filepath.Join(b.cfg.OutputDir(), filepath.FromSlash(f.RelPath))
}

// CurrentPath is the site-absolute path a page is served at, used to decide
// which links are active on it.
func CurrentPath(relPath string) string {
	return "/" + filepath.ToSlash(relPath)
}
