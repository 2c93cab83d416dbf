package site

import (
	"context"
	"fmt"
	"sync"

	"github.com/sergeyhtml/sergey/internal/walker"
)

// fileFunc processes one file of the site.
type fileFunc func(ctx context.Context, f walker.FileInfo) error

// batcher runs a fileFunc over many files with bounded parallelism. A failure
// or panic on one file is recorded and never stops its siblings.
type batcher struct {
	concurrency int
	onDone      func(f walker.FileInfo)
}

func newBatcher(concurrency int, onDone func(walker.FileInfo)) *batcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &batcher{concurrency: concurrency, onDone: onDone}
}

// run processes files and returns one error per failed file.
func (b *batcher) run(ctx context.Context, files []walker.FileInfo, fn fileFunc) []error {
	sem := make(chan struct{}, b.concurrency)
	var mu sync.Mutex
	var errs []error

	record := func(err error) {
		mu.Lock()
		errs = append(errs, err)
		mu.Unlock()
	}

	var wg sync.WaitGroup
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			record(fmt.Errorf("%s: %w", file.RelPath, err))
			continue
		}
		select {
		case <-ctx.Done():
			record(fmt.Errorf("%s: %w", file.RelPath, ctx.Err()))
			continue
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(f walker.FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()
			defer func() {
				if r := recover(); r != nil {
					record(fmt.Errorf("%s: panic: %v", f.RelPath, r))
				}
				if b.onDone != nil {
					b.onDone(f)
				}
			}()

			if err := fn(ctx, f); err != nil {
				record(fmt.Errorf("%s: %w", f.RelPath, err))
			}
		}(file)
	}

	wg.Wait()
	return errs
}
