// Package batch converts many files concurrently on a bounded worker pool.
package batch

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"

	"github.com/cognicore/celltype/pkg/celltype/doc"
)

// Func converts one input into a sheet.
type Func func(ctx context.Context, item string) (*doc.Sheet, error)

// Result is the outcome for one input.
type Result struct {
	Item  string
	Sheet *doc.Sheet
	Err   error
}

// Run calls fn for every item using up to jobs workers and returns the
// results in input order. With jobs <= 1 items are processed inline.
// Items not yet started when ctx is done get ctx.Err().
func Run(ctx context.Context, items []string, jobs int, fn Func) []Result {
	results := make([]Result, len(items))
	for i, item := range items {
		results[i].Item = item
	}

	if jobs <= 1 || len(items) <= 1 {
		for i := range items {
			runOne(ctx, &results[i], fn)
		}
		return results
	}

	if jobs > len(items) {
		jobs = len(items)
	}
	pool, err := ants.NewPool(jobs)
	if err != nil {
		for i := range results {
			results[i].Err = fmt.Errorf("worker pool: %w", err)
		}
		return results
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range items {
		if err := ctx.Err(); err != nil {
			results[i].Err = err
			continue
		}
		r := &results[i]
		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			runOne(ctx, r, fn)
		}); err != nil {
			wg.Done()
			r.Err = fmt.Errorf("submit %s: %w", r.Item, err)
		}
	}
	wg.Wait()
	return results
}

func runOne(ctx context.Context, r *Result, fn Func) {
	if err := ctx.Err(); err != nil {
		r.Err = err
		return
	}
	r.Sheet, r.Err = fn(ctx, r.Item)
}
