package pipeline

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// defaultWorkers mirrors the usual platform default for I/O-bound pools.
func defaultWorkers() int {
	return min(32, runtime.NumCPU()+4)
}

// runOrdered applies fn to every item on at most limit goroutines and returns
// the successful results in item order. fn reports false to drop its item.
// Each task writes only its own slot, so completion order never leaks into
// the output. Items not yet started when ctx is done are skipped.
func runOrdered[T, R any](ctx context.Context, limit int, items []T, fn func(context.Context, T) (R, bool)) []R {
	if limit <= 0 {
		limit = defaultWorkers()
	}

	type slot struct {
		val R
		ok  bool
	}
	slots := make([]slot, len(items))

	var g errgroup.Group
	g.SetLimit(limit)
	for i, item := range items {
		if ctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return nil
			}
			v, ok := fn(ctx, item)
			slots[i] = slot{val: v, ok: ok}
			return nil
		})
	}
	_ = g.Wait() // tasks never return errors

	out := make([]R, 0, len(items))
	for _, s := range slots {
		if s.ok {
			out = append(out, s.val)
		}
	}
	return out
}
