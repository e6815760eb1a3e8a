package service

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// forEachLimited calls fn for every index in [0, n) with at most limit calls
// in flight. fn records its own result and never fails the batch.
func forEachLimited(ctx context.Context, n, limit int, fn func(ctx context.Context, i int)) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(limit, 1))

	for i := range n {
		g.Go(func() error {
			fn(ctx, i)
			return nil
		})
	}

	_ = g.Wait()
}
