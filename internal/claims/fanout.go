package claims

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Collect runs fn once per input concurrently and returns the results in input order.
// Every call runs to completion; one call finishing early or failing does not stop the others.
// At most limit calls run at the same time (limit <= 0 means no limit).
//
// If ctx is cancelled before all calls returned, Collect gives up on them and returns ctx.Err()
// without any results. Calls that are still running only write to their own slot.
func Collect[T, R any](ctx context.Context, limit int, inputs []T, fn func(ctx context.Context, in T) R) ([]R, error) {
	if len(inputs) == 0 {
		return []R{}, nil
	}

	results := make([]R, len(inputs))

	var g errgroup.Group
	if limit > 0 {
		g.SetLimit(limit)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i, in := range inputs {
			if ctx.Err() != nil {
				break
			}
			g.Go(func() error {
				results[i] = fn(ctx, in)
				return nil
			})
		}
		_ = g.Wait()
	}()

	select {
	case <-done:
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return results, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
