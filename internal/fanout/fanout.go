// Package fanout runs batches of independent operations with bounded concurrency.
package fanout

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Operation is a single unit of work in a batch.
type Operation[T any] func(context.Context) (T, error)

// All runs every operation with at most limit of them in flight at once and
// returns their results aligned positionally with the input: results[i] is the
// value produced by ops[i] regardless of completion order. Operations are
// admitted in submission order as capacity frees.
//
// Failure policy: the whole batch fails. The first operation to return an
// error cancels the shared context, remaining operations are abandoned, and
// All returns that error with no partial results. Every fan-out call site in
// this module relies on this policy.
func All[T any](ctx context.Context, limit int, ops []Operation[T]) ([]T, error) {
	if limit < 1 {
		limit = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	// Indexed result slots keep output order independent of completion order.
	results := make([]T, len(ops))
	for i, op := range ops {
		g.Go(func() error {
			v, err := op(ctx)
			if err != nil {
				return err
			}
			results[i] = v
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err //nolint:wrapcheck // Batch surfaces the operation's own error unchanged
	}

	return results, nil
}
