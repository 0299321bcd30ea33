package fanout_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexfrei/go-vmanage/internal/fanout"
)

func TestAllPreservesOrder(t *testing.T) {
	t.Parallel()

	// Later operations finish first; output order must still match input order.
	ops := make([]fanout.Operation[int], 10)
	for i := range ops {
		ops[i] = func(context.Context) (int, error) {
			time.Sleep(time.Duration(10-i) * time.Millisecond)
			return i * i, nil
		}
	}

	results, err := fanout.All(context.Background(), 10, ops)
	require.NoError(t, err)
	require.Len(t, results, 10)

	for i, got := range results {
		assert.Equal(t, i*i, got)
	}
}

func TestAllRespectsConcurrencyLimit(t *testing.T) {
	t.Parallel()

	const (
		limit = 3
		total = 20
	)

	var (
		inFlight atomic.Int32
		maxSeen  atomic.Int32
	)

	ops := make([]fanout.Operation[struct{}], total)
	for i := range ops {
		ops[i] = func(context.Context) (struct{}, error) {
			n := inFlight.Add(1)
			for {
				cur := maxSeen.Load()
				if n <= cur || maxSeen.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			inFlight.Add(-1)
			return struct{}{}, nil
		}
	}

	_, err := fanout.All(context.Background(), limit, ops)
	require.NoError(t, err)
	assert.LessOrEqual(t, maxSeen.Load(), int32(limit))
}

func TestAllFailsWholeBatch(t *testing.T) {
	t.Parallel()

	boom := errors.New("controller unreachable")

	var started sync.Map
	ops := []fanout.Operation[string]{
		func(context.Context) (string, error) {
			started.Store(0, true)
			return "ok", nil
		},
		func(context.Context) (string, error) {
			started.Store(1, true)
			return "", boom
		},
		func(ctx context.Context) (string, error) {
			started.Store(2, true)
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(time.Second):
				return "late", nil
			}
		},
	}

	results, err := fanout.All(context.Background(), 3, ops)
	require.Error(t, err)
	assert.Nil(t, results, "no partial results on batch failure")
}

func TestAllZeroLimit(t *testing.T) {
	t.Parallel()

	ops := []fanout.Operation[int]{
		func(context.Context) (int, error) { return 7, nil },
	}

	// A non-positive limit is clamped to serial execution rather than deadlocking.
	results, err := fanout.All(context.Background(), 0, ops)
	require.NoError(t, err)
	assert.Equal(t, []int{7}, results)
}

func TestAllEmptyBatch(t *testing.T) {
	t.Parallel()

	results, err := fanout.All(context.Background(), 4, []fanout.Operation[int]{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
