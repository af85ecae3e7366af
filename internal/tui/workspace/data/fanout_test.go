package data

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFanOutAllSettle(t *testing.T) {
	keys := []int64{1, 2, 3, 4}
	boom := errors.New("boom")

	results := FanOut(context.Background(), keys, func(_ context.Context, key int64) (string, error) {
		if key == 3 {
			return "", boom
		}
		return "ok", nil
	})

	require.Len(t, results, 4)
	for i, key := range keys {
		assert.Equal(t, key, results[i].Key, "results keep key order")
	}
	assert.NoError(t, results[0].Err)
	assert.ErrorIs(t, results[2].Err, boom, "one failure does not abort the rest")
	assert.Equal(t, "ok", results[3].Data)
}

func TestFanOutEmpty(t *testing.T) {
	assert.Nil(t, FanOut(context.Background(), nil, func(_ context.Context, key int) (int, error) {
		return key, nil
	}))
}

func TestFanOutBoundedConcurrency(t *testing.T) {
	keys := make([]int, 50)
	for i := range keys {
		keys[i] = i
	}

	var mu sync.Mutex
	active, peak := 0, 0

	FanOut(context.Background(), keys, func(_ context.Context, key int) (int, error) {
		mu.Lock()
		active++
		if active > peak {
			peak = active
		}
		mu.Unlock()

		mu.Lock()
		active--
		mu.Unlock()
		return key, nil
	})

	assert.LessOrEqual(t, peak, maxConcurrent)
}

func TestFanOutCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls atomic.Int32
	results := FanOut(ctx, []int{1, 2, 3}, func(ctx context.Context, key int) (int, error) {
		calls.Add(1)
		return key, ctx.Err()
	})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.Error(t, r.Err)
	}
}
