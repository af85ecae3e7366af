// Package data provides concurrency helpers for workspace views.
package data

import (
	"context"
	"sync"
)

// maxConcurrent bounds the parallelism of a fan-out so a long project
// list does not open unbounded connections.
const maxConcurrent = 8

// Result holds the settled outcome of one fan-out call.
type Result[K comparable, T any] struct {
	Key  K
	Data T
	Err  error
}

// FanOut runs fn for every key concurrently, bounded to maxConcurrent
// in flight. It returns when all calls have settled, success or
// failure; one key's error never aborts the others. Results are in key
// order.
func FanOut[K comparable, T any](ctx context.Context, keys []K, fn func(ctx context.Context, key K) (T, error)) []Result[K, T] {
	if len(keys) == 0 {
		return nil
	}

	results := make([]Result[K, T], len(keys))
	sem := make(chan struct{}, maxConcurrent)
	var wg sync.WaitGroup

	for i, k := range keys {
		wg.Add(1)
		go func(idx int, key K) {
			defer wg.Done()
			select {
			case sem <- struct{}{}:
				defer func() { <-sem }()
			case <-ctx.Done():
				results[idx] = Result[K, T]{Key: key, Err: ctx.Err()}
				return
			}
			if err := ctx.Err(); err != nil {
				results[idx] = Result[K, T]{Key: key, Err: err}
				return
			}
			data, err := fn(ctx, key)
			results[idx] = Result[K, T]{Key: key, Data: data, Err: err}
		}(i, k)
	}

	wg.Wait()
	return results
}
