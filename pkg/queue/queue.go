// Package queue runs a batch of items through a handler on a fixed pool of
// workers. The pipeline runs it with a single worker so external calls stay
// strictly sequential and progress can be reported after every item.
package queue

import (
	"context"
	"sync"
)

// Queue processes items of type T with dependencies D.
type Queue[T, D any] struct {
	handler    func(ctx context.Context, item T, deps D) error
	numWorkers int
}

// Progress is invoked after each item completes, with the handler's error if
// any. Item failures never abort the batch.
type Progress[T any] func(item T, err error)

func New[T, D any](numWorkers int, handler func(ctx context.Context, item T, deps D) error) *Queue[T, D] {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Queue[T, D]{
		handler:    handler,
		numWorkers: numWorkers,
	}
}

// Run feeds items through the worker pool and blocks until all are handled
// or ctx is cancelled. Items not yet started when ctx ends are skipped.
func (q *Queue[T, D]) Run(ctx context.Context, items []T, deps D, progress Progress[T]) error {
	jobs := make(chan T, q.numWorkers)
	var wg sync.WaitGroup

	for i := 0; i < q.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				err := q.handler(ctx, item, deps)
				if progress != nil {
					progress(item, err)
				}
			}
		}()
	}

	var runErr error
feed:
	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			runErr = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()
	return runErr
}
