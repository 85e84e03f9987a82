package worker

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// Task pairs one input with its processing outcome.
type Task[T any, R any] struct {
	Input  T
	Result R
	Err    error
}

// ProcessFunc is the function signature for processing a single task.
type ProcessFunc[T any, R any] func(ctx context.Context, input T) (R, error)

// Pool is a generic worker pool with configurable concurrency.
type Pool[T any, R any] struct {
	workers int
	process ProcessFunc[T, R]
}

// NewPool creates a new worker pool. A worker count below one is raised to
// one.
func NewPool[T any, R any](workers int, fn ProcessFunc[T, R]) *Pool[T, R] {
	if workers < 1 {
		workers = 1
	}
	return &Pool[T, R]{
		workers: workers,
		process: fn,
	}
}

// Execute runs all inputs through the pool and returns one Task per input,
// in input order. Workers stop picking up inputs once ctx is cancelled;
// inputs never picked up keep their zero Task.
func (p *Pool[T, R]) Execute(ctx context.Context, inputs []T) []Task[T, R] {
	results := make([]Task[T, R], len(inputs))

	inputCh := make(chan int, len(inputs))
	for i := range inputs {
		inputCh <- i
	}
	close(inputCh)

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for {
				if ctx.Err() != nil {
					return
				}
				select {
				case <-ctx.Done():
					return
				case idx, ok := <-inputCh:
					if !ok {
						return
					}
					result, err := p.process(ctx, inputs[idx])
					results[idx] = Task[T, R]{
						Input:  inputs[idx],
						Result: result,
						Err:    err,
					}
					if err != nil {
						log.Error().Err(err).Int("worker", workerID).Int("index", idx).Msg("Task failed")
					}
				}
			}
		}(w)
	}
	wg.Wait()

	return results
}
