// Package parallel provides parallel processing infrastructure for grouped
// table operations.
//
// Work items are fanned out to a fixed number of goroutines and results are
// collected back into input order, so callers that concatenate per-group
// results keep their group order no matter which worker finishes first.
package parallel

import (
	"context"
	"runtime"
	"sync"
)

// WorkerPool manages a pool of goroutines for parallel processing
type WorkerPool struct {
	numWorkers int
	ctx        context.Context
	cancel     context.CancelFunc
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool(numWorkers int) *WorkerPool {
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &WorkerPool{
		numWorkers: numWorkers,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// Workers returns the number of goroutines the pool starts per call.
func (wp *WorkerPool) Workers() int {
	return wp.numWorkers
}

// ProcessOrdered executes work items in parallel and returns results in input
// order. Every item runs even when one fails; the failure with the lowest
// index is returned as an *ItemError so the reported error does not depend
// on scheduling. Results are nil whenever an error is returned.
func ProcessOrdered[T, R any](
	wp *WorkerPool,
	items []T,
	worker func(int, T) (R, error),
) ([]R, error) {
	if len(items) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(wp.ctx)
	defer cancel()

	// Channel for input items with index
	itemCh := make(chan indexedItem[T], len(items))

	// Channel for results with index
	resultCh := make(chan indexedResult[R], len(items))

	// Start workers
	var wg sync.WaitGroup
	for i := 0; i < wp.numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range itemCh {
				select {
				case <-ctx.Done():
					return
				default:
					result, err := worker(item.index, item.value)
					resultCh <- indexedResult[R]{
						index:  item.index,
						result: result,
						err:    err,
					}
				}
			}
		}()
	}

	// Send items to workers
	go func() {
		defer close(itemCh)
		for i, item := range items {
			select {
			case <-ctx.Done():
				return
			case itemCh <- indexedItem[T]{index: i, value: item}:
			}
		}
	}()

	// Close result channel when all workers are done
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	// Collect results and maintain order
	results := make([]R, len(items))
	var (
		firstErr   error
		firstIndex = len(items)
		received   int
	)
	for result := range resultCh {
		received++
		if result.err != nil && result.index < firstIndex {
			firstErr = result.err
			firstIndex = result.index
			continue
		}
		results[result.index] = result.result
	}

	if firstErr != nil {
		return nil, &ItemError{Index: firstIndex, Err: firstErr}
	}
	if received != len(items) {
		return nil, context.Canceled
	}

	return results, nil
}

// ItemError reports which work item failed.
type ItemError struct {
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return e.Err.Error()
}

func (e *ItemError) Unwrap() error {
	return e.Err
}

// Close shuts down the worker pool
func (wp *WorkerPool) Close() {
	wp.cancel()
}

// indexedItem holds an item with its index
type indexedItem[T any] struct {
	index int
	value T
}

// indexedResult holds a result with its index
type indexedResult[R any] struct {
	index  int
	result R
	err    error
}
