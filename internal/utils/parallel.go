package utils

import (
	"errors"
	"sync"
)

// ParallelTask is a unit of work run by RunParallelTasks.
type ParallelTask[T any] func() (T, error)

// RunParallelTasks runs tasks concurrently and returns their results in task
// order. All tasks run to completion; the returned error joins every failure.
func RunParallelTasks[T any](tasks ...ParallelTask[T]) ([]T, error) {
	var wg sync.WaitGroup
	results := make([]T, len(tasks))
	errs := make([]error, len(tasks))

	wg.Add(len(tasks))
	for i, task := range tasks {
		go func(index int, t ParallelTask[T]) {
			defer wg.Done()
			results[index], errs[index] = t()
		}(i, task)
	}

	wg.Wait()
	return results, errors.Join(errs...)
}
