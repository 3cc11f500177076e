// Package async provides helpers for running independent operations concurrently.
//
// The sync executor uses it to issue every operation of a batch at once and
// await them jointly: a failing operation never cancels its siblings, and all
// failures are reported together.
package async

import (
	"context"
	"sort"
)

// Task is a named asynchronous operation.
type Task struct {
	Name string
	Func func(context.Context) error
}

// TaskError pairs a failed task with its error.
type TaskError struct {
	Name string
	Err  error
}

// RunAll executes all tasks concurrently and waits for every one to finish.
// It returns one TaskError per failed task, sorted by task name so results
// are deterministic regardless of completion order. A nil slice means every
// task succeeded.
func RunAll(ctx context.Context, tasks []Task) []TaskError {
	if len(tasks) == 0 {
		return nil
	}

	type result struct {
		name string
		err  error
	}

	resultChan := make(chan result, len(tasks))

	for _, task := range tasks {
		go func() {
			resultChan <- result{name: task.Name, err: task.Func(ctx)}
		}()
	}

	var failures []TaskError
	for range len(tasks) {
		res := <-resultChan
		if res.err != nil {
			failures = append(failures, TaskError{Name: res.name, Err: res.err})
		}
	}

	sort.Slice(failures, func(i, j int) bool { return failures[i].Name < failures[j].Name })
	return failures
}
