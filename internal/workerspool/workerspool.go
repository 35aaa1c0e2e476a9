// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

// Package workerspool runs independent chunks of array work on a bounded number of goroutines.
package workerspool

import (
	"runtime"
	"sync"

	"github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

// Pool of workers with a soft limit on parallelism.
//
// It is safe for concurrent use. Each ufunc engine owns its Pool, so the limit applies per engine.
type Pool struct {
	// maxParallelism is a soft target on the limit of parallel work to do.
	// 0 disables parallelism, and a negative value means unlimited.
	maxParallelism int

	mu         sync.Mutex
	numRunning int
}

// New returns a new Pool of workers with the given parallelism.
// If maxParallelism is 0 it uses runtime.NumCPU().
func New(maxParallelism int) *Pool {
	if maxParallelism == 0 {
		maxParallelism = runtime.NumCPU()
	}
	return &Pool{maxParallelism: maxParallelism}
}

// Disabled returns a Pool that never starts goroutines: every task is run inline by the caller.
func Disabled() *Pool {
	return &Pool{}
}

// IsEnabled returns whether parallelism is enabled (maxParallelism is != 0).
func (w *Pool) IsEnabled() bool {
	return w.maxParallelism != 0
}

// IsUnlimited returns whether parallelism is unlimited (maxParallelism < 0).
func (w *Pool) IsUnlimited() bool {
	return w.maxParallelism < 0
}

// MaxParallelism is a soft-target for parallelism.
func (w *Pool) MaxParallelism() int {
	return w.maxParallelism
}

// lockedIsFull returns whether all available workers are in use.
//
// It must be called with w.mu acquired.
func (w *Pool) lockedIsFull() bool {
	if w.maxParallelism == 0 {
		return true
	} else if w.maxParallelism < 0 {
		return false
	}
	return w.numRunning >= w.maxParallelism
}

// lockedRunTaskInGoroutine and keep tabs on w.numRunning.
//
// It must be called with w.mu acquired.
func (w *Pool) lockedRunTaskInGoroutine(task func()) {
	w.numRunning++
	go func() {
		defer func() {
			w.mu.Lock()
			w.numRunning--
			w.mu.Unlock()
		}()
		task()
	}()
}

// StartIfAvailable runs the task in a separate goroutine, if there are workers left.
// It returns true if it found a worker to run the function, false otherwise.
//
// It's up to the caller to synchronize the end of the task.
func (w *Pool) StartIfAvailable(task func()) bool {
	if w.IsUnlimited() {
		go task()
		return true
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.lockedIsFull() {
		return false
	}
	w.lockedRunTaskInGoroutine(task)
	return true
}

// RunChunks calls fn(chunk) for every chunk in [0, numChunks), using available workers and running the
// remaining chunks inline, and returns when all of them finished.
//
// A panic in any chunk is captured and doesn't stop the other chunks. The panic of the lowest chunk index
// is returned as an error: panics with an error value are returned as is, others are converted.
func (w *Pool) RunChunks(numChunks int, fn func(chunk int)) error {
	if numChunks <= 0 {
		return nil
	}
	failures := make([]any, numChunks)
	var wg sync.WaitGroup
	for chunk := range numChunks {
		task := func() {
			failures[chunk] = exceptions.Try(func() { fn(chunk) })
		}
		// The last chunk is always run by the caller, while the others are running.
		if chunk < numChunks-1 && w.IsEnabled() {
			wg.Add(1)
			started := w.StartIfAvailable(func() {
				defer wg.Done()
				task()
			})
			if started {
				continue
			}
			wg.Done()
		}
		task()
	}
	wg.Wait()
	for _, failure := range failures {
		if failure == nil {
			continue
		}
		if err, ok := failure.(error); ok {
			return err
		}
		return errors.Errorf("%v", failure)
	}
	return nil
}
