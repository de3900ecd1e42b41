// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"runtime"
	"sync"

	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
)

const (
	maxDefaultPoolSize  = 32
	defaultPoolHeadroom = 4
)

// DefaultPoolSize is the worker count used when none is configured.
func DefaultPoolSize() int {
	return min(maxDefaultPoolSize, runtime.NumCPU()+defaultPoolHeadroom)
}

// WorkerPool runs runnables on a fixed number of goroutines.
type WorkerPool struct {
	Size int // Number of workers, values <= 0 mean DefaultPoolSize.
}

// workers returns the number of goroutines to start for n jobs.
func (p *WorkerPool) workers(n int) int {
	size := p.Size
	if size <= 0 {
		size = DefaultPoolSize()
	}

	return max(1, min(size, n))
}

// Run starts the workers and returns a channel that yields exactly one result
// per runnable, in completion order. The channel is closed once every runnable
// has produced its result.
//
// Jobs taken from the queue after ctx is done are not run, they resolve to an
// error result carrying the context error.
func (p *WorkerPool) Run(ctx context.Context, runnables []Runnable) <-chan *Result {
	results := make(chan *Result, len(runnables))

	if len(runnables) == 0 {
		close(results)
		return results
	}

	jobs := make(chan Runnable, len(runnables))
	for _, r := range runnables {
		jobs <- r
	}

	close(jobs)

	n := p.workers(len(runnables))

	ctxlog.Debug(ctx, "starting worker pool", "workers", n, "jobs", len(runnables))

	wg := &sync.WaitGroup{}
	wg.Add(n)

	for i := range n {
		go func(id int) {
			defer wg.Done()

			logger := ctxlog.Logger(ctx).With("worker", id)

			for job := range jobs {
				if err := ctx.Err(); err != nil {
					logger.Debug("context done, skipping job", "label", job.GetLabel())
					results <- newErrorResult(job.GetLabel(), err)

					continue
				}

				res := job.Run(ctx)
				if res == nil {
					res = newErrorResult(job.GetLabel(), ErrNilResult)
				}

				results <- res
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	return results
}
