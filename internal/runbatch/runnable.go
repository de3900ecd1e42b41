// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
)

// Runnable is something that can be run by the WorkerPool.
type Runnable interface {
	// Run executes the work and returns its result. It must never return nil.
	// It should handle context cancellation and passing signals to any spawned process.
	Run(ctx context.Context) *Result
	// GetLabel returns the label or description of the runnable.
	GetLabel() string
}
