// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package runbatch runs independent units of work on a bounded worker pool.
// A unit of work is a Runnable: either an operating system process (OSCommand)
// or a Go function (FunctionCommand). Every runnable produces exactly one Result,
// and the pool hands results back in the order they complete.
package runbatch
