// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

// Package tui provides a live terminal view of a compile run.
//
// Each source file gets one row: a spinner while the renderer runs, then a
// tick or a cross with the elapsed time and, on failure, the reason. A footer
// shows the counts so far. The view closes by itself once the batch has
// finished, or earlier with 'q' or ctrl+c, which also cancels the run.
package tui
