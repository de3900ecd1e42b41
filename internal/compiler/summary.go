// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package compiler

import "time"

// Summary is the outcome of a run.
type Summary struct {
	RunID     string        // Identifies the run in log lines
	Total     int           // Number of source files found
	Succeeded int           // Number of files compiled
	Elapsed   time.Duration // Wall-clock time from setup to the last result
}

// Failed returns the number of files that did not compile.
func (s Summary) Failed() int {
	return s.Total - s.Succeeded
}
