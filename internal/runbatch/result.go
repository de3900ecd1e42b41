// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"errors"
	"slices"
)

// ErrNilResult is used when a runnable returns no result at all.
var ErrNilResult = errors.New("runnable returned a nil result")

// ResultStatus is the outcome of a runnable.
type ResultStatus int

const (
	// ResultStatusUnknown means the outcome has not been decided yet.
	ResultStatusUnknown ResultStatus = iota
	// ResultStatusSuccess means the runnable succeeded.
	ResultStatusSuccess
	// ResultStatusError means the runnable failed for any reason.
	ResultStatusError
)

// String implements fmt.Stringer.
func (s ResultStatus) String() string {
	switch s {
	case ResultStatusSuccess:
		return "success"
	case ResultStatusError:
		return "error"
	default:
		return "unknown"
	}
}

// Result represents the outcome of running a command.
type Result struct {
	Label    string       // Label of the runnable
	Status   ResultStatus // Outcome
	ExitCode int          // Exit code of the process, -1 if it did not exit normally
	Error    error        // Error, if any
	StdOut   []byte       // Output from the process
	StdErr   []byte       // Error output from the process
}

// Succeeded reports whether the result is a success.
func (r *Result) Succeeded() bool {
	return r != nil && r.Status == ResultStatusSuccess
}

// Results is a slice of Result pointers, used to represent multiple results.
type Results []*Result

// HasError reports whether any result is not a success.
func (r Results) HasError() bool {
	return slices.ContainsFunc(r, func(v *Result) bool {
		return !v.Succeeded()
	})
}

// SuccessCount returns the number of successful results.
func (r Results) SuccessCount() int {
	n := 0

	for v := range slices.Values(r) {
		if v.Succeeded() {
			n++
		}
	}

	return n
}

// newErrorResult is the result for work that failed before or instead of running.
func newErrorResult(label string, err error) *Result {
	return &Result{
		Label:    label,
		Status:   ResultStatusError,
		ExitCode: -1,
		Error:    err,
	}
}
