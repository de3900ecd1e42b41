// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"context"
	"errors"
	"fmt"

	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
)

var _ Runnable = (*FunctionCommand)(nil)

// ErrFunctionCmdPanic is the error returned when a function command panics.
// It is constructed with the value that caused the panic.
type ErrFunctionCmdPanic struct {
	v any
}

// Error implements the error interface for ErrFunctionCmdPanic.
func (e *ErrFunctionCmdPanic) Error() string {
	const prefix = "function command panic:"

	switch x := e.v.(type) {
	case string:
		return fmt.Sprintf("%s %s", prefix, x)
	case error:
		return fmt.Sprintf("%s %s", prefix, x.Error())
	default:
		return fmt.Sprintf("%s %v", prefix, x)
	}
}

// Unwrap returns the panic value if it was an error.
func (e *ErrFunctionCmdPanic) Unwrap() error {
	if err, ok := e.v.(error); ok {
		return err
	}

	return nil
}

// NewErrFunctionCmdPanic creates a new ErrFunctionCmdPanic with the given value.
func NewErrFunctionCmdPanic(v any) error {
	return &ErrFunctionCmdPanic{v: v}
}

// FunctionCommandFunc is the function run by a FunctionCommand.
type FunctionCommandFunc func(ctx context.Context) error

// FunctionCommand runs a Go function as a Runnable.
// A nil error is a success, anything else (including a panic) is a failure.
type FunctionCommand struct {
	Label string
	Func  FunctionCommandFunc
}

// GetLabel returns the label of the command.
func (f *FunctionCommand) GetLabel() string {
	if f.Label == "" {
		return "FunctionCommand"
	}

	return f.Label
}

// Run implements the Runnable interface for FunctionCommand.
func (f *FunctionCommand) Run(ctx context.Context) (res *Result) {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "FunctionCommand").
		With("label", f.GetLabel())

	if f.Func == nil {
		logger.Debug("no function to run, returning success")
		return &Result{Label: f.Label, Status: ResultStatusSuccess}
	}

	defer func() {
		r := recover()
		if r == nil {
			return
		}

		logger.Error("function command panicked", "panic", r)

		res = newErrorResult(f.Label, NewErrFunctionCmdPanic(r))
	}()

	if err := f.Func(ctx); err != nil {
		logger.Debug("function command failed", "error", err)
		return newErrorResult(f.Label, err)
	}

	return &Result{Label: f.Label, Status: ResultStatusSuccess}
}

// IsPanic reports whether err came from a recovered panic.
func IsPanic(err error) bool {
	var p *ErrFunctionCmdPanic
	return errors.As(err, &p)
}
