// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package runbatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"sync"

	"github.com/matt-FFFFFF/mmdbatch/internal/ctxlog"
	"github.com/matt-FFFFFF/mmdbatch/internal/signalbroker"
)

const (
	maxBufferSize = 8 * 1024 * 1024 // 8MB
)

var _ Runnable = (*OSCommand)(nil)

var (
	// ErrBufferOverflow is returned when the output exceeds the max size.
	ErrBufferOverflow = fmt.Errorf("output exceeds max size of %d bytes", maxBufferSize)
	// ErrCouldNotStartProcess is returned when the process could not be started.
	ErrCouldNotStartProcess = errors.New("could not start process")
	// ErrFailedToReadBuffer is returned when the buffer from the operating system pipe could not be read.
	ErrFailedToReadBuffer = errors.New("failed to read buffer")
	// ErrFailedToCreatePipe is returned when the operating system pipe could not be created.
	ErrFailedToCreatePipe = errors.New("failed to create pipe")
	// ErrContextDone is returned when the process was killed because the context was done.
	ErrContextDone = errors.New("context done, process killed")
	// ErrSignalReceived is returned when a operating system signal is received by the child process.
	ErrSignalReceived = errors.New("signal received")
	// ErrDuplicateSignalReceived is returned when a duplicate signal is received, forcing process termination.
	ErrDuplicateSignalReceived = errors.New("duplicate signal received, process forcefully terminated")
	// ErrUnexpectedExitCode is returned when the process exits with a code that is not a success code.
	ErrUnexpectedExitCode = errors.New("unexpected exit code")
)

// OSCommand represents a single operating system process to run.
type OSCommand struct {
	Label            string            // Label used in logs and results.
	Path             string            // The executable to run (full path).
	Args             []string          // Arguments to the command, do not include the executable name itself.
	Cwd              string            // Working directory, empty means the current one.
	Env              map[string]string // Extra environment variables, added to os.Environ().
	SuccessExitCodes []int             // Exit codes that indicate success, defaults to 0.
	sigCh            chan os.Signal    // Channel to receive signals, allows mocking in test.
}

// GetLabel returns the label of the command.
func (c *OSCommand) GetLabel() string {
	if c.Label == "" {
		return filepath.Base(c.Path)
	}

	return c.Label
}

// Run implements the Runnable interface for OSCommand.
// It blocks until the process exits. The first signal of a kind received while
// the process runs is forwarded to it, the second kills it. The process is also
// killed when ctx is done.
func (c *OSCommand) Run(ctx context.Context) *Result {
	logger := ctxlog.Logger(ctx).
		With("runnableType", "OSCommand").
		With("label", c.GetLabel())

	logger.Debug("command info", "path", c.Path, "cwd", c.Cwd, "args", c.Args)

	successExitCodes := c.SuccessExitCodes
	if successExitCodes == nil {
		successExitCodes = []int{0}
	}

	sigCh := c.sigCh
	if sigCh == nil {
		sigCh = signalbroker.New(ctx)
		defer signalbroker.Stop(sigCh)
	}

	env := os.Environ()
	for k, v := range c.Env {
		env = append(env, k+"="+v)
	}

	rOut, wOut, err := os.Pipe()
	if err != nil {
		return newErrorResult(c.Label, errors.Join(ErrFailedToCreatePipe, err))
	}

	rErr, wErr, err := os.Pipe()
	if err != nil {
		closeAll(rOut, wOut)
		return newErrorResult(c.Label, errors.Join(ErrFailedToCreatePipe, err))
	}

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		closeAll(rOut, wOut, rErr, wErr)
		return newErrorResult(c.Label, errors.Join(ErrFailedToCreatePipe, err))
	}

	args := slices.Concat([]string{filepath.Base(c.Path)}, c.Args)

	ps, err := os.StartProcess(c.Path, args, &os.ProcAttr{
		Dir:   c.Cwd,
		Env:   env,
		Files: []*os.File{stdin, wOut, wErr},
	})

	// The child holds its own copies of these.
	closeAll(stdin, wOut, wErr)

	if err != nil {
		closeAll(rOut, rErr)
		return newErrorResult(c.Label, errors.Join(ErrCouldNotStartProcess, err))
	}

	logger.Debug("process started", "pid", ps.Pid)

	var (
		wg             sync.WaitGroup
		stdout, stderr []byte
		outErr, errErr error
	)

	wg.Add(2) //nolint:mnd

	go func() {
		defer wg.Done()
		stdout, outErr = readAllUpToMax(ctx, rOut, maxBufferSize)
	}()

	go func() {
		defer wg.Done()
		stderr, errErr = readAllUpToMax(ctx, rErr, maxBufferSize)
	}()

	done := make(chan struct{})
	watchErr := make(chan error, 1)

	go func() {
		watchErr <- watchProcess(ctx, ps, sigCh, done)
	}()

	state, psErr := ps.Wait()
	close(done)

	killErr := <-watchErr

	wg.Wait()
	closeAll(rOut, rErr)

	res := &Result{
		Label:    c.Label,
		ExitCode: -1,
		StdOut:   stdout,
		StdErr:   stderr,
	}

	if state != nil {
		res.ExitCode = state.ExitCode()
	}

	logger.Debug("process finished", "exitCode", res.ExitCode)

	switch {
	case killErr != nil || psErr != nil:
		res.Error = errors.Join(psErr, killErr)
		res.ExitCode = -1
		res.Status = ResultStatusError
	case slices.Contains(successExitCodes, res.ExitCode):
		res.Status = ResultStatusSuccess
	default:
		res.Error = fmt.Errorf("%w: exit status %d", ErrUnexpectedExitCode, res.ExitCode)
		res.Status = ResultStatusError
	}

	if outErr != nil || errErr != nil {
		res.Error = errors.Join(res.Error, outErr, errErr)
		res.Status = ResultStatusError
	}

	return res
}

// watchProcess forwards signals to ps and kills it when ctx is done or when a
// signal is received twice. It returns once done is closed, with the reasons
// the process was interfered with, if any.
func watchProcess(ctx context.Context, ps *os.Process, sigCh <-chan os.Signal, done <-chan struct{}) error {
	logger := ctxlog.Logger(ctx)
	signalCount := make(map[os.Signal]struct{})
	ctxDone := ctx.Done()

	var errs []error

	for {
		select {
		case <-done:
			return errors.Join(errs...)

		case s := <-sigCh:
			if _, ok := signalCount[s]; ok {
				logger.Info("received duplicate signal, killing process", "signal", s.String(), "pid", ps.Pid)
				killPs(ctx, ps)

				errs = append(errs, ErrDuplicateSignalReceived)

				continue
			}

			signalCount[s] = struct{}{}

			logger.Info("forwarding signal", "signal", s.String(), "pid", ps.Pid)

			if err := ps.Signal(s); err != nil {
				logger.Info("failed to send signal", "signal", s.String(), "error", err)
			}

			errs = append(errs, ErrSignalReceived)

		case <-ctxDone:
			logger.Info("context done, killing process", "pid", ps.Pid)
			killPs(ctx, ps)

			errs = append(errs, ErrContextDone)
			ctxDone = nil
		}
	}
}

// readAllUpToMax reads r until EOF, keeping at most maxBufferSize bytes.
// Anything beyond the limit is discarded so the writer never blocks on a full pipe.
func readAllUpToMax(ctx context.Context, r io.Reader, maxBufferSize int64) ([]byte, error) {
	var buf bytes.Buffer

	n, err := io.CopyN(&buf, r, maxBufferSize+1)
	if err != nil && !errors.Is(err, io.EOF) {
		return buf.Bytes(), errors.Join(ErrFailedToReadBuffer, err)
	}

	if n > maxBufferSize {
		discarded, _ := io.Copy(io.Discard, r)

		ctxlog.Debug(ctx, "buffer overflow in readAllUpToMax",
			"bytesRead", n+discarded,
			"maxBytes", maxBufferSize,
		)

		return buf.Bytes()[:maxBufferSize], ErrBufferOverflow
	}

	return buf.Bytes(), nil
}

// killPs kills the process, ignoring processes that have already exited.
func killPs(ctx context.Context, ps *os.Process) {
	if err := ps.Kill(); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			ctxlog.Debug(ctx, "process already done", "pid", ps.Pid)
			return
		}

		ctxlog.Error(ctx, "process kill error", "pid", ps.Pid, "error", err)

		return
	}

	ctxlog.Info(ctx, "process killed", "pid", ps.Pid)
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}
