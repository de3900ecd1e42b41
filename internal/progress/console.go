// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/matt-FFFFFF/mmdbatch/internal/color"
)

var _ Reporter = (*ConsoleReporter)(nil)

// ConsoleReporter prints one line per event to a writer.
// Lines from concurrent workers are serialised and never interleave.
type ConsoleReporter struct {
	mu  sync.Mutex
	out io.Writer
}

// NewConsoleReporter creates a ConsoleReporter writing to out.
func NewConsoleReporter(out io.Writer) *ConsoleReporter {
	return &ConsoleReporter{out: out}
}

// Report implements Reporter.
func (cr *ConsoleReporter) Report(event Event) {
	line := FormatLine(event)
	if line == "" {
		return
	}

	cr.mu.Lock()
	defer cr.mu.Unlock()

	_, _ = io.WriteString(cr.out, line+"\n")
}

// Close implements Reporter.
func (cr *ConsoleReporter) Close() {}

// FormatLine renders an event as a console line, empty if the event is not printed.
func FormatLine(event Event) string {
	switch event.Type {
	case EventBatchStarted:
		return color.Colorize(fmt.Sprintf("Processing %d diagram files...", event.Data.Total), color.FgYellow)

	case EventStarted:
		var sb strings.Builder

		sb.WriteString(color.ColorizeNoReset("Compiling: ", color.FgCyan))
		sb.WriteString(color.ColorizeNoReset(event.Item, color.FgGreen))
		sb.WriteString(color.ColorizeNoReset(" → ", color.FgWhite))
		sb.WriteString(color.Colorize(event.Data.Output, color.FgGreen))

		return sb.String()

	case EventInfo:
		return color.Colorize(event.Message, color.FgBlue)

	case EventFailed:
		msg := fmt.Sprintf("[ERROR] could not compile %s", event.Item)
		if event.Data.Error != nil {
			msg += ": " + event.Data.Error.Error()
		}

		if event.Data.StderrLine != "" {
			msg += ": " + event.Data.StderrLine
		}

		return color.Colorize(msg, color.FgRed)

	case EventBatchFinished:
		return color.Colorize(fmt.Sprintf("Done! compiled %d/%d files in %.2f seconds",
			event.Data.Succeeded, event.Data.Total, event.Data.Elapsed.Seconds()), color.FgGreen)

	default:
		return ""
	}
}
