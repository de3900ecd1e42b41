// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"time"
)

// Event is a single progress update.
type Event struct {
	Type      EventType // What happened
	Item      string    // Source file name the event is about, empty for batch events
	Message   string    // Human-readable status message
	Timestamp time.Time // When the event occurred
	Data      EventData // Type-specific data
}

// EventType represents the type of progress event.
type EventType int

const (
	// EventBatchStarted is sent once, after the source files have been found.
	EventBatchStarted EventType = iota
	// EventStarted indicates a file is about to be compiled.
	EventStarted
	// EventInfo is an informational message about a file.
	EventInfo
	// EventCompleted indicates a file compiled successfully.
	EventCompleted
	// EventFailed indicates a file failed to compile.
	EventFailed
	// EventBatchFinished is sent once, after every file has a result.
	EventBatchFinished
)

// String implements the Stringer interface for EventType.
func (et EventType) String() string {
	switch et {
	case EventBatchStarted:
		return "batch started"
	case EventStarted:
		return "started"
	case EventInfo:
		return "info"
	case EventCompleted:
		return "completed"
	case EventFailed:
		return "failed"
	case EventBatchFinished:
		return "batch finished"
	default:
		return "unknown"
	}
}

// EventData contains type-specific information for progress events.
type EventData struct {
	// For EventStarted
	Output string // Name of the file being produced

	// For EventFailed
	Error      error  // Why the file failed
	StderrLine string // Last line the tool wrote to stderr, if any

	// For EventBatchStarted and EventBatchFinished
	Total     int           // Number of files in the batch
	Succeeded int           // Number of files compiled, EventBatchFinished only
	Elapsed   time.Duration // Wall-clock time of the batch, EventBatchFinished only
}

// Reporter is the interface for sending progress events.
// Implementations must be safe for concurrent use, workers report in parallel.
type Reporter interface {
	// Report sends a progress event.
	Report(event Event)
	// Close signals that no more events will be sent.
	Close()
}

// Listener receives progress events from a ChannelReporter.
type Listener interface {
	// OnEvent is called for each event, in the order they were reported.
	OnEvent(event Event)
}

// NullReporter is a no-op implementation of Reporter.
type NullReporter struct{}

// Report implements Reporter by doing nothing.
func (nr *NullReporter) Report(_ Event) {}

// Close implements Reporter by doing nothing.
func (nr *NullReporter) Close() {}

// NewNullReporter creates a new NullReporter.
func NewNullReporter() Reporter {
	return &NullReporter{}
}

// OrNull returns r, or a NullReporter if r is nil.
func OrNull(r Reporter) Reporter {
	if r == nil {
		return NewNullReporter()
	}

	return r
}
