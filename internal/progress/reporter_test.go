// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package progress

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestChannelReporter(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 10)
	require.NotNil(t, reporter)

	event := Event{
		Type:      EventStarted,
		Item:      "a.mmd",
		Timestamp: time.Now(),
	}

	reporter.Report(event)

	select {
	case received := <-reporter.Events():
		assert.Equal(t, event.Type, received.Type)
		assert.Equal(t, event.Item, received.Item)
	case <-time.After(100 * time.Millisecond):
		t.Fatal("event not received within timeout")
	}

	reporter.Close()
	require.Error(t, reporter.Context().Err())

	// Dropped, must not panic.
	reporter.Report(Event{Type: EventCompleted})
	reporter.Close()
}

func TestChannelReporter_BufferFull(t *testing.T) {
	reporter := NewChannelReporter(context.Background(), 1)

	reporter.Report(Event{Type: EventStarted, Item: "1"})
	// Must not block.
	reporter.Report(Event{Type: EventStarted, Item: "2"})

	reporter.Close()

	var got []Event
	for e := range reporter.Events() {
		got = append(got, e)
	}

	require.Len(t, got, 1)
	assert.Equal(t, "1", got[0].Item)
}

type mockListener struct {
	mu     sync.Mutex
	events []Event
}

func (ml *mockListener) OnEvent(event Event) {
	ml.mu.Lock()
	defer ml.mu.Unlock()

	ml.events = append(ml.events, event)
}

func TestChannelReporter_Listen(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 10)
	listener := &mockListener{}
	reporter.Listen(listener)

	events := []Event{
		{Type: EventBatchStarted, Data: EventData{Total: 1}},
		{Type: EventStarted, Item: "a.mmd"},
		{Type: EventCompleted, Item: "a.mmd"},
		{Type: EventBatchFinished, Data: EventData{Total: 1, Succeeded: 1}},
	}

	for _, event := range events {
		reporter.Report(event)
	}

	// Close waits for the listener to drain the buffer.
	reporter.Close()

	listener.mu.Lock()
	defer listener.mu.Unlock()

	require.Len(t, listener.events, len(events))

	for i, want := range events {
		assert.Equal(t, want.Type, listener.events[i].Type)
		assert.Equal(t, want.Item, listener.events[i].Item)
	}
}

func TestChannelReporter_ConcurrentReportAndClose(t *testing.T) {
	defer goleak.VerifyNone(t)

	reporter := NewChannelReporter(context.Background(), 4)
	reporter.Listen(&mockListener{})

	wg := sync.WaitGroup{}

	for range 8 {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for range 100 {
				reporter.Report(Event{Type: EventInfo})
			}
		}()
	}

	reporter.Close()
	wg.Wait()
}
