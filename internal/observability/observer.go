// Package observability provides structured run reporting for sync runs:
// a console observer for CLI output and Prometheus metrics for watch mode.
package observability

import (
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Observer receives structured events emitted during a sync run.
type Observer interface {
	// Printf logs an unstructured message.
	Printf(format string, v ...interface{})

	// Event emits a structured event.
	Event(event Event)

	// WithFields returns an Observer that attaches fields to every event.
	WithFields(fields map[string]string) Observer
}

// Event is a single structured occurrence within a run.
type Event struct {
	Type      EventType
	Message   string
	Resource  string
	Timestamp time.Time
	Fields    map[string]string
}

// EventType classifies run events.
type EventType string

const (
	// EventRunStarted indicates a sync run has begun.
	EventRunStarted EventType = "run.started"
	// EventRunCompleted indicates a sync run finished successfully.
	EventRunCompleted EventType = "run.completed"
	// EventRunFailed indicates a sync run finished with failures.
	EventRunFailed EventType = "run.failed"

	// EventPlanComputed indicates the diff between source and downstream is ready.
	EventPlanComputed EventType = "plan.computed"
	// EventEntryApplied indicates a single plan entry was applied.
	EventEntryApplied EventType = "entry.applied"
	// EventEntryFailed indicates a single plan entry failed to apply.
	EventEntryFailed EventType = "entry.failed"

	// EventPinRequested indicates an access code request was submitted.
	EventPinRequested EventType = "pin.requested"
	// EventPinLoaded indicates an access code reached the lock.
	EventPinLoaded EventType = "pin.loaded"
	// EventPinFailed indicates access code provisioning failed.
	EventPinFailed EventType = "pin.failed"
)

// NewRunID returns a correlation ID for a single sync run.
func NewRunID() string {
	return uuid.NewString()
}

// ConsoleObserver writes events through the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver returns an observer with no context fields.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{contextFields: make(map[string]string)}
}

// Printf implements Observer.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements Observer.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}
	log.Print(formatEvent(event))
}

// WithFields implements Observer.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	merged := make(map[string]string, len(o.contextFields)+len(fields))
	for k, v := range o.contextFields {
		merged[k] = v
	}
	for k, v := range fields {
		merged[k] = v
	}
	return &ConsoleObserver{contextFields: merged}
}

func formatEvent(event Event) string {
	parts := []string{string(event.Type)}

	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	if len(event.Fields) > 0 {
		keys := make([]string, 0, len(event.Fields))
		for k := range event.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fieldParts := make([]string, 0, len(keys))
		for _, k := range keys {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, event.Fields[k]))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}
	return strings.Join(parts, " ")
}

// NopObserver discards everything. Useful in tests.
type NopObserver struct{}

// Printf implements Observer.
func (NopObserver) Printf(format string, v ...interface{}) {}

// Event implements Observer.
func (NopObserver) Event(event Event) {}

// WithFields implements Observer.
func (n NopObserver) WithFields(fields map[string]string) Observer { return n }
