package provisioning

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/m1yag1/globusctl/internal/globus"
)

// Logger is the minimal logging interface phases use for free-form
// progress output.
type Logger interface {
	Printf(format string, v ...interface{})
}

// Observer defines the interface for structured observability during
// reconciliation.
type Observer interface {
	Logger

	// Event emits a structured event
	Event(event Event)

	// Progress reports progress for a phase
	Progress(phase string, current, total int)

	// WithFields returns a new Observer with additional context fields
	WithFields(fields map[string]string) Observer
}

// Event represents a structured reconcile event.
type Event struct {
	Type      EventType         // Type of event
	Phase     string            // Phase name (e.g., "identity", "transfer")
	Message   string            // Human-readable message
	Resource  string            // Resource name/ID if applicable
	Timestamp time.Time         // When the event occurred
	Fields    map[string]string // Additional contextual fields
}

// EventType represents the type of reconcile event.
type EventType string

const (
	// EventPhaseStarted indicates a reconcile phase has started.
	EventPhaseStarted EventType = "phase.started"
	// EventPhaseCompleted indicates a reconcile phase completed successfully.
	EventPhaseCompleted EventType = "phase.completed"
	// EventPhaseFailed indicates a reconcile phase failed.
	EventPhaseFailed EventType = "phase.failed"

	// EventResourceCreated indicates a resource was created.
	EventResourceCreated EventType = "resource.created"
	// EventResourceUpdated indicates a resource was updated.
	EventResourceUpdated EventType = "resource.updated"
	// EventResourceDeleted indicates a resource was deleted.
	EventResourceDeleted EventType = "resource.deleted"
	// EventResourceUnchanged indicates a resource already matched the
	// desired state.
	EventResourceUnchanged EventType = "resource.unchanged"
	// EventResourceSkipped indicates an operation was skipped, for
	// example for lack of a high-assurance session.
	EventResourceSkipped EventType = "resource.skipped"

	// EventValidationWarning indicates a validation warning.
	EventValidationWarning EventType = "validation.warning"
	// EventValidationError indicates a validation error.
	EventValidationError EventType = "validation.error"

	// EventProgress indicates progress in a long-running operation.
	EventProgress EventType = "progress"
)

// outcomeEventTypes maps reconcile outcomes to their event types.
var outcomeEventTypes = map[globus.Outcome]EventType{
	globus.OutcomeCreated:   EventResourceCreated,
	globus.OutcomeUpdated:   EventResourceUpdated,
	globus.OutcomeDeleted:   EventResourceDeleted,
	globus.OutcomeUnchanged: EventResourceUnchanged,
	globus.OutcomeSkipped:   EventResourceSkipped,
}

// ConsoleObserver implements Observer using the standard log package.
type ConsoleObserver struct {
	contextFields map[string]string
}

// NewConsoleObserver creates a new console-based observer.
func NewConsoleObserver() *ConsoleObserver {
	return &ConsoleObserver{
		contextFields: make(map[string]string),
	}
}

// Printf implements the Logger interface.
func (o *ConsoleObserver) Printf(format string, v ...interface{}) {
	log.Printf(format, v...)
}

// Event implements the Observer interface.
func (o *ConsoleObserver) Event(event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	// Merge context fields
	if event.Fields == nil {
		event.Fields = make(map[string]string)
	}
	for k, v := range o.contextFields {
		if _, exists := event.Fields[k]; !exists {
			event.Fields[k] = v
		}
	}

	log.Print(o.formatEvent(event))
}

// Progress implements the Observer interface.
func (o *ConsoleObserver) Progress(phase string, current, total int) {
	if total == 0 {
		log.Printf("[%s] Progress: %d/%d", phase, current, total)
		return
	}
	percentage := (current * 100) / total
	log.Printf("[%s] Progress: %d/%d (%d%%)", phase, current, total, percentage)
}

// WithFields implements the Observer interface.
func (o *ConsoleObserver) WithFields(fields map[string]string) Observer {
	newFields := make(map[string]string)
	for k, v := range o.contextFields {
		newFields[k] = v
	}
	for k, v := range fields {
		newFields[k] = v
	}

	return &ConsoleObserver{
		contextFields: newFields,
	}
}

// formatEvent formats an event for console output.
func (o *ConsoleObserver) formatEvent(event Event) string {
	var parts []string

	parts = append(parts, string(event.Type))

	if event.Phase != "" {
		parts = append(parts, fmt.Sprintf("[%s]", event.Phase))
	}
	if event.Resource != "" {
		parts = append(parts, fmt.Sprintf("resource=%s", event.Resource))
	}

	parts = append(parts, event.Message)

	if len(event.Fields) > 0 {
		var fieldParts []string
		for k, v := range event.Fields {
			fieldParts = append(fieldParts, fmt.Sprintf("%s=%s", k, v))
		}
		parts = append(parts, fmt.Sprintf("(%s)", strings.Join(fieldParts, ", ")))
	}

	return strings.Join(parts, " ")
}

// Helper functions for common events

// LogPhaseStart logs a phase start event.
func LogPhaseStart(observer Observer, phase string) {
	observer.Event(Event{
		Type:    EventPhaseStarted,
		Phase:   phase,
		Message: "starting",
	})
}

// LogPhaseComplete logs a phase completion event.
func LogPhaseComplete(observer Observer, phase string, duration time.Duration) {
	observer.Event(Event{
		Type:    EventPhaseCompleted,
		Phase:   phase,
		Message: fmt.Sprintf("completed in %v", duration.Round(time.Millisecond)),
	})
}

// LogPhaseFailed logs a phase failure event.
func LogPhaseFailed(observer Observer, phase string, err error) {
	observer.Event(Event{
		Type:    EventPhaseFailed,
		Phase:   phase,
		Message: fmt.Sprintf("failed: %v", err),
	})
}

// LogOutcome logs the reconcile outcome of one resource.
func LogOutcome(observer Observer, phase, resourceType, resourceName, resourceID string, outcome globus.Outcome) {
	eventType, ok := outcomeEventTypes[outcome]
	if !ok {
		eventType = EventProgress
	}

	fields := map[string]string{"type": resourceType}
	if resourceID != "" {
		fields["id"] = resourceID
	}
	observer.Event(Event{
		Type:     eventType,
		Phase:    phase,
		Resource: resourceName,
		Message:  fmt.Sprintf("%s %s", resourceType, outcome),
		Fields:   fields,
	})
}

// LogWarning logs a non-fatal condition, such as an operation skipped
// for lack of a high-assurance session.
func LogWarning(observer Observer, phase, message string) {
	observer.Event(Event{
		Type:    EventValidationWarning,
		Phase:   phase,
		Message: message,
	})
}
