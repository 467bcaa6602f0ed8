package events

import "time"

// Event is anything published on the event stream.
type Event interface {
	// EventType is the upper-case code that selects the subject, e.g. COMMIT_FINISHED.
	EventType() string
	Payload() map[string]interface{}
	Timestamp() time.Time
}

// BaseEvent is the concrete event carried over the wire and rebuilt by subscribers.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	// CommitFinished is emitted once per commit run, whatever its outcome.
	CommitFinished = "COMMIT_FINISHED"
)

// NewCommitFinished wraps a commit report payload.
func NewCommitFinished(data map[string]interface{}, at time.Time) BaseEvent {
	return BaseEvent{Type: CommitFinished, Data: data, OccurredAt: at}
}

// Subject is the NATS subject an event of the given type is published on.
func Subject(eventType string) string {
	return "events." + eventType
}
