package events

import (
	"encoding/json"
	"time"
)

// EventPayload is the interface all typed payloads implement.
type EventPayload interface {
	EventType() EventType
}

// =============================================================================
// QUERY LIFECYCLE EVENTS
// =============================================================================

// QuerySubmittedPayload is emitted once a submission has entered Pending.
type QuerySubmittedPayload struct {
	Seq   uint64 `json:"seq"`
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

func (QuerySubmittedPayload) EventType() EventType { return EventQuerySubmitted }

// QuerySucceededPayload is emitted when an answer has been applied.
type QuerySucceededPayload struct {
	Seq          uint64        `json:"seq"`
	AnswerLength int           `json:"answer_length"`
	RawSources   int           `json:"raw_sources"`
	ValidSources int           `json:"valid_sources"`
	Duration     time.Duration `json:"duration"`
}

func (QuerySucceededPayload) EventType() EventType { return EventQuerySucceeded }

// FailureKind classifies a failed request for diagnostics only.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureProtocol  FailureKind = "protocol"
	FailureInternal  FailureKind = "internal"
)

// QueryFailedPayload is emitted when a submission ended in Failed.
type QueryFailedPayload struct {
	Seq      uint64        `json:"seq"`
	Kind     FailureKind   `json:"kind"`
	Error    string        `json:"error"`
	Duration time.Duration `json:"duration"`
}

func (QueryFailedPayload) EventType() EventType { return EventQueryFailed }

// QueryDiscardedPayload is emitted when a response arrived after a newer
// submission had started and was therefore not applied.
type QueryDiscardedPayload struct {
	Seq    uint64 `json:"seq"`
	Latest uint64 `json:"latest"`
	Failed bool   `json:"failed"`
}

func (QueryDiscardedPayload) EventType() EventType { return EventQueryDiscarded }

// =============================================================================
// TYPED EVENT CONSTRUCTORS
// =============================================================================

func NewTypedEvent(source EventSource, payload EventPayload) Event {
	return Event{
		ID:        generateEventID(),
		Type:      payload.EventType(),
		Timestamp: time.Now(),
		Source:    source,
		Payload:   toMap(payload),
	}
}

func NewTypedEventWithSubmission(source EventSource, payload EventPayload, submissionID string) Event {
	e := NewTypedEvent(source, payload)
	e.SubmissionID = submissionID
	return e
}

func toMap(v any) map[string]any {
	var result map[string]any
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return nil
	}
	return result
}

// =============================================================================
// TYPED PAYLOAD EXTRACTORS
// =============================================================================

func ExtractPayload[T EventPayload](e Event) (T, bool) {
	var result T
	if e.Type != result.EventType() {
		return result, false
	}
	data, err := json.Marshal(e.Payload)
	if err != nil {
		return result, false
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, false
	}
	return result, true
}

func GetQuerySubmittedPayload(e Event) (QuerySubmittedPayload, bool) {
	return ExtractPayload[QuerySubmittedPayload](e)
}

func GetQuerySucceededPayload(e Event) (QuerySucceededPayload, bool) {
	return ExtractPayload[QuerySucceededPayload](e)
}

func GetQueryFailedPayload(e Event) (QueryFailedPayload, bool) {
	return ExtractPayload[QueryFailedPayload](e)
}

func GetQueryDiscardedPayload(e Event) (QueryDiscardedPayload, bool) {
	return ExtractPayload[QueryDiscardedPayload](e)
}
