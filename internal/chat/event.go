// Package chat streams agent replies from the backend and folds them into a
// conversation the UI can render.
package chat

import "encoding/json"

// EventType discriminates an Event.
type EventType string

const (
	EventStart          EventType = "start"
	EventToken          EventType = "token"
	EventFunctionCall   EventType = "function_call"
	EventFunctionResult EventType = "function_result"
	EventDone           EventType = "done"
	EventError          EventType = "error"
)

// Metadata carries the per-type fields of an Event. Which fields are set
// depends on the event type.
type Metadata struct {
	ConversationID string          `json:"conversation_id,omitempty"`
	Model          string          `json:"model,omitempty"`
	ResponseTimeMS float64         `json:"response_time_ms,omitempty"`
	TokensUsed     int             `json:"tokens_used,omitempty"`
	FunctionName   string          `json:"function_name,omitempty"`
	Arguments      json.RawMessage `json:"arguments,omitempty"`
	Success        *bool           `json:"success,omitempty"`
	Result         json.RawMessage `json:"result,omitempty"`
	Iteration      int             `json:"iteration,omitempty"`
}

// Event is one record of the chat stream.
type Event struct {
	Type     EventType `json:"type"`
	Content  string    `json:"content,omitempty"`
	Metadata *Metadata `json:"metadata,omitempty"`
}

// Terminal reports whether e ends the stream.
func (e Event) Terminal() bool {
	return e.Type == EventDone || e.Type == EventError
}

// Meta returns the event metadata, never nil.
func (e Event) Meta() Metadata {
	if e.Metadata == nil {
		return Metadata{}
	}
	return *e.Metadata
}
