package core

import (
	"time"

	"github.com/google/uuid"
)

// Event is the primary unit of communication between the session loop, the
// agent runtime and external clients (console, tests). After emission it
// should be treated as immutable. It captures:
//   - Correlation (SessionID, ID, Author)
//   - Conversational content (optional role-based Parts)
//   - Streaming metadata (Partial, TurnComplete)
//   - Error metadata for control / failure events
//   - High precision UTC timestamp
//
// Content may be nil for control or error-only events.
type Event struct {
	ID           string    `json:"id"`
	SessionID    string    `json:"session_id"`
	Author       string    `json:"author"`
	Timestamp    time.Time `json:"timestamp"`
	Content      *Content  `json:"content,omitempty"`
	Partial      *bool     `json:"partial,omitempty"`
	TurnComplete *bool     `json:"turn_complete,omitempty"`
	ErrorCode    *string   `json:"error_code,omitempty"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// NewEvent creates a bare event authored by 'author' bound to a session.
// Prefer helper constructors for common semantic categories (message,
// function call/response).
func NewEvent(sessionID, author string) Event {
	return Event{
		ID:        NewID(),
		SessionID: sessionID,
		Author:    author,
		Timestamp: time.Now().UTC(),
	}
}

// NewMessageEvent creates a non-user assistant message event with a single text part.
func NewMessageEvent(sessionID, author, message string) Event {
	e := NewEvent(sessionID, author)
	e.Content = &Content{Role: "assistant", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewUserMessageEvent creates a user-authored text message event.
func NewUserMessageEvent(sessionID, message string) Event {
	e := NewEvent(sessionID, "user")
	e.Content = &Content{Role: "user", Parts: []Part{TextPart{Text: message}}}
	return e
}

// NewPartialEvent wraps a streamed content fragment emitted mid-turn.
func NewPartialEvent(sessionID, author string, content Content) Event {
	e := NewEvent(sessionID, author)
	e.Content = &content
	partial := true
	e.Partial = &partial
	return e
}

// NewFunctionCallEvent represents the runtime requesting execution of a named tool.
func NewFunctionCallEvent(sessionID, author string, call FunctionCall) Event {
	e := NewEvent(sessionID, author)
	e.Content = &Content{
		Role:  "assistant",
		Parts: []Part{FunctionCallPart{FunctionCall: call}},
	}
	return e
}

// NewFunctionResponseEvent records the completion result (or error) of a tool
// invocation. If err is non-nil its message is copied into the response.Error
// field so the runtime sees failures as regular results.
func NewFunctionResponseEvent(sessionID, author, id, functionName string, result interface{}, err error) Event {
	e := NewEvent(sessionID, author)
	fr := FunctionResponse{ID: id, Name: functionName, Response: result}
	if err != nil {
		fr.Error = err.Error()
	}
	e.Content = &Content{Role: "tool", Parts: []Part{FunctionResponsePart{FunctionResponse: fr}}}
	return e
}

// NewID generates a new unique identifier for events and action requests.
func NewID() string { return uuid.NewString() }

// IsPartial reports whether this event represents a streaming / incomplete
// fragment that will be followed by additional events composing the final
// assistant turn.
func (e Event) IsPartial() bool { return e.Partial != nil && *e.Partial }

// GetFunctionCalls returns any FunctionCall parts contained within the event
// content preserving their original order.
func (e Event) GetFunctionCalls() []FunctionCall {
	if e.Content == nil {
		return nil
	}
	var calls []FunctionCall
	for _, p := range e.Content.Parts {
		if fc, ok := p.(FunctionCallPart); ok {
			calls = append(calls, fc.FunctionCall)
		}
	}
	return calls
}

// GetFunctionResponses returns any FunctionResponse parts contained within the
// event content preserving their original order.
func (e Event) GetFunctionResponses() []FunctionResponse {
	if e.Content == nil {
		return nil
	}
	var responses []FunctionResponse
	for _, p := range e.Content.Parts {
		if fr, ok := p.(FunctionResponsePart); ok {
			responses = append(responses, fr.FunctionResponse)
		}
	}
	return responses
}

// IsFinalResponse reports whether this event completes an assistant turn:
// not partial and carrying no pending tool calls or responses.
func (e Event) IsFinalResponse() bool {
	return len(e.GetFunctionCalls()) == 0 &&
		len(e.GetFunctionResponses()) == 0 &&
		!e.IsPartial()
}
