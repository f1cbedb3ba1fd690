package core

import (
	"context"

	"github.com/hupe1980/inboxgate/logging"
)

// ToolContext provides a constrained, auditable surface for tool
// implementations invoked during a session. It carries correlation ids and
// read access to session state without handing out the session itself.
type ToolContext struct {
	ctx            context.Context
	session        *Session
	functionCallID string

	*loggerAdapter
}

// NewToolContext constructs a tool context bound to a session and a unique
// functionCallID correlating the model request with the tool execution.
func NewToolContext(ctx context.Context, sess *Session, functionCallID string, logger logging.Logger) *ToolContext {
	return &ToolContext{
		ctx:            ctx,
		session:        sess,
		functionCallID: functionCallID,
		loggerAdapter:  newLoggerAdapter(logger),
	}
}

// Context returns the context associated with the tool invocation.
func (tc *ToolContext) Context() context.Context {
	if tc.ctx == nil {
		return context.Background()
	}
	return tc.ctx
}

// SessionID returns the session ID associated with the tool invocation.
func (tc *ToolContext) SessionID() string {
	if tc.session == nil {
		return ""
	}
	return tc.session.ID
}

// FunctionCallID returns the function call ID associated with the tool invocation.
func (tc *ToolContext) FunctionCallID() string { return tc.functionCallID }

// Logger returns the logger associated with the tool invocation.
func (tc *ToolContext) Logger() logging.Logger { return tc.loggerAdapter.Logger() }

// GetState retrieves session state for the given key.
func (tc *ToolContext) GetState(k string) (any, bool) {
	if tc.session == nil {
		return nil, false
	}
	return tc.session.GetState(k)
}

// SetState records a state mutation on the session.
func (tc *ToolContext) SetState(k string, v any) {
	if tc.session != nil {
		tc.session.SetState(k, v)
	}
}
