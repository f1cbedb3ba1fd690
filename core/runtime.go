package core

import "context"

// Turn is the runtime's reaction to one model step: assistant text, zero or
// more requested tool invocations, or a finish signal when the runtime
// considers the session complete.
type Turn struct {
	Text     string         // accumulated assistant text for this step
	Calls    []FunctionCall // requested tool invocations, in model order
	Finished bool           // true when no further steps are needed
}

// Runtime is the external collaborator that decides which tools to invoke
// given the session so far. inboxgate ships a model-backed implementation in
// the agent package; tests use scripted runtimes.
//
// Implementations must respect ctx cancellation and may stream incremental
// output through emit (nil emit means the caller does not want partials).
type Runtime interface {
	Step(ctx context.Context, sess *Session, emit func(Event)) (Turn, error)
}

// RuntimeFunc is a functional adapter allowing ordinary functions to serve as
// a Runtime.
type RuntimeFunc func(ctx context.Context, sess *Session, emit func(Event)) (Turn, error)

// Step implements Runtime.
func (f RuntimeFunc) Step(ctx context.Context, sess *Session, emit func(Event)) (Turn, error) {
	return f(ctx, sess, emit)
}
