// Package inboxgate provides a high-level façade over the inbox action loop:
// an ordered record store, an approval gate for mutating actions, and a
// runner that alternates model steps with tool handling, suspending at the
// approval boundary until a human resolves each proposed action. Most
// applications interact with this package by:
//  1. Creating an InboxGate via New() with a seeded inbox and a model-backed
//     runtime (or overriding the default in-memory services)
//  2. Calling Process() per user turn, supplying an Approver for the gated
//     actions
//
// The façade delegates orchestration to runner.Runner while keeping setup
// ergonomics concise. All defaults are safe for local development and tests.
package inboxgate

import (
	"context"

	"github.com/hupe1980/inboxgate/checkpoint"
	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/inbox"
	"github.com/hupe1980/inboxgate/logging"
	"github.com/hupe1980/inboxgate/runner"
	"github.com/hupe1980/inboxgate/session"
)

// Options configures the InboxGate instance.
type Options struct {
	// Approver resolves pending action requests. Required when the runtime
	// carries gated tools.
	Approver runner.Approver

	// MaxTurns bounds the number of model steps per run.
	MaxTurns int

	// Stores (default to in-memory implementations if not provided).
	SessionStore core.SessionStore
	Saver        checkpoint.Saver

	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// InboxGate aggregates the store, gate and runner behind one handle.
type InboxGate struct {
	store  *inbox.Store
	gate   *gate.Gate
	runner *runner.Runner
}

// New creates an InboxGate over the given store and runtime. Any unset
// service is initialized with an in-memory implementation.
func New(store *inbox.Store, g *gate.Gate, rt runner.AgentRuntime, optFns ...func(o *Options)) *InboxGate {
	opts := Options{
		MaxTurns:     12,
		SessionStore: session.NewInMemoryStore(),
		Saver:        checkpoint.NewInMemorySaver(),
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(rt, g, func(o *runner.Options) {
		o.Approver = opts.Approver
		o.MaxTurns = opts.MaxTurns
		o.SessionStore = opts.SessionStore
		o.Saver = opts.Saver
		o.Logger = opts.Logger
	})

	return &InboxGate{store: store, gate: g, runner: r}
}

// Store returns the underlying record store.
func (ig *InboxGate) Store() *inbox.Store { return ig.store }

// Gate returns the underlying action gate.
func (ig *InboxGate) Gate() *gate.Gate { return ig.gate }

// Process runs one user turn to completion, streaming events through emit
// when non-nil, and returns the run summary.
func (ig *InboxGate) Process(ctx context.Context, sessionID, userText string, emit func(core.Event)) (runner.Summary, error) {
	return ig.runner.Run(ctx, sessionID, userText, emit)
}

// Resume continues a session that was checkpointed at the approval boundary:
// the stored pending actions are resolved through the configured Approver and
// the loop runs to completion.
func (ig *InboxGate) Resume(ctx context.Context, sessionID string, emit func(core.Event)) (runner.Summary, error) {
	return ig.runner.Resume(ctx, sessionID, emit)
}
