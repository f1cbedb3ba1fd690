package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/inboxgate/checkpoint"
	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/logging"
	"github.com/hupe1980/inboxgate/session"
	"github.com/hupe1980/inboxgate/tool"
)

// State names the phases of the session loop.
type State string

const (
	// StateIdle is the initial state before any model call.
	StateIdle State = "IDLE"
	// StateAwaitingModel means a model step is in flight.
	StateAwaitingModel State = "AWAITING_MODEL"
	// StateAwaitingApproval means action requests are pending human decisions.
	StateAwaitingApproval State = "AWAITING_APPROVAL"
	// StateDone means the loop finished with a final assistant answer.
	StateDone State = "DONE"
)

// stateKey is the session state key mirroring the loop's current phase.
const stateKey = "loop_state"

// Approver supplies the human decision for a proposed action. Implementations
// block until a decision is available (console prompt, test script, queue).
type Approver interface {
	Decide(req core.ActionRequest) (core.Decision, error)
}

// ApproverFunc is a functional adapter for Approver.
type ApproverFunc func(req core.ActionRequest) (core.Decision, error)

// Decide implements Approver.
func (f ApproverFunc) Decide(req core.ActionRequest) (core.Decision, error) { return f(req) }

// AgentRuntime is the runtime surface the runner drives: model steps plus
// tool lookup and direct execution. agent.ModelAgent implements it; tests use
// scripted fakes.
type AgentRuntime interface {
	core.Runtime

	GetTool(name string) (tool.Tool, bool)
	ExecuteTool(ctx context.Context, sess *core.Session, call core.FunctionCall) (any, error)
}

// Summary reports what a finished run did.
type Summary struct {
	// Text is the final assistant answer.
	Text string
	// Outcomes lists every resolved action in order, applied and rejected.
	Outcomes []core.Outcome
	// ProcessedIDs lists the record ids whose actions were applied, in
	// resolution order.
	ProcessedIDs []string
}

// Options holds dependency and configuration overrides passed to New.
type Options struct {
	// Approver resolves pending action requests. Required when the runtime
	// carries gated tools.
	Approver Approver
	// SessionStore persists session history. Defaults to in-memory.
	SessionStore core.SessionStore
	// Saver checkpoints the session at the approval boundary. Defaults to
	// in-memory.
	Saver checkpoint.Saver
	// MaxTurns bounds the number of model steps per run.
	MaxTurns int
	// Logger for loop transition logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Runner coordinates the inbox action loop: it alternates model steps with
// tool handling, diverting gated tool calls through the approval gate and
// feeding every result back into the session until the runtime finishes.
//
// A Runner is safe for sequential reuse across sessions; concurrent runs
// should use separate sessions.
type Runner struct {
	runtime  AgentRuntime
	gate     *gate.Gate
	approver Approver

	sessionStore core.SessionStore
	saver        checkpoint.Saver
	maxTurns     int
	logger       logging.Logger
}

// New constructs a Runner. The gate may be nil for runtimes without gated
// tools (plain conversational loops).
func New(rt AgentRuntime, g *gate.Gate, optFns ...func(o *Options)) *Runner {
	opts := Options{
		SessionStore: session.NewInMemoryStore(),
		Saver:        checkpoint.NewInMemorySaver(),
		MaxTurns:     12,
		Logger:       logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Runner{
		runtime:      rt,
		gate:         g,
		approver:     opts.Approver,
		sessionStore: opts.SessionStore,
		saver:        opts.Saver,
		maxTurns:     opts.MaxTurns,
		logger:       opts.Logger,
	}
}

// pendingCall pairs a model function call with the action request it proposed
// so the eventual outcome can be answered under the original call id.
type pendingCall struct {
	call core.FunctionCall
	req  *core.ActionRequest
}

// Run executes one user turn to completion: model steps alternate with tool
// handling until the runtime produces a final answer. Gated tool calls
// suspend the loop at the approval boundary; the configured Approver resolves
// them one Decision at a time before the loop resumes.
//
// Events (partial chunks, assistant turns, tool results) stream through emit
// when non-nil.
func (r *Runner) Run(ctx context.Context, sessionID, userText string, emit func(core.Event)) (Summary, error) {
	sess, err := r.sessionStore.Get(sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("get session: %w", err)
	}

	r.setState(sess, StateIdle)

	userEv := core.NewUserMessageEvent(sess.ID, userText)
	sess.AddEvent(userEv)
	if err := r.sessionStore.AppendEvent(sess.ID, userEv); err != nil {
		return Summary{}, fmt.Errorf("append user event: %w", err)
	}
	r.emit(emit, userEv)

	finalText, err := r.loop(ctx, sess, emit)
	if err != nil {
		return Summary{}, err
	}

	return r.finish(sess, finalText), nil
}

// Resume picks up a session that was abandoned at the approval boundary: the
// checkpointed snapshot is loaded, its pending action requests are replayed
// through the approver and gate, and the loop re-enters normally until the
// runtime finishes.
func (r *Runner) Resume(ctx context.Context, sessionID string, emit func(core.Event)) (Summary, error) {
	sess, ok, err := r.saver.Load(sessionID)
	if err != nil {
		return Summary{}, fmt.Errorf("load checkpoint: %w", err)
	}
	if !ok {
		return Summary{}, fmt.Errorf("no checkpoint for session %s", sessionID)
	}

	r.restore(sess)

	pending, err := r.pendingCalls(sess)
	if err != nil {
		return Summary{}, err
	}
	if len(pending) > 0 {
		if err := r.resolvePending(sess, pending, emit); err != nil {
			return Summary{}, err
		}
	}

	finalText, err := r.loop(ctx, sess, emit)
	if err != nil {
		return Summary{}, err
	}

	return r.finish(sess, finalText), nil
}

// loop alternates model steps with tool handling until the runtime produces a
// final answer or the turn budget runs out.
func (r *Runner) loop(ctx context.Context, sess *core.Session, emit func(core.Event)) (string, error) {
	for turnCount := 0; ; turnCount++ {
		if turnCount >= r.maxTurns {
			return "", fmt.Errorf("run exceeded %d turns without finishing", r.maxTurns)
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}

		r.setState(sess, StateAwaitingModel)

		turn, err := r.runtime.Step(ctx, sess, emit)
		if err != nil {
			return "", fmt.Errorf("runtime step: %w", err)
		}
		r.mirrorLastEvent(sess)

		if turn.Finished {
			return turn.Text, nil
		}

		pending, err := r.handleCalls(ctx, sess, turn.Calls, emit)
		if err != nil {
			return "", err
		}

		if len(pending) > 0 {
			if err := r.resolvePending(sess, pending, emit); err != nil {
				return "", err
			}
		}
	}
}

// finish marks the loop done, drops the checkpoint and builds the summary.
func (r *Runner) finish(sess *core.Session, finalText string) Summary {
	r.setState(sess, StateDone)
	if err := r.saver.Delete(sess.ID); err != nil {
		r.logger.Warn("runner.checkpoint.delete_failed", "session_id", sess.ID, "error", err.Error())
	}
	return r.summarize(finalText)
}

// restore replays a checkpointed session into the session store. When the
// store already carries the session's history (resume within the same
// process) the replay is skipped.
func (r *Runner) restore(sess *core.Session) {
	stored, err := r.sessionStore.Get(sess.ID)
	if err == nil && len(stored.GetEvents()) > 0 {
		return
	}
	for _, ev := range sess.GetEvents() {
		if err := r.sessionStore.AppendEvent(sess.ID, ev); err != nil {
			r.logger.Warn("runner.event.append_failed", "session_id", sess.ID, "error", err.Error())
		}
	}
	if err := r.sessionStore.ApplyDelta(sess.ID, sess.Clone().State); err != nil {
		r.logger.Warn("runner.state.apply_failed", "session_id", sess.ID, "error", err.Error())
	}
	if err := r.sessionStore.SetPending(sess.ID, sess.GetPending()); err != nil {
		r.logger.Warn("runner.pending.apply_failed", "session_id", sess.ID, "error", err.Error())
	}
}

// pendingCalls pairs the checkpointed pending action requests with the tool
// calls that proposed them. Immediate tools are answered in the same turn
// their call was made, so the unanswered calls in history correspond to the
// pending requests in order.
func (r *Runner) pendingCalls(sess *core.Session) ([]pendingCall, error) {
	reqs := sess.GetPending()
	if len(reqs) == 0 {
		return nil, nil
	}

	answered := make(map[string]struct{})
	var calls []core.FunctionCall
	for _, ev := range sess.GetEvents() {
		calls = append(calls, ev.GetFunctionCalls()...)
		for _, fr := range ev.GetFunctionResponses() {
			answered[fr.ID] = struct{}{}
		}
	}

	var open []core.FunctionCall
	for _, c := range calls {
		if _, ok := answered[c.ID]; !ok {
			open = append(open, c)
		}
	}

	if len(open) != len(reqs) {
		return nil, fmt.Errorf("checkpoint carries %d pending requests but %d unanswered tool calls", len(reqs), len(open))
	}

	pending := make([]pendingCall, 0, len(reqs))
	for i := range reqs {
		pending = append(pending, pendingCall{call: open[i], req: &reqs[i]})
	}
	return pending, nil
}

// handleCalls routes each requested tool call: gated tools propose action
// requests, everything else executes immediately with the result fed back
// into the session.
func (r *Runner) handleCalls(ctx context.Context, sess *core.Session, calls []core.FunctionCall, emit func(core.Event)) ([]pendingCall, error) {
	var pending []pendingCall

	for _, call := range calls {
		t, ok := r.runtime.GetTool(call.Name)
		if !ok {
			r.recordToolResult(sess, call, nil, fmt.Errorf("tool %s not found", call.Name), emit)
			continue
		}

		proposer, gated := t.(tool.Proposer)
		if !gated {
			result, err := r.runtime.ExecuteTool(ctx, sess, call)
			r.recordToolResult(sess, call, result, err, emit)
			continue
		}

		args := make(map[string]any)
		if call.Arguments != "" {
			if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
				r.recordToolResult(sess, call, nil, fmt.Errorf("unmarshal args for %s: %w", call.Name, err), emit)
				continue
			}
		}

		toolCtx := core.NewToolContext(ctx, sess, call.ID, r.logger)
		req, err := proposer.Propose(toolCtx, args)
		if err != nil {
			// invalid proposals (unknown target, bad args) surface to the
			// model as ordinary tool results
			r.recordToolResult(sess, call, nil, err, emit)
			continue
		}

		r.logger.Info("runner.action.proposed",
			"session_id", sess.ID,
			"request_id", req.ID,
			"tool", req.Tool,
			"target_id", req.TargetID,
		)

		pending = append(pending, pendingCall{call: call, req: req})
	}

	return pending, nil
}

// resolvePending suspends the loop at the approval boundary: the pending set
// is recorded on the session and checkpointed, then each request is resolved
// through the approver and gate, with outcomes fed back as tool results.
func (r *Runner) resolvePending(sess *core.Session, pending []pendingCall, emit func(core.Event)) error {
	if r.approver == nil {
		return errors.New("gated tool proposed an action but no approver is configured")
	}
	if r.gate == nil {
		return errors.New("gated tool proposed an action but no gate is configured")
	}

	r.setState(sess, StateAwaitingApproval)

	reqs := make([]core.ActionRequest, 0, len(pending))
	for _, pc := range pending {
		reqs = append(reqs, *pc.req)
	}
	sess.SetPending(reqs)
	if err := r.sessionStore.SetPending(sess.ID, reqs); err != nil {
		return fmt.Errorf("persist pending requests: %w", err)
	}
	if err := r.saver.Save(sess); err != nil {
		return fmt.Errorf("checkpoint session: %w", err)
	}

	for _, pc := range pending {
		decision, err := r.approver.Decide(*pc.req)
		if err != nil {
			return fmt.Errorf("decide request %s: %w", pc.req.ID, err)
		}

		outcome, err := r.gate.Resolve(pc.req, decision)
		if err != nil {
			return fmt.Errorf("resolve request %s: %w", pc.req.ID, err)
		}

		var result any = outcome.Detail
		if !outcome.Applied {
			result = fmt.Sprintf("Action not taken: %s", outcome.Detail)
		}
		r.recordToolResult(sess, pc.call, result, nil, emit)
	}

	sess.ClearPending()
	if err := r.sessionStore.SetPending(sess.ID, nil); err != nil {
		return fmt.Errorf("clear pending requests: %w", err)
	}
	if err := r.saver.Save(sess); err != nil {
		return fmt.Errorf("checkpoint session: %w", err)
	}

	return nil
}

// recordToolResult appends a function response event to the session (and
// store) and forwards it to the event consumer. Tool errors travel inside the
// response so the model sees them as regular results.
func (r *Runner) recordToolResult(sess *core.Session, call core.FunctionCall, result any, err error, emit func(core.Event)) {
	ev := core.NewFunctionResponseEvent(sess.ID, "runner", call.ID, call.Name, result, err)
	sess.AddEvent(ev)
	if appendErr := r.sessionStore.AppendEvent(sess.ID, ev); appendErr != nil {
		r.logger.Warn("runner.event.append_failed", "session_id", sess.ID, "error", appendErr.Error())
	}
	r.emit(emit, ev)
}

// mirrorLastEvent copies the runtime's latest session event into the session
// store. The runtime appends its assistant turn to the working session; the
// store only learns about it here.
func (r *Runner) mirrorLastEvent(sess *core.Session) {
	events := sess.GetEvents()
	if len(events) == 0 {
		return
	}
	last := events[len(events)-1]
	if err := r.sessionStore.AppendEvent(sess.ID, last); err != nil {
		r.logger.Warn("runner.event.append_failed", "session_id", sess.ID, "error", err.Error())
	}
}

// setState records a loop phase transition on the session and in the store.
func (r *Runner) setState(sess *core.Session, state State) {
	sess.SetState(stateKey, string(state))
	if err := r.sessionStore.ApplyDelta(sess.ID, map[string]any{stateKey: string(state)}); err != nil {
		r.logger.Warn("runner.state.apply_failed", "session_id", sess.ID, "error", err.Error())
	}
	r.logger.Debug("runner.state", "session_id", sess.ID, "state", string(state))
}

// summarize collects the gate's outcome log into a run summary.
func (r *Runner) summarize(finalText string) Summary {
	summary := Summary{Text: finalText}
	if r.gate == nil {
		return summary
	}
	summary.Outcomes = r.gate.Outcomes()
	for _, o := range summary.Outcomes {
		if o.Applied {
			summary.ProcessedIDs = append(summary.ProcessedIDs, o.RecordID)
		}
	}
	return summary
}

func (r *Runner) emit(emit func(core.Event), ev core.Event) {
	if emit != nil {
		emit(ev)
	}
}
