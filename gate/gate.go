// Package gate implements the human-in-the-loop action gate: every mutating
// operation on the inbox store is proposed as an ActionRequest, suspended,
// and only committed once a human resolves it with exactly one Decision.
package gate

import (
	"errors"
	"fmt"
	"sync"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/inbox"
	"github.com/hupe1980/inboxgate/logging"
)

// Options configures a Gate instance.
type Options struct {
	// Logger for decision audit logging. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Gate intercepts mutating actions before they reach the store and resolves
// them via exactly one Decision each. Proposals never mutate the store;
// rejections leave store and processed set untouched.
type Gate struct {
	store    *inbox.Store
	logger   logging.Logger
	mu       sync.Mutex
	resolved map[string]struct{}
	outcomes []core.Outcome
}

// New constructs a Gate over the given store.
func New(store *inbox.Store, optFns ...func(o *Options)) *Gate {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Gate{
		store:    store,
		logger:   opts.Logger,
		resolved: make(map[string]struct{}),
	}
}

// Propose validates the target id and builds an ActionRequest for the given
// action. It does not mutate the store. Unknown target ids return
// core.ErrNotFound, a recoverable condition the runtime can react to.
func (g *Gate) Propose(tool string, action core.Action, targetID string, args map[string]any) (*core.ActionRequest, error) {
	if _, err := g.store.Get(targetID); err != nil {
		return nil, fmt.Errorf("propose %s for record %s: %w", action, targetID, err)
	}

	req := core.ActionRequest{
		ID:       core.NewID(),
		Tool:     tool,
		Action:   action,
		TargetID: targetID,
		Args:     args,
	}

	g.logger.Debug("gate.propose", "request_id", req.ID, "action", string(action), "target_id", targetID)

	return &req, nil
}

// Resolve applies exactly one Decision to the request:
//
//	approve -> apply the request as originally proposed
//	edit    -> apply with Args replaced by the decision's Args (target id is
//	           never editable)
//	reject  -> no mutation; the reason is informational only
//
// A second resolution attempt on the same request fails with
// core.ErrAlreadyResolved.
func (g *Gate) Resolve(req *core.ActionRequest, decision core.Decision) (core.Outcome, error) {
	switch decision.Type {
	case core.DecisionApprove, core.DecisionEdit, core.DecisionReject:
	default:
		// a malformed decision must not burn the request's single resolution
		return core.Outcome{}, fmt.Errorf("resolve request %s: unknown decision type %q", req.ID, decision.Type)
	}

	g.mu.Lock()
	if _, done := g.resolved[req.ID]; done {
		g.mu.Unlock()
		return core.Outcome{}, fmt.Errorf("resolve request %s: %w", req.ID, core.ErrAlreadyResolved)
	}
	g.resolved[req.ID] = struct{}{}
	g.mu.Unlock()

	var (
		outcome core.Outcome
		err     error
	)

	switch decision.Type {
	case core.DecisionApprove:
		outcome, err = g.apply(req.Action, req.TargetID, req.Args)
	case core.DecisionEdit:
		outcome, err = g.apply(req.Action, req.TargetID, decision.Args)
	case core.DecisionReject:
		outcome = core.Outcome{
			RecordID: req.TargetID,
			Action:   req.Action,
			Applied:  false,
			Detail:   fmt.Sprintf("rejected by operator: %s", decision.Reason),
		}
	}

	if err != nil {
		return core.Outcome{}, err
	}

	g.mu.Lock()
	g.outcomes = append(g.outcomes, outcome)
	g.mu.Unlock()

	g.logger.Info("gate.resolve",
		"request_id", req.ID,
		"action", string(req.Action),
		"target_id", req.TargetID,
		"decision", string(decision.Type),
		"applied", outcome.Applied,
	)

	return outcome, nil
}

// apply commits a resolved action to the store. Replies record the outcome
// and mark the record processed; deletes remove the record (which marks it
// processed as a side effect).
//
// A target that vanished between proposal and resolution (e.g. deleted by an
// earlier approval in the same batch) is a recoverable condition: it yields an
// unapplied Outcome, not an error, so the runtime sees it as a regular tool
// result.
func (g *Gate) apply(action core.Action, targetID string, args map[string]any) (core.Outcome, error) {
	switch action {
	case core.ActionReply:
		rec, err := g.store.Get(targetID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return g.notFoundOutcome(action, targetID), nil
			}
			return core.Outcome{}, fmt.Errorf("apply reply to record %s: %w", targetID, err)
		}
		body, _ := args["body"].(string)
		g.store.MarkProcessed(targetID)
		return core.Outcome{
			RecordID: targetID,
			Action:   core.ActionReply,
			Applied:  true,
			Detail:   fmt.Sprintf("reply sent to %s: %s", rec.From, body),
		}, nil
	case core.ActionDelete:
		if err := g.store.Remove(targetID); err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return g.notFoundOutcome(action, targetID), nil
			}
			return core.Outcome{}, fmt.Errorf("apply delete of record %s: %w", targetID, err)
		}
		return core.Outcome{
			RecordID: targetID,
			Action:   core.ActionDelete,
			Applied:  true,
			Detail:   fmt.Sprintf("record %s deleted", targetID),
		}, nil
	default:
		return core.Outcome{}, fmt.Errorf("apply: unknown action %q", action)
	}
}

func (g *Gate) notFoundOutcome(action core.Action, targetID string) core.Outcome {
	return core.Outcome{
		RecordID: targetID,
		Action:   action,
		Applied:  false,
		Detail:   fmt.Sprintf("record %s not found", targetID),
	}
}

// Outcomes returns the ordered log of resolved outcomes (applied and
// rejected) for the session summary.
func (g *Gate) Outcomes() []core.Outcome {
	g.mu.Lock()
	defer g.mu.Unlock()
	res := make([]core.Outcome, len(g.outcomes))
	copy(res, g.outcomes)
	return res
}
