package tool

import (
	"errors"
	"fmt"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/internal/util"
)

// GatedTool exposes a mutating action behind the approval gate. It implements
// Proposer: the runner never calls the effect directly but asks the tool to
// build an ActionRequest, which is committed only through gate.Resolve.
//
// The argument schema must contain a string property named TargetKey holding
// the record id. The remaining arguments travel with the request and are the
// part a human may edit; the target id itself is never editable.
type GatedTool struct {
	name        string
	description string
	parameters  map[string]any
	gate        *gate.Gate
	action      core.Action
	targetKey   string
}

// NewGatedTool constructs a GatedTool for the given action.
func NewGatedTool(
	name, description string,
	parameters map[string]any,
	g *gate.Gate,
	action core.Action,
	targetKey string,
) *GatedTool {
	return &GatedTool{
		name:        name,
		description: description,
		parameters:  parameters,
		gate:        g,
		action:      action,
		targetKey:   targetKey,
	}
}

// Name returns the unique tool name.
func (t *GatedTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *GatedTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *GatedTool) Parameters() map[string]any { return t.parameters }

// Call rejects direct invocation. Gated tools only execute through the
// propose and resolve cycle.
func (t *GatedTool) Call(toolCtx *core.ToolContext, _ map[string]any) (any, error) {
	toolCtx.Logger().Warn("tool.call.gated", "tool", t.name)

	return nil, &ToolError{
		Tool:    t.name,
		Message: "this action requires human approval and cannot run directly",
		Code:    CodeApprovalRequired,
	}
}

// Propose validates the arguments, extracts the target id and asks the gate
// to build an ActionRequest. A missing target produces a NOT_FOUND ToolError
// so the model sees it as an ordinary tool result.
func (t *GatedTool) Propose(toolCtx *core.ToolContext, args map[string]any) (*core.ActionRequest, error) {
	if err := util.ValidateParameters(args, t.parameters); err != nil {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("parameter validation failed: %v", err),
			Code:    CodeValidation,
			Details: err,
		}
	}

	targetID, ok := args[t.targetKey].(string)
	if !ok || targetID == "" {
		return nil, &ToolError{
			Tool:    t.name,
			Message: fmt.Sprintf("missing or invalid %q argument", t.targetKey),
			Code:    CodeValidation,
		}
	}

	rest := make(map[string]any, len(args))
	for k, v := range args {
		if k == t.targetKey {
			continue
		}
		rest[k] = v
	}

	req, err := t.gate.Propose(t.name, t.action, targetID, rest)
	if err != nil {
		toolCtx.Logger().Warn("tool.propose.failed", "tool", t.name, "target_id", targetID, "error", err.Error())

		if errors.Is(err, core.ErrNotFound) {
			return nil, &ToolError{
				Tool:    t.name,
				Message: fmt.Sprintf("no record with id %s", targetID),
				Code:    CodeNotFound,
			}
		}

		return nil, &ToolError{
			Tool:    t.name,
			Message: err.Error(),
			Code:    CodeExecution,
		}
	}

	return req, nil
}
