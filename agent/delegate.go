package agent

import (
	"fmt"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/tool"
)

// DelegateTool wraps a specialist agent as a callable tool so a coordinator
// agent can consult it mid-conversation. Each invocation runs the specialist
// in its own throwaway session seeded with the query; only the final text
// answer flows back to the coordinator.
type DelegateTool struct {
	name        string
	description string
	specialist  *ModelAgent
}

// NewDelegateTool exposes the specialist under the given tool name
// (conventionally consult_<specialist>).
func NewDelegateTool(name, description string, specialist *ModelAgent) *DelegateTool {
	return &DelegateTool{
		name:        name,
		description: description,
		specialist:  specialist,
	}
}

// Name returns the tool name.
func (t *DelegateTool) Name() string { return t.name }

// Description returns the description exposed to models.
func (t *DelegateTool) Description() string { return t.description }

// Parameters returns the JSON schema describing expected arguments.
func (t *DelegateTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"query": map[string]any{
				"type":        "string",
				"description": "The question or task for the specialist",
			},
		},
		"required": []string{"query"},
	}
}

// Call runs the specialist to completion on the query and returns its final
// text answer.
func (t *DelegateTool) Call(toolCtx *core.ToolContext, args map[string]any) (any, error) {
	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, tool.NewToolError(t.name, "missing or empty 'query' argument", tool.CodeValidation)
	}

	sess := core.NewSession(core.NewID())
	answer, err := t.specialist.Converse(toolCtx.Context(), sess, query, nil)
	if err != nil {
		return nil, tool.NewToolError(t.name, fmt.Sprintf("specialist %s failed: %v", t.specialist.Name(), err), tool.CodeExecution)
	}

	return answer, nil
}

var _ tool.Tool = (*DelegateTool)(nil)
