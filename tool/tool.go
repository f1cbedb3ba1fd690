// Package tool implements the function calling subsystem that lets runtimes
// invoke structured capabilities with schema validated arguments and
// consistent error handling. Mutating tools do not execute directly: they
// propose an ActionRequest that must pass the approval gate first.
package tool

import (
	"fmt"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/internal/util"
)

// Error codes carried by ToolError.
const (
	// CodeValidation indicates the supplied arguments failed schema validation.
	CodeValidation = "VALIDATION_ERROR"
	// CodeExecution indicates the underlying function returned an error.
	CodeExecution = "EXECUTION_ERROR"
	// CodeNotFound indicates the tool targeted a record id that does not
	// exist. This is a normal tool result the model can recover from, not a
	// loop failure.
	CodeNotFound = "NOT_FOUND"
	// CodeApprovalRequired indicates a gated tool was invoked directly
	// instead of going through Propose and the approval gate.
	CodeApprovalRequired = "APPROVAL_REQUIRED"
)

// Tool defines the interface for extending a runtime with external functions.
//
// Tools are registered with an agent to enable function calling. Each tool
// declares a JSON schema for its arguments; the runner validates arguments
// before execution and surfaces failures as *ToolError with a stable code.
//
// Implementations must be safe for concurrent use.
type Tool interface {
	// Name returns the unique identifier for this tool (snake_case).
	Name() string

	// Description returns a human-readable description provided to the model.
	Description() string

	// Parameters returns a JSON schema describing the expected arguments.
	Parameters() map[string]any

	// Call executes the tool with validated arguments and a ToolContext.
	Call(toolCtx *core.ToolContext, args map[string]any) (any, error)
}

// Proposer is the capability interface for tools whose effects must pass the
// approval gate. The runner type-asserts for it: when a tool implements
// Proposer, its function call is turned into an ActionRequest instead of
// being executed, and only a human decision commits or discards the effect.
type Proposer interface {
	Tool

	// Propose validates the arguments and target and builds the
	// ActionRequest to be resolved. It must not mutate anything.
	Propose(toolCtx *core.ToolContext, args map[string]any) (*core.ActionRequest, error)
}

// ValidationError represents parameter validation errors with detailed information.
type ValidationError = util.ValidationError

// ToolError represents errors that occur during tool execution.
type ToolError struct {
	Tool    string `json:"tool"`              // Name of the tool that failed
	Message string `json:"message"`           // Error message
	Code    string `json:"code"`              // Error code for categorization
	Details any    `json:"details,omitempty"` // Additional error details
}

func (e *ToolError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("tool error [%s] in %s: %s", e.Code, e.Tool, e.Message)
	}
	return fmt.Sprintf("tool error in %s: %s", e.Tool, e.Message)
}

// NewToolError creates a new ToolError with the specified details.
func NewToolError(tool, message, code string) *ToolError {
	return &ToolError{
		Tool:    tool,
		Message: message,
		Code:    code,
	}
}
