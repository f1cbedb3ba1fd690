package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/internal/util"
	"github.com/hupe1980/inboxgate/logging"
	"github.com/hupe1980/inboxgate/model"
	"github.com/hupe1980/inboxgate/tool"
)

// ModelAgentOptions configures a ModelAgent instance.
//
// Use functional options with NewModelAgent to override defaults.
type ModelAgentOptions struct {
	Instruction        Instruction
	EnableStreaming    bool
	ToolTimeout        time.Duration
	MaxHistoryMessages int
	Tools              []tool.Tool
	Logger             logging.Logger
}

// ModelAgent drives a language model as the session loop's runtime. Each Step
// resolves the (possibly dynamic) instruction, replays the capped
// conversation history, streams the model's output and reports the resulting
// text plus any requested tool invocations as a core.Turn.
//
// The agent never executes gated tools itself; which calls run directly and
// which must pass the approval gate is the runner's decision.
type ModelAgent struct {
	name               string
	llm                model.Model
	instruction        Instruction
	tools              map[string]tool.Tool
	enableStreaming    bool
	toolTimeout        time.Duration
	maxHistoryMessages int
	logger             logging.Logger
}

// NewModelAgent creates a new model-backed runtime with sensible defaults:
// streaming enabled, a 15-second tool timeout and a 20-message history cap.
func NewModelAgent(name string, llm model.Model, optFns ...func(o *ModelAgentOptions)) *ModelAgent {
	opts := ModelAgentOptions{
		Instruction:        NewInstructionFromText(fmt.Sprintf("You are %s, a helpful assistant.", name)),
		EnableStreaming:    true,
		ToolTimeout:        15 * time.Second,
		MaxHistoryMessages: 20,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	a := &ModelAgent{
		name:               name,
		llm:                llm,
		instruction:        opts.Instruction,
		tools:              make(map[string]tool.Tool),
		enableStreaming:    opts.EnableStreaming,
		toolTimeout:        opts.ToolTimeout,
		maxHistoryMessages: opts.MaxHistoryMessages,
		logger:             opts.Logger,
	}
	a.RegisterTools(opts.Tools...)

	return a
}

// Name returns the agent's display name, used as event author.
func (a *ModelAgent) Name() string { return a.name }

// RegisterTool adds a tool to the agent's capability set.
func (a *ModelAgent) RegisterTool(t tool.Tool) {
	a.tools[t.Name()] = t
}

// RegisterTools adds multiple tools to the agent's capability set.
func (a *ModelAgent) RegisterTools(tools ...tool.Tool) {
	for _, t := range tools {
		a.RegisterTool(t)
	}
}

// GetTool retrieves a registered tool by name.
func (a *ModelAgent) GetTool(name string) (tool.Tool, bool) {
	t, exists := a.tools[name]
	return t, exists
}

// ListTools returns the names of all registered tools.
func (a *ModelAgent) ListTools() []string {
	names := make([]string, 0, len(a.tools))
	for name := range a.tools {
		names = append(names, name)
	}
	return names
}

// toolDefinitions converts the registered tools into model tool declarations.
func (a *ModelAgent) toolDefinitions() []model.ToolDefinition {
	defs := make([]model.ToolDefinition, 0, len(a.tools))
	for _, t := range a.tools {
		defs = append(defs, model.ToolDefinition{
			Type: "function",
			Function: model.FunctionDefinition{
				Name:        t.Name(),
				Description: t.Description(),
				Parameters:  t.Parameters(),
			},
		})
	}
	return defs
}

// resolveInstructions produces the final system prompt by resolving the
// static or dynamic instruction source and rendering any template
// placeholders against session state.
func (a *ModelAgent) resolveInstructions(sess *core.Session) (string, error) {
	text, err := a.instruction.Resolve(sess)
	if err != nil {
		return "", fmt.Errorf("resolve instruction: %w", err)
	}
	return util.RenderTemplate(text, sess.Clone().State)
}

// buildRequest assembles the model request from instruction, capped history
// and tool declarations.
func (a *ModelAgent) buildRequest(sess *core.Session) (model.Request, error) {
	instructions, err := a.resolveInstructions(sess)
	if err != nil {
		return model.Request{}, err
	}

	history := sess.GetConversationHistory()
	if a.maxHistoryMessages > 0 && len(history) > a.maxHistoryMessages {
		history = history[len(history)-a.maxHistoryMessages:]
	}

	contents := make([]core.Content, 0, len(history))
	for _, ev := range history {
		contents = append(contents, *ev.Content)
	}

	return model.Request{
		Instructions: instructions,
		Contents:     contents,
		Tools:        a.toolDefinitions(),
		Stream:       a.enableStreaming,
	}, nil
}

// Step implements core.Runtime. It runs one model generation: partial chunks
// are forwarded through emit, the final assistant content is appended to the
// session's event history, and the resulting Turn reports the text and any
// requested tool calls. A turn without tool calls finishes the loop.
func (a *ModelAgent) Step(ctx context.Context, sess *core.Session, emit func(core.Event)) (core.Turn, error) {
	req, err := a.buildRequest(sess)
	if err != nil {
		return core.Turn{}, err
	}

	a.logger.Debug("agent.step.start", "agent", a.name, "session_id", sess.ID, "history", len(req.Contents))

	respCh, errCh := a.llm.Generate(ctx, req)

	var final *model.Response
	for resp := range respCh {
		if resp.Partial {
			if emit != nil {
				emit(core.NewPartialEvent(sess.ID, a.name, resp.Content))
			}
			continue
		}
		r := resp
		final = &r
	}
	if err := <-errCh; err != nil {
		return core.Turn{}, fmt.Errorf("model generate: %w", err)
	}
	if final == nil {
		return core.Turn{}, fmt.Errorf("model returned no final response")
	}

	ev := core.NewEvent(sess.ID, a.name)
	content := final.Content
	ev.Content = &content
	sess.AddEvent(ev)
	if emit != nil {
		emit(ev)
	}

	calls := ev.GetFunctionCalls()
	turn := core.Turn{
		Text:     final.Content.Text(),
		Calls:    calls,
		Finished: len(calls) == 0,
	}

	a.logger.Debug("agent.step.done", "agent", a.name, "session_id", sess.ID, "calls", len(calls), "finished", turn.Finished)

	return turn, nil
}

// ExecuteTool deserializes JSON arguments and invokes the named tool,
// returning its result or an error if the tool is unknown or fails. The call
// runs under the agent's tool timeout.
func (a *ModelAgent) ExecuteTool(ctx context.Context, sess *core.Session, call core.FunctionCall) (any, error) {
	t, exists := a.tools[call.Name]
	if !exists {
		return nil, fmt.Errorf("tool %s not found", call.Name)
	}

	argsMap := make(map[string]any)
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &argsMap); err != nil {
			return nil, fmt.Errorf("unmarshal args for %s: %w", call.Name, err)
		}
	}

	callCtx := ctx
	if a.toolTimeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, a.toolTimeout)
		defer cancel()
	}

	toolCtx := core.NewToolContext(callCtx, sess, call.ID, a.logger)

	return t.Call(toolCtx, argsMap)
}

// maxConverseRounds bounds the inner tool loop of Converse.
const maxConverseRounds = 16

// Converse runs a full conversational exchange for sessions without gated
// tools: the user text is recorded, then model steps and direct tool
// executions alternate until the model produces a plain text answer.
//
// Gated tools must not be registered on an agent used via Converse; a model
// call to one surfaces as an APPROVAL_REQUIRED tool error result. Sessions
// that need the approval cycle go through the runner instead.
func (a *ModelAgent) Converse(ctx context.Context, sess *core.Session, userText string, emit func(core.Event)) (string, error) {
	userEv := core.NewUserMessageEvent(sess.ID, userText)
	sess.AddEvent(userEv)
	if emit != nil {
		emit(userEv)
	}

	for round := 0; round < maxConverseRounds; round++ {
		turn, err := a.Step(ctx, sess, emit)
		if err != nil {
			return "", err
		}
		if turn.Finished {
			return turn.Text, nil
		}

		for _, call := range turn.Calls {
			result, err := a.ExecuteTool(ctx, sess, call)
			respEv := core.NewFunctionResponseEvent(sess.ID, a.name, call.ID, call.Name, result, err)
			sess.AddEvent(respEv)
			if emit != nil {
				emit(respEv)
			}
		}
	}

	return "", fmt.Errorf("conversation exceeded %d tool rounds", maxConverseRounds)
}
