package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/model"
	"github.com/hupe1980/inboxgate/tool"
)

func echoTool() tool.Tool {
	return tool.NewFunctionTool(
		"echo",
		"Echo the input text",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return "echo: " + args["text"].(string), nil
		},
	)
}

func TestModelAgent_StepFinishesOnText(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("Hello there.")

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
	})

	sess := core.NewSession("s1")
	sess.AddEvent(core.NewUserMessageEvent(sess.ID, "hi"))

	turn, err := a.Step(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.True(t, turn.Finished)
	assert.Equal(t, "Hello there.", turn.Text)
	assert.Empty(t, turn.Calls)

	// the assistant turn is recorded in the session history
	history := sess.GetConversationHistory()
	require.Len(t, history, 2)
	assert.Equal(t, "assistant", history[1].Content.Role)
}

func TestModelAgent_StepReportsToolCalls(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueCalls(core.FunctionCall{ID: "call-1", Name: "echo", Arguments: `{"text":"ping"}`})

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.Tools = []tool.Tool{echoTool()}
	})

	sess := core.NewSession("s1")
	sess.AddEvent(core.NewUserMessageEvent(sess.ID, "run echo"))

	turn, err := a.Step(context.Background(), sess, nil)
	require.NoError(t, err)
	assert.False(t, turn.Finished)
	require.Len(t, turn.Calls, 1)
	assert.Equal(t, "echo", turn.Calls[0].Name)
}

func TestModelAgent_ExecuteTool(t *testing.T) {
	a := NewModelAgent("assistant", model.NewMockModel("test", "mock"), func(o *ModelAgentOptions) {
		o.Tools = []tool.Tool{echoTool()}
	})

	sess := core.NewSession("s1")
	result, err := a.ExecuteTool(context.Background(), sess, core.FunctionCall{
		ID:        "call-1",
		Name:      "echo",
		Arguments: `{"text":"ping"}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "echo: ping", result)

	_, err = a.ExecuteTool(context.Background(), sess, core.FunctionCall{Name: "unknown"})
	assert.Error(t, err)
}

func TestModelAgent_Converse(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueCalls(core.FunctionCall{ID: "call-1", Name: "echo", Arguments: `{"text":"ping"}`})
	llm.EnqueueText("The echo said: ping")

	a := NewModelAgent("assistant", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
		o.Tools = []tool.Tool{echoTool()}
	})

	sess := core.NewSession("s1")
	var emitted []core.Event
	answer, err := a.Converse(context.Background(), sess, "run echo on ping", func(ev core.Event) {
		emitted = append(emitted, ev)
	})
	require.NoError(t, err)
	assert.Equal(t, "The echo said: ping", answer)

	// user message, tool call turn, tool response, final answer
	history := sess.GetConversationHistory()
	require.Len(t, history, 4)
	assert.Equal(t, "tool", history[2].Content.Role)
	assert.NotEmpty(t, emitted)
}

func TestDelegateTool_ConsultsSpecialist(t *testing.T) {
	llm := model.NewMockModel("test", "mock")
	llm.EnqueueText("Peonies bloom in late spring.")

	specialist := NewModelAgent("florist", llm, func(o *ModelAgentOptions) {
		o.EnableStreaming = false
	})
	consult := NewDelegateTool("consult_florist", "Ask the florist specialist", specialist)

	toolCtx := core.NewToolContext(context.Background(), core.NewSession("s1"), core.NewID(), nil)
	result, err := consult.Call(toolCtx, map[string]any{"query": "When do peonies bloom?"})
	require.NoError(t, err)
	assert.Equal(t, "Peonies bloom in late spring.", result)

	_, err = consult.Call(toolCtx, map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*tool.ToolError)
	require.True(t, ok)
	assert.Equal(t, tool.CodeValidation, toolErr.Code)
}
