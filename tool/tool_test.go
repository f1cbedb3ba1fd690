package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/inbox"
	"github.com/hupe1980/inboxgate/internal/util"
)

func newToolCtx(t *testing.T) *core.ToolContext {
	t.Helper()
	sess := core.NewSession("test-session")
	return core.NewToolContext(context.Background(), sess, core.NewID(), nil)
}

func testStore() *inbox.Store {
	return inbox.NewStore(
		inbox.Record{ID: "1", From: "jane@example.com", Subject: "Coffee next week?", Body: "Hi! Want to grab coffee next Tuesday?"},
		inbox.Record{ID: "2", From: "boss@example.com", Subject: "Q3 report", Body: "Please send me the Q3 numbers by Friday."},
	)
}

// -------------------- Schema & Validation Tests --------------------

type sampleSchema struct {
	A string `json:"a" description:"Field A"`
	B *int   `json:"b" description:"Optional pointer field"`
}

func TestCreateSchema(t *testing.T) {
	schema := util.CreateSchema(sampleSchema{})
	props, ok := schema["properties"].(map[string]any)
	assert.True(t, ok)
	assert.Contains(t, props, "a")
	assert.Contains(t, props, "b")

	req, _ := schema["required"].([]string)
	assert.ElementsMatch(t, []string{"a"}, req)
}

// -------------------- FunctionTool Tests --------------------

func TestFunctionTool_Success(t *testing.T) {
	sum := NewFunctionTool(
		"calculate_sum",
		"Calculate the sum of two numbers",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"a": map[string]any{"type": "number"},
				"b": map[string]any{"type": "number"},
			},
			"required": []string{"a", "b"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["a"].(float64) + args["b"].(float64), nil
		},
	)

	result, err := sum.Call(newToolCtx(t), map[string]any{"a": 2.0, "b": 3.0})
	require.NoError(t, err)
	assert.Equal(t, 5.0, result)
}

func TestFunctionTool_ValidationError(t *testing.T) {
	echo := NewFunctionTool(
		"echo",
		"Echo the input",
		map[string]any{
			"type": "object",
			"properties": map[string]any{
				"text": map[string]any{"type": "string"},
			},
			"required": []string{"text"},
		},
		func(_ *core.ToolContext, args map[string]any) (any, error) {
			return args["text"], nil
		},
	)

	_, err := echo.Call(newToolCtx(t), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

func TestFunctionTool_ExecutionError(t *testing.T) {
	failing := NewFunctionTool(
		"failing",
		"Always fails",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, errors.New("boom")
		},
	)

	_, err := failing.Call(newToolCtx(t), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeExecution, toolErr.Code)
	assert.Equal(t, "boom", toolErr.Message)
}

func TestFunctionTool_PreservesCustomToolError(t *testing.T) {
	custom := NewFunctionTool(
		"custom",
		"Returns a custom tool error",
		map[string]any{"type": "object", "properties": map[string]any{}},
		func(_ *core.ToolContext, _ map[string]any) (any, error) {
			return nil, NewToolError("custom", "gone", CodeNotFound)
		},
	)

	_, err := custom.Call(newToolCtx(t), map[string]any{})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, toolErr.Code)
}

// -------------------- Inbox Tool Tests --------------------

func TestCheckInboxTool_ListsStatus(t *testing.T) {
	store := testStore()
	store.MarkProcessed("1")

	result, err := NewCheckInboxTool(store).Call(newToolCtx(t), map[string]any{})
	require.NoError(t, err)
	out := result.(string)
	assert.Contains(t, out, "[DONE] ID:1 From:jane@example.com Subject:Coffee next week?")
	assert.Contains(t, out, "[NEW] ID:2 From:boss@example.com Subject:Q3 report")
}

func TestReadEmailTool(t *testing.T) {
	store := testStore()
	readTool := NewReadEmailTool(store)

	result, err := readTool.Call(newToolCtx(t), map[string]any{"email_id": "2"})
	require.NoError(t, err)
	out := result.(string)
	assert.Contains(t, out, "From: boss@example.com")
	assert.Contains(t, out, "Q3 numbers")

	_, err = readTool.Call(newToolCtx(t), map[string]any{"email_id": "99"})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, toolErr.Code)
}

// -------------------- GatedTool Tests --------------------

func TestGatedTool_DirectCallRefused(t *testing.T) {
	g := gate.New(testStore())
	del := NewDeleteEmailTool(g)

	_, err := del.Call(newToolCtx(t), map[string]any{"email_id": "1"})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeApprovalRequired, toolErr.Code)
}

func TestGatedTool_Propose(t *testing.T) {
	g := gate.New(testStore())
	reply := NewReplyEmailTool(g)

	req, err := reply.Propose(newToolCtx(t), map[string]any{"email_id": "1", "body": "See you Tuesday!"})
	require.NoError(t, err)
	assert.Equal(t, core.ActionReply, req.Action)
	assert.Equal(t, "1", req.TargetID)
	assert.Equal(t, "See you Tuesday!", req.Args["body"])
	// the target id is carried separately from the editable args
	assert.NotContains(t, req.Args, "email_id")
}

func TestGatedTool_ProposeUnknownTarget(t *testing.T) {
	g := gate.New(testStore())
	del := NewDeleteEmailTool(g)

	_, err := del.Propose(newToolCtx(t), map[string]any{"email_id": "99"})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeNotFound, toolErr.Code)
}

func TestGatedTool_ProposeMissingArgs(t *testing.T) {
	g := gate.New(testStore())
	reply := NewReplyEmailTool(g)

	_, err := reply.Propose(newToolCtx(t), map[string]any{"email_id": "1"})
	require.Error(t, err)
	toolErr, ok := err.(*ToolError)
	require.True(t, ok)
	assert.Equal(t, CodeValidation, toolErr.Code)
}

// compile-time capability checks
var (
	_ Tool     = (*FunctionTool)(nil)
	_ Proposer = (*GatedTool)(nil)
)
