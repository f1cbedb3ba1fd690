package model

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxgate/core"
)

func drain(t *testing.T, respCh <-chan Response, errCh <-chan error) []Response {
	t.Helper()
	var responses []Response
	for resp := range respCh {
		responses = append(responses, resp)
	}
	for err := range errCh {
		require.NoError(t, err)
	}
	return responses
}

func TestMockModel_EchoFallback(t *testing.T) {
	m := NewMockModel("test-model", "mock")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserContent("hello")},
	})

	responses := drain(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "Mock response to: hello", responses[0].Content.Text())
	assert.Equal(t, "stop", responses[0].FinishReason)
}

func TestMockModel_Streaming(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.AddResponse("hi", "ok")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserContent("hi")},
		Stream:   true,
	})

	responses := drain(t, respCh, errCh)
	require.Len(t, responses, 3) // two char chunks plus final
	assert.True(t, responses[0].Partial)
	assert.True(t, responses[1].Partial)
	assert.False(t, responses[2].Partial)
	assert.Equal(t, "ok", responses[2].Content.Text())
}

func TestMockModel_ScriptedQueue(t *testing.T) {
	m := NewMockModel("test-model", "mock")
	m.EnqueueCalls(core.FunctionCall{ID: "call-1", Name: "check_inbox", Arguments: "{}"})
	m.EnqueueText("All done.")

	respCh, errCh := m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserContent("process my inbox")},
	})
	responses := drain(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "tool_calls", responses[0].FinishReason)
	calls := responses[0].Content.Parts
	require.Len(t, calls, 1)
	fc, ok := calls[0].(core.FunctionCallPart)
	require.True(t, ok)
	assert.Equal(t, "check_inbox", fc.FunctionCall.Name)

	respCh, errCh = m.Generate(context.Background(), Request{
		Contents: []core.Content{core.NewUserContent("continue")},
	})
	responses = drain(t, respCh, errCh)
	require.Len(t, responses, 1)
	assert.Equal(t, "All done.", responses[0].Content.Text())
}

func TestMockModel_NoContents(t *testing.T) {
	m := NewMockModel("test-model", "mock")

	respCh, errCh := m.Generate(context.Background(), Request{})
	for range respCh {
		t.Fatal("expected no responses")
	}
	err := <-errCh
	assert.Error(t, err)
}
