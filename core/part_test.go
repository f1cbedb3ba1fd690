package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSession_SnapshotRoundTrip(t *testing.T) {
	sess := NewSession("s1")
	sess.AddEvent(NewUserMessageEvent("s1", "delete the spam"))
	sess.AddEvent(NewFunctionCallEvent("s1", "assistant", FunctionCall{ID: "c1", Name: "delete_email", Arguments: `{"email_id":"3"}`}))
	sess.AddEvent(NewFunctionResponseEvent("s1", "runner", "c0", "check_inbox", "[NEW] ID:3 ...", nil))
	sess.SetPending([]ActionRequest{{
		ID:       "r1",
		Tool:     "delete_email",
		Action:   ActionDelete,
		TargetID: "3",
	}})

	data, err := json.Marshal(sess)
	require.NoError(t, err)

	var restored Session
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, "s1", restored.ID)
	require.Len(t, restored.Pending, 1)
	assert.Equal(t, "3", restored.Pending[0].TargetID)

	// the heterogeneous part types come back as their concrete forms
	require.Len(t, restored.Events, 3)
	assert.Equal(t, "delete the spam", restored.Events[0].Content.Text())

	calls := restored.Events[1].GetFunctionCalls()
	require.Len(t, calls, 1)
	assert.Equal(t, "delete_email", calls[0].Name)
	assert.Equal(t, `{"email_id":"3"}`, calls[0].Arguments)

	responses := restored.Events[2].GetFunctionResponses()
	require.Len(t, responses, 1)
	assert.Equal(t, "check_inbox", responses[0].Name)
	assert.Equal(t, "[NEW] ID:3 ...", responses[0].Response)
}

func TestContent_UnmarshalRejectsUnknownPartType(t *testing.T) {
	var c Content
	err := json.Unmarshal([]byte(`{"role":"user","parts":[{"type":"audio"}]}`), &c)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown part type")
}
