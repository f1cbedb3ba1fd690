package inboxgate

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxgate/agent"
	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/inbox"
	"github.com/hupe1980/inboxgate/model"
	"github.com/hupe1980/inboxgate/runner"
	"github.com/hupe1980/inboxgate/tool"
)

func TestInboxGate_ProcessWithApproval(t *testing.T) {
	store := inbox.NewStore(
		inbox.Record{ID: "1", From: "spam@example.com", Subject: "Free cruise!", Body: "Click here!"},
	)
	g := gate.New(store)

	llm := model.NewMockModel("test", "mock")
	llm.EnqueueCalls(core.FunctionCall{ID: "c1", Name: "delete_email", Arguments: `{"email_id":"1"}`})
	llm.EnqueueText("Spam deleted, inbox is clean.")

	rt := agent.NewModelAgent("email-assistant", llm, func(o *agent.ModelAgentOptions) {
		o.EnableStreaming = false
		o.Instruction = agent.InboxInstruction(store)
		o.Tools = []tool.Tool{
			tool.NewCheckInboxTool(store),
			tool.NewReadEmailTool(store),
			tool.NewReplyEmailTool(g),
			tool.NewDeleteEmailTool(g),
		}
	})

	ig := New(store, g, rt, func(o *Options) {
		o.Approver = runner.ApproverFunc(func(req core.ActionRequest) (core.Decision, error) {
			return core.Approve(), nil
		})
	})

	summary, err := ig.Process(context.Background(), "demo-1", "Please process all emails in my inbox.", nil)
	require.NoError(t, err)
	assert.Equal(t, "Spam deleted, inbox is clean.", summary.Text)
	assert.Equal(t, []string{"1"}, summary.ProcessedIDs)
	assert.Equal(t, 0, ig.Store().Remaining())
}
