package gate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/inbox"
)

func sampleStore() *inbox.Store {
	return inbox.NewStore(
		inbox.Record{ID: "1", From: "jane@example.com", Subject: "Coffee next week?", Body: "Hi! Want to grab coffee next Tuesday?"},
		inbox.Record{ID: "2", From: "boss@example.com", Subject: "Q3 report", Body: "Please send me the Q3 numbers by Friday."},
		inbox.Record{ID: "3", From: "spam@example.com", Subject: "You won a cruise!", Body: "Claim your free cruise now!"},
	)
}

func TestGate_ProposeValidatesTarget(t *testing.T) {
	g := New(sampleStore())

	req, err := g.Propose("reply_to_email", core.ActionReply, "2", map[string]any{"body": "On it."})
	require.NoError(t, err)
	assert.NotEmpty(t, req.ID)
	assert.Equal(t, core.ActionReply, req.Action)
	assert.Equal(t, "2", req.TargetID)

	_, err = g.Propose("delete_email", core.ActionDelete, "99", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGate_ProposeDoesNotMutate(t *testing.T) {
	store := sampleStore()
	g := New(store)

	_, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)

	assert.Equal(t, 3, store.Remaining())
	assert.False(t, store.IsProcessed("3"))
}

func TestGate_ApproveReply(t *testing.T) {
	store := sampleStore()
	g := New(store)

	req, err := g.Propose("reply_to_email", core.ActionReply, "1", map[string]any{"body": "Tuesday works!"})
	require.NoError(t, err)

	outcome, err := g.Resolve(req, core.Approve())
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, "reply sent to jane@example.com: Tuesday works!", outcome.Detail)
	assert.True(t, store.IsProcessed("1"))
	assert.Equal(t, 2, store.Remaining())

	// replied records stay readable
	_, err = store.Get("1")
	assert.NoError(t, err)
}

func TestGate_ApproveDelete(t *testing.T) {
	store := sampleStore()
	g := New(store)

	req, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)

	outcome, err := g.Resolve(req, core.Approve())
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.True(t, store.IsProcessed("3"))

	_, err = store.Get("3")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestGate_EditReplacesArgs(t *testing.T) {
	store := sampleStore()
	g := New(store)

	req, err := g.Propose("reply_to_email", core.ActionReply, "2", map[string]any{"body": "draft"})
	require.NoError(t, err)

	outcome, err := g.Resolve(req, core.Edit(map[string]any{"body": "Numbers attached, see Q3 sheet."}))
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
	assert.Equal(t, "reply sent to boss@example.com: Numbers attached, see Q3 sheet.", outcome.Detail)

	// original request args stay untouched
	assert.Equal(t, "draft", req.Args["body"])
}

func TestGate_RejectLeavesStoreUntouched(t *testing.T) {
	store := sampleStore()
	g := New(store)

	req, err := g.Propose("delete_email", core.ActionDelete, "1", nil)
	require.NoError(t, err)

	outcome, err := g.Resolve(req, core.Reject("not spam, keep it"))
	require.NoError(t, err)
	assert.False(t, outcome.Applied)
	assert.Contains(t, outcome.Detail, "not spam, keep it")

	assert.False(t, store.IsProcessed("1"))
	assert.Equal(t, 3, store.Remaining())
}

func TestGate_ResolveExactlyOnce(t *testing.T) {
	g := New(sampleStore())

	req, err := g.Propose("reply_to_email", core.ActionReply, "1", map[string]any{"body": "hi"})
	require.NoError(t, err)

	_, err = g.Resolve(req, core.Approve())
	require.NoError(t, err)

	_, err = g.Resolve(req, core.Approve())
	assert.ErrorIs(t, err, core.ErrAlreadyResolved)
}

func TestGate_ResolveExactlyOnceAfterReject(t *testing.T) {
	g := New(sampleStore())

	req, err := g.Propose("delete_email", core.ActionDelete, "2", nil)
	require.NoError(t, err)

	_, err = g.Resolve(req, core.Reject("wrong target"))
	require.NoError(t, err)

	// a rejected request cannot be re-resolved, even with approve
	_, err = g.Resolve(req, core.Approve())
	assert.ErrorIs(t, err, core.ErrAlreadyResolved)
}

func TestGate_VanishedTargetResolvesUnapplied(t *testing.T) {
	store := sampleStore()
	g := New(store)

	// two approvals against the same record in one batch: the first delete
	// wins, the second resolves as a regular unapplied outcome
	r1, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)
	r2, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)

	o1, err := g.Resolve(r1, core.Approve())
	require.NoError(t, err)
	assert.True(t, o1.Applied)

	o2, err := g.Resolve(r2, core.Approve())
	require.NoError(t, err)
	assert.False(t, o2.Applied)
	assert.Equal(t, "record 3 not found", o2.Detail)

	// both decisions land in the outcome log
	outcomes := g.Outcomes()
	require.Len(t, outcomes, 2)
	assert.True(t, outcomes[0].Applied)
	assert.False(t, outcomes[1].Applied)
}

func TestGate_VanishedTargetReplyResolvesUnapplied(t *testing.T) {
	store := sampleStore()
	g := New(store)

	del, err := g.Propose("delete_email", core.ActionDelete, "1", nil)
	require.NoError(t, err)
	reply, err := g.Propose("reply_to_email", core.ActionReply, "1", map[string]any{"body": "sure"})
	require.NoError(t, err)

	_, err = g.Resolve(del, core.Approve())
	require.NoError(t, err)

	outcome, err := g.Resolve(reply, core.Approve())
	require.NoError(t, err)
	assert.False(t, outcome.Applied)
	assert.Contains(t, outcome.Detail, "not found")
}

func TestGate_UnknownDecisionDoesNotConsumeRequest(t *testing.T) {
	store := sampleStore()
	g := New(store)

	req, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)

	_, err = g.Resolve(req, core.Decision{Type: "maybe"})
	require.Error(t, err)
	assert.NotErrorIs(t, err, core.ErrAlreadyResolved)

	// the request is still resolvable after the malformed decision
	outcome, err := g.Resolve(req, core.Approve())
	require.NoError(t, err)
	assert.True(t, outcome.Applied)
}

func TestGate_OutcomesOrdered(t *testing.T) {
	store := sampleStore()
	g := New(store)

	r1, err := g.Propose("reply_to_email", core.ActionReply, "1", map[string]any{"body": "sure"})
	require.NoError(t, err)
	_, err = g.Resolve(r1, core.Approve())
	require.NoError(t, err)

	r2, err := g.Propose("delete_email", core.ActionDelete, "3", nil)
	require.NoError(t, err)
	_, err = g.Resolve(r2, core.Reject("keep"))
	require.NoError(t, err)

	outcomes := g.Outcomes()
	require.Len(t, outcomes, 2)
	assert.Equal(t, "1", outcomes[0].RecordID)
	assert.True(t, outcomes[0].Applied)
	assert.Equal(t, "3", outcomes[1].RecordID)
	assert.False(t, outcomes[1].Applied)
}
