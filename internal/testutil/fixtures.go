package testutil

import (
	"fmt"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/inbox"
)

// SampleRecords returns the canonical demo inbox: two personal emails, one
// obvious spam, one invitation and one corporate reminder.
func SampleRecords() []inbox.Record {
	return []inbox.Record{
		{
			ID:      "1",
			From:    "jane@example.com",
			Subject: "Coffee this weekend?",
			Body:    "Hey! Are you free this Saturday for coffee? I found a great new café downtown. Let me know!",
		},
		{
			ID:      "2",
			From:    "boss@company.com",
			Subject: "Q3 Report Review",
			Body:    "Hi, could you review the Q3 report and send me your comments by end of day Thursday? Thanks.",
		},
		{
			ID:      "3",
			From:    "deals@spammy-cruises.biz",
			Subject: "YOU WON A FREE CRUISE!!!",
			Body:    "Congratulations! You have been selected for a FREE luxury cruise. Click here to claim your prize now!!!",
		},
		{
			ID:      "4",
			From:    "mike@example.com",
			Subject: "Hike on Sunday?",
			Body:    "Hey, a group of us are hiking the ridge trail this Sunday morning. Want to join? We're meeting at 8am at the trailhead.",
		},
		{
			ID:      "5",
			From:    "hr@company.com",
			Subject: "Mandatory Compliance Training Reminder",
			Body:    "This is a reminder that all employees must complete the annual compliance training module by Friday. Please log in to the training portal to complete it.",
		},
	}
}

// NewSampleStore seeds a store with the first n sample records (all of them
// when n <= 0).
func NewSampleStore(n int) *inbox.Store {
	records := SampleRecords()
	if n > 0 && n < len(records) {
		records = records[:n]
	}
	return inbox.NewStore(records...)
}

// ScriptedApprover returns pre-seeded decisions in order and fails once the
// script is exhausted.
type ScriptedApprover struct {
	decisions []core.Decision
	// Seen records every request presented for a decision, in order.
	Seen []core.ActionRequest
}

// NewScriptedApprover seeds the approver's decision script.
func NewScriptedApprover(decisions ...core.Decision) *ScriptedApprover {
	return &ScriptedApprover{decisions: decisions}
}

// Decide pops the next scripted decision.
func (a *ScriptedApprover) Decide(req core.ActionRequest) (core.Decision, error) {
	a.Seen = append(a.Seen, req)
	if len(a.decisions) == 0 {
		return core.Decision{}, fmt.Errorf("no scripted decision left for request %s (%s %s)", req.ID, req.Action, req.TargetID)
	}
	next := a.decisions[0]
	a.decisions = a.decisions[1:]
	return next, nil
}
