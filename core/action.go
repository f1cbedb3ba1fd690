package core

import "maps"

// Action identifies a mutating operation that requires human approval before
// it is committed to the record store.
type Action string

const (
	// ActionReply sends a reply to a record's sender and marks it processed.
	ActionReply Action = "reply"
	// ActionDelete removes a record from the store and marks it processed.
	ActionDelete Action = "delete"
)

// ActionRequest is a proposed mutating operation awaiting exactly one human
// Decision. TargetID is fixed at proposal time and never editable; only the
// action-specific Args payload may be substituted by an edit decision.
type ActionRequest struct {
	ID       string         `json:"id"`
	Tool     string         `json:"tool"`   // originating tool name (e.g. "reply_to_email")
	Action   Action         `json:"action"` // semantic action applied on approval
	TargetID string         `json:"target_id"`
	Args     map[string]any `json:"args,omitempty"`
}

// Clone returns a copy with an independent Args map so a stored pending
// request cannot be mutated through the original.
func (r ActionRequest) Clone() ActionRequest {
	c := r
	c.Args = make(map[string]any, len(r.Args))
	maps.Copy(c.Args, r.Args)
	return c
}

// DecisionType enumerates the three ways a human may resolve an ActionRequest.
type DecisionType string

const (
	// DecisionApprove applies the request as originally proposed.
	DecisionApprove DecisionType = "approve"
	// DecisionReject discards the request; the reason is surfaced to the
	// runtime as context and has no further effect.
	DecisionReject DecisionType = "reject"
	// DecisionEdit applies the request with Args replaced by the edited set.
	DecisionEdit DecisionType = "edit"
)

// Decision resolves an ActionRequest. Construct via Approve, Reject or Edit.
type Decision struct {
	Type   DecisionType   `json:"type"`
	Reason string         `json:"reason,omitempty"` // reject only
	Args   map[string]any `json:"args,omitempty"`   // edit only
}

// Approve builds a Decision that applies the request unchanged.
func Approve() Decision { return Decision{Type: DecisionApprove} }

// Reject builds a Decision that discards the request with an informational reason.
func Reject(reason string) Decision { return Decision{Type: DecisionReject, Reason: reason} }

// Edit builds a Decision that applies the request with substituted arguments.
func Edit(args map[string]any) Decision { return Decision{Type: DecisionEdit, Args: args} }

// Outcome records how a resolved ActionRequest affected the store. Applied is
// false for rejections, which leave store and processed set untouched.
type Outcome struct {
	RecordID string `json:"record_id"`
	Action   Action `json:"action"`
	Applied  bool   `json:"applied"`
	Detail   string `json:"detail"` // e.g. "reply sent to jane@example.com: ..."
}
