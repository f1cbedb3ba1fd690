package tool

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/gate"
	"github.com/hupe1980/inboxgate/inbox"
)

// emailIDSchema is the shared schema for tools addressing a single record.
func emailIDSchema(extra map[string]any, required ...string) map[string]any {
	props := map[string]any{
		"email_id": map[string]any{
			"type":        "string",
			"description": "The ID of the email",
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	req := append([]string{"email_id"}, required...)
	return map[string]any{
		"type":       "object",
		"properties": props,
		"required":   req,
	}
}

// NewCheckInboxTool lists every email with its current status. Processed
// emails stay listed so the model can see what is already handled.
func NewCheckInboxTool(store *inbox.Store) *FunctionTool {
	return NewFunctionTool(
		"check_inbox",
		"List all emails in the inbox with their status (NEW or DONE)",
		map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		},
		func(toolCtx *core.ToolContext, _ map[string]any) (any, error) {
			views := store.List()
			if len(views) == 0 {
				return "The inbox is empty.", nil
			}
			var b strings.Builder
			for _, v := range views {
				fmt.Fprintf(&b, "[%s] ID:%s From:%s Subject:%s\n", v.Status, v.ID, v.From, v.Subject)
			}
			return strings.TrimRight(b.String(), "\n"), nil
		},
	)
}

// NewReadEmailTool returns the full content of one email. An unknown id is
// surfaced as a NOT_FOUND tool result, not a failure of the loop.
func NewReadEmailTool(store *inbox.Store) *FunctionTool {
	return NewFunctionTool(
		"read_email",
		"Read the full content of an email by its ID",
		emailIDSchema(nil),
		func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
			id, _ := args["email_id"].(string)
			rec, err := store.Get(id)
			if err != nil {
				if errors.Is(err, core.ErrNotFound) {
					return nil, &ToolError{
						Tool:    "read_email",
						Message: fmt.Sprintf("no email with id %s", id),
						Code:    CodeNotFound,
					}
				}
				return nil, err
			}
			return fmt.Sprintf("From: %s\nSubject: %s\nBody: %s", rec.From, rec.Subject, rec.Body), nil
		},
	)
}

// NewReplyEmailTool sends a reply to an email's sender and marks it
// processed. The send is gated: it only happens after human approval.
func NewReplyEmailTool(g *gate.Gate) *GatedTool {
	return NewGatedTool(
		"reply_to_email",
		"Reply to an email by its ID with the given body (requires approval)",
		emailIDSchema(map[string]any{
			"body": map[string]any{
				"type":        "string",
				"description": "The reply body to send",
			},
		}, "body"),
		g,
		core.ActionReply,
		"email_id",
	)
}

// NewDeleteEmailTool deletes an email from the inbox and marks it processed.
// The delete is gated: it only happens after human approval.
func NewDeleteEmailTool(g *gate.Gate) *GatedTool {
	return NewGatedTool(
		"delete_email",
		"Delete an email by its ID (requires approval)",
		emailIDSchema(nil),
		g,
		core.ActionDelete,
		"email_id",
	)
}
