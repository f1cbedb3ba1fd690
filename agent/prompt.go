package agent

import (
	"fmt"

	"github.com/hupe1980/inboxgate/core"
	"github.com/hupe1980/inboxgate/inbox"
)

// PromptForRemaining returns the system prompt for a given number of
// unprocessed inbox records. It is a pure function of the count: zero means
// the assistant should wrap up and summarize, anything else keeps it working
// through the inbox one record at a time.
func PromptForRemaining(remaining int) string {
	if remaining == 0 {
		return "All emails have been processed. Let the user know you are done " +
			"and summarize the actions you took."
	}

	return fmt.Sprintf(
		"You are an email assistant. There are %d unprocessed email(s) in the inbox. "+
			"Work through them one at a time: check the inbox, read each unprocessed email, "+
			"then either reply or delete it. For spam or junk mail, delete it. "+
			"For legitimate emails, draft a polite reply. "+
			"Always use the reply_to_email or delete_email tools to take action, never just describe what you would do.",
		remaining,
	)
}

// InboxInstruction builds a dynamic instruction that re-reads the store's
// remaining count on every model turn, so the prompt reflects progress made
// by approved actions.
func InboxInstruction(store *inbox.Store) Instruction {
	return NewInstructionFromFunc(func(_ *core.Session) (string, error) {
		return PromptForRemaining(store.Remaining()), nil
	})
}
