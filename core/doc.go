// Package core defines the domain contracts shared by every layer of
// inboxgate: conversational events and content parts, the Session container,
// the ActionRequest / Decision pair that drives human approval, and the
// Runtime interface behind which the language-model side of the system lives.
//
// Keeping these types in one leaf package lets storage backends (session,
// checkpoint), the action gate, the tool subsystem and the session loop all
// agree on the same vocabulary without import cycles.
package core
