// Package runner implements the session loop that alternates model steps
// with tool handling. Read-only tools execute immediately; gated tools
// suspend the loop at the approval boundary until a human decision resolves
// each proposed action through the gate. Every result, applied or rejected,
// flows back into the session so the model can react to it.
package runner
