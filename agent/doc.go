// Package agent provides the model-backed runtime that drives sessions: a
// ModelAgent turns conversation history plus a (possibly dynamic) instruction
// into model requests, reports requested tool calls as turns, and can run
// ungated conversations to completion. It also ships the inbox system prompt
// and a delegate tool for consulting specialist agents.
package agent
