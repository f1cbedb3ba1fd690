// Package session provides the in-memory SessionStore implementation backing
// the ephemeral conversational sessions of this module.
package session
