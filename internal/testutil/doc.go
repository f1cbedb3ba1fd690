// Package testutil contains shared fixtures used across tests: the canonical
// sample inbox and a scripted approver. These helpers are intentionally
// minimal and not intended for production usage.
package testutil
