// Package logging provides a minimal logging interface and adapters for inboxgate.
//
// The Logger interface defines the standard logging methods (Debug, Info,
// Warn, Error) that the session loop, gate and tools use for observability.
// This package includes:
//
//   - Logger interface for dependency injection
//   - SlogAdapter wrapping Go's structured logging
//   - GateLogger with contextual helpers (session, component) and domain
//     specific logging helpers for tools, models and approval decisions
//   - NoOpLogger for silent operation (testing, minimal setups)
//
// Usage:
//
//	logger := logging.NewSlogLogger(logging.LogLevelInfo, "text", false)
//	gate := gate.New(store, func(o *gate.Options) { o.Logger = logger })
//
// The design intentionally keeps the interface minimal to avoid vendor lock-in
// while supporting structured logging where available.
package logging
