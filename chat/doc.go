// Package chat provides the shared state behind the control-room channel.
//
// The chat package implements:
//   - Message model for normal chat and emergency overrides
//   - Presence registry of currently connected operators
//   - Append-only message log with a bounded history window
//
// Concurrency:
//
// The registry and log are safe for concurrent use. In practice the hub
// funnels every mutation through its own event loop, which also guarantees
// that log order is a single global arrival order.
//
// Lifecycle:
//
// Users are minted when a connect frame is accepted and removed when their
// connection closes. Messages are immutable once appended and live for the
// process lifetime; only the most recent entries are disclosed to late
// joiners.
package chat
