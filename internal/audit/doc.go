// Package audit provides the structured audit event model and an asynchronous
// dispatcher used by the accounts engine.
//
// # Architecture boundaries
//
// This package owns the Event shape, the Sink contract, and dispatch
// buffering. Deciding which lifecycle moments produce events is the engine's
// job; this package never inspects event content.
//
// # What this package must NOT do
//
//   - Block a flow on a slow sink when DropIfFull is set.
//   - Import the root package or any sibling package.
package audit
