// Package wizard implements the resumable multi-step wizard engine: a
// shared mutable context, per-step idempotency guards, the step contract
// and navigator, and the controller that exposes navigation, finish,
// cancel, and draft commands
package wizard
