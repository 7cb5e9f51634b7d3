// Package intake provides a resumable, multi-step data-collection wizard
// engine. Steps share a single mutable context, remote mutations are gated
// by per-step idempotency guards, and in-progress sessions can be saved as
// drafts and resumed without re-triggering side effects.
package intake

const (
	Name    = "intake"
	Version = "0.3.0"
)
