package model

import "time"

// ReconcileAction records one remote mutation (or deliberate skip) decided
// during a reconcile pass.
type ReconcileAction struct {
	Op        ActionOp
	CommentID string // Empty for skips and failed creates.
	Path      string
	Line      int
	Kind      Kind
	Error     string // Non-empty when the remote call failed and was recovered.
}

// ReconcilePass is the journal record of one full reconciliation run against a
// single snapshot of the remote comment thread.
type ReconcilePass struct {
	ID            int64
	RepoFullName  string
	PRNumber      int
	StartedAt     time.Time
	FinishedAt    time.Time
	InlineSupport bool
	Errors        int // Violation counts by kind at the start of the pass.
	Warnings      int
	Messages      int
	Markdowns     int
	Actions       []ReconcileAction
}
