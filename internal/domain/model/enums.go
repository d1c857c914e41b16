package model

// Kind classifies a violation by how it is reported.
type Kind string

const (
	KindError    Kind = "error"
	KindWarning  Kind = "warning"
	KindMessage  Kind = "message"
	KindMarkdown Kind = "markdown"
)

// Kinds returns all violation kinds in reporting order: errors first,
// then warnings, messages, and free-form markdown.
func Kinds() []Kind {
	return []Kind{KindError, KindWarning, KindMessage, KindMarkdown}
}

// ActionOp identifies a single remote mutation decided during a reconcile pass.
type ActionOp string

const (
	ActionCreate  ActionOp = "create"  // New comment posted.
	ActionUpdate  ActionOp = "update"  // Existing comment body replaced.
	ActionResolve ActionOp = "resolve" // Sticky comment re-rendered with a resolved marker.
	ActionDelete  ActionOp = "delete"  // Stale comment removed.
	ActionSkip    ActionOp = "skip"    // Violation outside the diff scope, deferred to the summary.
)
