package model

// Comment is a normalized view of a remote pull-request comment, covering both
// PR-level (summary) comments and diff-anchored review comments.
type Comment struct {
	ID           string // Opaque identifier, unique within the review request.
	DiscussionID string // Groups a comment with its thread; empty for summary comments.
	Author       string
	Path         string // Anchor file path; empty when not anchored.
	Line         int    // Anchor line; 0 when not anchored.
	Body         string
}

// Anchored reports whether the comment is bound to a file and line of the diff.
func (c Comment) Anchored() bool {
	return c.Path != "" && c.Line > 0
}

// AnchoredAt reports whether the comment is anchored at exactly (path, line).
func (c Comment) AnchoredAt(path string, line int) bool {
	return c.Path == path && c.Line == line
}

// DiffRefs identifies the commits an anchored comment is attached to.
type DiffRefs struct {
	Base  string // Base commit SHA of the pull request.
	Head  string // Head commit SHA the anchor renders against.
	Start string // Start SHA for the diff range; usually the base.
}
