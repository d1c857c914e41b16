package model

// Violation is a single finding produced by an external analysis step.
// A violation is inline-capable iff both File and Line are set; inline
// violations can be anchored to a position in the pull request diff.
type Violation struct {
	Kind    Kind
	Message string
	File    string // Path relative to repository root; empty for summary-only findings.
	Line    int    // 1-based line number; 0 for summary-only findings.
	Sticky  bool   // Sticky findings are shown as resolved once they disappear, never deleted.
}

// Inline reports whether the violation carries a usable diff anchor.
func (v Violation) Inline() bool {
	return v.File != "" && v.Line > 0
}

// SameFinding reports whether o describes the same finding: same anchor and
// same rendered message. Kind is not compared; callers group by kind first.
func (v Violation) SameFinding(o Violation) bool {
	return v.File == o.File && v.Line == o.Line && v.Message == o.Message
}

// ViolationSet groups violations by kind, preserving input order within each kind.
type ViolationSet map[Kind][]Violation

// NewViolationSet returns an empty set ready for Add.
func NewViolationSet() ViolationSet {
	return make(ViolationSet)
}

// Add appends v under its kind.
func (s ViolationSet) Add(v Violation) {
	s[v.Kind] = append(s[v.Kind], v)
}

// Empty reports whether the set contains no violations of any kind.
func (s ViolationSet) Empty() bool {
	for _, vs := range s {
		if len(vs) > 0 {
			return false
		}
	}
	return true
}

// Contains reports whether the set holds a finding equal to v under v.Kind.
func (s ViolationSet) Contains(v Violation) bool {
	for _, o := range s[v.Kind] {
		if o.SameFinding(v) {
			return true
		}
	}
	return false
}

// Remove deletes every finding equal to v under v.Kind and reports whether
// anything was removed.
func (s ViolationSet) Remove(v Violation) bool {
	vs := s[v.Kind]
	kept := vs[:0]
	removed := false
	for _, o := range vs {
		if o.SameFinding(v) {
			removed = true
			continue
		}
		kept = append(kept, o)
	}
	s[v.Kind] = kept
	return removed
}

// Count returns the total number of violations across all kinds.
func (s ViolationSet) Count() int {
	n := 0
	for _, vs := range s {
		n += len(vs)
	}
	return n
}
