package application

import (
	"sort"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// Classify partitions violations into summary-level and inline groups by kind.
// A violation is inline iff it carries both a file and a line. Summary groups
// keep input order; inline groups are sorted so that anchored comments are
// processed per file, top to bottom, regardless of input order.
func Classify(violations []model.Violation) (regular, inline model.ViolationSet) {
	regular = model.NewViolationSet()
	inline = model.NewViolationSet()

	for _, v := range violations {
		if v.Inline() {
			inline.Add(v)
		} else {
			regular.Add(v)
		}
	}

	for kind, vs := range inline {
		sortInline(vs)
		inline[kind] = vs
	}
	return regular, inline
}

// sortInline orders by (anchor missing first, file asc, line asc). The
// comparator is total for any input even though Classify only routes anchored
// violations here. Stable sort keeps input order for duplicate (file, line)
// pairs.
func sortInline(vs []model.Violation) {
	sort.SliceStable(vs, func(i, j int) bool {
		a, b := vs[i], vs[j]
		if a.Inline() != b.Inline() {
			return !a.Inline()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
}
