package driven

import (
	"context"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// JournalStore persists the record of reconcile passes. The journal is
// observational: the engine never reads it to make decisions.
type JournalStore interface {
	// RecordPass appends a pass and its actions, returning the stored pass id.
	RecordPass(ctx context.Context, pass model.ReconcilePass) (int64, error)

	// RecentPasses returns up to limit passes for the given review request,
	// newest first, with their actions populated.
	RecentPasses(ctx context.Context, repoFullName string, prNumber, limit int) ([]model.ReconcilePass, error)
}
