// Package driven declares the outbound port interfaces the application core
// depends on. Adapters implement these against concrete infrastructure.
package driven

import (
	"context"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// CommentGateway is the driven port for the hosting platform's comment thread
// on a single review request. Listing operations drain pagination and return
// complete snapshots; the engine never observes a partial page.
//
// Summary comments and anchored comments are distinct comment families on most
// platforms, so update and delete come in both flavors. The discussion id on
// UpdateInlineComment exists for platforms that address thread replies through
// the discussion rather than the comment; implementations may ignore it.
type CommentGateway interface {
	// ChangedPaths returns the file paths touched by the current diff, in the
	// order the platform reports them.
	ChangedPaths(ctx context.Context) ([]string, error)

	// ListComments returns every comment on the review request, both summary
	// and anchored, fully materialized.
	ListComments(ctx context.Context) ([]model.Comment, error)

	// DiffRefs returns the commit refs anchored comments must be attached to.
	DiffRefs(ctx context.Context) (model.DiffRefs, error)

	// SupportsInlineComments reports whether the platform can render anchored
	// comments for this invocation. Implementations return false, not an
	// error, when the platform version cannot be determined.
	SupportsInlineComments(ctx context.Context) (bool, error)

	CreateComment(ctx context.Context, body string) (model.Comment, error)
	CreateInlineComment(ctx context.Context, body, path string, line int, refs model.DiffRefs) (model.Comment, error)

	UpdateComment(ctx context.Context, id, body string) error
	UpdateInlineComment(ctx context.Context, discussionID, id, body string) error

	DeleteComment(ctx context.Context, id string) error
	DeleteInlineComment(ctx context.Context, id string) error
}
