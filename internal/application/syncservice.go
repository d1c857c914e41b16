// Package application contains the reconciliation core: the pure classifier
// and the SyncService that converges a review request's comment thread onto
// the current violation set. It depends only on port interfaces.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
	"github.com/ericfisherdev/reviewsync/internal/domain/port/driven"
	"github.com/ericfisherdev/reviewsync/internal/render"
)

// UpdateRequest carries one run's violations plus the caller overrides.
type UpdateRequest struct {
	Errors    []model.Violation
	Warnings  []model.Violation
	Messages  []model.Violation
	Markdowns []model.Violation

	// NewComment forces a fresh summary comment instead of updating the
	// previous one; previous state is treated as empty.
	NewComment bool

	// RemovePrevious deletes the previous summary comment before posting the
	// current state; previous state is treated as empty.
	RemovePrevious bool
}

// violations returns all findings tagged with their kind, in reporting order.
func (r UpdateRequest) violations() []model.Violation {
	all := make([]model.Violation, 0, len(r.Errors)+len(r.Warnings)+len(r.Messages)+len(r.Markdowns))
	appendKind := func(vs []model.Violation, kind model.Kind) {
		for _, v := range vs {
			v.Kind = kind
			all = append(all, v)
		}
	}
	appendKind(r.Errors, model.KindError)
	appendKind(r.Warnings, model.KindWarning)
	appendKind(r.Messages, model.KindMessage)
	appendKind(r.Markdowns, model.KindMarkdown)
	return all
}

// SyncService reconciles violations against the remote comment thread. Each
// Update call is one reconciliation pass: it reads a single snapshot of the
// remote comments, decides per violation whether to create, update, resolve,
// or delete, and issues the remote calls one at a time. Passes are idempotent;
// re-running with identical violations issues no further mutations.
type SyncService struct {
	gateway      driven.CommentGateway
	journal      driven.JournalStore // Optional; nil disables pass recording.
	dangerID     string
	repoFullName string
	prNumber     int
}

// NewSyncService creates a SyncService. journal may be nil.
func NewSyncService(gateway driven.CommentGateway, journal driven.JournalStore, dangerID, repoFullName string, prNumber int) *SyncService {
	return &SyncService{
		gateway:      gateway,
		journal:      journal,
		dangerID:     dangerID,
		repoFullName: repoFullName,
		prNumber:     prNumber,
	}
}

// Update runs one reconciliation pass. Inline create/update failures are
// recovered per violation; a summary-comment failure is fatal because the run
// could not synchronize its single source of truth.
func (s *SyncService) Update(ctx context.Context, req UpdateRequest) error {
	pass := model.ReconcilePass{
		RepoFullName: s.repoFullName,
		PRNumber:     s.prNumber,
		StartedAt:    time.Now().UTC(),
		Errors:       len(req.Errors),
		Warnings:     len(req.Warnings),
		Messages:     len(req.Messages),
		Markdowns:    len(req.Markdowns),
	}

	snapshot, err := s.gateway.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("listing remote comments: %w", err)
	}

	// Capability check, once per pass. Undetectable support degrades to the
	// summary-only path; no anchored operation may be attempted after that.
	inlineSupported := s.detectInlineSupport(ctx)
	pass.InlineSupport = inlineSupported

	regular, inline := Classify(req.violations())
	if !inlineSupported {
		for _, kind := range model.Kinds() {
			for _, v := range inline[kind] {
				regular.Add(v)
			}
		}
		inline = model.NewViolationSet()
	}

	prevComment := s.lastToolSummary(snapshot)
	prevState := model.NewViolationSet()
	if prevComment != nil && !req.NewComment && !req.RemovePrevious {
		st, perr := render.Parse(prevComment.Body)
		if perr != nil {
			slog.Warn("could not parse previous comment state",
				"comment_id", prevComment.ID, "error", perr)
		} else {
			prevState = st
		}
	}

	if inlineSupported {
		leftover := s.reconcileInline(ctx, inline, prevState, snapshot, &pass)
		for _, kind := range model.Kinds() {
			for _, v := range leftover[kind] {
				regular.Add(v)
			}
		}
	}

	err = s.reconcileRegular(ctx, regular, prevState, prevComment, req, &pass)

	pass.FinishedAt = time.Now().UTC()
	s.recordPass(ctx, pass)
	return err
}

// DeleteAll removes every summary comment authored under the danger id, except
// the one with exceptID. Deletes are best-effort: per-comment failures are
// logged and skipped, never aborting the batch.
func (s *SyncService) DeleteAll(ctx context.Context, exceptID string) error {
	comments, err := s.gateway.ListComments(ctx)
	if err != nil {
		return fmt.Errorf("listing remote comments: %w", err)
	}

	for _, c := range comments {
		if c.Anchored() || c.ID == exceptID || !render.IsToolComment(c.Body, s.dangerID) {
			continue
		}
		if err := s.gateway.DeleteComment(ctx, c.ID); err != nil {
			slog.Warn("deleting tool comment", "comment_id", c.ID, "error", err)
		}
	}
	return nil
}

func (s *SyncService) detectInlineSupport(ctx context.Context) bool {
	supported, err := s.gateway.SupportsInlineComments(ctx)
	if err != nil {
		slog.Warn("inline support undetectable, falling back to summary-only comments", "error", err)
		return false
	}
	return supported
}

// lastToolSummary returns the most recent tool-authored summary comment, or
// nil. Only one summary comment is maintained per review request; when earlier
// runs left several behind, the last one listed is canonical.
func (s *SyncService) lastToolSummary(snapshot []model.Comment) *model.Comment {
	var found *model.Comment
	for i := range snapshot {
		c := snapshot[i]
		if !c.Anchored() && render.IsToolComment(c.Body, s.dangerID) {
			found = &snapshot[i]
		}
	}
	return found
}

// reconcileInline converges the anchored comments onto the current inline
// violations and returns the violations it could not consume: anchors outside
// the diff scope and violations whose remote call failed. Those flow into the
// summary comment instead.
func (s *SyncService) reconcileInline(ctx context.Context, inline, prevState model.ViolationSet, snapshot []model.Comment, pass *model.ReconcilePass) model.ViolationSet {
	leftover := model.NewViolationSet()

	// Shared pool of tool-authored anchored comments. Comments claimed by a
	// current violation leave the pool; whatever remains afterwards is stale.
	var pool []model.Comment
	for _, c := range snapshot {
		if c.Anchored() && render.IsToolComment(c.Body, s.dangerID) {
			pool = append(pool, c)
		}
	}

	changed, err := s.gateway.ChangedPaths(ctx)
	if err != nil {
		// Without the diff scope no anchor is known to render; defer every
		// inline violation to the summary and leave existing comments alone.
		slog.Error("fetching changed paths failed, deferring inline violations to summary", "error", err)
		for _, kind := range model.Kinds() {
			for _, v := range inline[kind] {
				leftover.Add(v)
			}
		}
		return leftover
	}
	inDiff := make(map[string]bool, len(changed))
	for _, p := range changed {
		inDiff[p] = true
	}

	var refs model.DiffRefs
	refsLoaded := false

	for _, kind := range model.Kinds() {
		for _, v := range inline[kind] {
			// A previous-state entry matching a live violation is represented
			// by that violation now; drop it from the summary's carry-over.
			prevState.Remove(v)

			if !inDiff[v.File] {
				// The anchor would not render against the platform's diff
				// view. Not consumed; the summary reports it.
				leftover.Add(v)
				pass.Actions = append(pass.Actions, model.ReconcileAction{
					Op: model.ActionSkip, Path: v.File, Line: v.Line, Kind: v.Kind,
				})
				continue
			}

			body, rerr := render.Inline(v, s.dangerID, false)
			if rerr != nil {
				slog.Error("rendering anchored comment body", "file", v.File, "line", v.Line, "error", rerr)
				leftover.Add(v)
				continue
			}

			if c, ok := takeAt(&pool, v.File, v.Line); ok {
				if c.Body == body {
					// Nothing changed since the last pass; consume silently.
					continue
				}
				if uerr := s.gateway.UpdateInlineComment(ctx, c.DiscussionID, c.ID, body); uerr != nil {
					slog.Error("updating anchored comment",
						"comment_id", c.ID, "file", v.File, "line", v.Line, "error", uerr)
					leftover.Add(v)
					pass.Actions = append(pass.Actions, model.ReconcileAction{
						Op: model.ActionUpdate, CommentID: c.ID, Path: v.File, Line: v.Line, Kind: v.Kind, Error: uerr.Error(),
					})
					continue
				}
				pass.Actions = append(pass.Actions, model.ReconcileAction{
					Op: model.ActionUpdate, CommentID: c.ID, Path: v.File, Line: v.Line, Kind: v.Kind,
				})
				continue
			}

			if !refsLoaded {
				refs, err = s.gateway.DiffRefs(ctx)
				if err != nil {
					slog.Error("fetching diff refs for anchored comment", "error", err)
					leftover.Add(v)
					pass.Actions = append(pass.Actions, model.ReconcileAction{
						Op: model.ActionCreate, Path: v.File, Line: v.Line, Kind: v.Kind, Error: err.Error(),
					})
					continue
				}
				refsLoaded = true
			}

			created, cerr := s.gateway.CreateInlineComment(ctx, body, v.File, v.Line, refs)
			if cerr != nil {
				slog.Error("creating anchored comment", "file", v.File, "line", v.Line, "error", cerr)
				leftover.Add(v)
				pass.Actions = append(pass.Actions, model.ReconcileAction{
					Op: model.ActionCreate, Path: v.File, Line: v.Line, Kind: v.Kind, Error: cerr.Error(),
				})
				continue
			}
			pass.Actions = append(pass.Actions, model.ReconcileAction{
				Op: model.ActionCreate, CommentID: created.ID, Path: v.File, Line: v.Line, Kind: v.Kind,
			})
		}
	}

	s.sweepStale(ctx, pool, snapshot, pass)
	return leftover
}

// sweepStale handles tool-authored anchored comments no current violation
// claims: sticky findings are re-rendered with a resolved marker, threads with
// human replies are preserved untouched, everything else is deleted.
func (s *SyncService) sweepStale(ctx context.Context, pool, snapshot []model.Comment, pass *model.ReconcilePass) {
	for _, c := range pool {
		v, ok := render.ParseOne(c.Body)
		if ok && v.Sticky {
			body, err := render.Inline(v, s.dangerID, true)
			if err != nil {
				slog.Error("rendering resolved comment body", "comment_id", c.ID, "error", err)
				continue
			}
			if body == c.Body {
				// Already resolved on an earlier pass.
				continue
			}
			if err := s.gateway.UpdateInlineComment(ctx, c.DiscussionID, c.ID, body); err != nil {
				slog.Error("resolving sticky comment", "comment_id", c.ID, "error", err)
				continue
			}
			pass.Actions = append(pass.Actions, model.ReconcileAction{
				Op: model.ActionResolve, CommentID: c.ID, Path: c.Path, Line: c.Line, Kind: v.Kind,
			})
			continue
		}

		if s.hasHumanReply(snapshot, c) {
			continue
		}

		if err := s.gateway.DeleteInlineComment(ctx, c.ID); err != nil {
			// The comment may already be gone; best-effort.
			slog.Warn("deleting stale anchored comment", "comment_id", c.ID, "error", err)
			continue
		}
		pass.Actions = append(pass.Actions, model.ReconcileAction{
			Op: model.ActionDelete, CommentID: c.ID, Path: c.Path, Line: c.Line,
		})
	}
}

// hasHumanReply reports whether any non-tool comment shares c's discussion or
// file anchor. Such a comment is evidence of a human conversation on the
// thread, which must never be deleted out from under the reviewer.
func (s *SyncService) hasHumanReply(snapshot []model.Comment, c model.Comment) bool {
	for _, d := range snapshot {
		if d.ID == c.ID || render.IsToolComment(d.Body, s.dangerID) {
			continue
		}
		if c.DiscussionID != "" && d.DiscussionID == c.DiscussionID {
			return true
		}
		if d.Anchored() && d.Path == c.Path {
			return true
		}
	}
	return false
}

// reconcileRegular maintains the single summary comment. current holds the
// summary-level violations plus whatever the inline pass could not consume.
func (s *SyncService) reconcileRegular(ctx context.Context, current, prevState model.ViolationSet, prevComment *model.Comment, req UpdateRequest, pass *model.ReconcilePass) error {
	// Sticky findings from the previous run that no longer occur stay visible
	// as resolved; non-sticky ones simply drop.
	var resolved []model.Violation
	for _, kind := range model.Kinds() {
		for _, p := range prevState[kind] {
			if current.Contains(p) {
				continue
			}
			if p.Sticky {
				resolved = append(resolved, p)
			}
		}
	}

	empty := current.Empty() && len(resolved) == 0

	if (empty || req.RemovePrevious) && prevComment != nil {
		// Swallowed failure: the comment may already be gone.
		if err := s.gateway.DeleteComment(ctx, prevComment.ID); err != nil {
			slog.Warn("deleting summary comment", "comment_id", prevComment.ID, "error", err)
		} else {
			pass.Actions = append(pass.Actions, model.ReconcileAction{
				Op: model.ActionDelete, CommentID: prevComment.ID,
			})
		}
		prevComment = nil
	}
	if empty {
		return nil
	}

	body, err := render.Summary(current, resolved, s.dangerID)
	if err != nil {
		return err
	}

	if prevComment == nil || req.NewComment {
		created, err := s.gateway.CreateComment(ctx, body)
		if err != nil {
			return fmt.Errorf("creating summary comment: %w", err)
		}
		pass.Actions = append(pass.Actions, model.ReconcileAction{
			Op: model.ActionCreate, CommentID: created.ID,
		})
		return nil
	}

	if prevComment.Body == body {
		// Converged on a previous pass.
		return nil
	}

	if err := s.gateway.UpdateComment(ctx, prevComment.ID, body); err != nil {
		return fmt.Errorf("updating summary comment: %w", err)
	}
	pass.Actions = append(pass.Actions, model.ReconcileAction{
		Op: model.ActionUpdate, CommentID: prevComment.ID,
	})
	return nil
}

func (s *SyncService) recordPass(ctx context.Context, pass model.ReconcilePass) {
	if s.journal == nil {
		return
	}
	if _, err := s.journal.RecordPass(ctx, pass); err != nil {
		slog.Warn("recording reconcile pass", "error", err)
	}
}

// takeAt removes and returns the first pool comment anchored at (path, line).
func takeAt(pool *[]model.Comment, path string, line int) (model.Comment, bool) {
	for i, c := range *pool {
		if c.AnchoredAt(path, line) {
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			return c, true
		}
	}
	return model.Comment{}, false
}
