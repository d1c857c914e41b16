package application

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
	"github.com/ericfisherdev/reviewsync/internal/render"
)

const testDangerID = "ci-bot"

// fakeGateway simulates the remote platform: mutations apply to its comment
// set, so consecutive passes observe each other's effects. Every mutating call
// is appended to calls for assertion.
type fakeGateway struct {
	comments     []model.Comment
	changedPaths []string
	refs         model.DiffRefs

	inlineSupport    bool
	inlineSupportErr error
	changedPathsErr  error

	createErr       error
	createInlineErr error
	updateErr       error
	deleteErr       error

	calls  []string
	nextID int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{
		inlineSupport: true,
		refs:          model.DiffRefs{Base: "base-sha", Head: "head-sha", Start: "base-sha"},
		nextID:        1000,
	}
}

func (f *fakeGateway) ChangedPaths(context.Context) ([]string, error) {
	return f.changedPaths, f.changedPathsErr
}

func (f *fakeGateway) ListComments(context.Context) ([]model.Comment, error) {
	out := make([]model.Comment, len(f.comments))
	copy(out, f.comments)
	return out, nil
}

func (f *fakeGateway) DiffRefs(context.Context) (model.DiffRefs, error) {
	return f.refs, nil
}

func (f *fakeGateway) SupportsInlineComments(context.Context) (bool, error) {
	return f.inlineSupport, f.inlineSupportErr
}

func (f *fakeGateway) CreateComment(_ context.Context, body string) (model.Comment, error) {
	f.calls = append(f.calls, "create-summary")
	if f.createErr != nil {
		return model.Comment{}, f.createErr
	}
	c := model.Comment{ID: f.newID(), Body: body}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeGateway) CreateInlineComment(_ context.Context, body, path string, line int, refs model.DiffRefs) (model.Comment, error) {
	f.calls = append(f.calls, fmt.Sprintf("create-inline %s:%d@%s", path, line, refs.Head))
	if f.createInlineErr != nil {
		return model.Comment{}, f.createInlineErr
	}
	id := f.newID()
	c := model.Comment{ID: id, DiscussionID: id, Path: path, Line: line, Body: body}
	f.comments = append(f.comments, c)
	return c, nil
}

func (f *fakeGateway) UpdateComment(_ context.Context, id, body string) error {
	f.calls = append(f.calls, "update-summary "+id)
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.setBody(id, body)
}

func (f *fakeGateway) UpdateInlineComment(_ context.Context, _, id, body string) error {
	f.calls = append(f.calls, "update-inline "+id)
	if f.updateErr != nil {
		return f.updateErr
	}
	return f.setBody(id, body)
}

func (f *fakeGateway) DeleteComment(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete-summary "+id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.remove(id)
	return nil
}

func (f *fakeGateway) DeleteInlineComment(_ context.Context, id string) error {
	f.calls = append(f.calls, "delete-inline "+id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.remove(id)
	return nil
}

func (f *fakeGateway) newID() string {
	f.nextID++
	return strconv.Itoa(f.nextID)
}

func (f *fakeGateway) setBody(id, body string) error {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments[i].Body = body
			return nil
		}
	}
	return fmt.Errorf("comment %s not found", id)
}

func (f *fakeGateway) remove(id string) {
	for i := range f.comments {
		if f.comments[i].ID == id {
			f.comments = append(f.comments[:i], f.comments[i+1:]...)
			return
		}
	}
}

func (f *fakeGateway) callsLike(prefix string) []string {
	var out []string
	for _, c := range f.calls {
		if len(c) >= len(prefix) && c[:len(prefix)] == prefix {
			out = append(out, c)
		}
	}
	return out
}

// fakeJournal captures recorded passes.
type fakeJournal struct {
	passes []model.ReconcilePass
}

func (j *fakeJournal) RecordPass(_ context.Context, pass model.ReconcilePass) (int64, error) {
	j.passes = append(j.passes, pass)
	return int64(len(j.passes)), nil
}

func (j *fakeJournal) RecentPasses(context.Context, string, int, int) ([]model.ReconcilePass, error) {
	return j.passes, nil
}

func newService(gw *fakeGateway) *SyncService {
	return NewSyncService(gw, nil, testDangerID, "owner/repo", 7)
}

// inlineBody renders an anchored comment body the way a previous run would have.
func inlineBody(t *testing.T, v model.Violation, resolved bool) string {
	t.Helper()
	body, err := render.Inline(v, testDangerID, resolved)
	require.NoError(t, err)
	return body
}

func TestUpdate_CreatesAnchoredComment(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/b.rb", "src/c.rb"}

	err := newService(gw).Update(context.Background(), UpdateRequest{
		Errors: []model.Violation{{Message: "nil deref", File: "src/b.rb", Line: 3}},
	})
	require.NoError(t, err)

	creates := gw.callsLike("create-inline")
	require.Len(t, creates, 1)
	assert.Equal(t, "create-inline src/b.rb:3@head-sha", creates[0])

	// Consumed inline: no summary comment appears.
	assert.Empty(t, gw.callsLike("create-summary"))
}

func TestUpdate_SecondRunIsNoOp(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/b.rb"}

	req := UpdateRequest{
		Errors:   []model.Violation{{Message: "nil deref", File: "src/b.rb", Line: 3}},
		Warnings: []model.Violation{{Message: "PR is large"}},
	}

	svc := newService(gw)
	require.NoError(t, svc.Update(context.Background(), req))
	firstRun := len(gw.calls)
	require.NotZero(t, firstRun)

	require.NoError(t, svc.Update(context.Background(), req))
	assert.Equal(t, firstRun, len(gw.calls), "second run issued calls: %v", gw.calls[firstRun:])
}

func TestUpdate_DeletesStaleAnchoredComment(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/a.rb"}
	gw.comments = []model.Comment{{
		ID:           "42",
		DiscussionID: "42",
		Path:         "src/a.rb",
		Line:         10,
		Body:         inlineBody(t, model.Violation{Kind: model.KindWarning, Message: "W1", File: "src/a.rb", Line: 10}, false),
	}}

	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))

	deletes := gw.callsLike("delete-inline")
	require.Len(t, deletes, 1)
	assert.Equal(t, "delete-inline 42", deletes[0])
	assert.Empty(t, gw.callsLike("update-inline"))
}

func TestUpdate_ResolvesStickyInsteadOfDeleting(t *testing.T) {
	sticky := model.Violation{Kind: model.KindWarning, Message: "migration pending", File: "db/schema.rb", Line: 1, Sticky: true}

	gw := newFakeGateway()
	gw.changedPaths = []string{"db/schema.rb"}
	gw.comments = []model.Comment{{
		ID:           "9",
		DiscussionID: "9",
		Path:         "db/schema.rb",
		Line:         1,
		Body:         inlineBody(t, sticky, false),
	}}

	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))

	assert.Empty(t, gw.callsLike("delete-inline"))
	require.Len(t, gw.callsLike("update-inline"), 1)
	assert.Contains(t, gw.comments[0].Body, "~~migration pending~~")

	// A third run finds the comment already resolved and does nothing.
	before := len(gw.calls)
	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))
	assert.Equal(t, before, len(gw.calls))
}

func TestUpdate_PreservesThreadsWithHumanReplies(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/a.rb"}
	gw.comments = []model.Comment{
		{
			ID:           "50",
			DiscussionID: "50",
			Path:         "src/a.rb",
			Line:         10,
			Body:         inlineBody(t, model.Violation{Kind: model.KindWarning, Message: "W1", File: "src/a.rb", Line: 10}, false),
		},
		{
			ID:           "51",
			DiscussionID: "50",
			Author:       "alice",
			Path:         "src/a.rb",
			Line:         10,
			Body:         "actually this is intentional",
		},
	}

	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))

	assert.Empty(t, gw.callsLike("delete-inline"))
	assert.Empty(t, gw.callsLike("update-inline"))
}

func TestUpdate_DiffScopeGating(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/other.rb"}

	err := newService(gw).Update(context.Background(), UpdateRequest{
		Warnings: []model.Violation{{Message: "too long", File: "lib/x.rb", Line: 5}},
	})
	require.NoError(t, err)

	assert.Empty(t, gw.callsLike("create-inline"))

	// Not consumed: the summary reports it, anchor metadata included.
	creates := gw.callsLike("create-summary")
	require.Len(t, creates, 1)
	require.Len(t, gw.comments, 1)
	assert.Contains(t, gw.comments[0].Body, "`lib/x.rb:5` - too long")
}

func TestUpdate_FallbackWhenInlineSupportUndetectable(t *testing.T) {
	gw := newFakeGateway()
	gw.inlineSupportErr = errors.New("unknown api version")
	gw.changedPaths = []string{"src/b.rb"}

	err := newService(gw).Update(context.Background(), UpdateRequest{
		Errors: []model.Violation{{Message: "nil deref", File: "src/b.rb", Line: 3}},
	})
	require.NoError(t, err)

	assert.Empty(t, gw.callsLike("create-inline"))
	assert.Empty(t, gw.callsLike("update-inline"))
	assert.Empty(t, gw.callsLike("delete-inline"))

	require.Len(t, gw.callsLike("create-summary"), 1)
	assert.Contains(t, gw.comments[0].Body, "`src/b.rb:3` - nil deref")
}

func TestUpdate_UpdatesExistingSummary(t *testing.T) {
	prev := model.NewViolationSet()
	prev.Add(model.Violation{Kind: model.KindWarning, Message: "old warning"})
	prevBody, err := render.Summary(prev, nil, testDangerID)
	require.NoError(t, err)

	gw := newFakeGateway()
	gw.comments = []model.Comment{{ID: "7", Body: prevBody}}

	err = newService(gw).Update(context.Background(), UpdateRequest{
		Warnings: []model.Violation{{Message: "new warning"}},
	})
	require.NoError(t, err)

	assert.Empty(t, gw.callsLike("create-summary"))
	require.Len(t, gw.callsLike("update-summary"), 1)
	assert.Contains(t, gw.comments[0].Body, "new warning")
	assert.NotContains(t, gw.comments[0].Body, "- old warning\n")
}

func TestUpdate_EmptyRunDeletesSummary(t *testing.T) {
	prev := model.NewViolationSet()
	prev.Add(model.Violation{Kind: model.KindMessage, Message: "hello"})
	prevBody, err := render.Summary(prev, nil, testDangerID)
	require.NoError(t, err)

	gw := newFakeGateway()
	gw.comments = []model.Comment{{ID: "7", Body: prevBody}}

	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))

	require.Len(t, gw.callsLike("delete-summary"), 1)
	assert.Empty(t, gw.comments)
}

func TestUpdate_StickySummaryEntrySurvivesAsResolved(t *testing.T) {
	prev := model.NewViolationSet()
	prev.Add(model.Violation{Kind: model.KindWarning, Message: "remember the changelog", Sticky: true})
	prevBody, err := render.Summary(prev, nil, testDangerID)
	require.NoError(t, err)

	gw := newFakeGateway()
	gw.comments = []model.Comment{{ID: "7", Body: prevBody}}

	require.NoError(t, newService(gw).Update(context.Background(), UpdateRequest{}))

	assert.Empty(t, gw.callsLike("delete-summary"))
	require.Len(t, gw.callsLike("update-summary"), 1)
	assert.Contains(t, gw.comments[0].Body, "~~remember the changelog~~")
}

func TestUpdate_RemovePreviousForcesFreshComment(t *testing.T) {
	prev := model.NewViolationSet()
	prev.Add(model.Violation{Kind: model.KindWarning, Message: "old"})
	prevBody, err := render.Summary(prev, nil, testDangerID)
	require.NoError(t, err)

	gw := newFakeGateway()
	gw.comments = []model.Comment{{ID: "7", Body: prevBody}}

	err = newService(gw).Update(context.Background(), UpdateRequest{
		Warnings:       []model.Violation{{Message: "fresh"}},
		RemovePrevious: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"delete-summary 7"}, gw.callsLike("delete-summary"))
	require.Len(t, gw.callsLike("create-summary"), 1)
	require.Len(t, gw.comments, 1)
	assert.Contains(t, gw.comments[0].Body, "fresh")
}

func TestUpdate_PreviousEntryConsumedInline(t *testing.T) {
	v := model.Violation{Kind: model.KindWarning, Message: "W1", File: "src/a.rb", Line: 10}

	prev := model.NewViolationSet()
	prev.Add(v)
	prevBody, err := render.Summary(prev, nil, testDangerID)
	require.NoError(t, err)

	gw := newFakeGateway()
	gw.changedPaths = []string{"src/a.rb"}
	gw.comments = []model.Comment{{ID: "7", Body: prevBody}}

	err = newService(gw).Update(context.Background(), UpdateRequest{
		Warnings: []model.Violation{{Message: "W1", File: "src/a.rb", Line: 10}},
	})
	require.NoError(t, err)

	// The violation lives inline now; the summary has nothing left to say.
	require.Len(t, gw.callsLike("create-inline"), 1)
	require.Len(t, gw.callsLike("delete-summary"), 1)
}

func TestUpdate_InlineCreateFailureFallsBackToSummary(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/b.rb"}
	gw.createInlineErr = errors.New("422 unprocessable")

	err := newService(gw).Update(context.Background(), UpdateRequest{
		Errors: []model.Violation{{Message: "nil deref", File: "src/b.rb", Line: 3}},
	})
	require.NoError(t, err)

	require.Len(t, gw.callsLike("create-inline"), 1)
	require.Len(t, gw.callsLike("create-summary"), 1)
	require.Len(t, gw.comments, 1)
	assert.Contains(t, gw.comments[0].Body, "nil deref")
}

func TestUpdate_SummaryFailureIsFatal(t *testing.T) {
	gw := newFakeGateway()
	gw.createErr = errors.New("503 unavailable")

	err := newService(gw).Update(context.Background(), UpdateRequest{
		Warnings: []model.Violation{{Message: "hi"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating summary comment")
}

func TestUpdate_RecordsJournalPass(t *testing.T) {
	gw := newFakeGateway()
	gw.changedPaths = []string{"src/b.rb"}

	journal := &fakeJournal{}
	svc := NewSyncService(gw, journal, testDangerID, "owner/repo", 7)

	err := svc.Update(context.Background(), UpdateRequest{
		Errors:   []model.Violation{{Message: "nil deref", File: "src/b.rb", Line: 3}},
		Warnings: []model.Violation{{Message: "big PR"}},
	})
	require.NoError(t, err)

	require.Len(t, journal.passes, 1)
	pass := journal.passes[0]
	assert.Equal(t, "owner/repo", pass.RepoFullName)
	assert.Equal(t, 7, pass.PRNumber)
	assert.Equal(t, 1, pass.Errors)
	assert.Equal(t, 1, pass.Warnings)
	assert.True(t, pass.InlineSupport)

	var ops []model.ActionOp
	for _, a := range pass.Actions {
		ops = append(ops, a.Op)
	}
	assert.Equal(t, []model.ActionOp{model.ActionCreate, model.ActionCreate}, ops)
}

func TestDeleteAll(t *testing.T) {
	keepBody := render.Marker(testDangerID) + "\nkeep me"
	gw := newFakeGateway()
	gw.comments = []model.Comment{
		{ID: "1", Body: render.Marker(testDangerID) + "\nsummary one"},
		{ID: "2", Body: "human comment"},
		{ID: "3", DiscussionID: "3", Path: "a.go", Line: 4, Body: inlineBody(t, model.Violation{Kind: model.KindWarning, Message: "w", File: "a.go", Line: 4}, false)},
		{ID: "4", Body: keepBody},
	}

	require.NoError(t, newService(gw).DeleteAll(context.Background(), "4"))

	assert.Equal(t, []string{"delete-summary 1"}, gw.callsLike("delete-summary"))
	assert.Empty(t, gw.callsLike("delete-inline"))
}

func TestDeleteAll_IgnoresDeleteFailures(t *testing.T) {
	gw := newFakeGateway()
	gw.deleteErr = errors.New("404 not found")
	gw.comments = []model.Comment{
		{ID: "1", Body: render.Marker(testDangerID) + "\none"},
		{ID: "2", Body: render.Marker(testDangerID) + "\ntwo"},
	}

	require.NoError(t, newService(gw).DeleteAll(context.Background(), ""))

	// Both deletes attempted despite failures.
	assert.Len(t, gw.callsLike("delete-summary"), 2)
}
