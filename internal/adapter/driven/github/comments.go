package github

import (
	"context"
	"fmt"
	"strconv"

	gh "github.com/google/go-github/v82/github"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
)

// ChangedPaths returns the file paths touched by the pull request's diff.
// It handles pagination automatically.
func (c *Client) ChangedPaths(ctx context.Context) ([]string, error) {
	opts := &gh.ListOptions{PerPage: 100}
	var paths []string

	for {
		files, resp, err := c.gh.PullRequests.ListFiles(ctx, c.owner, c.repo, c.prNumber, opts)
		if err != nil {
			return nil, fmt.Errorf("listing changed files for %s/%s#%d (page %d): %w",
				c.owner, c.repo, c.prNumber, opts.Page, err)
		}

		logRateLimit(resp, "pr-files", opts.Page, len(files))

		for _, f := range files {
			paths = append(paths, f.GetFilename())
		}

		if resp.NextPage == 0 {
			break
		}
		opts.Page = resp.NextPage
	}

	return paths, nil
}

// ListComments returns every comment on the pull request: PR-level comments
// from the Issues API followed by anchored review comments from the Pull
// Requests API, both fully paginated and mapped to the domain model.
func (c *Client) ListComments(ctx context.Context) ([]model.Comment, error) {
	var all []model.Comment

	issueOpts := &gh.IssueListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.Issues.ListComments(ctx, c.owner, c.repo, c.prNumber, issueOpts)
		if err != nil {
			return nil, fmt.Errorf("listing PR comments for %s/%s#%d (page %d): %w",
				c.owner, c.repo, c.prNumber, issueOpts.Page, err)
		}

		logRateLimit(resp, "issue-comments", issueOpts.Page, len(comments))

		for _, ic := range comments {
			all = append(all, mapIssueComment(ic))
		}

		if resp.NextPage == 0 {
			break
		}
		issueOpts.Page = resp.NextPage
	}

	reviewOpts := &gh.PullRequestListCommentsOptions{
		ListOptions: gh.ListOptions{PerPage: 100},
	}
	for {
		comments, resp, err := c.gh.PullRequests.ListComments(ctx, c.owner, c.repo, c.prNumber, reviewOpts)
		if err != nil {
			return nil, fmt.Errorf("listing review comments for %s/%s#%d (page %d): %w",
				c.owner, c.repo, c.prNumber, reviewOpts.Page, err)
		}

		logRateLimit(resp, "review-comments", reviewOpts.Page, len(comments))

		for _, rc := range comments {
			all = append(all, mapReviewComment(rc))
		}

		if resp.NextPage == 0 {
			break
		}
		reviewOpts.Page = resp.NextPage
	}

	return all, nil
}

// DiffRefs returns the base and head commit SHAs of the pull request.
func (c *Client) DiffRefs(ctx context.Context) (model.DiffRefs, error) {
	pr, resp, err := c.gh.PullRequests.Get(ctx, c.owner, c.repo, c.prNumber)
	if err != nil {
		return model.DiffRefs{}, fmt.Errorf("fetching PR %s/%s#%d: %w", c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "pr-get", 0, 1)

	base := pr.GetBase().GetSHA()
	return model.DiffRefs{
		Base:  base,
		Head:  pr.GetHead().GetSHA(),
		Start: base,
	}, nil
}

// CreateComment posts a PR-level comment via the Issues API.
func (c *Client) CreateComment(ctx context.Context, body string) (model.Comment, error) {
	comment := &gh.IssueComment{Body: gh.Ptr(body)}
	created, resp, err := c.gh.Issues.CreateComment(ctx, c.owner, c.repo, c.prNumber, comment)
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating comment on %s/%s#%d: %w", c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "create-comment", 0, 1)
	return mapIssueComment(created), nil
}

// CreateInlineComment posts a review comment anchored at (path, line) on the
// new side of the diff, attached to the head commit from refs.
func (c *Client) CreateInlineComment(ctx context.Context, body, path string, line int, refs model.DiffRefs) (model.Comment, error) {
	comment := &gh.PullRequestComment{
		Body:     gh.Ptr(body),
		Path:     gh.Ptr(path),
		Line:     gh.Ptr(line),
		Side:     gh.Ptr("RIGHT"),
		CommitID: gh.Ptr(refs.Head),
	}

	created, resp, err := c.gh.PullRequests.CreateComment(ctx, c.owner, c.repo, c.prNumber, comment)
	if err != nil {
		return model.Comment{}, fmt.Errorf("creating review comment at %s:%d on %s/%s#%d: %w",
			path, line, c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "create-review-comment", 0, 1)
	return mapReviewComment(created), nil
}

// UpdateComment replaces the body of a PR-level comment.
func (c *Client) UpdateComment(ctx context.Context, id, body string) error {
	commentID, err := parseCommentID(id)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.Issues.EditComment(ctx, c.owner, c.repo, commentID, &gh.IssueComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("updating comment %s on %s/%s#%d: %w", id, c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "update-comment", 0, 1)
	return nil
}

// UpdateInlineComment replaces the body of an anchored review comment. GitHub
// addresses review comments by id alone; the discussion id is unused here.
func (c *Client) UpdateInlineComment(ctx context.Context, _, id, body string) error {
	commentID, err := parseCommentID(id)
	if err != nil {
		return err
	}

	_, resp, err := c.gh.PullRequests.EditComment(ctx, c.owner, c.repo, commentID, &gh.PullRequestComment{Body: gh.Ptr(body)})
	if err != nil {
		return fmt.Errorf("updating review comment %s on %s/%s#%d: %w", id, c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "update-review-comment", 0, 1)
	return nil
}

// DeleteComment removes a PR-level comment.
func (c *Client) DeleteComment(ctx context.Context, id string) error {
	commentID, err := parseCommentID(id)
	if err != nil {
		return err
	}

	resp, err := c.gh.Issues.DeleteComment(ctx, c.owner, c.repo, commentID)
	if err != nil {
		return fmt.Errorf("deleting comment %s on %s/%s#%d: %w", id, c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "delete-comment", 0, 1)
	return nil
}

// DeleteInlineComment removes an anchored review comment.
func (c *Client) DeleteInlineComment(ctx context.Context, id string) error {
	commentID, err := parseCommentID(id)
	if err != nil {
		return err
	}

	resp, err := c.gh.PullRequests.DeleteComment(ctx, c.owner, c.repo, commentID)
	if err != nil {
		return fmt.Errorf("deleting review comment %s on %s/%s#%d: %w", id, c.owner, c.repo, c.prNumber, err)
	}

	logRateLimit(resp, "delete-review-comment", 0, 1)
	return nil
}

// mapIssueComment converts a go-github IssueComment to a domain model Comment.
// It uses GetXxx() helper methods exclusively to avoid nil pointer panics.
func mapIssueComment(ic *gh.IssueComment) model.Comment {
	return model.Comment{
		ID:     strconv.FormatInt(ic.GetID(), 10),
		Author: ic.GetUser().GetLogin(),
		Body:   ic.GetBody(),
	}
}

// mapReviewComment converts a go-github PullRequestComment to a domain model
// Comment. The discussion id is the thread root: the comment replied to when
// the comment is a reply, otherwise the comment itself.
func mapReviewComment(rc *gh.PullRequestComment) model.Comment {
	root := rc.GetInReplyTo()
	if root == 0 {
		root = rc.GetID()
	}

	line := rc.GetLine()
	if line == 0 {
		line = rc.GetOriginalLine()
	}

	return model.Comment{
		ID:           strconv.FormatInt(rc.GetID(), 10),
		DiscussionID: strconv.FormatInt(root, 10),
		Author:       rc.GetUser().GetLogin(),
		Path:         rc.GetPath(),
		Line:         line,
		Body:         rc.GetBody(),
	}
}
