package sqlite

import (
	"context"
	"fmt"

	"github.com/ericfisherdev/reviewsync/internal/domain/model"
	"github.com/ericfisherdev/reviewsync/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.JournalStore = (*JournalRepo)(nil)

// JournalRepo is the SQLite implementation of the JournalStore port interface.
type JournalRepo struct {
	db *DB
}

// NewJournalRepo creates a new JournalRepo backed by the given DB.
func NewJournalRepo(db *DB) *JournalRepo {
	return &JournalRepo{db: db}
}

// RecordPass inserts a pass and its actions in one transaction and returns the
// stored pass id.
func (r *JournalRepo) RecordPass(ctx context.Context, pass model.ReconcilePass) (int64, error) {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin journal transaction: %w", err)
	}
	defer tx.Rollback()

	inlineSupport := 0
	if pass.InlineSupport {
		inlineSupport = 1
	}

	res, err := tx.ExecContext(ctx, `
		INSERT INTO reconcile_passes (
			repo_full_name, pr_number, started_at, finished_at, inline_support,
			errors, warnings, messages, markdowns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		pass.RepoFullName, pass.PRNumber, pass.StartedAt.UTC(), pass.FinishedAt.UTC(), inlineSupport,
		pass.Errors, pass.Warnings, pass.Messages, pass.Markdowns,
	)
	if err != nil {
		return 0, fmt.Errorf("insert pass for %s#%d: %w", pass.RepoFullName, pass.PRNumber, err)
	}

	passID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("pass id: %w", err)
	}

	for i, a := range pass.Actions {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO reconcile_actions (pass_id, seq, op, comment_id, path, line, kind, error)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			passID, i, string(a.Op), a.CommentID, a.Path, a.Line, string(a.Kind), a.Error,
		)
		if err != nil {
			return 0, fmt.Errorf("insert action %d for pass %d: %w", i, passID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit journal transaction: %w", err)
	}
	return passID, nil
}

// RecentPasses returns up to limit passes for the review request, newest
// first, with their actions populated in recorded order.
func (r *JournalRepo) RecentPasses(ctx context.Context, repoFullName string, prNumber, limit int) ([]model.ReconcilePass, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `
		SELECT id, repo_full_name, pr_number, started_at, finished_at, inline_support,
		       errors, warnings, messages, markdowns
		FROM reconcile_passes
		WHERE repo_full_name = ? AND pr_number = ?
		ORDER BY started_at DESC, id DESC
		LIMIT ?`,
		repoFullName, prNumber, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query passes for %s#%d: %w", repoFullName, prNumber, err)
	}
	defer rows.Close()

	var passes []model.ReconcilePass
	for rows.Next() {
		var p model.ReconcilePass
		var inlineSupport int
		if err := rows.Scan(
			&p.ID, &p.RepoFullName, &p.PRNumber, &p.StartedAt, &p.FinishedAt, &inlineSupport,
			&p.Errors, &p.Warnings, &p.Messages, &p.Markdowns,
		); err != nil {
			return nil, fmt.Errorf("scan pass: %w", err)
		}
		p.InlineSupport = inlineSupport != 0
		passes = append(passes, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate passes: %w", err)
	}

	for i := range passes {
		actions, err := r.actionsForPass(ctx, passes[i].ID)
		if err != nil {
			return nil, err
		}
		passes[i].Actions = actions
	}

	return passes, nil
}

func (r *JournalRepo) actionsForPass(ctx context.Context, passID int64) ([]model.ReconcileAction, error) {
	rows, err := r.db.Reader.QueryContext(ctx, `
		SELECT op, comment_id, path, line, kind, error
		FROM reconcile_actions
		WHERE pass_id = ?
		ORDER BY seq`,
		passID,
	)
	if err != nil {
		return nil, fmt.Errorf("query actions for pass %d: %w", passID, err)
	}
	defer rows.Close()

	var actions []model.ReconcileAction
	for rows.Next() {
		var a model.ReconcileAction
		var op, kind string
		if err := rows.Scan(&op, &a.CommentID, &a.Path, &a.Line, &kind, &a.Error); err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		a.Op = model.ActionOp(op)
		a.Kind = model.Kind(kind)
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate actions: %w", err)
	}

	return actions, nil
}
