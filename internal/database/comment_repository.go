package database

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

const commentColumns = `id, body, parent_id, user_id, article_id, deleted, created_at, updated_at`

// --- Comment Methods ---

func (p *PostgresDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now

	query := `
		INSERT INTO comments (` + commentColumns + `)
		VALUES (:id, :body, :parent_id, :user_id, :article_id, :deleted, :created_at, :updated_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, comment); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert comment", err)
	}
	return nil
}

func (p *PostgresDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	var comment models.Comment
	if err := p.DB.GetContext(ctx, &comment, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id); err != nil {
		return nil, queryError(err, "comment")
	}
	return &comment, nil
}

// ArticleComments returns the flat comment list for an article ordered by id,
// with scores tallied from comment_votes on every call.
func (p *PostgresDB) ArticleComments(ctx context.Context, articleID uuid.UUID) ([]*models.CommentView, error) {
	query := `
		SELECT c.id, c.body, c.parent_id, c.user_id, c.article_id, c.deleted, c.created_at, c.updated_at,
			u.display_name AS author_display_name, u.slug AS author_slug, u.avatar AS author_avatar,
			COALESCE((SELECT SUM(CASE WHEN v.downvote THEN -1 ELSE 1 END)
				FROM comment_votes v WHERE v.comment_id = c.id), 0) AS score,
			(SELECT COUNT(*) FROM reports r WHERE r.comment_id = c.id) AS reports_count
		FROM comments c
		LEFT JOIN users u ON u.id = c.user_id
		WHERE c.article_id = $1
		ORDER BY c.id
	`
	comments := make([]*models.CommentView, 0)
	if err := p.DB.SelectContext(ctx, &comments, query, articleID); err != nil {
		return nil, queryError(err, "comments")
	}
	return comments, nil
}

// SoftDeleteComment overwrites the body and clears the owner. The row, its
// parent link, its replies and its votes are kept.
func (p *PostgresDB) SoftDeleteComment(ctx context.Context, id, userID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `
		UPDATE comments
		SET deleted = TRUE, body = $3, user_id = NULL, updated_at = NOW()
		WHERE id = $1 AND user_id = $2 AND NOT deleted`,
		id, userID, models.DeletedCommentBody)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete comment", err)
	}
	return expectRows(result, utils.ErrForbidden, "comment is not owned by user")
}

// --- Vote Methods ---

// AddVote inserts a vote. One vote per (user, comment) in either direction.
func (p *PostgresDB) AddVote(ctx context.Context, vote *models.CommentVote) error {
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	result, err := p.DB.NamedExecContext(ctx, `
		INSERT INTO comment_votes (id, user_id, comment_id, downvote, created_at)
		VALUES (:id, :user_id, :comment_id, :downvote, :created_at)
		ON CONFLICT (user_id, comment_id) DO NOTHING`, vote)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert vote", err)
	}
	return expectRows(result, utils.ErrDuplicate, "vote already exists")
}

func (p *PostgresDB) RemoveVote(ctx context.Context, userID, commentID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx,
		`DELETE FROM comment_votes WHERE user_id = $1 AND comment_id = $2`, userID, commentID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete vote", err)
	}
	return expectRows(result, utils.ErrNotFound, "vote not found")
}

// CommentScore is upvotes minus downvotes.
func (p *PostgresDB) CommentScore(ctx context.Context, id uuid.UUID) (int, error) {
	var score int
	err := p.DB.GetContext(ctx, &score, `
		SELECT COALESCE(SUM(CASE WHEN downvote THEN -1 ELSE 1 END), 0)
		FROM comment_votes WHERE comment_id = $1`, id)
	if err != nil {
		return 0, queryError(err, "comment score")
	}
	return score, nil
}
