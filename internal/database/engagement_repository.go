package database

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

// --- Like Methods ---

// AddLike inserts the like. The (user, article, special) unique key makes a
// concurrent duplicate a no-op, reported as ErrDuplicate.
func (p *PostgresDB) AddLike(ctx context.Context, like *models.ArticleLike) error {
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	result, err := p.DB.NamedExecContext(ctx, `
		INSERT INTO article_likes (id, user_id, article_id, special, created_at)
		VALUES (:id, :user_id, :article_id, :special, :created_at)
		ON CONFLICT (user_id, article_id, special) DO NOTHING`, like)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert like", err)
	}
	return expectRows(result, utils.ErrDuplicate, "like already exists")
}

func (p *PostgresDB) RemoveLike(ctx context.Context, userID, articleID uuid.UUID, special bool) error {
	result, err := p.DB.ExecContext(ctx,
		`DELETE FROM article_likes WHERE user_id = $1 AND article_id = $2 AND special = $3`,
		userID, articleID, special)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete like", err)
	}
	return expectRows(result, utils.ErrNotFound, "like not found")
}

// --- Save Methods ---

func (p *PostgresDB) SaveArticle(ctx context.Context, userID, articleID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `
		INSERT INTO saved_articles (user_id, article_id, created_at) VALUES ($1, $2, NOW())
		ON CONFLICT (user_id, article_id) DO NOTHING`, userID, articleID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to save article", err)
	}
	return expectRows(result, utils.ErrDuplicate, "article already saved")
}

func (p *PostgresDB) UnsaveArticle(ctx context.Context, userID, articleID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx,
		`DELETE FROM saved_articles WHERE user_id = $1 AND article_id = $2`, userID, articleID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to unsave article", err)
	}
	return expectRows(result, utils.ErrNotFound, "article not saved")
}

// SavedArticles lists userID's bookmarks, most recently saved first.
func (p *PostgresDB) SavedArticles(ctx context.Context, userID uuid.UUID, page models.Page) ([]*models.ArticleView, int, error) {
	var total int
	if err := p.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM saved_articles WHERE user_id = $1`, userID); err != nil {
		return nil, 0, queryError(err, "saved count")
	}

	query := articleViewSelect + `
		JOIN saved_articles sv ON sv.article_id = a.id
		WHERE sv.user_id = $1
		ORDER BY sv.created_at DESC, a.id
		LIMIT $2 OFFSET $3`
	views := make([]*models.ArticleView, 0, page.Limit)
	if err := p.DB.SelectContext(ctx, &views, query, userID, page.Limit, page.Offset); err != nil {
		return nil, 0, queryError(err, "saved articles")
	}
	return views, total, p.attachTags(ctx, views)
}
