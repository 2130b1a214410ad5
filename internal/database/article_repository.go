package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// articleViewSelect joins the author card and computes every counter on read.
const articleViewSelect = `
	SELECT a.id, a.title, a.slug, a.content, a.draft, a.thumbnail, a.user_id, a.created_at, a.updated_at,
		u.display_name AS author_display_name, u.slug AS author_slug, u.avatar AS author_avatar,
		(SELECT COUNT(*) FROM article_likes l WHERE l.article_id = a.id AND NOT l.special) AS likes_count,
		(SELECT COUNT(*) FROM article_likes l WHERE l.article_id = a.id AND l.special) AS special_likes_count,
		(SELECT COUNT(*) FROM comments c WHERE c.article_id = a.id AND NOT c.deleted) AS comments_count,
		(SELECT COUNT(*) FROM saved_articles sa WHERE sa.article_id = a.id) AS saved_count,
		(SELECT COUNT(*) FROM reports r WHERE r.article_id = a.id) AS reports_count
	FROM articles a
	JOIN users u ON u.id = a.user_id`

const articleColumns = `id, title, slug, content, draft, thumbnail, user_id, created_at, updated_at`

// --- Article Methods ---

func (p *PostgresDB) CreateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error {
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	return p.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO articles (` + articleColumns + `)
			VALUES (:id, :title, :slug, :content, :draft, :thumbnail, :user_id, :created_at, :updated_at)
		`
		if _, err := tx.NamedExecContext(ctx, query, article); err != nil {
			if isUniqueViolation(err) {
				return utils.NewAppError(utils.ErrDuplicate, "article slug already exists", err)
			}
			return utils.NewAppError(utils.ErrDatabase, "failed to insert article", err)
		}
		return insertArticleTags(ctx, tx, article.ID, tagIDs)
	})
}

func (p *PostgresDB) UpdateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error {
	article.UpdatedAt = time.Now()

	return p.withTx(ctx, func(tx *sqlx.Tx) error {
		query := `
			UPDATE articles
			SET title = :title, content = :content, draft = :draft, thumbnail = :thumbnail, updated_at = :updated_at
			WHERE id = :id
		`
		result, err := tx.NamedExecContext(ctx, query, article)
		if err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to update article", err)
		}
		if err := expectRows(result, utils.ErrNotFound, "article not found"); err != nil {
			return err
		}
		if tagIDs == nil {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM article_tags WHERE article_id = $1`, article.ID); err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to clear article tags", err)
		}
		return insertArticleTags(ctx, tx, article.ID, tagIDs)
	})
}

func insertArticleTags(ctx context.Context, tx *sqlx.Tx, articleID uuid.UUID, tagIDs []uuid.UUID) error {
	for _, tagID := range tagIDs {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO article_tags (article_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`, articleID, tagID)
		if err != nil {
			return utils.NewAppError(utils.ErrDatabase, "failed to link article tag", err)
		}
	}
	return nil
}

// DeleteArticle removes the article; likes, saves, comments and reports cascade.
func (p *PostgresDB) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to delete article", err)
	}
	return expectRows(result, utils.ErrNotFound, "article not found")
}

func (p *PostgresDB) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	var article models.Article
	if err := p.DB.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles WHERE id = $1`, id); err != nil {
		return nil, queryError(err, "article")
	}
	return &article, nil
}

func (p *PostgresDB) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	var article models.Article
	if err := p.DB.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles WHERE slug = $1`, slug); err != nil {
		return nil, queryError(err, "article")
	}
	return &article, nil
}

// GetArticleViews hydrates the given ids. Order is by id; callers reorder if needed.
func (p *PostgresDB) GetArticleViews(ctx context.Context, ids []uuid.UUID) ([]*models.ArticleView, error) {
	views := make([]*models.ArticleView, 0, len(ids))
	if len(ids) == 0 {
		return views, nil
	}
	query := articleViewSelect + ` WHERE a.id = ANY($1::uuid[]) ORDER BY a.id`
	if err := p.DB.SelectContext(ctx, &views, query, pq.Array(uuidStrings(ids))); err != nil {
		return nil, queryError(err, "articles")
	}
	return views, p.attachTags(ctx, views)
}

// ListArticles returns one page of articles matching filter, ascending by id, and the total.
func (p *PostgresDB) ListArticles(ctx context.Context, filter models.ArticleFilter, page models.Page) ([]*models.ArticleView, int, error) {
	var (
		where []string
		args  []interface{}
	)
	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	where = append(where, "a.draft = "+arg(filter.Drafts))
	if filter.UserID != nil {
		where = append(where, "a.user_id = "+arg(*filter.UserID))
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		where = append(where, "a.title ILIKE '%' || "+arg(q)+" || '%'")
	}
	if len(filter.Tags) > 0 {
		where = append(where, `EXISTS (
			SELECT 1 FROM article_tags at JOIN tags t ON t.id = at.tag_id
			WHERE at.article_id = a.id AND t.slug = ANY(`+arg(pq.Array(filter.Tags))+`))`)
	}
	clause := " WHERE " + strings.Join(where, " AND ")

	var total int
	if err := p.DB.GetContext(ctx, &total, `SELECT COUNT(*) FROM articles a`+clause, args...); err != nil {
		return nil, 0, queryError(err, "article count")
	}

	query := articleViewSelect + clause + ` ORDER BY a.id LIMIT ` + arg(page.Limit) + ` OFFSET ` + arg(page.Offset)
	views := make([]*models.ArticleView, 0, page.Limit)
	if err := p.DB.SelectContext(ctx, &views, query, args...); err != nil {
		return nil, 0, queryError(err, "articles")
	}
	return views, total, p.attachTags(ctx, views)
}

// attachTags fills Tags on each view with one query for the whole page.
func (p *PostgresDB) attachTags(ctx context.Context, views []*models.ArticleView) error {
	if len(views) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(views))
	byID := make(map[uuid.UUID]*models.ArticleView, len(views))
	for i, v := range views {
		ids[i] = v.ID
		byID[v.ID] = v
		v.Tags = make([]string, 0)
	}

	var rows []struct {
		ArticleID uuid.UUID `db:"article_id"`
		Slug      string    `db:"slug"`
	}
	query := `
		SELECT at.article_id, t.slug
		FROM article_tags at JOIN tags t ON t.id = at.tag_id
		WHERE at.article_id = ANY($1::uuid[])
		ORDER BY t.slug
	`
	if err := p.DB.SelectContext(ctx, &rows, query, pq.Array(uuidStrings(ids))); err != nil {
		return queryError(err, "article tags")
	}
	for _, row := range rows {
		if v, ok := byID[row.ArticleID]; ok {
			v.Tags = append(v.Tags, row.Slug)
		}
	}
	return nil
}

// --- Feed Candidates ---

// ArticleRefsByFollowedTags returns published articles carrying any tag userID follows.
func (p *PostgresDB) ArticleRefsByFollowedTags(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error) {
	query := `
		SELECT DISTINCT a.id, a.user_id
		FROM articles a
		JOIN article_tags at ON at.article_id = a.id
		JOIN tag_followers tf ON tf.tag_id = at.tag_id
		WHERE tf.user_id = $1 AND NOT a.draft
	`
	refs := make([]models.ArticleRef, 0)
	if err := p.DB.SelectContext(ctx, &refs, query, userID); err != nil {
		return nil, queryError(err, "tag feed")
	}
	return refs, nil
}

// ArticleRefsByFollowedUsers returns published articles written by users userID follows.
func (p *PostgresDB) ArticleRefsByFollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error) {
	query := `
		SELECT a.id, a.user_id
		FROM articles a
		JOIN user_followings f ON f.user_followed = a.user_id
		WHERE f.user_follows = $1 AND NOT a.draft
	`
	refs := make([]models.ArticleRef, 0)
	if err := p.DB.SelectContext(ctx, &refs, query, userID); err != nil {
		return nil, queryError(err, "user feed")
	}
	return refs, nil
}
