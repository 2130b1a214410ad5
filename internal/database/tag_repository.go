package database

import (
	"context"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

func (p *PostgresDB) SaveTag(ctx context.Context, tag *models.Tag) error {
	_, err := p.DB.NamedExecContext(ctx, `INSERT INTO tags (id, name, slug) VALUES (:id, :name, :slug)`, tag)
	if err != nil {
		if isUniqueViolation(err) {
			return utils.NewAppError(utils.ErrDuplicate, "tag already exists", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to save tag", err)
	}
	return nil
}

func (p *PostgresDB) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	var tag models.Tag
	if err := p.DB.GetContext(ctx, &tag, `SELECT id, name, slug FROM tags WHERE slug = $1`, slug); err != nil {
		return nil, queryError(err, "tag")
	}
	return &tag, nil
}

// GetTagsBySlugs returns the tags that exist among slugs; missing slugs are simply absent.
func (p *PostgresDB) GetTagsBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error) {
	tags := make([]*models.Tag, 0, len(slugs))
	if len(slugs) == 0 {
		return tags, nil
	}
	err := p.DB.SelectContext(ctx, &tags,
		`SELECT id, name, slug FROM tags WHERE slug = ANY($1) ORDER BY slug`, pq.Array(slugs))
	if err != nil {
		return nil, queryError(err, "tags")
	}
	return tags, nil
}

// ListTags returns every tag with its follower count. Following is computed for viewer;
// pass uuid.Nil for anonymous callers.
func (p *PostgresDB) ListTags(ctx context.Context, viewer uuid.UUID) ([]*models.TagView, error) {
	query := `
		SELECT t.id, t.name, t.slug,
			(SELECT COUNT(*) FROM tag_followers tf WHERE tf.tag_id = t.id) AS followers_count,
			EXISTS (SELECT 1 FROM tag_followers tf WHERE tf.tag_id = t.id AND tf.user_id = $1) AS following
		FROM tags t
		ORDER BY t.name
	`
	tags := make([]*models.TagView, 0)
	if err := p.DB.SelectContext(ctx, &tags, query, viewer); err != nil {
		return nil, queryError(err, "tags")
	}
	return tags, nil
}

func (p *PostgresDB) FollowTag(ctx context.Context, tagID, userID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `
		INSERT INTO tag_followers (tag_id, user_id) VALUES ($1, $2)
		ON CONFLICT (tag_id, user_id) DO NOTHING`, tagID, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to follow tag", err)
	}
	return expectRows(result, utils.ErrDuplicate, "already following tag")
}

func (p *PostgresDB) UnfollowTag(ctx context.Context, tagID, userID uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx,
		`DELETE FROM tag_followers WHERE tag_id = $1 AND user_id = $2`, tagID, userID)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to unfollow tag", err)
	}
	return expectRows(result, utils.ErrNotFound, "not following tag")
}

func (p *PostgresDB) FollowedTags(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error) {
	query := `
		SELECT t.id, t.name, t.slug
		FROM tag_followers tf
		JOIN tags t ON t.id = tf.tag_id
		WHERE tf.user_id = $1
		ORDER BY t.name
	`
	tags := make([]*models.Tag, 0)
	if err := p.DB.SelectContext(ctx, &tags, query, userID); err != nil {
		return nil, queryError(err, "followed tags")
	}
	return tags, nil
}
