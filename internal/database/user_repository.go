package database

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

const userColumns = `id, username, email, display_name, description, slug, avatar, is_moderator, is_admin, created_at`

// SaveUser inserts a new user. Username, email and slug collisions return ErrDuplicate.
func (p *PostgresDB) SaveUser(ctx context.Context, user *models.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES (:id, :username, :email, :display_name, :description, :slug, :avatar, :is_moderator, :is_admin, :created_at)
	`
	if _, err := p.DB.NamedExecContext(ctx, query, user); err != nil {
		if isUniqueViolation(err) {
			return utils.NewAppError(utils.ErrDuplicate, "A user with that username or email already exists", err)
		}
		return utils.NewAppError(utils.ErrDatabase, "failed to save user", err)
	}
	return nil
}

func (p *PostgresDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, queryError(err, "user")
	}
	return &user, nil
}

func (p *PostgresDB) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	var user models.User
	if err := p.DB.GetContext(ctx, &user, `SELECT `+userColumns+` FROM users WHERE slug = $1`, slug); err != nil {
		return nil, queryError(err, "user")
	}
	return &user, nil
}

// GetUserProfile returns the user with follower and following counts.
func (p *PostgresDB) GetUserProfile(ctx context.Context, slug string) (*models.UserProfile, error) {
	query := `
		SELECT ` + userColumns + `,
			(SELECT COUNT(*) FROM user_followings f WHERE f.user_followed = users.id) AS followers_count,
			(SELECT COUNT(*) FROM user_followings f WHERE f.user_follows = users.id) AS following_count
		FROM users WHERE slug = $1
	`
	var profile models.UserProfile
	if err := p.DB.GetContext(ctx, &profile, query, slug); err != nil {
		return nil, queryError(err, "user")
	}
	return &profile, nil
}

// --- Follow Methods ---

func (p *PostgresDB) FollowUser(ctx context.Context, follower, followed uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx, `
		INSERT INTO user_followings (user_follows, user_followed, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_follows, user_followed) DO NOTHING`, follower, followed)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to follow user", err)
	}
	return expectRows(result, utils.ErrDuplicate, "already following")
}

func (p *PostgresDB) UnfollowUser(ctx context.Context, follower, followed uuid.UUID) error {
	result, err := p.DB.ExecContext(ctx,
		`DELETE FROM user_followings WHERE user_follows = $1 AND user_followed = $2`, follower, followed)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to unfollow user", err)
	}
	return expectRows(result, utils.ErrNotFound, "not following")
}

// FollowedUsers lists the cards of everyone userID follows, oldest follow first.
func (p *PostgresDB) FollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	query := `
		SELECT u.display_name, u.slug, u.avatar
		FROM user_followings f
		JOIN users u ON u.id = f.user_followed
		WHERE f.user_follows = $1
		ORDER BY f.created_at, u.id
	`
	users := make([]models.UserSummary, 0)
	if err := p.DB.SelectContext(ctx, &users, query, userID); err != nil {
		return nil, queryError(err, "followed users")
	}
	return users, nil
}
