// internal/database/postgres.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"inkwell/internal/logging"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// UserStore covers users and the follow graph between them.
type UserStore interface {
	SaveUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUserBySlug(ctx context.Context, slug string) (*models.User, error)
	GetUserProfile(ctx context.Context, slug string) (*models.UserProfile, error)
	FollowUser(ctx context.Context, follower, followed uuid.UUID) error
	UnfollowUser(ctx context.Context, follower, followed uuid.UUID) error
	FollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error)
}

// TagStore covers tags and tag followers.
type TagStore interface {
	SaveTag(ctx context.Context, tag *models.Tag) error
	GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error)
	GetTagsBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error)
	ListTags(ctx context.Context, viewer uuid.UUID) ([]*models.TagView, error)
	FollowTag(ctx context.Context, tagID, userID uuid.UUID) error
	UnfollowTag(ctx context.Context, tagID, userID uuid.UUID) error
	FollowedTags(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error)
}

// ArticleStore covers articles, their tag sets and the feed candidate queries.
type ArticleStore interface {
	// CreateArticle inserts the article and its tag links in one transaction.
	CreateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error
	// UpdateArticle saves the article. A nil tagIDs keeps the current tag set;
	// a non-nil slice replaces it atomically.
	UpdateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error
	DeleteArticle(ctx context.Context, id uuid.UUID) error
	GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error)
	GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error)
	GetArticleViews(ctx context.Context, ids []uuid.UUID) ([]*models.ArticleView, error)
	ListArticles(ctx context.Context, filter models.ArticleFilter, page models.Page) ([]*models.ArticleView, int, error)
	ArticleRefsByFollowedTags(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error)
	ArticleRefsByFollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error)
}

// EngagementStore covers likes and saves. Inserts report utils.ErrDuplicate
// when the row already exists; deletes report utils.ErrNotFound when nothing matched.
type EngagementStore interface {
	AddLike(ctx context.Context, like *models.ArticleLike) error
	RemoveLike(ctx context.Context, userID, articleID uuid.UUID, special bool) error
	SaveArticle(ctx context.Context, userID, articleID uuid.UUID) error
	UnsaveArticle(ctx context.Context, userID, articleID uuid.UUID) error
	SavedArticles(ctx context.Context, userID uuid.UUID, page models.Page) ([]*models.ArticleView, int, error)
}

// CommentStore covers comments and comment votes.
type CommentStore interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error)
	ArticleComments(ctx context.Context, articleID uuid.UUID) ([]*models.CommentView, error)
	// SoftDeleteComment clears body and owner only if userID still owns the comment.
	SoftDeleteComment(ctx context.Context, id, userID uuid.UUID) error
	AddVote(ctx context.Context, vote *models.CommentVote) error
	RemoveVote(ctx context.Context, userID, commentID uuid.UUID) error
	CommentScore(ctx context.Context, id uuid.UUID) (int, error)
}

// ReportStore covers the moderation queue.
type ReportStore interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, int, error)
	MarkReportModerated(ctx context.Context, id uuid.UUID) error
}

// NotificationStore covers notification rows.
type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, receiverID uuid.UUID, page models.Page) ([]*models.NotificationView, int, error)
	MarkNotificationSeen(ctx context.Context, id, receiverID uuid.UUID) error
	MarkAllNotificationsSeen(ctx context.Context, receiverID uuid.UUID) error
}

// DBAdapter defines the common interface for database operations.
// PostgresDB is the production implementation; dbtest.MemoryDB backs unit tests.
type DBAdapter interface {
	Ping(ctx context.Context) error
	Close(ctx context.Context) error

	UserStore
	TagStore
	ArticleStore
	EngagementStore
	CommentStore
	ReportStore
	NotificationStore
}

// PostgresDB represents a PostgreSQL database connection
type PostgresDB struct {
	DB *sqlx.DB
}

var _ DBAdapter = (*PostgresDB)(nil)

// NewPostgresDB creates a new PostgreSQL database connection
func NewPostgresDB(connectionString string) (*PostgresDB, error) {
	db, err := sqlx.Connect("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}

	logging.Info().Msg("Successfully connected to PostgreSQL")

	return &PostgresDB{DB: db}, nil
}

func (p *PostgresDB) Ping(ctx context.Context) error {
	return p.DB.PingContext(ctx)
}

// Close closes the database connection
func (p *PostgresDB) Close(ctx context.Context) error {
	logging.Info().Msg("Closing PostgreSQL connection")
	return p.DB.Close()
}

// schema is applied in order by InitializeTables. Every at-most-one rule is a
// unique constraint so concurrent duplicates lose at the database.
var schema = []struct {
	name string
	ddl  string
}{
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id UUID PRIMARY KEY,
			username VARCHAR(30) UNIQUE NOT NULL,
			email VARCHAR(60) UNIQUE NOT NULL,
			display_name VARCHAR(30) NOT NULL DEFAULT '',
			description VARCHAR(150) NOT NULL DEFAULT '',
			slug VARCHAR(60) UNIQUE NOT NULL,
			avatar VARCHAR(255) NOT NULL DEFAULT 'uploads/avatars/default_avatar.png',
			is_moderator BOOLEAN NOT NULL DEFAULT FALSE,
			is_admin BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`},
	{"user_followings", `
		CREATE TABLE IF NOT EXISTS user_followings (
			user_follows UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			user_followed UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_follows, user_followed),
			CHECK (user_follows <> user_followed)
		)`},
	{"tags", `
		CREATE TABLE IF NOT EXISTS tags (
			id UUID PRIMARY KEY,
			name VARCHAR(50) UNIQUE NOT NULL,
			slug VARCHAR(60) UNIQUE NOT NULL
		)`},
	{"tag_followers", `
		CREATE TABLE IF NOT EXISTS tag_followers (
			tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			PRIMARY KEY (tag_id, user_id)
		)`},
	{"articles", `
		CREATE TABLE IF NOT EXISTS articles (
			id UUID PRIMARY KEY,
			title VARCHAR(150) NOT NULL,
			slug VARCHAR(200) UNIQUE NOT NULL,
			content TEXT NOT NULL,
			draft BOOLEAN NOT NULL DEFAULT FALSE,
			thumbnail VARCHAR(255),
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`},
	{"article_tags", `
		CREATE TABLE IF NOT EXISTS article_tags (
			article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			tag_id UUID NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
			PRIMARY KEY (article_id, tag_id)
		)`},
	{"article_likes", `
		CREATE TABLE IF NOT EXISTS article_likes (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			special BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, article_id, special)
		)`},
	{"saved_articles", `
		CREATE TABLE IF NOT EXISTS saved_articles (
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, article_id)
		)`},
	{"comments", `
		CREATE TABLE IF NOT EXISTS comments (
			id UUID PRIMARY KEY,
			body VARCHAR(1000) NOT NULL,
			parent_id UUID REFERENCES comments(id) ON DELETE CASCADE,
			user_id UUID REFERENCES users(id) ON DELETE SET NULL,
			article_id UUID NOT NULL REFERENCES articles(id) ON DELETE CASCADE,
			deleted BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)`},
	{"comment_votes", `
		CREATE TABLE IF NOT EXISTS comment_votes (
			id UUID PRIMARY KEY,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			comment_id UUID NOT NULL REFERENCES comments(id) ON DELETE CASCADE,
			downvote BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			UNIQUE (user_id, comment_id)
		)`},
	{"reports", `
		CREATE TABLE IF NOT EXISTS reports (
			id UUID PRIMARY KEY,
			reason SMALLINT NOT NULL DEFAULT 5 CHECK (reason BETWEEN 0 AND 5),
			message VARCHAR(500) NOT NULL DEFAULT '',
			article_id UUID REFERENCES articles(id) ON DELETE CASCADE,
			comment_id UUID REFERENCES comments(id) ON DELETE CASCADE,
			reported_user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			user_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			moderated BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CHECK (num_nonnulls(article_id, comment_id, reported_user_id) = 1)
		)`},
	{"notifications", `
		CREATE TABLE IF NOT EXISTS notifications (
			id UUID PRIMARY KEY,
			action SMALLINT NOT NULL CHECK (action BETWEEN 0 AND 4),
			sender_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			receiver_id UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			article_id UUID REFERENCES articles(id) ON DELETE CASCADE,
			comment_id UUID REFERENCES comments(id) ON DELETE CASCADE,
			target_user_id UUID REFERENCES users(id) ON DELETE CASCADE,
			preview_text VARCHAR(100) NOT NULL DEFAULT '',
			seen BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
			CHECK (num_nonnulls(article_id, comment_id, target_user_id) = 1)
		)`},
	{"idx_notifications_receiver", `CREATE INDEX IF NOT EXISTS idx_notifications_receiver ON notifications (receiver_id, seen, created_at DESC)`},
	{"idx_comments_article", `CREATE INDEX IF NOT EXISTS idx_comments_article ON comments (article_id)`},
	{"idx_articles_user", `CREATE INDEX IF NOT EXISTS idx_articles_user ON articles (user_id)`},
}

// InitializeTables creates all necessary tables if they don't exist
func (p *PostgresDB) InitializeTables(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := p.DB.ExecContext(ctx, stmt.ddl); err != nil {
			return fmt.Errorf("failed to create %s: %w", stmt.name, err)
		}
	}
	logging.Info().Int("statements", len(schema)).Msg("Database schema ready")
	return nil
}

// --- Helpers ---

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation"
}

// queryError maps driver errors onto the application taxonomy.
func queryError(err error, what string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return utils.NewAppError(utils.ErrNotFound, what+" not found", err)
	}
	if isUniqueViolation(err) {
		return utils.NewAppError(utils.ErrDuplicate, what+" already exists", err)
	}
	return utils.NewAppError(utils.ErrDatabase, "failed to query "+what, err)
}

// expectRows turns a zero-row result into the given error code.
func expectRows(result sql.Result, code, message string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to get rows affected", err)
	}
	if rows == 0 {
		return utils.NewAppError(code, message, nil)
	}
	return nil
}

func uuidStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// withTx runs fn in a transaction, rolling back on any error.
func (p *PostgresDB) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := p.DB.BeginTxx(ctx, nil)
	if err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to begin transaction", err)
	}
	defer tx.Rollback() // no-op after Commit

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return utils.NewAppError(utils.ErrDatabase, "failed to commit transaction", err)
	}
	return nil
}

// targetColumns splits a Target into the three nullable FK columns.
func targetColumns(t models.Target) (article, comment, user *uuid.UUID) {
	id := t.ID
	switch t.Kind {
	case models.TargetArticle:
		article = &id
	case models.TargetComment:
		comment = &id
	case models.TargetUser:
		user = &id
	}
	return
}

// targetFromColumns rebuilds a Target; the CHECK constraint guarantees exactly one is set.
func targetFromColumns(article, comment, user *uuid.UUID) models.Target {
	switch {
	case article != nil:
		return models.ArticleTarget(*article)
	case comment != nil:
		return models.CommentTarget(*comment)
	case user != nil:
		return models.UserTarget(*user)
	}
	return models.Target{}
}
