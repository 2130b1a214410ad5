package models

import (
	"time"

	"github.com/google/uuid"
)

// ArticleLike is a normal or special like. A user holds at most one of each
// kind per article.
type ArticleLike struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	ArticleID uuid.UUID `json:"article_id" db:"article_id"`
	Special   bool      `json:"special" db:"special"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CommentVote is an upvote or a downvote. A user holds at most one vote per
// comment regardless of direction.
type CommentVote struct {
	ID        uuid.UUID `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CommentID uuid.UUID `json:"comment_id" db:"comment_id"`
	Downvote  bool      `json:"downvote" db:"downvote"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// SavedArticle is a bookmark.
type SavedArticle struct {
	UserID    uuid.UUID `db:"user_id"`
	ArticleID uuid.UUID `db:"article_id"`
	CreatedAt time.Time `db:"created_at"`
}
