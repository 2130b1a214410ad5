package models

import (
	"time"

	"github.com/google/uuid"
)

type Article struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Title     string    `json:"title" db:"title"`
	Slug      string    `json:"slug" db:"slug"`
	Content   string    `json:"content" db:"content"`
	Draft     bool      `json:"draft" db:"draft"`
	Thumbnail *string   `json:"thumbnail" db:"thumbnail"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// ArticleStats holds the derived counters. They are aggregated on every read.
type ArticleStats struct {
	LikesCount        int `json:"likes_count" db:"likes_count"`
	SpecialLikesCount int `json:"special_likes_count" db:"special_likes_count"`
	CommentsCount     int `json:"comments_count" db:"comments_count"`
	SavedCount        int `json:"saved_count" db:"saved_count"`
	ReportsCount      int `json:"reports_count" db:"reports_count"`
}

// ArticleView is an article joined with its author card, tags and counters.
type ArticleView struct {
	Article
	ArticleStats
	AuthorDisplayName string   `json:"-" db:"author_display_name"`
	AuthorSlug        string   `json:"-" db:"author_slug"`
	AuthorAvatar      string   `json:"-" db:"author_avatar"`
	Tags              []string `json:"tags" db:"-"`
}

func (v *ArticleView) Author() UserSummary {
	return UserSummary{DisplayName: v.AuthorDisplayName, Slug: v.AuthorSlug, Avatar: v.AuthorAvatar}
}

// ArticleRef is the minimal projection the feed composer works on.
type ArticleRef struct {
	ID     uuid.UUID `db:"id"`
	UserID uuid.UUID `db:"user_id"`
}

// ArticleFilter narrows the public article listing.
type ArticleFilter struct {
	Query  string
	Tags   []string
	Drafts bool
	UserID *uuid.UUID
}
