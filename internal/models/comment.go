package models

import (
	"time"

	"github.com/google/uuid"
)

// DeletedCommentBody replaces the body of a soft-deleted comment.
const DeletedCommentBody = "deleted"

type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	Body      string     `json:"body" db:"body"`
	ParentID  *uuid.UUID `json:"parent,omitempty" db:"parent_id"`
	UserID    *uuid.UUID `json:"user_id,omitempty" db:"user_id"`
	ArticleID uuid.UUID  `json:"article_id" db:"article_id"`
	Deleted   bool       `json:"deleted" db:"deleted"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" db:"updated_at"`
}

// OwnedBy reports whether userID is the comment's current owner.
// A soft-deleted comment has no owner.
func (c *Comment) OwnedBy(userID uuid.UUID) bool {
	return c.UserID != nil && *c.UserID == userID
}

// CommentView is a comment with its score and author card. Author fields are
// nil once the comment is deleted.
type CommentView struct {
	Comment
	Score             int     `json:"score" db:"score"`
	ReportsCount      int     `json:"reports_count" db:"reports_count"`
	AuthorDisplayName *string `json:"-" db:"author_display_name"`
	AuthorSlug        *string `json:"-" db:"author_slug"`
	AuthorAvatar      *string `json:"-" db:"author_avatar"`
}

func (v *CommentView) Author() *UserSummary {
	if v.AuthorSlug == nil {
		return nil
	}
	s := UserSummary{Slug: *v.AuthorSlug}
	if v.AuthorDisplayName != nil {
		s.DisplayName = *v.AuthorDisplayName
	}
	if v.AuthorAvatar != nil {
		s.Avatar = *v.AuthorAvatar
	}
	return &s
}
