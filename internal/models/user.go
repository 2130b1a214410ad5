package models

import (
	"time"

	"github.com/google/uuid"
)

const DefaultAvatar = "uploads/avatars/default_avatar.png"

type User struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Username    string    `json:"username" db:"username"`
	Email       string    `json:"email" db:"email"`
	DisplayName string    `json:"display_name" db:"display_name"`
	Description string    `json:"description" db:"description"`
	Slug        string    `json:"slug" db:"slug"`
	Avatar      string    `json:"avatar" db:"avatar"`
	IsModerator bool      `json:"is_moderator" db:"is_moderator"`
	IsAdmin     bool      `json:"is_admin" db:"is_admin"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}

// Summary is the public card shown next to articles, comments and in feeds.
func (u *User) Summary() UserSummary {
	return UserSummary{DisplayName: u.DisplayName, Slug: u.Slug, Avatar: u.Avatar}
}

type UserSummary struct {
	DisplayName string `json:"display_name" db:"display_name"`
	Slug        string `json:"slug" db:"slug"`
	Avatar      string `json:"avatar" db:"avatar"`
}

// UserProfile is a user with follow counters computed at read time.
type UserProfile struct {
	User
	FollowersCount int `json:"followers_count" db:"followers_count"`
	FollowingCount int `json:"following_count" db:"following_count"`
}

// UserFollowing is a directed follow edge.
type UserFollowing struct {
	UserFollows  uuid.UUID `json:"user_follows" db:"user_follows"`
	UserFollowed uuid.UUID `json:"user_followed" db:"user_followed"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}
