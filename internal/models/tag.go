package models

import "github.com/google/uuid"

const MaxArticleTags = 5

type Tag struct {
	ID   uuid.UUID `json:"-" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}

// TagView decorates a tag with its follower count and whether the viewer follows it.
type TagView struct {
	Tag
	FollowersCount int  `json:"followers_count" db:"followers_count"`
	Following      bool `json:"following" db:"following"`
}
