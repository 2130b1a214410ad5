package models

import (
	"fmt"

	"github.com/google/uuid"
)

// TargetKind names the entity a report or notification points at.
type TargetKind string

const (
	TargetArticle TargetKind = "article"
	TargetComment TargetKind = "comment"
	TargetUser    TargetKind = "user"
)

// Target is the tagged union used by reports and notifications.
// Exactly one entity is referenced; the kind says which table the ID belongs to.
type Target struct {
	Kind TargetKind `json:"type"`
	ID   uuid.UUID  `json:"id"`
}

func ArticleTarget(id uuid.UUID) Target { return Target{Kind: TargetArticle, ID: id} }
func CommentTarget(id uuid.UUID) Target { return Target{Kind: TargetComment, ID: id} }
func UserTarget(id uuid.UUID) Target    { return Target{Kind: TargetUser, ID: id} }

// Valid reports whether the target names a known kind and a non-zero id.
func (t Target) Valid() bool {
	switch t.Kind {
	case TargetArticle, TargetComment, TargetUser:
		return t.ID != uuid.Nil
	}
	return false
}

func (t Target) String() string {
	return fmt.Sprintf("%s:%s", t.Kind, t.ID)
}

// ParseTargetKind accepts the plural filter values used by the report queue.
func ParseTargetKind(s string) (TargetKind, bool) {
	switch s {
	case "articles", "article":
		return TargetArticle, true
	case "comments", "comment":
		return TargetComment, true
	case "users", "user":
		return TargetUser, true
	}
	return "", false
}

// Page is an offset window over an ordered result set.
type Page struct {
	Limit  int
	Offset int
}
