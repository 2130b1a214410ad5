package models

import (
	"time"

	"github.com/google/uuid"
)

type Action int

const (
	ActionLike Action = iota
	ActionSpecialLike
	ActionComment
	ActionReply
	ActionFollow
)

func (a Action) String() string {
	switch a {
	case ActionLike:
		return "like"
	case ActionSpecialLike:
		return "special_like"
	case ActionComment:
		return "comment"
	case ActionReply:
		return "reply"
	case ActionFollow:
		return "follow"
	default:
		return "unknown"
	}
}

const MaxPreviewText = 100

type Notification struct {
	ID          uuid.UUID `json:"id"`
	Action      Action    `json:"action"`
	SenderID    uuid.UUID `json:"sender_id"`
	ReceiverID  uuid.UUID `json:"receiver_id"`
	Target      Target    `json:"target"`
	PreviewText string    `json:"preview_text"`
	Seen        bool      `json:"seen"`
	CreatedAt   time.Time `json:"created_at"`
}

// NotificationView adds the sender card for listing.
type NotificationView struct {
	Notification
	Sender UserSummary `json:"sender"`
}
