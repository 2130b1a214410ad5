package models

import (
	"time"

	"github.com/google/uuid"
)

type ReportReason int

const (
	ReasonRude ReportReason = iota
	ReasonSpam
	ReasonCopyright
	ReasonHarassment
	ReasonInappropriate
	ReasonOther
)

var reasonLabels = map[ReportReason]string{
	ReasonRude:          "Rude or vulgar",
	ReasonSpam:          "Spam",
	ReasonCopyright:     "Copyright issue",
	ReasonHarassment:    "Harassment or hate speech",
	ReasonInappropriate: "Inappropriate content",
	ReasonOther:         "Other",
}

func (r ReportReason) Valid() bool {
	_, ok := reasonLabels[r]
	return ok
}

func (r ReportReason) String() string {
	if label, ok := reasonLabels[r]; ok {
		return label
	}
	return "Unknown"
}

const MaxReportMessage = 500

type Report struct {
	ID        uuid.UUID    `json:"id"`
	Reason    ReportReason `json:"reason"`
	Message   string       `json:"message"`
	Target    Target       `json:"target"`
	UserID    uuid.UUID    `json:"user_id"`
	Moderated bool         `json:"moderated"`
	CreatedAt time.Time    `json:"created_at"`
}

// ReportFilter drives the moderator queue.
type ReportFilter struct {
	Kind      *TargetKind
	Moderated bool
	Oldest    bool
	Page      Page
}
