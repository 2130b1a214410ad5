package api

import (
	"time"

	"inkwell/internal/engine"
	"inkwell/internal/models"

	"github.com/google/uuid"
)

// FeedArticle is the compact card used in feeds and listings.
type FeedArticle struct {
	Title             string             `json:"title"`
	Slug              string             `json:"slug"`
	Tags              []string           `json:"tags"`
	Content           string             `json:"content"`
	LikesCount        int                `json:"likes_count"`
	SpecialLikesCount int                `json:"special_likes_count"`
	CommentsCount     int                `json:"comments_count"`
	CreatedAt         time.Time          `json:"created_at"`
	User              models.UserSummary `json:"user"`
	Thumbnail         *string            `json:"thumbnail"`
}

func NewFeedArticle(v *models.ArticleView) FeedArticle {
	return FeedArticle{
		Title:             v.Title,
		Slug:              v.Slug,
		Tags:              v.Tags,
		Content:           v.Content,
		LikesCount:        v.LikesCount,
		SpecialLikesCount: v.SpecialLikesCount,
		CommentsCount:     v.CommentsCount,
		CreatedAt:         v.CreatedAt,
		User:              v.Author(),
		Thumbnail:         v.Thumbnail,
	}
}

func NewFeedArticles(views []*models.ArticleView) []FeedArticle {
	out := make([]FeedArticle, 0, len(views))
	for _, v := range views {
		out = append(out, NewFeedArticle(v))
	}
	return out
}

// ArticleDetail is the full article with every counter.
type ArticleDetail struct {
	ID        uuid.UUID          `json:"id"`
	Title     string             `json:"title"`
	Slug      string             `json:"slug"`
	Content   string             `json:"content"`
	Draft     bool               `json:"draft"`
	Thumbnail *string            `json:"thumbnail"`
	Tags      []string           `json:"tags"`
	User      models.UserSummary `json:"user"`
	models.ArticleStats
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewArticleDetail(v *models.ArticleView) ArticleDetail {
	return ArticleDetail{
		ID:           v.ID,
		Title:        v.Title,
		Slug:         v.Slug,
		Content:      v.Content,
		Draft:        v.Draft,
		Thumbnail:    v.Thumbnail,
		Tags:         v.Tags,
		User:         v.Author(),
		ArticleStats: v.ArticleStats,
		CreatedAt:    v.CreatedAt,
		UpdatedAt:    v.UpdatedAt,
	}
}

type FollowedTags struct {
	FollowedTags []*models.Tag `json:"followed_tags"`
}

type FollowedUsers struct {
	FollowedUsers []models.UserSummary `json:"followed_users"`
}

// FeedResults renders the feed's results array. Signed-in viewers get the
// followed-tags and followed-users blocks ahead of the article page.
func FeedResults(feed *engine.FeedResult) []interface{} {
	articles := NewFeedArticles(feed.Items)
	if !feed.Personalized {
		return []interface{}{articles}
	}
	tags := feed.FollowedTags
	if tags == nil {
		tags = []*models.Tag{}
	}
	users := feed.FollowedUsers
	if users == nil {
		users = []models.UserSummary{}
	}
	return []interface{}{
		FollowedTags{FollowedTags: tags},
		FollowedUsers{FollowedUsers: users},
		articles,
	}
}

// CommentNode is one comment in a thread. Deleted comments have no user.
type CommentNode struct {
	ID        uuid.UUID           `json:"id"`
	Body      string              `json:"body"`
	User      *models.UserSummary `json:"user"`
	Parent    *uuid.UUID          `json:"parent"`
	Deleted   bool                `json:"deleted"`
	Score     int                 `json:"score"`
	CreatedAt time.Time           `json:"created_at"`
	Replies   []*CommentNode      `json:"replies"`
}

func NewComment(v *models.CommentView) *CommentNode {
	return &CommentNode{
		ID:        v.ID,
		Body:      v.Body,
		User:      v.Author(),
		Parent:    v.ParentID,
		Deleted:   v.Deleted,
		Score:     v.Score,
		CreatedAt: v.CreatedAt,
		Replies:   []*CommentNode{},
	}
}

// NewCommentTree converts a thread breadth first, without recursion.
func NewCommentTree(roots []*engine.CommentNode) []*CommentNode {
	type pending struct {
		src *engine.CommentNode
		dst *CommentNode
	}
	out := make([]*CommentNode, 0, len(roots))
	queue := make([]pending, 0, len(roots))
	for _, r := range roots {
		node := NewComment(r.CommentView)
		out = append(out, node)
		queue = append(queue, pending{r, node})
	}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, child := range p.src.Replies {
			node := NewComment(child.CommentView)
			p.dst.Replies = append(p.dst.Replies, node)
			queue = append(queue, pending{child, node})
		}
	}
	return out
}

type Profile struct {
	DisplayName    string    `json:"display_name"`
	Slug           string    `json:"slug"`
	Avatar         string    `json:"avatar"`
	Description    string    `json:"description"`
	FollowersCount int       `json:"followers_count"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewProfile(p *models.UserProfile) Profile {
	return Profile{
		DisplayName:    p.DisplayName,
		Slug:           p.Slug,
		Avatar:         p.Avatar,
		Description:    p.Description,
		FollowersCount: p.FollowersCount,
		FollowingCount: p.FollowingCount,
		CreatedAt:      p.CreatedAt,
	}
}

// Report is the moderator view of a report. Exactly one target field is set.
type Report struct {
	ID          uuid.UUID  `json:"id"`
	Reason      int        `json:"reason"`
	ReasonLabel string     `json:"reason_label"`
	Message     string     `json:"message"`
	Article     *uuid.UUID `json:"article"`
	Comment     *uuid.UUID `json:"comment"`
	User        *uuid.UUID `json:"user"`
	Reporter    uuid.UUID  `json:"reporter"`
	Moderated   bool       `json:"moderated"`
	CreatedAt   time.Time  `json:"created_at"`
}

func NewReport(r *models.Report) Report {
	out := Report{
		ID:          r.ID,
		Reason:      int(r.Reason),
		ReasonLabel: r.Reason.String(),
		Message:     r.Message,
		Reporter:    r.UserID,
		Moderated:   r.Moderated,
		CreatedAt:   r.CreatedAt,
	}
	id := r.Target.ID
	switch r.Target.Kind {
	case models.TargetArticle:
		out.Article = &id
	case models.TargetComment:
		out.Comment = &id
	case models.TargetUser:
		out.User = &id
	}
	return out
}

func NewReports(items []*models.Report) []Report {
	out := make([]Report, 0, len(items))
	for _, r := range items {
		out = append(out, NewReport(r))
	}
	return out
}

type Notification struct {
	ID          uuid.UUID          `json:"id"`
	Action      string             `json:"action"`
	Sender      models.UserSummary `json:"sender"`
	Target      models.Target      `json:"target"`
	PreviewText string             `json:"preview_text"`
	Seen        bool               `json:"seen"`
	CreatedAt   time.Time          `json:"created_at"`
}

func NewNotifications(items []*models.NotificationView) []Notification {
	out := make([]Notification, 0, len(items))
	for _, n := range items {
		out = append(out, Notification{
			ID:          n.ID,
			Action:      n.Action.String(),
			Sender:      n.Sender,
			Target:      n.Target,
			PreviewText: n.PreviewText,
			Seen:        n.Seen,
			CreatedAt:   n.CreatedAt,
		})
	}
	return out
}
