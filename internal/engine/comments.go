package engine

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// CommentInput is the body for posting a comment or a reply.
type CommentInput struct {
	Body   string     `json:"body" validate:"required,max=1000"`
	Parent *uuid.UUID `json:"parent"`
}

// CommentNode is one comment in an article's thread with its replies nested.
type CommentNode struct {
	*models.CommentView
	Replies []*CommentNode
}

// CreateComment posts a comment on the article at slug. It notifies the article
// owner and, for replies, the parent comment's owner.
func (e *Engine) CreateComment(ctx context.Context, userID uuid.UUID, slug string, in CommentInput) (*models.CommentView, error) {
	defer e.observe("create_comment", time.Now())

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return nil, err
	}
	if article.Draft {
		return nil, utils.NewNotFoundError("Not found.")
	}
	if in.Parent != nil {
		parent, err := e.db.GetComment(ctx, *in.Parent)
		if err != nil && !utils.IsErrorCode(err, utils.ErrNotFound) {
			return nil, err
		}
		if parent == nil || parent.ArticleID != article.ID {
			return nil, utils.NewValidationError("parent", "Parent comment must have the same article id")
		}
	}
	author, err := e.currentUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	uid := userID
	comment := &models.Comment{
		ID:        newID(),
		Body:      in.Body,
		ParentID:  in.Parent,
		UserID:    &uid,
		ArticleID: article.ID,
		CreatedAt: time.Now(),
	}
	if err := e.db.CreateComment(ctx, comment); err != nil {
		return nil, err
	}

	var out Outbox
	out.Add(models.ActionComment, userID, models.CommentTarget(comment.ID))
	if comment.ParentID != nil {
		out.Add(models.ActionReply, userID, models.CommentTarget(comment.ID))
	}
	e.dispatch(ctx, &out)

	return &models.CommentView{
		Comment:           *comment,
		AuthorDisplayName: &author.DisplayName,
		AuthorSlug:        &author.Slug,
		AuthorAvatar:      &author.Avatar,
	}, nil
}

// DeleteComment soft-deletes a comment owned by userID. The row stays so
// replies keep their parent; a comment already deleted has no owner and is rejected.
func (e *Engine) DeleteComment(ctx context.Context, userID, commentID uuid.UUID) error {
	comment, err := e.comment(ctx, commentID)
	if err != nil {
		return err
	}
	if !comment.OwnedBy(userID) {
		return utils.NewForbiddenError("You can't delete someone else's comment")
	}
	if err := e.db.SoftDeleteComment(ctx, commentID, userID); err != nil {
		if utils.IsErrorCode(err, utils.ErrForbidden) {
			return utils.NewForbiddenError("You can't delete someone else's comment")
		}
		return err
	}
	return nil
}

// Vote records an up or down vote. One vote per user per comment, whatever the direction.
func (e *Engine) Vote(ctx context.Context, userID, commentID uuid.UUID, downvote bool) (string, error) {
	comment, err := e.comment(ctx, commentID)
	if err != nil {
		return "", err
	}
	if comment.Deleted {
		return "", utils.NewAppError(utils.ErrInvalidInput, "Can't vote on a deleted comment", nil)
	}
	err = e.db.AddVote(ctx, &models.CommentVote{
		ID:        newID(),
		UserID:    userID,
		CommentID: commentID,
		Downvote:  downvote,
		CreatedAt: time.Now(),
	})
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		return "", utils.NewConflictError("Can't vote twice")
	}
	if err != nil {
		return "", err
	}
	e.metrics.IncrementEngagement("vote")
	return "Voted on comment", nil
}

func (e *Engine) Unvote(ctx context.Context, userID, commentID uuid.UUID) error {
	if _, err := e.comment(ctx, commentID); err != nil {
		return err
	}
	err := e.db.RemoveVote(ctx, userID, commentID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return utils.NewConflictError("Can't unvote without voting")
	}
	return err
}

// CommentThread returns the article's comments as a forest of top-level comments.
func (e *Engine) CommentThread(ctx context.Context, viewer *uuid.UUID, slug string) ([]*CommentNode, error) {
	article, err := e.visibleArticle(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}
	flat, err := e.db.ArticleComments(ctx, article.ID)
	if err != nil {
		return nil, err
	}
	return BuildCommentTree(flat), nil
}

// BuildCommentTree nests comments under their parents without recursion.
// Input order is preserved among siblings. Comments whose parent is missing
// from the slice become roots.
func BuildCommentTree(flat []*models.CommentView) []*CommentNode {
	nodes := make(map[uuid.UUID]*CommentNode, len(flat))
	for _, c := range flat {
		nodes[c.ID] = &CommentNode{CommentView: c, Replies: make([]*CommentNode, 0)}
	}

	roots := make([]*CommentNode, 0)
	for _, c := range flat {
		node := nodes[c.ID]
		if c.ParentID != nil {
			if parent, ok := nodes[*c.ParentID]; ok && parent != node {
				parent.Replies = append(parent.Replies, node)
				continue
			}
		}
		roots = append(roots, node)
	}
	return roots
}

func (e *Engine) comment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	comment, err := e.db.GetComment(ctx, id)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return comment, err
}
