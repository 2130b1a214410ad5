package engine

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

// Like records a normal or special like. Normal and special likes are
// independent: a user may hold one of each per article.
func (e *Engine) Like(ctx context.Context, userID uuid.UUID, slug string, special bool) (string, error) {
	defer e.observe("like", time.Now())

	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return "", err
	}
	if article.UserID == userID {
		return "", utils.NewForbiddenError("Can't like your own post.")
	}

	err = e.db.AddLike(ctx, &models.ArticleLike{
		ID:        newID(),
		UserID:    userID,
		ArticleID: article.ID,
		Special:   special,
		CreatedAt: time.Now(),
	})
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		if special {
			return "", utils.NewConflictError("Can't special like twice")
		}
		return "", utils.NewConflictError("Can't like twice")
	}
	if err != nil {
		return "", err
	}

	action, details := models.ActionLike, "Liked article"
	if special {
		action, details = models.ActionSpecialLike, "Superliked article"
	}
	var out Outbox
	out.Add(action, userID, models.ArticleTarget(article.ID))
	e.dispatch(ctx, &out)
	return details, nil
}

// Unlike removes a like of the given kind. There is no ownership check:
// an owner can never hold a like, so they get the same error as anyone else without one.
func (e *Engine) Unlike(ctx context.Context, userID uuid.UUID, slug string, special bool) error {
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return err
	}
	err = e.db.RemoveLike(ctx, userID, article.ID, special)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return utils.NewConflictError("Can't unlike without liking")
	}
	return err
}

func (e *Engine) Save(ctx context.Context, userID uuid.UUID, slug string) error {
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return err
	}
	if article.UserID == userID {
		return utils.NewForbiddenError("You can't save your own article")
	}
	err = e.db.SaveArticle(ctx, userID, article.ID)
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		return utils.NewConflictError("You have already saved this article")
	}
	if err == nil {
		e.metrics.IncrementEngagement("save")
	}
	return err
}

func (e *Engine) Unsave(ctx context.Context, userID uuid.UUID, slug string) error {
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return err
	}
	if article.UserID == userID {
		return utils.NewForbiddenError("You can't unsave your own article")
	}
	err = e.db.UnsaveArticle(ctx, userID, article.ID)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return utils.NewConflictError("You must save before you can unsave")
	}
	return err
}

func (e *Engine) SavedArticles(ctx context.Context, userID uuid.UUID, page int) (PageResult[*models.ArticleView], error) {
	var result PageResult[*models.ArticleView]
	window, err := e.pageWindow(page)
	if err != nil {
		return result, err
	}
	items, total, err := e.db.SavedArticles(ctx, userID, window)
	if err != nil {
		return result, err
	}
	if err := checkPageInRange(page, total, window.Limit); err != nil {
		return result, err
	}
	return PageResult[*models.ArticleView]{Items: items, Total: total, Page: page, Size: window.Limit}, nil
}
