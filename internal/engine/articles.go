package engine

import (
	"context"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"
	"inkwell/internal/validation"

	"github.com/google/uuid"
)

// ArticleInput is the body for creating an article.
type ArticleInput struct {
	Title     string   `json:"title" validate:"required,max=150"`
	Content   string   `json:"content" validate:"required"`
	Draft     bool     `json:"draft"`
	Thumbnail *string  `json:"thumbnail" validate:"omitempty,max=255"`
	Tags      []string `json:"tags"`
}

// ArticlePatch is a partial update. Nil fields are left untouched.
type ArticlePatch struct {
	Title     *string   `json:"title" validate:"omitempty,min=1,max=150"`
	Content   *string   `json:"content" validate:"omitempty,min=1"`
	Draft     *bool     `json:"draft"`
	Thumbnail *string   `json:"thumbnail" validate:"omitempty,max=255"`
	Tags      *[]string `json:"tags"`
}

func (e *Engine) CreateArticle(ctx context.Context, userID uuid.UUID, in ArticleInput) (*models.ArticleView, error) {
	defer e.observe("create_article", time.Now())

	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	tagIDs, err := e.resolveTags(ctx, in.Tags)
	if err != nil {
		return nil, err
	}

	article := &models.Article{
		ID:        newID(),
		Title:     in.Title,
		Content:   in.Content,
		Draft:     in.Draft,
		Thumbnail: in.Thumbnail,
		UserID:    userID,
		CreatedAt: time.Now(),
	}
	article.Slug, err = e.uniqueSlug(ctx, in.Title)
	if err != nil {
		return nil, err
	}

	err = e.db.CreateArticle(ctx, article, tagIDs)
	if utils.IsErrorCode(err, utils.ErrDuplicate) {
		// Lost a race for the slug; one retry with a fresh suffix.
		article.Slug = Slugify(in.Title) + "-" + slugSuffix()
		err = e.db.CreateArticle(ctx, article, tagIDs)
	}
	if err != nil {
		return nil, err
	}
	return e.articleView(ctx, article.ID)
}

func (e *Engine) uniqueSlug(ctx context.Context, title string) (string, error) {
	base := Slugify(title)
	if base == "" {
		base = "article"
	}
	_, err := e.db.GetArticleBySlug(ctx, base)
	switch {
	case utils.IsErrorCode(err, utils.ErrNotFound):
		return base, nil
	case err != nil:
		return "", err
	}
	return base + "-" + slugSuffix(), nil
}

// GetArticle returns the article at slug. Drafts are visible only to their owner.
func (e *Engine) GetArticle(ctx context.Context, viewer *uuid.UUID, slug string) (*models.ArticleView, error) {
	article, err := e.visibleArticle(ctx, viewer, slug)
	if err != nil {
		return nil, err
	}
	return e.articleView(ctx, article.ID)
}

func (e *Engine) UpdateArticle(ctx context.Context, userID uuid.UUID, slug string, patch ArticlePatch) (*models.ArticleView, error) {
	if err := validation.Struct(patch); err != nil {
		return nil, err
	}
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return nil, err
	}
	if article.UserID != userID {
		return nil, utils.NewForbiddenError("You can't edit someone else's article")
	}

	var tagIDs []uuid.UUID
	if patch.Tags != nil {
		if tagIDs, err = e.resolveTags(ctx, *patch.Tags); err != nil {
			return nil, err
		}
	}
	if patch.Title != nil {
		article.Title = *patch.Title
	}
	if patch.Content != nil {
		article.Content = *patch.Content
	}
	if patch.Draft != nil {
		article.Draft = *patch.Draft
	}
	if patch.Thumbnail != nil {
		article.Thumbnail = patch.Thumbnail
	}

	if err := e.db.UpdateArticle(ctx, article, tagIDs); err != nil {
		return nil, err
	}
	return e.articleView(ctx, article.ID)
}

func (e *Engine) DeleteArticle(ctx context.Context, userID uuid.UUID, slug string) error {
	article, err := e.visibleArticle(ctx, &userID, slug)
	if err != nil {
		return err
	}
	if article.UserID != userID {
		return utils.NewForbiddenError("You can't delete someone else's article")
	}
	return e.db.DeleteArticle(ctx, article.ID)
}

// ListArticles returns published articles, oldest first, optionally filtered
// by a title search and any of several tags.
func (e *Engine) ListArticles(ctx context.Context, query string, tags []string, page int) (PageResult[*models.ArticleView], error) {
	return e.listArticles(ctx, models.ArticleFilter{Query: query, Tags: tags}, page)
}

// Drafts returns the caller's unpublished articles.
func (e *Engine) Drafts(ctx context.Context, userID uuid.UUID, page int) (PageResult[*models.ArticleView], error) {
	return e.listArticles(ctx, models.ArticleFilter{Drafts: true, UserID: &userID}, page)
}

func (e *Engine) listArticles(ctx context.Context, filter models.ArticleFilter, page int) (PageResult[*models.ArticleView], error) {
	var result PageResult[*models.ArticleView]
	window, err := e.pageWindow(page)
	if err != nil {
		return result, err
	}
	items, total, err := e.db.ListArticles(ctx, filter, window)
	if err != nil {
		return result, err
	}
	if err := checkPageInRange(page, total, window.Limit); err != nil {
		return result, err
	}
	return PageResult[*models.ArticleView]{Items: items, Total: total, Page: page, Size: window.Limit}, nil
}

// visibleArticle loads the article at slug, hiding other users' drafts as not found.
func (e *Engine) visibleArticle(ctx context.Context, viewer *uuid.UUID, slug string) (*models.Article, error) {
	article, err := e.db.GetArticleBySlug(ctx, slug)
	if utils.IsErrorCode(err, utils.ErrNotFound) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	if err != nil {
		return nil, err
	}
	if article.Draft && (viewer == nil || *viewer != article.UserID) {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return article, nil
}

func (e *Engine) articleView(ctx context.Context, id uuid.UUID) (*models.ArticleView, error) {
	views, err := e.db.GetArticleViews(ctx, []uuid.UUID{id})
	if err != nil {
		return nil, err
	}
	if len(views) == 0 {
		return nil, utils.NewNotFoundError("Not found.")
	}
	return views[0], nil
}
