package engine

import (
	"bytes"
	"context"
	"sort"
	"time"

	"inkwell/internal/models"

	"github.com/google/uuid"
)

const feedPreviewWords = 40

// FeedResult is one page of a feed. The followed blocks are only set for
// authenticated viewers and are never paginated.
type FeedResult struct {
	PageResult[*models.ArticleView]
	Personalized  bool
	FollowedTags  []*models.Tag
	FollowedUsers []models.UserSummary
}

// Feed builds the viewer's feed. Anonymous viewers get every published article;
// signed-in viewers get articles in followed tags or by followed users, minus
// their own. Both are ordered oldest first by id.
func (e *Engine) Feed(ctx context.Context, viewer *uuid.UUID, page int) (*FeedResult, error) {
	defer e.observe("feed", time.Now())

	if viewer == nil {
		listing, err := e.listArticles(ctx, models.ArticleFilter{}, page)
		if err != nil {
			return nil, err
		}
		truncatePreviews(listing.Items)
		return &FeedResult{PageResult: listing}, nil
	}

	window, err := e.pageWindow(page)
	if err != nil {
		return nil, err
	}

	byTags, err := e.db.ArticleRefsByFollowedTags(ctx, *viewer)
	if err != nil {
		return nil, err
	}
	byUsers, err := e.db.ArticleRefsByFollowedUsers(ctx, *viewer)
	if err != nil {
		return nil, err
	}
	ids := ComposeFeed(*viewer, byTags, byUsers)
	if err := checkPageInRange(page, len(ids), window.Limit); err != nil {
		return nil, err
	}

	pageIDs := paginateIDs(ids, window)
	items, err := e.db.GetArticleViews(ctx, pageIDs)
	if err != nil {
		return nil, err
	}
	items = orderByIDs(items, pageIDs)
	truncatePreviews(items)

	followedTags, err := e.db.FollowedTags(ctx, *viewer)
	if err != nil {
		return nil, err
	}
	followedUsers, err := e.db.FollowedUsers(ctx, *viewer)
	if err != nil {
		return nil, err
	}

	return &FeedResult{
		PageResult: PageResult[*models.ArticleView]{
			Items: items,
			Total: len(ids),
			Page:  page,
			Size:  window.Limit,
		},
		Personalized:  true,
		FollowedTags:  followedTags,
		FollowedUsers: followedUsers,
	}, nil
}

// ComposeFeed unions the two candidate sets, drops duplicates and the viewer's
// own articles, and orders what remains ascending by id. UUIDv7 ids sort by
// creation time, so this is oldest first.
func ComposeFeed(viewer uuid.UUID, byTags, byUsers []models.ArticleRef) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(byTags)+len(byUsers))
	ids := make([]uuid.UUID, 0, len(byTags)+len(byUsers))
	for _, set := range [][]models.ArticleRef{byTags, byUsers} {
		for _, ref := range set {
			if ref.UserID == viewer || seen[ref.ID] {
				continue
			}
			seen[ref.ID] = true
			ids = append(ids, ref.ID)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		return bytes.Compare(ids[i][:], ids[j][:]) < 0
	})
	return ids
}

func paginateIDs(ids []uuid.UUID, window models.Page) []uuid.UUID {
	if window.Offset >= len(ids) {
		return []uuid.UUID{}
	}
	end := window.Offset + window.Limit
	if end > len(ids) {
		end = len(ids)
	}
	return ids[window.Offset:end]
}

// orderByIDs restores the composed order after hydration.
func orderByIDs(items []*models.ArticleView, ids []uuid.UUID) []*models.ArticleView {
	byID := make(map[uuid.UUID]*models.ArticleView, len(items))
	for _, it := range items {
		byID[it.ID] = it
	}
	out := make([]*models.ArticleView, 0, len(ids))
	for _, id := range ids {
		if it, ok := byID[id]; ok {
			out = append(out, it)
		}
	}
	return out
}

func truncatePreviews(items []*models.ArticleView) {
	for _, it := range items {
		it.Content = truncateWords(it.Content, feedPreviewWords)
	}
}
