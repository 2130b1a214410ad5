// Package dbtest provides an in-memory database.DBAdapter for unit tests.
// It mirrors the uniqueness and cascade rules of the Postgres schema.
package dbtest

import (
	"bytes"
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"inkwell/internal/database"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
)

type likeKey struct {
	user, article uuid.UUID
	special       bool
}

type pairKey struct{ a, b uuid.UUID }

type MemoryDB struct {
	mu sync.RWMutex

	users         map[uuid.UUID]*models.User
	follows       map[pairKey]time.Time // follower -> followed
	tags          map[uuid.UUID]*models.Tag
	tagFollowers  map[pairKey]bool // tag -> user
	articles      map[uuid.UUID]*models.Article
	articleTags   map[uuid.UUID][]uuid.UUID
	likes         map[likeKey]*models.ArticleLike
	saves         map[pairKey]time.Time // user -> article
	comments      map[uuid.UUID]*models.Comment
	votes         map[pairKey]*models.CommentVote // user -> comment
	reports       map[uuid.UUID]*models.Report
	notifications map[uuid.UUID]*models.Notification

	// FailNotifications makes CreateNotification return a database error.
	FailNotifications bool
}

var _ database.DBAdapter = (*MemoryDB)(nil)

func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		users:         make(map[uuid.UUID]*models.User),
		follows:       make(map[pairKey]time.Time),
		tags:          make(map[uuid.UUID]*models.Tag),
		tagFollowers:  make(map[pairKey]bool),
		articles:      make(map[uuid.UUID]*models.Article),
		articleTags:   make(map[uuid.UUID][]uuid.UUID),
		likes:         make(map[likeKey]*models.ArticleLike),
		saves:         make(map[pairKey]time.Time),
		comments:      make(map[uuid.UUID]*models.Comment),
		votes:         make(map[pairKey]*models.CommentVote),
		reports:       make(map[uuid.UUID]*models.Report),
		notifications: make(map[uuid.UUID]*models.Notification),
	}
}

func (m *MemoryDB) Ping(ctx context.Context) error  { return nil }
func (m *MemoryDB) Close(ctx context.Context) error { return nil }

func notFound(what string) error {
	return utils.NewAppError(utils.ErrNotFound, what+" not found", nil)
}

func duplicate(what string) error {
	return utils.NewAppError(utils.ErrDuplicate, what+" already exists", nil)
}

func idLess(a, b uuid.UUID) bool { return bytes.Compare(a[:], b[:]) < 0 }

func window[T any](items []T, page models.Page) []T {
	if page.Offset >= len(items) {
		return make([]T, 0)
	}
	end := len(items)
	if page.Limit > 0 && page.Offset+page.Limit < end {
		end = page.Offset + page.Limit
	}
	return append(make([]T, 0, end-page.Offset), items[page.Offset:end]...)
}

// --- Users ---

func (m *MemoryDB) SaveUser(ctx context.Context, user *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Username == user.Username || u.Email == user.Email || u.Slug == user.Slug {
			return duplicate("user")
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	if user.Avatar == "" {
		user.Avatar = models.DefaultAvatar
	}
	cp := *user
	m.users[user.ID] = &cp
	return nil
}

func (m *MemoryDB) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *u
	return &cp, nil
}

func (m *MemoryDB) GetUserBySlug(ctx context.Context, slug string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.users {
		if u.Slug == slug {
			cp := *u
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (m *MemoryDB) GetUserProfile(ctx context.Context, slug string) (*models.UserProfile, error) {
	user, err := m.GetUserBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	profile := &models.UserProfile{User: *user}
	for k := range m.follows {
		if k.b == user.ID {
			profile.FollowersCount++
		}
		if k.a == user.ID {
			profile.FollowingCount++
		}
	}
	return profile, nil
}

func (m *MemoryDB) FollowUser(ctx context.Context, follower, followed uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{follower, followed}
	if _, ok := m.follows[key]; ok {
		return duplicate("following")
	}
	m.follows[key] = time.Now()
	return nil
}

func (m *MemoryDB) UnfollowUser(ctx context.Context, follower, followed uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{follower, followed}
	if _, ok := m.follows[key]; !ok {
		return notFound("following")
	}
	delete(m.follows, key)
	return nil
}

func (m *MemoryDB) FollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.UserSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type edge struct {
		at   time.Time
		user *models.User
	}
	var edges []edge
	for k, at := range m.follows {
		if k.a == userID {
			if u, ok := m.users[k.b]; ok {
				edges = append(edges, edge{at, u})
			}
		}
	}
	sort.Slice(edges, func(i, j int) bool {
		if !edges[i].at.Equal(edges[j].at) {
			return edges[i].at.Before(edges[j].at)
		}
		return idLess(edges[i].user.ID, edges[j].user.ID)
	})
	out := make([]models.UserSummary, 0, len(edges))
	for _, e := range edges {
		out = append(out, e.user.Summary())
	}
	return out, nil
}

// --- Tags ---

func (m *MemoryDB) SaveTag(ctx context.Context, tag *models.Tag) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tags {
		if t.Name == tag.Name || t.Slug == tag.Slug {
			return duplicate("tag")
		}
	}
	cp := *tag
	m.tags[tag.ID] = &cp
	return nil
}

func (m *MemoryDB) GetTagBySlug(ctx context.Context, slug string) (*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.tags {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, notFound("tag")
}

func (m *MemoryDB) GetTagsBySlugs(ctx context.Context, slugs []string) ([]*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	want := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		want[s] = true
	}
	out := make([]*models.Tag, 0, len(slugs))
	for _, t := range m.tags {
		if want[t.Slug] {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *MemoryDB) ListTags(ctx context.Context, viewer uuid.UUID) ([]*models.TagView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.TagView, 0, len(m.tags))
	for _, t := range m.tags {
		view := &models.TagView{Tag: *t}
		for k := range m.tagFollowers {
			if k.a == t.ID {
				view.FollowersCount++
				if k.b == viewer {
					view.Following = true
				}
			}
		}
		out = append(out, view)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryDB) FollowTag(ctx context.Context, tagID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{tagID, userID}
	if m.tagFollowers[key] {
		return duplicate("tag follow")
	}
	m.tagFollowers[key] = true
	return nil
}

func (m *MemoryDB) UnfollowTag(ctx context.Context, tagID, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{tagID, userID}
	if !m.tagFollowers[key] {
		return notFound("tag follow")
	}
	delete(m.tagFollowers, key)
	return nil
}

func (m *MemoryDB) FollowedTags(ctx context.Context, userID uuid.UUID) ([]*models.Tag, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.Tag, 0)
	for k := range m.tagFollowers {
		if k.b == userID {
			if t, ok := m.tags[k.a]; ok {
				cp := *t
				out = append(out, &cp)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// --- Articles ---

func (m *MemoryDB) CreateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.articles {
		if a.Slug == article.Slug {
			return duplicate("article slug")
		}
	}
	now := time.Now()
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now
	cp := *article
	m.articles[article.ID] = &cp
	m.articleTags[article.ID] = append([]uuid.UUID(nil), tagIDs...)
	return nil
}

func (m *MemoryDB) UpdateArticle(ctx context.Context, article *models.Article, tagIDs []uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	existing, ok := m.articles[article.ID]
	if !ok {
		return notFound("article")
	}
	article.UpdatedAt = time.Now()
	existing.Title = article.Title
	existing.Content = article.Content
	existing.Draft = article.Draft
	existing.Thumbnail = article.Thumbnail
	existing.UpdatedAt = article.UpdatedAt
	if tagIDs != nil {
		m.articleTags[article.ID] = append([]uuid.UUID(nil), tagIDs...)
	}
	return nil
}

func (m *MemoryDB) DeleteArticle(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.articles[id]; !ok {
		return notFound("article")
	}
	delete(m.articles, id)
	delete(m.articleTags, id)
	for k := range m.likes {
		if k.article == id {
			delete(m.likes, k)
		}
	}
	for k := range m.saves {
		if k.b == id {
			delete(m.saves, k)
		}
	}
	for cid, c := range m.comments {
		if c.ArticleID == id {
			delete(m.comments, cid)
			for k := range m.votes {
				if k.b == cid {
					delete(m.votes, k)
				}
			}
		}
	}
	return nil
}

func (m *MemoryDB) GetArticle(ctx context.Context, id uuid.UUID) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.articles[id]
	if !ok {
		return nil, notFound("article")
	}
	cp := *a
	return &cp, nil
}

func (m *MemoryDB) GetArticleBySlug(ctx context.Context, slug string) (*models.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, a := range m.articles {
		if a.Slug == slug {
			cp := *a
			return &cp, nil
		}
	}
	return nil, notFound("article")
}

// view must be called with the lock held.
func (m *MemoryDB) view(a *models.Article) *models.ArticleView {
	v := &models.ArticleView{Article: *a, Tags: make([]string, 0)}
	if u, ok := m.users[a.UserID]; ok {
		v.AuthorDisplayName, v.AuthorSlug, v.AuthorAvatar = u.DisplayName, u.Slug, u.Avatar
	}
	for k := range m.likes {
		if k.article == a.ID {
			if k.special {
				v.SpecialLikesCount++
			} else {
				v.LikesCount++
			}
		}
	}
	for _, c := range m.comments {
		if c.ArticleID == a.ID && !c.Deleted {
			v.CommentsCount++
		}
	}
	for k := range m.saves {
		if k.b == a.ID {
			v.SavedCount++
		}
	}
	for _, r := range m.reports {
		if r.Target == models.ArticleTarget(a.ID) {
			v.ReportsCount++
		}
	}
	for _, tid := range m.articleTags[a.ID] {
		if t, ok := m.tags[tid]; ok {
			v.Tags = append(v.Tags, t.Slug)
		}
	}
	sort.Strings(v.Tags)
	return v
}

func (m *MemoryDB) GetArticleViews(ctx context.Context, ids []uuid.UUID) ([]*models.ArticleView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.ArticleView, 0, len(ids))
	for _, id := range ids {
		if a, ok := m.articles[id]; ok {
			out = append(out, m.view(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (m *MemoryDB) hasAnyTag(articleID uuid.UUID, slugs []string) bool {
	for _, tid := range m.articleTags[articleID] {
		t, ok := m.tags[tid]
		if !ok {
			continue
		}
		for _, s := range slugs {
			if t.Slug == s {
				return true
			}
		}
	}
	return false
}

func (m *MemoryDB) ListArticles(ctx context.Context, filter models.ArticleFilter, page models.Page) ([]*models.ArticleView, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q := strings.ToLower(strings.TrimSpace(filter.Query))
	var matched []*models.Article
	for _, a := range m.articles {
		if a.Draft != filter.Drafts {
			continue
		}
		if filter.UserID != nil && a.UserID != *filter.UserID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(a.Title), q) {
			continue
		}
		if len(filter.Tags) > 0 && !m.hasAnyTag(a.ID, filter.Tags) {
			continue
		}
		matched = append(matched, a)
	}
	sort.Slice(matched, func(i, j int) bool { return idLess(matched[i].ID, matched[j].ID) })

	out := make([]*models.ArticleView, 0)
	for _, a := range window(matched, page) {
		out = append(out, m.view(a))
	}
	return out, len(matched), nil
}

func (m *MemoryDB) ArticleRefsByFollowedTags(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make([]models.ArticleRef, 0)
	for _, a := range m.articles {
		if a.Draft {
			continue
		}
		for _, tid := range m.articleTags[a.ID] {
			if m.tagFollowers[pairKey{tid, userID}] {
				refs = append(refs, models.ArticleRef{ID: a.ID, UserID: a.UserID})
				break
			}
		}
	}
	return refs, nil
}

func (m *MemoryDB) ArticleRefsByFollowedUsers(ctx context.Context, userID uuid.UUID) ([]models.ArticleRef, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	refs := make([]models.ArticleRef, 0)
	for _, a := range m.articles {
		if a.Draft {
			continue
		}
		if _, ok := m.follows[pairKey{userID, a.UserID}]; ok {
			refs = append(refs, models.ArticleRef{ID: a.ID, UserID: a.UserID})
		}
	}
	return refs, nil
}

// --- Likes and saves ---

func (m *MemoryDB) AddLike(ctx context.Context, like *models.ArticleLike) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey{like.UserID, like.ArticleID, like.Special}
	if _, ok := m.likes[key]; ok {
		return duplicate("like")
	}
	if like.CreatedAt.IsZero() {
		like.CreatedAt = time.Now()
	}
	cp := *like
	m.likes[key] = &cp
	return nil
}

func (m *MemoryDB) RemoveLike(ctx context.Context, userID, articleID uuid.UUID, special bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := likeKey{userID, articleID, special}
	if _, ok := m.likes[key]; !ok {
		return notFound("like")
	}
	delete(m.likes, key)
	return nil
}

func (m *MemoryDB) SaveArticle(ctx context.Context, userID, articleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, articleID}
	if _, ok := m.saves[key]; ok {
		return duplicate("save")
	}
	m.saves[key] = time.Now()
	return nil
}

func (m *MemoryDB) UnsaveArticle(ctx context.Context, userID, articleID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, articleID}
	if _, ok := m.saves[key]; !ok {
		return notFound("save")
	}
	delete(m.saves, key)
	return nil
}

func (m *MemoryDB) SavedArticles(ctx context.Context, userID uuid.UUID, page models.Page) ([]*models.ArticleView, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	type saved struct {
		at      time.Time
		article *models.Article
	}
	var all []saved
	for k, at := range m.saves {
		if k.a == userID {
			if a, ok := m.articles[k.b]; ok {
				all = append(all, saved{at, a})
			}
		}
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].at.Equal(all[j].at) {
			return all[i].at.After(all[j].at)
		}
		return idLess(all[i].article.ID, all[j].article.ID)
	})
	out := make([]*models.ArticleView, 0)
	for _, s := range window(all, page) {
		out = append(out, m.view(s.article))
	}
	return out, len(all), nil
}

// --- Comments and votes ---

func (m *MemoryDB) CreateComment(ctx context.Context, comment *models.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if comment.CreatedAt.IsZero() {
		comment.CreatedAt = now
	}
	comment.UpdatedAt = now
	cp := *comment
	m.comments[comment.ID] = &cp
	return nil
}

func (m *MemoryDB) GetComment(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.comments[id]
	if !ok {
		return nil, notFound("comment")
	}
	cp := *c
	return &cp, nil
}

func (m *MemoryDB) score(commentID uuid.UUID) int {
	score := 0
	for k, v := range m.votes {
		if k.b != commentID {
			continue
		}
		if v.Downvote {
			score--
		} else {
			score++
		}
	}
	return score
}

func (m *MemoryDB) ArticleComments(ctx context.Context, articleID uuid.UUID) ([]*models.CommentView, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*models.CommentView, 0)
	for _, c := range m.comments {
		if c.ArticleID != articleID {
			continue
		}
		v := &models.CommentView{Comment: *c, Score: m.score(c.ID)}
		if c.UserID != nil {
			if u, ok := m.users[*c.UserID]; ok {
				v.AuthorDisplayName, v.AuthorSlug, v.AuthorAvatar = &u.DisplayName, &u.Slug, &u.Avatar
			}
		}
		for _, r := range m.reports {
			if r.Target == models.CommentTarget(c.ID) {
				v.ReportsCount++
			}
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out, nil
}

func (m *MemoryDB) SoftDeleteComment(ctx context.Context, id, userID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.comments[id]
	if !ok || c.Deleted || !c.OwnedBy(userID) {
		return utils.NewAppError(utils.ErrForbidden, "comment is not owned by user", nil)
	}
	c.Deleted = true
	c.Body = models.DeletedCommentBody
	c.UserID = nil
	c.UpdatedAt = time.Now()
	return nil
}

func (m *MemoryDB) AddVote(ctx context.Context, vote *models.CommentVote) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{vote.UserID, vote.CommentID}
	if _, ok := m.votes[key]; ok {
		return duplicate("vote")
	}
	if vote.CreatedAt.IsZero() {
		vote.CreatedAt = time.Now()
	}
	cp := *vote
	m.votes[key] = &cp
	return nil
}

func (m *MemoryDB) RemoveVote(ctx context.Context, userID, commentID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := pairKey{userID, commentID}
	if _, ok := m.votes[key]; !ok {
		return notFound("vote")
	}
	delete(m.votes, key)
	return nil
}

func (m *MemoryDB) CommentScore(ctx context.Context, id uuid.UUID) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.score(id), nil
}

// --- Reports ---

func (m *MemoryDB) CreateReport(ctx context.Context, report *models.Report) error {
	if !report.Target.Valid() {
		return utils.NewAppError(utils.ErrDatabase, "report target check violated", nil)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now()
	}
	cp := *report
	m.reports[report.ID] = &cp
	return nil
}

func (m *MemoryDB) GetReport(ctx context.Context, id uuid.UUID) (*models.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	if !ok {
		return nil, notFound("report")
	}
	cp := *r
	return &cp, nil
}

func (m *MemoryDB) ListReports(ctx context.Context, filter models.ReportFilter) ([]*models.Report, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*models.Report
	for _, r := range m.reports {
		if r.Moderated != filter.Moderated {
			continue
		}
		if filter.Kind != nil && r.Target.Kind != *filter.Kind {
			continue
		}
		cp := *r
		matched = append(matched, &cp)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if filter.Oldest {
			a, b = b, a
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return idLess(b.ID, a.ID)
	})
	return window(matched, filter.Page), len(matched), nil
}

func (m *MemoryDB) MarkReportModerated(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.reports[id]
	if !ok {
		return notFound("report")
	}
	r.Moderated = true
	return nil
}

// --- Notifications ---

func (m *MemoryDB) CreateNotification(ctx context.Context, n *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailNotifications {
		return utils.NewAppError(utils.ErrDatabase, "failed to insert notification", nil)
	}
	if !n.Target.Valid() {
		return utils.NewAppError(utils.ErrDatabase, "notification target check violated", nil)
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	cp := *n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *MemoryDB) ListNotifications(ctx context.Context, receiverID uuid.UUID, page models.Page) ([]*models.NotificationView, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*models.NotificationView
	for _, n := range m.notifications {
		if n.ReceiverID != receiverID {
			continue
		}
		v := &models.NotificationView{Notification: *n}
		if u, ok := m.users[n.SenderID]; ok {
			v.Sender = u.Summary()
		}
		matched = append(matched, v)
	}
	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if a.Seen != b.Seen {
			return !a.Seen
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return idLess(b.ID, a.ID)
	})
	return window(matched, page), len(matched), nil
}

func (m *MemoryDB) MarkNotificationSeen(ctx context.Context, id, receiverID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notifications[id]
	if !ok || n.ReceiverID != receiverID {
		return notFound("notification")
	}
	n.Seen = true
	return nil
}

func (m *MemoryDB) MarkAllNotificationsSeen(ctx context.Context, receiverID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, n := range m.notifications {
		if n.ReceiverID == receiverID {
			n.Seen = true
		}
	}
	return nil
}

// --- Test helpers ---

// Notifications returns every stored notification, oldest first.
func (m *MemoryDB) Notifications() []models.Notification {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Notification, 0, len(m.notifications))
	for _, n := range m.notifications {
		out = append(out, *n)
	}
	sort.Slice(out, func(i, j int) bool { return idLess(out[i].ID, out[j].ID) })
	return out
}

// ReportCount returns the number of stored reports.
func (m *MemoryDB) ReportCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reports)
}
