package engine

import (
	"strings"
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustV7(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id
}

func TestComposeFeed(t *testing.T) {
	viewer, other, third := uuid.New(), uuid.New(), uuid.New()
	a1, a2, a3, own := mustV7(t), mustV7(t), mustV7(t), mustV7(t)

	byTags := []models.ArticleRef{
		{ID: a3, UserID: third},
		{ID: own, UserID: viewer},
		{ID: a1, UserID: other},
	}
	byUsers := []models.ArticleRef{
		{ID: a1, UserID: other},
		{ID: a2, UserID: other},
	}

	ids := ComposeFeed(viewer, byTags, byUsers)
	assert.Equal(t, []uuid.UUID{a1, a2, a3}, ids)
	assert.Empty(t, ComposeFeed(viewer, nil, nil))
}

func TestFeed_Personalized(t *testing.T) {
	env := newTestEnv(t, 2)
	viewer := env.user(t, "viewer")
	writer := env.user(t, "writer")
	stranger := env.user(t, "stranger")
	env.tag(t, "Go")

	mine := env.article(t, viewer, "My Go Post", "go")
	first := env.article(t, writer, "Writer One")
	second := env.article(t, stranger, "Tagged Go", "go")
	third := env.article(t, writer, "Writer Two", "go")
	env.article(t, stranger, "Untagged")

	require.NoError(t, env.engine.FollowTag(env.ctx, viewer.ID, "go"))
	require.NoError(t, env.engine.FollowUser(env.ctx, viewer.ID, writer.Slug))

	page1, err := env.engine.Feed(env.ctx, &viewer.ID, 1)
	require.NoError(t, err)
	assert.True(t, page1.Personalized)
	assert.Equal(t, 3, page1.Total)
	require.Len(t, page1.Items, 2)
	assert.Equal(t, first.ID, page1.Items[0].ID)
	assert.Equal(t, second.ID, page1.Items[1].ID)
	assert.True(t, page1.HasNext())

	require.Len(t, page1.FollowedTags, 1)
	assert.Equal(t, "go", page1.FollowedTags[0].Slug)
	require.Len(t, page1.FollowedUsers, 1)
	assert.Equal(t, "writer", page1.FollowedUsers[0].Slug)

	page2, err := env.engine.Feed(env.ctx, &viewer.ID, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.Equal(t, third.ID, page2.Items[0].ID)

	for _, it := range append(page1.Items, page2.Items...) {
		assert.NotEqual(t, mine.ID, it.ID)
	}

	_, err = env.engine.Feed(env.ctx, &viewer.ID, 3)
	assertCode(t, err, utils.ErrNotFound, "Invalid page.")
}

func TestFeed_EmptyFirstPage(t *testing.T) {
	env := newTestEnv(t, 10)
	loner := env.user(t, "loner")

	feed, err := env.engine.Feed(env.ctx, &loner.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.Equal(t, 0, feed.Total)
	assert.Empty(t, feed.FollowedTags)
	assert.Empty(t, feed.FollowedUsers)
}

func TestFeed_Anonymous(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	long := strings.Repeat("word ", 60)

	a, err := env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{Title: "Long", Content: long})
	require.NoError(t, err)
	_, err = env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{Title: "Hidden", Content: "draft", Draft: true})
	require.NoError(t, err)

	feed, err := env.engine.Feed(env.ctx, nil, 1)
	require.NoError(t, err)
	assert.False(t, feed.Personalized)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, a.ID, feed.Items[0].ID)
	assert.Equal(t, truncateWords(long, 40), feed.Items[0].Content)
	assert.True(t, strings.HasSuffix(feed.Items[0].Content, "..."))
}
