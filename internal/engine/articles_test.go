package engine

import (
	"testing"

	"inkwell/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateArticle_TagLimit(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	for _, name := range []string{"a1", "a2", "a3", "a4", "a5", "a6"} {
		env.tag(t, name)
	}

	five := env.article(t, alice, "Five Tags", "a1", "a2", "a3", "a4", "a5")
	assert.Len(t, five.Tags, 5)

	_, err := env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{
		Title: "Six Tags", Content: "x", Tags: []string{"a1", "a2", "a3", "a4", "a5", "a6"},
	})
	assertCode(t, err, utils.ErrValidation, "You can't assign more than five tags")

	// duplicates collapse before counting
	dup := env.article(t, alice, "Dup Tags", "a1", "a1", "a2")
	assert.Equal(t, []string{"a1", "a2"}, dup.Tags)

	_, err = env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{Title: "Bad", Content: "x", Tags: []string{"nope"}})
	assertCode(t, err, utils.ErrValidation, "Tag nope does not exist")
}

func TestUpdateArticle_TagLimitLeavesTagsUntouched(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	for _, name := range []string{"a1", "a2", "a3", "a4", "a5", "a6"} {
		env.tag(t, name)
	}
	post := env.article(t, alice, "Edit Me", "a1")

	six := []string{"a1", "a2", "a3", "a4", "a5", "a6"}
	_, err := env.engine.UpdateArticle(env.ctx, alice.ID, post.Slug, ArticlePatch{Tags: &six})
	assertCode(t, err, utils.ErrValidation, "You can't assign more than five tags")

	view, err := env.engine.GetArticle(env.ctx, nil, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1"}, view.Tags)

	title := "Edited"
	_, err = env.engine.UpdateArticle(env.ctx, bob.ID, post.Slug, ArticlePatch{Title: &title})
	assertCode(t, err, utils.ErrForbidden, "You can't edit someone else's article")

	updated, err := env.engine.UpdateArticle(env.ctx, alice.ID, post.Slug, ArticlePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Edited", updated.Title)
	assert.Equal(t, post.Slug, updated.Slug)
	assert.Equal(t, []string{"a1"}, updated.Tags)
}

func TestArticles_SlugAndDrafts(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	first := env.article(t, alice, "Same Title")
	second := env.article(t, bob, "Same Title")
	assert.Equal(t, "same-title", first.Slug)
	assert.NotEqual(t, first.Slug, second.Slug)
	assert.Contains(t, second.Slug, "same-title-")

	draft, err := env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{Title: "Secret", Content: "wip", Draft: true})
	require.NoError(t, err)

	_, err = env.engine.GetArticle(env.ctx, &bob.ID, draft.Slug)
	assertCode(t, err, utils.ErrNotFound, "Not found.")
	_, err = env.engine.GetArticle(env.ctx, &alice.ID, draft.Slug)
	require.NoError(t, err)

	drafts, err := env.engine.Drafts(env.ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, drafts.Items, 1)
	assert.Equal(t, draft.ID, drafts.Items[0].ID)

	published, err := env.engine.ListArticles(env.ctx, "same", nil, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, published.Total)

	err = env.engine.DeleteArticle(env.ctx, bob.ID, first.Slug)
	assertCode(t, err, utils.ErrForbidden, "You can't delete someone else's article")
	require.NoError(t, env.engine.DeleteArticle(env.ctx, alice.ID, first.Slug))
	_, err = env.engine.GetArticle(env.ctx, nil, first.Slug)
	assertCode(t, err, utils.ErrNotFound, "Not found.")
}
