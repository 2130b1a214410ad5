package engine

import (
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLike_Lifecycle(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.article(t, alice, "Swamp Life")

	msg, err := env.engine.Like(env.ctx, bob.ID, post.Slug, false)
	require.NoError(t, err)
	assert.Equal(t, "Liked article", msg)

	_, err = env.engine.Like(env.ctx, bob.ID, post.Slug, false)
	assertCode(t, err, utils.ErrDuplicate, "Can't like twice")

	// a special like is independent of the normal one
	msg, err = env.engine.Like(env.ctx, bob.ID, post.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, "Superliked article", msg)

	view, err := env.engine.GetArticle(env.ctx, &bob.ID, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, view.LikesCount)
	assert.Equal(t, 1, view.SpecialLikesCount)

	notes := env.db.Notifications()
	require.Len(t, notes, 2)
	assert.Equal(t, models.ActionLike, notes[0].Action)
	assert.Equal(t, models.ActionSpecialLike, notes[1].Action)
	for _, n := range notes {
		assert.Equal(t, alice.ID, n.ReceiverID)
		assert.Equal(t, bob.ID, n.SenderID)
		assert.Equal(t, models.ArticleTarget(post.ID), n.Target)
	}

	require.NoError(t, env.engine.Unlike(env.ctx, bob.ID, post.Slug, false))
	err = env.engine.Unlike(env.ctx, bob.ID, post.Slug, false)
	assertCode(t, err, utils.ErrDuplicate, "Can't unlike without liking")

	view, err = env.engine.GetArticle(env.ctx, nil, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, 0, view.LikesCount)
	assert.Equal(t, 1, view.SpecialLikesCount)
}

func TestLike_OwnArticleForbidden(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	post := env.article(t, alice, "Mine")

	_, err := env.engine.Like(env.ctx, alice.ID, post.Slug, false)
	assertCode(t, err, utils.ErrForbidden, "Can't like your own post.")

	_, err = env.engine.Like(env.ctx, alice.ID, post.Slug, true)
	assertCode(t, err, utils.ErrForbidden, "Can't like your own post.")

	// the owner never holds a like, so unlike fails like any other non-liker
	err = env.engine.Unlike(env.ctx, alice.ID, post.Slug, false)
	assertCode(t, err, utils.ErrDuplicate, "Can't unlike without liking")
	assert.Empty(t, env.db.Notifications())
}

func TestLike_UnknownOrDraftArticle(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	_, err := env.engine.Like(env.ctx, bob.ID, "missing", false)
	assertCode(t, err, utils.ErrNotFound, "Not found.")

	draft, err := env.engine.CreateArticle(env.ctx, alice.ID, ArticleInput{Title: "Draft", Content: "wip", Draft: true})
	require.NoError(t, err)
	_, err = env.engine.Like(env.ctx, bob.ID, draft.Slug, false)
	assertCode(t, err, utils.ErrNotFound, "Not found.")
}

func TestLike_NotificationFailureDoesNotFailLike(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.article(t, alice, "Fragile")
	env.db.FailNotifications = true

	_, err := env.engine.Like(env.ctx, bob.ID, post.Slug, false)
	require.NoError(t, err)

	view, err := env.engine.GetArticle(env.ctx, nil, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, view.LikesCount)
	assert.Empty(t, env.db.Notifications())
}

func TestSave_Lifecycle(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.article(t, alice, "Keep This")

	err := env.engine.Save(env.ctx, alice.ID, post.Slug)
	assertCode(t, err, utils.ErrForbidden, "You can't save your own article")

	require.NoError(t, env.engine.Save(env.ctx, bob.ID, post.Slug))
	err = env.engine.Save(env.ctx, bob.ID, post.Slug)
	assertCode(t, err, utils.ErrDuplicate, "You have already saved this article")

	saved, err := env.engine.SavedArticles(env.ctx, bob.ID, 1)
	require.NoError(t, err)
	require.Len(t, saved.Items, 1)
	assert.Equal(t, post.ID, saved.Items[0].ID)
	assert.Equal(t, 1, saved.Items[0].SavedCount)

	require.NoError(t, env.engine.Unsave(env.ctx, bob.ID, post.Slug))
	err = env.engine.Unsave(env.ctx, bob.ID, post.Slug)
	assertCode(t, err, utils.ErrDuplicate, "You must save before you can unsave")

	err = env.engine.Unsave(env.ctx, alice.ID, post.Slug)
	assertCode(t, err, utils.ErrForbidden, "You can't unsave your own article")

	saved, err = env.engine.SavedArticles(env.ctx, bob.ID, 1)
	require.NoError(t, err)
	assert.Empty(t, saved.Items)

	_, err = env.engine.SavedArticles(env.ctx, bob.ID, 2)
	assertCode(t, err, utils.ErrNotFound, "Invalid page.")
}

func TestFollowUser(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")

	err := env.engine.FollowUser(env.ctx, alice.ID, alice.Slug)
	assertCode(t, err, utils.ErrForbidden, "You can't follow yourself")

	require.NoError(t, env.engine.FollowUser(env.ctx, alice.ID, bob.Slug))
	err = env.engine.FollowUser(env.ctx, alice.ID, bob.Slug)
	assertCode(t, err, utils.ErrDuplicate, "You already follow this user")

	notes := env.db.Notifications()
	require.Len(t, notes, 1)
	assert.Equal(t, models.ActionFollow, notes[0].Action)
	assert.Equal(t, bob.ID, notes[0].ReceiverID)
	assert.Equal(t, "alice is now following you", notes[0].PreviewText)

	profile, err := env.engine.UserProfile(env.ctx, bob.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, profile.FollowersCount)

	require.NoError(t, env.engine.UnfollowUser(env.ctx, alice.ID, bob.Slug))
	err = env.engine.UnfollowUser(env.ctx, alice.ID, bob.Slug)
	assertCode(t, err, utils.ErrDuplicate, "You don't follow this user")
}

func TestFollowTag(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	env.tag(t, "Go")

	require.NoError(t, env.engine.FollowTag(env.ctx, alice.ID, "go"))
	err := env.engine.FollowTag(env.ctx, alice.ID, "go")
	assertCode(t, err, utils.ErrDuplicate, "You already follow this tag")

	tags, err := env.engine.ListTags(env.ctx, &alice.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.True(t, tags[0].Following)
	assert.Equal(t, 1, tags[0].FollowersCount)

	require.NoError(t, env.engine.UnfollowTag(env.ctx, alice.ID, "go"))
	err = env.engine.UnfollowTag(env.ctx, alice.ID, "go")
	assertCode(t, err, utils.ErrDuplicate, "You don't follow this tag")

	err = env.engine.FollowTag(env.ctx, alice.ID, "rust")
	assertCode(t, err, utils.ErrNotFound, "Not found.")
}
