package engine

import (
	"testing"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func TestCreateReport_Targets(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.article(t, alice, "Reportable")
	c, err := env.engine.CreateComment(env.ctx, alice.ID, post.Slug, CommentInput{Body: "rude"})
	require.NoError(t, err)

	r, err := env.engine.CreateReport(env.ctx, bob.ID, ReportInput{Article: strPtr(post.Slug), Reason: intPtr(2), Message: "spam"})
	require.NoError(t, err)
	assert.Equal(t, models.ArticleTarget(post.ID), r.Target)
	assert.Equal(t, models.ReportReason(2), r.Reason)
	assert.False(t, r.Moderated)

	r, err = env.engine.CreateReport(env.ctx, bob.ID, ReportInput{Comment: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, models.CommentTarget(c.ID), r.Target)
	assert.Equal(t, models.ReasonOther, r.Reason)

	r, err = env.engine.CreateReport(env.ctx, bob.ID, ReportInput{User: strPtr(alice.Slug)})
	require.NoError(t, err)
	assert.Equal(t, models.UserTarget(alice.ID), r.Target)

	assert.Equal(t, 3, env.db.ReportCount())

	view, err := env.engine.GetArticle(env.ctx, nil, post.Slug)
	require.NoError(t, err)
	assert.Equal(t, 1, view.ReportsCount)
}

func TestCreateReport_ExactlyOneTarget(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	post := env.article(t, alice, "Reportable")

	_, err := env.engine.CreateReport(env.ctx, bob.ID, ReportInput{})
	assertCode(t, err, utils.ErrInvalidInput, "Report exactly one of article, comment or user")

	_, err = env.engine.CreateReport(env.ctx, bob.ID, ReportInput{Article: strPtr(post.Slug), User: strPtr(alice.Slug)})
	assertCode(t, err, utils.ErrInvalidInput, "Report exactly one of article, comment or user")

	_, err = env.engine.CreateReport(env.ctx, bob.ID, ReportInput{User: strPtr(alice.Slug), Reason: intPtr(9)})
	assertCode(t, err, utils.ErrValidation, "")

	assert.Equal(t, 0, env.db.ReportCount())
}

func TestCreateReport_SelfTargetForbidden(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	post := env.article(t, alice, "Mine")
	c, err := env.engine.CreateComment(env.ctx, alice.ID, post.Slug, CommentInput{Body: "mine too"})
	require.NoError(t, err)

	_, err = env.engine.CreateReport(env.ctx, alice.ID, ReportInput{Article: strPtr(post.Slug)})
	assertCode(t, err, utils.ErrForbidden, "Can't report your own article.")

	_, err = env.engine.CreateReport(env.ctx, alice.ID, ReportInput{Comment: &c.ID})
	assertCode(t, err, utils.ErrForbidden, "Can't report your own comment.")

	_, err = env.engine.CreateReport(env.ctx, alice.ID, ReportInput{User: strPtr(alice.Slug)})
	assertCode(t, err, utils.ErrForbidden, "Can't report yourself.")

	assert.Equal(t, 0, env.db.ReportCount())
}

func TestReports_ModeratorQueue(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	mod := env.moderator(t, "mod")
	post := env.article(t, alice, "Queue")

	articleReport, err := env.engine.CreateReport(env.ctx, bob.ID, ReportInput{Article: strPtr(post.Slug)})
	require.NoError(t, err)
	userReport, err := env.engine.CreateReport(env.ctx, bob.ID, ReportInput{User: strPtr(alice.Slug)})
	require.NoError(t, err)

	_, err = env.engine.ListReports(env.ctx, bob.ID, ReportQuery{Page: 1})
	assertCode(t, err, utils.ErrForbidden, "")

	all, err := env.engine.ListReports(env.ctx, mod.ID, ReportQuery{Page: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, all.Total)

	users, err := env.engine.ListReports(env.ctx, mod.ID, ReportQuery{Type: "users", Page: 1})
	require.NoError(t, err)
	require.Len(t, users.Items, 1)
	assert.Equal(t, userReport.ID, users.Items[0].ID)

	_, err = env.engine.ListReports(env.ctx, mod.ID, ReportQuery{Type: "posts", Page: 1})
	assertCode(t, err, utils.ErrValidation, "")

	got, err := env.engine.GetReport(env.ctx, mod.ID, articleReport.ID)
	require.NoError(t, err)
	assert.Equal(t, articleReport.ID, got.ID)

	err = env.engine.ResolveReport(env.ctx, bob.ID, articleReport.ID)
	assertCode(t, err, utils.ErrForbidden, "")

	require.NoError(t, env.engine.ResolveReport(env.ctx, mod.ID, articleReport.ID))
	err = env.engine.ResolveReport(env.ctx, mod.ID, uuid.New())
	assertCode(t, err, utils.ErrInvalidInput, "Report does not exist")

	open, err := env.engine.ListReports(env.ctx, mod.ID, ReportQuery{Page: 1})
	require.NoError(t, err)
	require.Len(t, open.Items, 1)
	assert.Equal(t, userReport.ID, open.Items[0].ID)

	closed, err := env.engine.ListReports(env.ctx, mod.ID, ReportQuery{Moderated: true, Page: 1})
	require.NoError(t, err)
	require.Len(t, closed.Items, 1)
	assert.True(t, closed.Items[0].Moderated)

	// resolved reports are kept
	assert.Equal(t, 2, env.db.ReportCount())
}

func TestNotifications_MarkSeen(t *testing.T) {
	env := newTestEnv(t, 10)
	alice := env.user(t, "alice")
	bob := env.user(t, "bob")
	carol := env.user(t, "carol")
	post := env.article(t, alice, "Popular")

	_, err := env.engine.Like(env.ctx, bob.ID, post.Slug, false)
	require.NoError(t, err)
	_, err = env.engine.Like(env.ctx, carol.ID, post.Slug, false)
	require.NoError(t, err)

	list, err := env.engine.Notifications(env.ctx, alice.ID, 1)
	require.NoError(t, err)
	require.Len(t, list.Items, 2)
	assert.False(t, list.Items[0].Seen)

	err = env.engine.MarkNotificationSeen(env.ctx, bob.ID, list.Items[0].ID)
	assertCode(t, err, utils.ErrNotFound, "Not found.")

	require.NoError(t, env.engine.MarkNotificationSeen(env.ctx, alice.ID, list.Items[0].ID))
	list, err = env.engine.Notifications(env.ctx, alice.ID, 1)
	require.NoError(t, err)
	assert.False(t, list.Items[0].Seen)
	assert.True(t, list.Items[1].Seen)

	require.NoError(t, env.engine.MarkAllNotificationsSeen(env.ctx, alice.ID))
	list, err = env.engine.Notifications(env.ctx, alice.ID, 1)
	require.NoError(t, err)
	for _, n := range list.Items {
		assert.True(t, n.Seen)
	}
}
