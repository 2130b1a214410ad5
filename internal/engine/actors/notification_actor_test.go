package actors

import (
	"context"
	"testing"
	"time"

	"inkwell/internal/database/dbtest"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	system *actor.ActorSystem
	pid    *actor.PID
	db     *dbtest.MemoryDB
	author *models.User
	reader *models.User
	post   *models.Article
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db := dbtest.NewMemoryDB()

	author := &models.User{ID: uuid.New(), Username: "author", Email: "a@example.com", DisplayName: "Ada", Slug: "author"}
	reader := &models.User{ID: uuid.New(), Username: "reader", Email: "r@example.com", DisplayName: "Rex", Slug: "reader"}
	require.NoError(t, db.SaveUser(ctx, author))
	require.NoError(t, db.SaveUser(ctx, reader))

	post := &models.Article{ID: uuid.New(), Title: "On Gators", Slug: "on-gators", Content: "swamp", UserID: author.ID}
	require.NoError(t, db.CreateArticle(ctx, post, nil))

	system := actor.NewActorSystem()
	metrics := utils.NewMetricsCollector(prometheus.NewRegistry())
	pid := system.Root.Spawn(actor.PropsFromProducer(func() actor.Actor {
		return NewNotificationActor(db, metrics, time.Second)
	}))
	t.Cleanup(func() { system.Root.Stop(pid) })

	return &fixture{system: system, pid: pid, db: db, author: author, reader: reader, post: post}
}

func (f *fixture) notify(t *testing.T, msg *NotifyMsg) *NotifyResult {
	t.Helper()
	res, err := f.system.Root.RequestFuture(f.pid, msg, 5*time.Second).Result()
	require.NoError(t, err)
	result, ok := res.(*NotifyResult)
	require.True(t, ok, "unexpected reply %T", res)
	return result
}

func TestNotificationActor_Like(t *testing.T) {
	f := newFixture(t)

	result := f.notify(t, &NotifyMsg{
		Action:   models.ActionLike,
		SenderID: f.reader.ID,
		Target:   models.ArticleTarget(f.post.ID),
	})
	require.NoError(t, result.Err)
	require.NotNil(t, result.Notification)

	n := result.Notification
	assert.Equal(t, f.author.ID, n.ReceiverID)
	assert.Equal(t, f.reader.ID, n.SenderID)
	assert.Equal(t, "Rex liked On Gators", n.PreviewText)
	assert.False(t, n.Seen)
	assert.Len(t, f.db.Notifications(), 1)
}

func TestNotificationActor_SpecialLikePreview(t *testing.T) {
	f := newFixture(t)

	result := f.notify(t, &NotifyMsg{
		Action:   models.ActionSpecialLike,
		SenderID: f.reader.ID,
		Target:   models.ArticleTarget(f.post.ID),
	})
	require.NotNil(t, result.Notification)
	assert.Equal(t, "Rex Special liked On Gators", result.Notification.PreviewText)
}

func TestNotificationActor_ReplyGoesToParentOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	authorID, readerID := f.author.ID, f.reader.ID
	parent := &models.Comment{ID: uuid.New(), Body: "first", UserID: &authorID, ArticleID: f.post.ID}
	require.NoError(t, f.db.CreateComment(ctx, parent))
	reply := &models.Comment{
		ID:        uuid.New(),
		Body:      "a reply that is definitely longer than twenty runes",
		ParentID:  &parent.ID,
		UserID:    &readerID,
		ArticleID: f.post.ID,
	}
	require.NoError(t, f.db.CreateComment(ctx, reply))

	result := f.notify(t, &NotifyMsg{
		Action:   models.ActionReply,
		SenderID: f.reader.ID,
		Target:   models.CommentTarget(reply.ID),
	})
	require.NotNil(t, result.Notification)
	assert.Equal(t, f.author.ID, result.Notification.ReceiverID)
	assert.Equal(t, "Rex replied to a reply that is defi...", result.Notification.PreviewText)
}

func TestNotificationActor_ReplyToDeletedParentSkipped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	readerID := f.reader.ID
	parent := &models.Comment{ID: uuid.New(), Body: models.DeletedCommentBody, Deleted: true, ArticleID: f.post.ID}
	require.NoError(t, f.db.CreateComment(ctx, parent))
	reply := &models.Comment{ID: uuid.New(), Body: "hi", ParentID: &parent.ID, UserID: &readerID, ArticleID: f.post.ID}
	require.NoError(t, f.db.CreateComment(ctx, reply))

	result := f.notify(t, &NotifyMsg{Action: models.ActionReply, SenderID: readerID, Target: models.CommentTarget(reply.ID)})
	assert.True(t, result.Skipped)
	assert.Empty(t, f.db.Notifications())
}

func TestNotificationActor_SelfNotificationSkipped(t *testing.T) {
	f := newFixture(t)

	result := f.notify(t, &NotifyMsg{
		Action:   models.ActionComment,
		SenderID: f.author.ID,
		Target:   models.ArticleTarget(f.post.ID),
	})
	// wrong target kind for COMMENT
	assert.Error(t, result.Err)

	result = f.notify(t, &NotifyMsg{
		Action:   models.ActionFollow,
		SenderID: f.author.ID,
		Target:   models.UserTarget(f.author.ID),
	})
	assert.True(t, result.Skipped)
	assert.Empty(t, f.db.Notifications())
}

func TestNotificationActor_StoreFailureReported(t *testing.T) {
	f := newFixture(t)
	f.db.FailNotifications = true

	result := f.notify(t, &NotifyMsg{
		Action:   models.ActionFollow,
		SenderID: f.reader.ID,
		Target:   models.UserTarget(f.author.ID),
	})
	assert.Error(t, result.Err)
	assert.Nil(t, result.Notification)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héllo", truncateRunes("héllo wörld", 5))
	assert.Equal(t, "short", truncateRunes("short", 20))
}
