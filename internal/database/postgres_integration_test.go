//go:build integration

package database

import (
	"context"
	"fmt"
	"os/exec"
	"testing"
	"time"

	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// Usage:
//   go test -tags integration ./internal/database/...

func newPostgres(t *testing.T) *PostgresDB {
	t.Helper()
	ctx := context.Background()

	checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if exec.CommandContext(checkCtx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}

	req := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "inkwell",
			"POSTGRES_PASSWORD": "inkwell",
			"POSTGRES_DB":       "inkwell",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := container.Terminate(context.Background()); err != nil {
			t.Logf("Warning: failed to terminate container: %v", err)
		}
	})

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "5432/tcp")
	require.NoError(t, err)

	dsn := fmt.Sprintf("postgres://inkwell:inkwell@%s:%s/inkwell?sslmode=disable", host, port.Port())
	db, err := NewPostgresDB(dsn)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close(context.Background()) })

	require.NoError(t, db.InitializeTables(ctx))
	return db
}

func v7(t *testing.T) uuid.UUID {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return id
}

func seedUser(t *testing.T, db *PostgresDB, name string) *models.User {
	t.Helper()
	u := &models.User{ID: v7(t), Username: name, Email: name + "@example.com", DisplayName: name, Slug: name}
	require.NoError(t, db.SaveUser(context.Background(), u))
	return u
}

func TestPostgresEngagementConstraints(t *testing.T) {
	db := newPostgres(t)
	ctx := context.Background()

	author := seedUser(t, db, "author")
	reader := seedUser(t, db, "reader")
	assert.True(t, utils.IsErrorCode(db.SaveUser(ctx, &models.User{ID: v7(t), Username: "author", Email: "x@example.com", Slug: "x"}), utils.ErrDuplicate))

	tag := &models.Tag{ID: v7(t), Name: "Go", Slug: "go"}
	require.NoError(t, db.SaveTag(ctx, tag))

	article := &models.Article{ID: v7(t), Title: "Hello", Slug: "hello", Content: "body", UserID: author.ID}
	require.NoError(t, db.CreateArticle(ctx, article, []uuid.UUID{tag.ID}))

	t.Run("likes are unique per kind", func(t *testing.T) {
		require.NoError(t, db.AddLike(ctx, &models.ArticleLike{ID: v7(t), UserID: reader.ID, ArticleID: article.ID}))
		require.NoError(t, db.AddLike(ctx, &models.ArticleLike{ID: v7(t), UserID: reader.ID, ArticleID: article.ID, Special: true}))
		err := db.AddLike(ctx, &models.ArticleLike{ID: v7(t), UserID: reader.ID, ArticleID: article.ID})
		assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))

		views, err := db.GetArticleViews(ctx, []uuid.UUID{article.ID})
		require.NoError(t, err)
		require.Len(t, views, 1)
		assert.Equal(t, 1, views[0].LikesCount)
		assert.Equal(t, 1, views[0].SpecialLikesCount)
		assert.Equal(t, []string{"go"}, views[0].Tags)

		require.NoError(t, db.RemoveLike(ctx, reader.ID, article.ID, false))
		assert.True(t, utils.IsErrorCode(db.RemoveLike(ctx, reader.ID, article.ID, false), utils.ErrNotFound))
	})

	t.Run("saves are unique", func(t *testing.T) {
		require.NoError(t, db.SaveArticle(ctx, reader.ID, article.ID))
		assert.True(t, utils.IsErrorCode(db.SaveArticle(ctx, reader.ID, article.ID), utils.ErrDuplicate))

		saved, total, err := db.SavedArticles(ctx, reader.ID, models.Page{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, saved, 1)
		assert.Equal(t, article.ID, saved[0].ID)
	})

	t.Run("one vote per comment and soft delete", func(t *testing.T) {
		comment := &models.Comment{ID: v7(t), Body: "nice", UserID: &reader.ID, ArticleID: article.ID}
		require.NoError(t, db.CreateComment(ctx, comment))

		require.NoError(t, db.AddVote(ctx, &models.CommentVote{ID: v7(t), UserID: author.ID, CommentID: comment.ID}))
		err := db.AddVote(ctx, &models.CommentVote{ID: v7(t), UserID: author.ID, CommentID: comment.ID, Downvote: true})
		assert.True(t, utils.IsErrorCode(err, utils.ErrDuplicate))

		score, err := db.CommentScore(ctx, comment.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, score)

		require.NoError(t, db.SoftDeleteComment(ctx, comment.ID, reader.ID))
		got, err := db.GetComment(ctx, comment.ID)
		require.NoError(t, err)
		assert.True(t, got.Deleted)
		assert.Nil(t, got.UserID)
		assert.Equal(t, models.DeletedCommentBody, got.Body)
	})

	t.Run("reports reference exactly one target", func(t *testing.T) {
		report := &models.Report{ID: v7(t), Reason: models.ReasonOther, Message: "spam", Target: models.UserTarget(author.ID), UserID: reader.ID}
		require.NoError(t, db.CreateReport(ctx, report))

		got, err := db.GetReport(ctx, report.ID)
		require.NoError(t, err)
		assert.Equal(t, models.UserTarget(author.ID), got.Target)

		kind := models.TargetUser
		open, total, err := db.ListReports(ctx, models.ReportFilter{Kind: &kind, Page: models.Page{Limit: 10}})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		require.Len(t, open, 1)

		require.NoError(t, db.MarkReportModerated(ctx, report.ID))
		_, total, err = db.ListReports(ctx, models.ReportFilter{Kind: &kind, Page: models.Page{Limit: 10}})
		require.NoError(t, err)
		assert.Zero(t, total)
	})

	t.Run("feed refs follow tags and users", func(t *testing.T) {
		require.NoError(t, db.FollowTag(ctx, tag.ID, reader.ID))
		assert.True(t, utils.IsErrorCode(db.FollowTag(ctx, tag.ID, reader.ID), utils.ErrDuplicate))
		require.NoError(t, db.FollowUser(ctx, reader.ID, author.ID))

		byTags, err := db.ArticleRefsByFollowedTags(ctx, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.ArticleRef{{ID: article.ID, UserID: author.ID}}, byTags)

		byUsers, err := db.ArticleRefsByFollowedUsers(ctx, reader.ID)
		require.NoError(t, err)
		assert.Equal(t, []models.ArticleRef{{ID: article.ID, UserID: author.ID}}, byUsers)
	})
}
