package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkwell/internal/authz"
	"inkwell/internal/database/dbtest"
	"inkwell/internal/engine"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/utils"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	engine *engine.Engine
	db     *dbtest.MemoryDB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	middleware.SetSigningKey("handler-test-secret-0123456789", time.Hour)

	db := dbtest.NewMemoryDB()
	enforcer, err := authz.NewEnforcer()
	require.NoError(t, err)
	reg := prometheus.NewRegistry()
	metrics := utils.NewMetricsCollector(reg)

	eng := engine.NewEngine(actor.NewActorSystem(), db, enforcer, metrics, engine.Options{PageSize: 10, NotifyTimeout: time.Second})
	server := NewServer(eng, db, metrics, reg, Options{MetricsEnabled: true})
	srv := httptest.NewServer(server.Routes())
	t.Cleanup(func() {
		srv.Close()
		eng.Shutdown()
	})
	return &testServer{t: t, srv: srv, engine: eng, db: db}
}

func (ts *testServer) user(name string) (*models.User, string) {
	u, err := ts.engine.CreateUser(context.Background(), engine.NewUser{Username: name, Email: name + "@example.com"})
	require.NoError(ts.t, err)
	token, err := middleware.GenerateToken(u.ID)
	require.NoError(ts.t, err)
	return u, token
}

func (ts *testServer) do(method, path, token string, body interface{}) (int, map[string]interface{}) {
	ts.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(ts.t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, ts.srv.URL+path, &buf)
	require.NoError(ts.t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(ts.t, err)
	defer resp.Body.Close()

	var out map[string]interface{}
	if resp.StatusCode != http.StatusNoContent {
		var raw interface{}
		if err := json.NewDecoder(resp.Body).Decode(&raw); err == nil {
			if m, ok := raw.(map[string]interface{}); ok {
				out = m
			} else {
				out = map[string]interface{}{"_": raw}
			}
		}
	}
	return resp.StatusCode, out
}

func TestLikeScenario(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.user("alice")
	_, bobToken := ts.user("bob")

	status, body := ts.do(http.MethodPost, "/api/articles", aliceToken, map[string]interface{}{
		"title": "Hello World", "content": "first post",
	})
	require.Equal(t, http.StatusCreated, status)
	slug := body["slug"].(string)

	status, body = ts.do(http.MethodPost, "/api/articles/"+slug+"/like", bobToken, nil)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Liked article", body["details"])

	status, body = ts.do(http.MethodPost, "/api/articles/"+slug+"/like", bobToken, map[string]bool{"special_like": true})
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Superliked article", body["details"])

	status, body = ts.do(http.MethodPost, "/api/articles/"+slug+"/like", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Can't like twice", body["details"])

	status, body = ts.do(http.MethodPost, "/api/articles/"+slug+"/like", aliceToken, nil)
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Can't like your own post.", body["details"])

	status, body = ts.do(http.MethodGet, "/api/articles/"+slug, "", nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["likes_count"])
	assert.EqualValues(t, 1, body["special_likes_count"])

	status, _ = ts.do(http.MethodDelete, "/api/articles/"+slug+"/unlike?special_like=true", bobToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = ts.do(http.MethodDelete, "/api/articles/"+slug+"/unlike?special_like=true", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Can't unlike without liking", body["details"])

	status, body = ts.do(http.MethodPost, "/api/articles/missing/like", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Not found.", body["details"])
}

func TestProtectedRoutesRequireAuth(t *testing.T) {
	ts := newTestServer(t)

	for _, route := range []struct{ method, path string }{
		{http.MethodPost, "/api/articles/x/like"},
		{http.MethodPost, "/api/articles/x/save"},
		{http.MethodPost, "/api/reports"},
		{http.MethodGet, "/api/notifications"},
		{http.MethodGet, "/api/users/me/saved"},
	} {
		status, body := ts.do(route.method, route.path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, status, route.path)
		assert.Equal(t, middleware.NotAuthenticated, body["details"], route.path)
	}
}

func TestFeedShape(t *testing.T) {
	ts := newTestServer(t)
	_, aliceToken := ts.user("alice")
	_, bobToken := ts.user("bob")
	_, err := ts.engine.CreateTag(context.Background(), "python")
	require.NoError(t, err)

	status, _ := ts.do(http.MethodPost, "/api/tags/python/follow", aliceToken, nil)
	require.Equal(t, http.StatusCreated, status)
	status, body := ts.do(http.MethodPost, "/api/tags/python/follow", aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "You already follow this tag", body["details"])

	status, _ = ts.do(http.MethodPost, "/api/articles", bobToken, map[string]interface{}{
		"title": "Snakes", "content": "all about python", "tags": []string{"python"},
	})
	require.Equal(t, http.StatusCreated, status)

	status, body = ts.do(http.MethodGet, "/api/feed", aliceToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])
	assert.Nil(t, body["next"])
	results := body["results"].([]interface{})
	require.Len(t, results, 3)
	assert.Contains(t, results[0], "followed_tags")
	assert.Contains(t, results[1], "followed_users")
	articles := results[2].([]interface{})
	require.Len(t, articles, 1)
	assert.Equal(t, "Snakes", articles[0].(map[string]interface{})["title"])

	// the author's own feed never shows it
	status, body = ts.do(http.MethodGet, "/api/feed", bobToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 0, body["count"])

	status, body = ts.do(http.MethodGet, "/api/feed", "", nil)
	require.Equal(t, http.StatusOK, status)
	results = body["results"].([]interface{})
	require.Len(t, results, 1)
	assert.Len(t, results[0].([]interface{}), 1)

	status, body = ts.do(http.MethodGet, "/api/feed?page=5", "", nil)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Invalid page.", body["details"])
}

func TestTagLimitValidationBody(t *testing.T) {
	ts := newTestServer(t)
	_, token := ts.user("alice")
	tags := []string{"t1", "t2", "t3", "t4", "t5", "t6"}
	for _, name := range tags {
		_, err := ts.engine.CreateTag(context.Background(), name)
		require.NoError(t, err)
	}

	status, body := ts.do(http.MethodPost, "/api/articles", token, map[string]interface{}{
		"title": "Too many", "content": "x", "tags": tags,
	})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, []interface{}{"You can't assign more than five tags"}, body["tags"])
}

func TestReportFlow(t *testing.T) {
	ts := newTestServer(t)
	alice, aliceToken := ts.user("alice")
	_, bobToken := ts.user("bob")
	mod, err := ts.engine.CreateUser(context.Background(), engine.NewUser{Username: "mod", Email: "mod@example.com", IsModerator: true})
	require.NoError(t, err)
	modToken, err := middleware.GenerateToken(mod.ID)
	require.NoError(t, err)

	status, body := ts.do(http.MethodPost, "/api/reports", aliceToken, map[string]interface{}{"user": alice.Slug})
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "Can't report yourself.", body["details"])
	assert.Equal(t, 0, ts.db.ReportCount())

	status, body = ts.do(http.MethodPost, "/api/reports", bobToken, map[string]interface{}{})
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Report exactly one of article, comment or user", body["details"])

	status, body = ts.do(http.MethodPost, "/api/reports", bobToken, map[string]interface{}{"user": alice.Slug, "reason": 1, "moderated": true})
	require.Equal(t, http.StatusCreated, status)
	assert.Equal(t, false, body["moderated"])
	assert.Equal(t, "Spam", body["reason_label"])
	reportID := body["id"].(string)

	status, _ = ts.do(http.MethodGet, "/api/reports", bobToken, nil)
	assert.Equal(t, http.StatusForbidden, status)

	status, body = ts.do(http.MethodGet, "/api/reports?type=users", modToken, nil)
	require.Equal(t, http.StatusOK, status)
	assert.EqualValues(t, 1, body["count"])

	status, _ = ts.do(http.MethodPost, "/api/reports/"+reportID+"/resolve", modToken, nil)
	assert.Equal(t, http.StatusNoContent, status)
	status, body = ts.do(http.MethodPost, "/api/reports/not-a-uuid/resolve", modToken, nil)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "Report does not exist", body["details"])
}

func TestHealthAndMetrics(t *testing.T) {
	ts := newTestServer(t)

	status, body := ts.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", body["status"])

	resp, err := http.Get(ts.srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
