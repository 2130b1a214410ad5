package handlers

import (
	"context"
	"net/http"
	"time"

	"inkwell/internal/api"
	"inkwell/internal/logging"
	"inkwell/internal/middleware"
	"inkwell/internal/utils"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// HandleHealth reports liveness and whether the store answers.
func (s *Server) HandleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status, code := "healthy", http.StatusOK
		if err := s.DB.Ping(ctx); err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Msg("Health check ping failed")
			status, code = "degraded", http.StatusServiceUnavailable
		}

		body := map[string]interface{}{
			"status":      status,
			"server_time": time.Now(),
		}
		if s.Metrics != nil {
			body["uptime"] = s.Metrics.Uptime().String()
		}
		api.WriteJSON(w, code, body)
	}
}

// HandleFeed serves the personalized feed, or the public one for anonymous callers.
func (s *Server) HandleFeed() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := api.PageNumber(r)
		feed, err := s.Engine.Feed(r.Context(), middleware.Viewer(r.Context()), page)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, feed.PageResult, feed.Total, page, api.FeedResults(feed)))
	}
}

// currentUser returns the authenticated caller. Routes using it sit behind RequireAuth.
func currentUser(r *http.Request) uuid.UUID {
	id, _ := middleware.GetUserIDFromContext(r.Context())
	return id
}

// pathID parses a uuid path parameter. A malformed id is reported as not found.
func pathID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, utils.NewNotFoundError("Not found.")
	}
	return id, nil
}
