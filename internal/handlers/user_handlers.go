package handlers

import (
	"net/http"

	"inkwell/internal/api"
	"inkwell/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// HandleUserProfile returns a user's public profile
func (s *Server) HandleUserProfile() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		profile, err := s.Engine.UserProfile(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewProfile(profile))
	}
}

func (s *Server) HandleFollowUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.FollowUser(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteDetails(w, http.StatusCreated, "Followed user")
	}
}

func (s *Server) HandleUnfollowUser() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.UnfollowUser(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleListTags lists every tag with its follower count.
func (s *Server) HandleListTags() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := s.Engine.ListTags(r.Context(), middleware.Viewer(r.Context()))
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, tags)
	}
}

func (s *Server) HandleFollowTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.FollowTag(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteDetails(w, http.StatusCreated, "Followed tag")
	}
}

func (s *Server) HandleUnfollowTag() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.UnfollowTag(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
