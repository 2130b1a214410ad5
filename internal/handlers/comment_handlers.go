package handlers

import (
	"net/http"

	"inkwell/internal/api"
	"inkwell/internal/engine"
	"inkwell/internal/logging"
	"inkwell/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// VoteRequest selects an upvote or a downvote.
type VoteRequest struct {
	Downvote bool `json:"downvote"`
}

// HandleCommentThread returns an article's comments as a nested tree.
func (s *Server) HandleCommentThread() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		roots, err := s.Engine.CommentThread(r.Context(), middleware.Viewer(r.Context()), chi.URLParam(r, "slug"))
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewCommentTree(roots))
	}
}

func (s *Server) HandleCreateComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.CommentInput
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		comment, err := s.Engine.CreateComment(r.Context(), currentUser(r), chi.URLParam(r, "slug"), req)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		logging.Ctx(r.Context()).Debug().Stringer("comment", comment.ID).Msg("Comment created")
		api.WriteJSON(w, http.StatusCreated, api.NewComment(comment))
	}
}

func (s *Server) HandleDeleteComment() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		if err := s.Engine.DeleteComment(r.Context(), currentUser(r), id); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HandleVote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		var req VoteRequest
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		details, err := s.Engine.Vote(r.Context(), currentUser(r), id, req.Downvote)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteDetails(w, http.StatusCreated, details)
	}
}

func (s *Server) HandleUnvote() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		if err := s.Engine.Unvote(r.Context(), currentUser(r), id); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
