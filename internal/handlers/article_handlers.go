package handlers

import (
	"net/http"
	"strconv"

	"inkwell/internal/api"
	"inkwell/internal/engine"
	"inkwell/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// LikeRequest selects a normal or special like.
type LikeRequest struct {
	SpecialLike bool `json:"special_like"`
}

func (s *Server) HandleListArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := api.PageNumber(r)
		q := r.URL.Query()
		result, err := s.Engine.ListArticles(r.Context(), q.Get("q"), q["tag"], page)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, result, result.Total, page, api.NewFeedArticles(result.Items)))
	}
}

func (s *Server) HandleDrafts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := api.PageNumber(r)
		result, err := s.Engine.Drafts(r.Context(), currentUser(r), page)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, result, result.Total, page, api.NewFeedArticles(result.Items)))
	}
}

func (s *Server) HandleGetArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := s.Engine.GetArticle(r.Context(), middleware.Viewer(r.Context()), chi.URLParam(r, "slug"))
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewArticleDetail(view))
	}
}

func (s *Server) HandleCreateArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.ArticleInput
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		view, err := s.Engine.CreateArticle(r.Context(), currentUser(r), req)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, api.NewArticleDetail(view))
	}
}

func (s *Server) HandleUpdateArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.ArticlePatch
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		view, err := s.Engine.UpdateArticle(r.Context(), currentUser(r), chi.URLParam(r, "slug"), req)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewArticleDetail(view))
	}
}

func (s *Server) HandleDeleteArticle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.DeleteArticle(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// HandleLike handles POST /articles/{slug}/like with an optional special_like flag.
func (s *Server) HandleLike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LikeRequest
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		details, err := s.Engine.Like(r.Context(), currentUser(r), chi.URLParam(r, "slug"), req.SpecialLike)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteDetails(w, http.StatusCreated, details)
	}
}

// HandleUnlike takes the like kind from the body or, since some clients drop
// DELETE bodies, from ?special_like=true.
func (s *Server) HandleUnlike() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LikeRequest
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		if v, err := strconv.ParseBool(r.URL.Query().Get("special_like")); err == nil {
			req.SpecialLike = v
		}
		if err := s.Engine.Unlike(r.Context(), currentUser(r), chi.URLParam(r, "slug"), req.SpecialLike); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HandleSave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.Save(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteDetails(w, http.StatusOK, "Saved article")
	}
}

func (s *Server) HandleUnsave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.Unsave(r.Context(), currentUser(r), chi.URLParam(r, "slug")); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HandleSavedArticles() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := api.PageNumber(r)
		result, err := s.Engine.SavedArticles(r.Context(), currentUser(r), page)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, result, result.Total, page, api.NewFeedArticles(result.Items)))
	}
}
