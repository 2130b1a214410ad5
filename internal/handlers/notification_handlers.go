package handlers

import (
	"net/http"

	"inkwell/internal/api"
)

func (s *Server) HandleNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page := api.PageNumber(r)
		result, err := s.Engine.Notifications(r.Context(), currentUser(r), page)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, result, result.Total, page, api.NewNotifications(result.Items)))
	}
}

func (s *Server) HandleMarkNotification() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		if err := s.Engine.MarkNotificationSeen(r.Context(), currentUser(r), id); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) HandleMarkAllNotifications() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := s.Engine.MarkAllNotificationsSeen(r.Context(), currentUser(r)); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
