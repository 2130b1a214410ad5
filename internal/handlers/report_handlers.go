package handlers

import (
	"net/http"
	"strconv"

	"inkwell/internal/api"
	"inkwell/internal/engine"
	"inkwell/internal/utils"
)

func (s *Server) HandleCreateReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req engine.ReportInput
		if err := api.Decode(r, &req); err != nil {
			api.WriteError(w, r, err)
			return
		}
		report, err := s.Engine.CreateReport(r.Context(), currentUser(r), req)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusCreated, api.NewReport(report))
	}
}

// HandleListReports serves the moderator queue.
// Query: type=articles|comments|users, moderated=true|false, ordering=newest|oldest.
func (s *Server) HandleListReports() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		query := engine.ReportQuery{
			Type:     q.Get("type"),
			Ordering: q.Get("ordering"),
			Page:     api.PageNumber(r),
		}
		if raw := q.Get("moderated"); raw != "" {
			moderated, err := strconv.ParseBool(raw)
			if err != nil {
				api.WriteError(w, r, utils.NewValidationError("moderated", "Must be a valid boolean."))
				return
			}
			query.Moderated = moderated
		}

		result, err := s.Engine.ListReports(r.Context(), currentUser(r), query)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewPage(r, result, result.Total, query.Page, api.NewReports(result.Items)))
	}
}

func (s *Server) HandleGetReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		report, err := s.Engine.GetReport(r.Context(), currentUser(r), id)
		if err != nil {
			api.WriteError(w, r, err)
			return
		}
		api.WriteJSON(w, http.StatusOK, api.NewReport(report))
	}
}

// HandleResolveReport marks a report moderated.
func (s *Server) HandleResolveReport() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "id")
		if err != nil {
			api.WriteError(w, r, utils.NewAppError(utils.ErrInvalidInput, "Report does not exist", nil))
			return
		}
		if err := s.Engine.ResolveReport(r.Context(), currentUser(r), id); err != nil {
			api.WriteError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}
