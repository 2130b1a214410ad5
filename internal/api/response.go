// Package api holds the HTTP wire types and the JSON helpers shared by
// handlers and middleware.
package api

import (
	"errors"
	"io"
	"net/http"

	"inkwell/internal/logging"
	"inkwell/internal/utils"

	"github.com/goccy/go-json"
)

// Details is the body used for plain success and error messages.
type Details struct {
	Details string `json:"details"`
}

// WriteJSON writes v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteDetails writes {"details": msg}.
func WriteDetails(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, Details{Details: msg})
}

// WriteError maps err onto a status and body. Validation errors are written
// as a field to messages object; everything else as {"details": ...}.
// Errors that are not AppErrors are logged and hidden behind a 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := utils.AsAppError(err)
	if !ok {
		logging.Ctx(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("Unhandled error")
		WriteDetails(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	status := utils.AppErrorToHTTPStatus(appErr.Code)
	if status >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).Str("code", appErr.Code).Str("path", r.URL.Path).Msg("Request failed")
		WriteDetails(w, status, "Internal server error")
		return
	}
	if appErr.Code == utils.ErrValidation && len(appErr.Fields) > 0 {
		WriteJSON(w, status, appErr.Fields)
		return
	}
	WriteDetails(w, status, appErr.Message)
}

// Decode reads a JSON body into v. An empty body decodes to the zero value.
func Decode(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return nil
	}
	err := json.NewDecoder(r.Body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return utils.NewAppError(utils.ErrInvalidInput, "JSON parse error - "+err.Error(), err)
	}
	return nil
}
