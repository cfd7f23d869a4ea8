package handler

// RESPONSE HELPERS:
// Every JSON error from the RSVP endpoints has the same shape:
//   {"error": "Invalid form data: checkIn is required", "field": "checkIn"}
// The frontend shows "error" inline and can highlight "field" when present.

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/sakif/event-rsvp/internal/apperror"
	"github.com/sakif/event-rsvp/internal/service"
)

// ErrorResponse is the JSON body of every failed request.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON sends data as JSON with the given status code.
// Headers and status must be set before the body is written.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		if err := json.NewEncoder(w).Encode(data); err != nil {
			// Headers are already sent; all we can do is log.
			slog.Error("failed to encode JSON response", slog.String("error", err.Error()))
		}
	}
}

// errorStatus maps a service error to its HTTP status and the message the
// client is allowed to see. Anything that is not a validation error is a 500
// with a generic message; internal details stay in the server log.
func errorStatus(err error) (int, ErrorResponse) {
	var appErr *apperror.AppError
	if errors.Is(err, apperror.ErrValidation) && errors.As(err, &appErr) {
		return http.StatusBadRequest, ErrorResponse{Error: appErr.Message, Field: appErr.Field}
	}
	return http.StatusInternalServerError, ErrorResponse{Error: service.MsgUnexpected}
}

// writeError maps a domain error to the appropriate HTTP status code and sends it.
func writeError(w http.ResponseWriter, err error) {
	status, body := errorStatus(err)
	writeJSON(w, status, body)
}

// renderHTML executes tmpl into a buffer first so a template failure can still
// become a clean 500 instead of a half-written page.
func renderHTML(w http.ResponseWriter, logger *slog.Logger, tmpl *template.Template, status int, data any) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		logger.Error("failed to render template",
			slog.String("template", tmpl.Name()),
			slog.String("error", err.Error()),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		logger.Warn("failed to write page", slog.String("error", err.Error()))
	}
}

// wantsHTML reports whether the client is a browser posting the form directly
// rather than an API client expecting JSON.
func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}

// wantsJSON reports whether the admin listing should be returned as JSON.
func wantsJSON(r *http.Request) bool {
	if r.URL.Query().Get("format") == "json" {
		return true
	}
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err == nil && mediaType == "application/json" {
			return !wantsHTML(r)
		}
	}
	return false
}
