// Package handler contains the HTTP handlers of the RSVP application.
//
// Handlers are the glue between HTTP and the service layer: they decode the
// request, call RSVPService and write either JSON or an HTML page. They hold
// no business rules.
package handler

import (
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/sakif/event-rsvp/internal/apperror"
	"github.com/sakif/event-rsvp/internal/model"
	"github.com/sakif/event-rsvp/internal/service"
)

// SuccessNotice is shown in the notification after a browser submission.
const SuccessNotice = "RSVP submitted successfully!"

// displayDate is the admin table's date format.
const displayDate = "Jan 2, 2006"

// RSVPHandler serves the public form, the intake endpoint and the admin listing.
// Templates are parsed once in NewRSVPHandler.
type RSVPHandler struct {
	svc       *service.RSVPService
	formPage  *template.Template
	adminPage *template.Template
	logger    *slog.Logger
}

// formData is what rsvp.html renders.
type formData struct {
	Title  string
	Notice string
	Error  string
	Field  string
	Form   service.RSVPForm
}

// adminData is what admin.html renders.
type adminData struct {
	Title     string
	Attendees []model.Attendee
}

var templateFuncs = template.FuncMap{
	"date":  formatDate,
	"yesNo": yesNo,
	"deref": deref,
}

// NewRSVPHandler parses base.html together with each page template so every
// page can fill base's {{template "content" .}} slot.
func NewRSVPHandler(svc *service.RSVPService, templateDir string, logger *slog.Logger) (*RSVPHandler, error) {
	base := filepath.Join(templateDir, "base.html")

	formPage, err := template.New("rsvp").Funcs(templateFuncs).
		ParseFiles(base, filepath.Join(templateDir, "rsvp.html"))
	if err != nil {
		return nil, fmt.Errorf("parsing rsvp templates: %w", err)
	}

	adminPage, err := template.New("admin").Funcs(templateFuncs).
		ParseFiles(base, filepath.Join(templateDir, "admin.html"))
	if err != nil {
		return nil, fmt.Errorf("parsing admin templates: %w", err)
	}

	return &RSVPHandler{
		svc:       svc,
		formPage:  formPage,
		adminPage: adminPage,
		logger:    logger,
	}, nil
}

// HandleForm renders the empty RSVP form.
//
// HTTP: GET /
func (h *RSVPHandler) HandleForm(w http.ResponseWriter, r *http.Request) {
	renderHTML(w, h.logger, h.formPage, http.StatusOK, formData{Title: "Event RSVP"})
}

// HandleSubmit accepts one RSVP.
//
// HTTP: POST /
//
// RESPONSES:
//
//	200 {"id":1,"name":"Ann",...,"rsvpDate":"..."}   stored record
//	400 {"error":"Invalid form data: checkIn is required","field":"checkIn"}
//	500 {"error":"An unexpected error occurred"}
//
// A browser posting the form directly (Accept: text/html) gets the form page
// back with the same status code, showing the notification or the error.
func (h *RSVPHandler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	form, err := decodeRSVPForm(w, r)

	var attendee *model.Attendee
	if err == nil {
		attendee, err = h.svc.Submit(r.Context(), form)
	} else {
		h.logger.Warn("invalid rsvp body", slog.String("error", err.Error()))
	}

	if err != nil {
		h.submitFailed(w, r, form, err)
		return
	}

	if wantsHTML(r) {
		renderHTML(w, h.logger, h.formPage, http.StatusOK, formData{
			Title:  "Event RSVP",
			Notice: SuccessNotice,
		})
		return
	}
	writeJSON(w, http.StatusOK, attendee)
}

func (h *RSVPHandler) submitFailed(w http.ResponseWriter, r *http.Request, form service.RSVPForm, err error) {
	if !wantsHTML(r) {
		writeError(w, err)
		return
	}

	status, body := errorStatus(err)
	data := formData{Title: "Event RSVP", Error: body.Error, Field: body.Field}
	if errors.Is(err, apperror.ErrValidation) {
		// Keep what the guest typed so they only fix the missing field.
		data.Form = form
	}
	renderHTML(w, h.logger, h.formPage, status, data)
}

// HandleAdmin lists every RSVP.
//
// HTTP: GET /admin            → HTML table
//
//	GET /admin?format=json → JSON array (also with Accept: application/json)
func (h *RSVPHandler) HandleAdmin(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.svc.List(r.Context())
	if err != nil {
		if wantsJSON(r) {
			writeError(w, err)
			return
		}
		http.Error(w, service.MsgUnexpected, http.StatusInternalServerError)
		return
	}

	if wantsJSON(r) {
		writeJSON(w, http.StatusOK, attendees)
		return
	}

	renderHTML(w, h.logger, h.adminPage, http.StatusOK, adminData{
		Title:     "Admin Page",
		Attendees: attendees,
	})
}

// formatDate renders a stored date; the zero time marks a date that did not parse.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return "Invalid Date"
	}
	return t.Format(displayDate)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
