package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/event-rsvp/internal/model"
	sqliteRepo "github.com/sakif/event-rsvp/internal/repository/sqlite"
	"github.com/sakif/event-rsvp/internal/service"
)

// =========================================================================
// TEST HELPERS
// =========================================================================

var testTemplateDir = filepath.Join("..", "..", "web", "templates")

var fixedNow = time.Date(2024, 5, 20, 9, 15, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestHandler wires a real in-memory SQLite store behind the service.
func newTestHandler(t *testing.T, opts service.Options) (*RSVPHandler, *sqliteRepo.DB) {
	t.Helper()

	db, err := sqliteRepo.New(sqliteRepo.MemoryPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	svc := service.NewRSVPService(db, discardLogger(), opts)

	h, err := NewRSVPHandler(svc, testTemplateDir, discardLogger())
	require.NoError(t, err)
	return h, db
}

func postForm(h *RSVPHandler, values url.Values, accept string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if accept != "" {
		req.Header.Set("Accept", accept)
	}
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	return rec
}

func postJSON(h *RSVPHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)
	return rec
}

func annValues() url.Values {
	return url.Values{
		"name":      {"Ann"},
		"email":     {"a@x.com"},
		"attending": {"yes"},
		"checkIn":   {"2024-06-01"},
		"checkOut":  {"2024-06-03"},
	}
}

func storedAttendees(t *testing.T, db *sqliteRepo.DB) []model.Attendee {
	t.Helper()
	attendees, err := db.List(context.Background())
	require.NoError(t, err)
	return attendees
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// =========================================================================
// SUBMIT TESTS
// =========================================================================

func TestHandleSubmit_FormAnn(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	rec := postForm(h, annValues(), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, float64(1), got["id"])
	assert.Equal(t, true, got["attending"])
	assert.NotContains(t, got, "flightArrival")
	assert.NotContains(t, got, "dietaryRestrictions")

	stored := storedAttendees(t, db)
	require.Len(t, stored, 1)
	assert.Equal(t, "Ann", stored[0].Name)
	assert.True(t, stored[0].Attending)
	assert.Nil(t, stored[0].FlightArrival)
	assert.Equal(t, fixedNow, stored[0].RSVPDate.UTC())
}

func TestHandleSubmit_JSONBo(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	rec := postJSON(h, `{"name":"Bo","email":"b@x.com","checkIn":"2024-06-01","checkOut":"2024-06-02","flightArrival":"UA100"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	stored := storedAttendees(t, db)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Attending)
	require.NotNil(t, stored[0].FlightArrival)
	assert.Equal(t, "UA100", *stored[0].FlightArrival)
	assert.Nil(t, stored[0].FlightDeparture)
}

func TestHandleSubmit_MissingCheckIn(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	values := annValues()
	values.Del("checkIn")

	rec := postForm(h, values, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, "checkIn", resp.Field)
	assert.Contains(t, resp.Error, "Invalid form data")

	assert.Empty(t, storedAttendees(t, db))
}

func TestHandleSubmit_NonStringJSONValues(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"numeric name", `{"name":42,"email":"a@x.com","checkIn":"2024-06-01","checkOut":"2024-06-03"}`, "name"},
		{"object email", `{"name":"Ann","email":{"v":"a@x.com"},"checkIn":"2024-06-01","checkOut":"2024-06-03"}`, "email"},
		{"null checkOut", `{"name":"Ann","email":"a@x.com","checkIn":"2024-06-01","checkOut":null}`, "checkOut"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, db := newTestHandler(t, service.Options{})

			rec := postJSON(h, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, tt.field, decodeError(t, rec).Field)
			assert.Empty(t, storedAttendees(t, db))
		})
	}
}

func TestHandleSubmit_BooleanAttendingIsNotYes(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	rec := postJSON(h, `{"name":"Ann","email":"a@x.com","attending":true,"checkIn":"2024-06-01","checkOut":"2024-06-03"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	stored := storedAttendees(t, db)
	require.Len(t, stored, 1)
	assert.False(t, stored[0].Attending)
}

func TestHandleSubmit_MalformedJSON(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	rec := postJSON(h, `{"name":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid form data", decodeError(t, rec).Error)
	assert.Empty(t, storedAttendees(t, db))
}

func TestHandleSubmit_QueryStringIgnored(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	values := annValues()
	values.Del("name")
	req := httptest.NewRequest(http.MethodPost, "/?name=Sneaky", strings.NewReader(values.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.HandleSubmit(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, storedAttendees(t, db))
}

func TestHandleSubmit_BrowserSuccess(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	rec := postForm(h, annValues(), "text/html,application/xhtml+xml")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), SuccessNotice)
	assert.Len(t, storedAttendees(t, db), 1)
}

func TestHandleSubmit_BrowserValidationKeepsInput(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})

	values := annValues()
	values.Set("checkOut", "")

	rec := postForm(h, values, "text/html")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "checkOut is required")
	assert.Contains(t, body, `value="a@x.com"`)
	assert.NotContains(t, body, SuccessNotice)
	assert.Empty(t, storedAttendees(t, db))
}

func TestHandleSubmit_StoreFailure(t *testing.T) {
	h, db := newTestHandler(t, service.Options{})
	require.NoError(t, db.Close())

	rec := postForm(h, annValues(), "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	resp := decodeError(t, rec)
	assert.Equal(t, service.MsgUnexpected, resp.Error)
	assert.Empty(t, resp.Field)
}

func TestHandleSubmit_StrictDates(t *testing.T) {
	h, db := newTestHandler(t, service.Options{StrictDates: true})

	values := annValues()
	values.Set("checkIn", "June first")

	rec := postForm(h, values, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "checkIn", decodeError(t, rec).Field)
	assert.Empty(t, storedAttendees(t, db))
}

// =========================================================================
// FORM + ADMIN TESTS
// =========================================================================

func TestHandleForm(t *testing.T) {
	h, _ := newTestHandler(t, service.Options{})

	rec := httptest.NewRecorder()
	h.HandleForm(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{"name", "email", "attending", "dietaryRestrictions", "checkIn", "checkOut", "flightArrival", "flightDeparture"} {
		assert.Contains(t, body, `name="`+name+`"`)
	}
	assert.NotContains(t, body, SuccessNotice)
}

func TestHandleAdmin_HTMLTable(t *testing.T) {
	h, _ := newTestHandler(t, service.Options{})

	require.Equal(t, http.StatusOK, postForm(h, annValues(), "").Code)
	bo := url.Values{
		"name":          {"Bo"},
		"email":         {"b@x.com"},
		"checkIn":       {"bad"},
		"checkOut":      {"2024-06-02"},
		"flightArrival": {"UA100"},
	}
	require.Equal(t, http.StatusOK, postForm(h, bo, "").Code)

	rec := httptest.NewRecorder()
	h.HandleAdmin(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "Admin Page")
	assert.Contains(t, body, "Dietary Restrictions")
	assert.Contains(t, body, "Jun 1, 2024")
	assert.Contains(t, body, "Invalid Date")
	assert.Contains(t, body, "UA100")
	assert.Contains(t, body, "May 20, 2024")
	assert.Less(t, strings.Index(body, "a@x.com"), strings.Index(body, "b@x.com"))
}

func TestHandleAdmin_EmptyTable(t *testing.T) {
	h, _ := newTestHandler(t, service.Options{})

	rec := httptest.NewRecorder()
	h.HandleAdmin(rec, httptest.NewRequest(http.MethodGet, "/admin", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<th>Name</th>")
	assert.Contains(t, rec.Body.String(), "No RSVPs yet.")
}

func TestHandleAdmin_JSON(t *testing.T) {
	tests := []struct {
		name   string
		target string
		accept string
	}{
		{"query parameter", "/admin?format=json", ""},
		{"accept header", "/admin", "application/json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newTestHandler(t, service.Options{})
			require.Equal(t, http.StatusOK, postForm(h, annValues(), "").Code)

			req := httptest.NewRequest(http.MethodGet, tt.target, nil)
			if tt.accept != "" {
				req.Header.Set("Accept", tt.accept)
			}
			rec := httptest.NewRecorder()
			h.HandleAdmin(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			var attendees []model.Attendee
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&attendees))
			require.Len(t, attendees, 1)
			assert.Equal(t, "Ann", attendees[0].Name)
		})
	}
}

func TestHandleAdmin_EmptyJSONIsArray(t *testing.T) {
	h, _ := newTestHandler(t, service.Options{})

	rec := httptest.NewRecorder()
	h.HandleAdmin(rec, httptest.NewRequest(http.MethodGet, "/admin?format=json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestHandleAdmin_StoreFailure(t *testing.T) {
	tests := []struct {
		name   string
		target string
	}{
		{"html", "/admin"},
		{"json", "/admin?format=json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, db := newTestHandler(t, service.Options{})
			require.NoError(t, db.Close())

			rec := httptest.NewRecorder()
			h.HandleAdmin(rec, httptest.NewRequest(http.MethodGet, tt.target, nil))

			assert.Equal(t, http.StatusInternalServerError, rec.Code)
			assert.Contains(t, rec.Body.String(), service.MsgUnexpected)
		})
	}
}

func TestNewRSVPHandler_MissingTemplates(t *testing.T) {
	svc := service.NewRSVPService(nil, discardLogger(), service.Options{})
	_, err := NewRSVPHandler(svc, t.TempDir(), discardLogger())
	assert.Error(t, err)
}

// =========================================================================
// HEALTH TESTS
// =========================================================================

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestHandleHealth(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
		wantBody   string
	}{
		{"store up", nil, http.StatusOK, "ok"},
		{"store down", errors.New("sql: database is closed"), http.StatusServiceUnavailable, "unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewHealthHandler(stubPinger{err: tt.pingErr}, discardLogger())

			rec := httptest.NewRecorder()
			h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body map[string]string
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.Equal(t, tt.wantBody, body["status"])
		})
	}
}

func TestHandleHealth_RealStore(t *testing.T) {
	db, err := sqliteRepo.New(sqliteRepo.MemoryPath)
	require.NoError(t, err)

	h := NewHealthHandler(db, discardLogger())

	rec := httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, db.Close())
	rec = httptest.NewRecorder()
	h.HandleHealth(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
