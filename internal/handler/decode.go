package handler

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"

	"github.com/sakif/event-rsvp/internal/apperror"
	"github.com/sakif/event-rsvp/internal/service"
)

// maxBodyBytes caps an RSVP body. The form has eight short text fields.
const maxBodyBytes = 1 << 20

// decodeRSVPForm reads the submission from a urlencoded form, a multipart form
// or a JSON object. Only string values count: a JSON number or object under a
// known key decodes as "", the same as a missing field.
func decodeRSVPForm(w http.ResponseWriter, r *http.Request) (service.RSVPForm, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))

	switch mediaType {
	case "application/json":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return service.RSVPForm{}, invalidBody(err)
		}
		return formFromMap(func(key string) string {
			s, _ := raw[key].(string)
			return s
		}), nil

	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
			return service.RSVPForm{}, invalidBody(err)
		}

	default:
		if err := r.ParseForm(); err != nil {
			return service.RSVPForm{}, invalidBody(err)
		}
	}

	// PostForm only: query-string values must not stand in for body fields.
	return formFromMap(r.PostForm.Get), nil
}

func formFromMap(get func(key string) string) service.RSVPForm {
	return service.RSVPForm{
		Name:                get("name"),
		Email:               get("email"),
		Attending:           get("attending"),
		DietaryRestrictions: get("dietaryRestrictions"),
		CheckIn:             get("checkIn"),
		CheckOut:            get("checkOut"),
		FlightArrival:       get("flightArrival"),
		FlightDeparture:     get("flightDeparture"),
	}
}

func invalidBody(err error) error {
	e := apperror.ValidationFailed("", "Invalid form data")
	e.Cause = fmt.Errorf("decoding rsvp body: %w", err)
	return e
}
