package service

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/sakif/event-rsvp/internal/apperror"
	"github.com/sakif/event-rsvp/internal/model"
)

// AttendingYes is the only raw value that marks a guest as attending.
const AttendingYes = "yes"

// DateLayout is the format browsers send for <input type="date">.
const DateLayout = time.DateOnly

// RSVPForm is the raw submission, every field still an untyped string.
// A field the client did not send, or sent as something other than a string,
// is decoded as "".
type RSVPForm struct {
	Name                string `json:"name" validate:"required"`
	Email               string `json:"email" validate:"required"`
	Attending           string `json:"attending"`
	DietaryRestrictions string `json:"dietaryRestrictions"`
	CheckIn             string `json:"checkIn" validate:"required"`
	CheckOut            string `json:"checkOut" validate:"required"`
	FlightArrival       string `json:"flightArrival"`
	FlightDeparture     string `json:"flightDeparture"`
}

// Submission is a form that passed validation: required fields are present,
// attending is resolved and blank optionals are nil.
type Submission struct {
	Name                string
	Email               string
	Attending           bool
	DietaryRestrictions *string
	CheckIn             time.Time
	CheckOut            time.Time
	FlightArrival       *string
	FlightDeparture     *string
}

// Attendee builds the record to persist, stamped with rsvpDate.
func (s Submission) Attendee(rsvpDate time.Time) *model.Attendee {
	return &model.Attendee{
		Name:                s.Name,
		Email:               s.Email,
		Attending:           s.Attending,
		DietaryRestrictions: s.DietaryRestrictions,
		CheckIn:             s.CheckIn,
		CheckOut:            s.CheckOut,
		FlightArrival:       s.FlightArrival,
		FlightDeparture:     s.FlightDeparture,
		RSVPDate:            rsvpDate,
	}
}

var validate = newValidator()

// newValidator reports field errors under their JSON names (checkIn, not CheckIn)
// so the message matches the form field the user sees.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks presence of the required fields and normalizes the rest.
//
// With strictDates unset, a check-in or check-out that does not parse is kept
// as the zero time and the submission still succeeds. With strictDates set it
// is rejected as a validation error on that field.
func (f RSVPForm) Validate(strictDates bool) (Submission, error) {
	f = f.trimmed()

	if err := validate.Struct(f); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			field := fieldErrs[0].Field()
			return Submission{}, apperror.ValidationFailed(field,
				fmt.Sprintf("Invalid form data: %s is required", field))
		}
		return Submission{}, apperror.ValidationFailed("", "Invalid form data")
	}

	checkIn, ok := parseDate(f.CheckIn)
	if !ok && strictDates {
		return Submission{}, apperror.ValidationFailed("checkIn",
			fmt.Sprintf("Invalid form data: checkIn must be a date (YYYY-MM-DD), got %q", f.CheckIn))
	}
	checkOut, ok := parseDate(f.CheckOut)
	if !ok && strictDates {
		return Submission{}, apperror.ValidationFailed("checkOut",
			fmt.Sprintf("Invalid form data: checkOut must be a date (YYYY-MM-DD), got %q", f.CheckOut))
	}

	return Submission{
		Name:                f.Name,
		Email:               f.Email,
		Attending:           f.Attending == AttendingYes,
		DietaryRestrictions: optional(f.DietaryRestrictions),
		CheckIn:             checkIn,
		CheckOut:            checkOut,
		FlightArrival:       optional(f.FlightArrival),
		FlightDeparture:     optional(f.FlightDeparture),
	}, nil
}

// trimmed strips surrounding whitespace from every field except Attending,
// which must match "yes" exactly.
func (f RSVPForm) trimmed() RSVPForm {
	f.Name = strings.TrimSpace(f.Name)
	f.Email = strings.TrimSpace(f.Email)
	f.DietaryRestrictions = strings.TrimSpace(f.DietaryRestrictions)
	f.CheckIn = strings.TrimSpace(f.CheckIn)
	f.CheckOut = strings.TrimSpace(f.CheckOut)
	f.FlightArrival = strings.TrimSpace(f.FlightArrival)
	f.FlightDeparture = strings.TrimSpace(f.FlightDeparture)
	return f
}

// parseDate accepts a date-only string, or a full RFC 3339 timestamp from API
// clients. On failure it returns the zero time.
func parseDate(s string) (time.Time, bool) {
	if d, err := time.Parse(DateLayout, s); err == nil {
		return d, true
	}
	if d, err := time.Parse(time.RFC3339, s); err == nil {
		return d.UTC(), true
	}
	return time.Time{}, false
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
