// Package model defines the data structures used throughout the application.
package model

import "time"

// Attendee is one RSVP submission.
//
// Optional fields are pointers: nil means the guest left the field blank, and
// the stores persist nil as NULL rather than an empty string. The JSON echo
// drops them entirely via omitempty.
//
// CheckIn and CheckOut hold the zero time when the submitted date could not be
// parsed; see Attendee.HasValidDates.
type Attendee struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Email               string    `json:"email"`
	Attending           bool      `json:"attending"`
	DietaryRestrictions *string   `json:"dietaryRestrictions,omitempty"`
	CheckIn             time.Time `json:"checkIn"`
	CheckOut            time.Time `json:"checkOut"`
	FlightArrival       *string   `json:"flightArrival,omitempty"`
	FlightDeparture     *string   `json:"flightDeparture,omitempty"`
	RSVPDate            time.Time `json:"rsvpDate"`
}

// HasValidDates reports whether both stay dates were parsed successfully.
func (a Attendee) HasValidDates() bool {
	return !a.CheckIn.IsZero() && !a.CheckOut.IsZero()
}
