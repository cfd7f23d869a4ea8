package sqlite

import (
	"context"
	"fmt"

	"github.com/sakif/event-rsvp/internal/model"
	"github.com/sakif/event-rsvp/internal/repository"
)

// compile-time check that *DB implements repository.Store
var _ repository.Store = (*DB)(nil)

// Create inserts an attendee and fills in the id SQLite assigned.
//
// Nil optional fields are passed as nil pointers, which database/sql sends as
// NULL. They are never converted to "".
func (db *DB) Create(ctx context.Context, attendee *model.Attendee) error {
	result, err := db.conn.ExecContext(ctx,
		`INSERT INTO attendees (
			name, email, attending, dietary_restrictions,
			check_in, check_out, flight_arrival, flight_departure, rsvp_date
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		attendee.Name,
		attendee.Email,
		attendee.Attending,
		attendee.DietaryRestrictions,
		attendee.CheckIn,
		attendee.CheckOut,
		attendee.FlightArrival,
		attendee.FlightDeparture,
		attendee.RSVPDate,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating attendee: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("sqlite: reading attendee id: %w", err)
	}
	attendee.ID = id

	return nil
}

// List returns all attendees, oldest submission first.
func (db *DB) List(ctx context.Context) ([]model.Attendee, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT id, name, email, attending, dietary_restrictions,
		        check_in, check_out, flight_arrival, flight_departure, rsvp_date
		 FROM attendees
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing attendees: %w", err)
	}
	// CRITICAL: always close rows when done!
	defer rows.Close()

	attendees := make([]model.Attendee, 0)

	for rows.Next() {
		var a model.Attendee
		if err := rows.Scan(
			&a.ID, &a.Name, &a.Email, &a.Attending, &a.DietaryRestrictions,
			&a.CheckIn, &a.CheckOut, &a.FlightArrival, &a.FlightDeparture, &a.RSVPDate,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning attendee row: %w", err)
		}
		attendees = append(attendees, a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating attendees: %w", err)
	}

	return attendees, nil
}
