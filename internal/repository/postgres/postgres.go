// Package postgres implements the Attendee Store on PostgreSQL using a pgx
// connection pool. It is selected instead of SQLite when DATABASE_URL is set.
package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sakif/event-rsvp/internal/model"
	"github.com/sakif/event-rsvp/internal/repository"
)

var _ repository.Store = (*DB)(nil)

// DB wraps a pgxpool.Pool. The pool is safe for concurrent use by every request.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to databaseURL, checks the connection and creates the schema.
func New(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("postgres: creating pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: pinging database: %w", err)
	}

	db := &DB{pool: pool}
	if err := db.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: running migrations: %w", err)
	}

	return db, nil
}

// Close releases every pooled connection.
func (db *DB) Close() error {
	db.pool.Close()
	return nil
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: ping: %w", err)
	}
	return nil
}

func (db *DB) migrate(ctx context.Context) error {
	_, err := db.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS attendees (
			id                   BIGSERIAL PRIMARY KEY,
			name                 TEXT NOT NULL,
			email                TEXT NOT NULL,
			attending            BOOLEAN NOT NULL DEFAULT FALSE,
			dietary_restrictions TEXT,
			check_in             DATE NOT NULL,
			check_out            DATE NOT NULL,
			flight_arrival       TEXT,
			flight_departure     TEXT,
			rsvp_date            TIMESTAMPTZ NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("creating attendees table: %w", err)
	}
	return nil
}

// Create inserts an attendee; RETURNING hands back the serial id in the same
// round trip.
func (db *DB) Create(ctx context.Context, attendee *model.Attendee) error {
	err := db.pool.QueryRow(ctx,
		`INSERT INTO attendees (
			name, email, attending, dietary_restrictions,
			check_in, check_out, flight_arrival, flight_departure, rsvp_date
		 ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING id`,
		attendee.Name,
		attendee.Email,
		attendee.Attending,
		attendee.DietaryRestrictions,
		attendee.CheckIn,
		attendee.CheckOut,
		attendee.FlightArrival,
		attendee.FlightDeparture,
		attendee.RSVPDate,
	).Scan(&attendee.ID)
	if err != nil {
		return fmt.Errorf("postgres: creating attendee: %w", err)
	}
	return nil
}

// List returns all attendees ordered by id.
func (db *DB) List(ctx context.Context) ([]model.Attendee, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, name, email, attending, dietary_restrictions,
		        check_in, check_out, flight_arrival, flight_departure, rsvp_date
		 FROM attendees
		 ORDER BY id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing attendees: %w", err)
	}

	attendees, err := pgx.CollectRows(rows, scanAttendee)
	if err != nil {
		return nil, fmt.Errorf("postgres: scanning attendees: %w", err)
	}
	if attendees == nil {
		attendees = []model.Attendee{}
	}
	return attendees, nil
}

func scanAttendee(row pgx.CollectableRow) (model.Attendee, error) {
	var a model.Attendee
	err := row.Scan(
		&a.ID, &a.Name, &a.Email, &a.Attending, &a.DietaryRestrictions,
		&a.CheckIn, &a.CheckOut, &a.FlightArrival, &a.FlightDeparture, &a.RSVPDate,
	)
	return a, err
}
