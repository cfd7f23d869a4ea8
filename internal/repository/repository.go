// Package repository declares the storage contracts the RSVP service depends on.
// Implementations live in the sqlite and postgres subpackages.
package repository

import (
	"context"

	"github.com/sakif/event-rsvp/internal/model"
)

// AttendeeRepository is the read/write contract of the Attendee Store.
type AttendeeRepository interface {
	// Create inserts one attendee and sets its store-assigned ID.
	Create(ctx context.Context, attendee *model.Attendee) error
	// List returns every attendee in insertion order. An empty store yields an
	// empty, non-nil slice.
	List(ctx context.Context) ([]model.Attendee, error)
}

// Store is an AttendeeRepository that owns a connection and must be released.
type Store interface {
	AttendeeRepository
	Ping(ctx context.Context) error
	Close() error
}
