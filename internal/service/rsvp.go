// Package service contains the business logic of the RSVP application.
//
// THE THREE-LAYER ARCHITECTURE:
//
//	Handler (HTTP layer)     → decodes requests, writes responses
//	Service (Business layer) → validates, stamps, orchestrates
//	Repository (Data layer)  → reads/writes the Attendee Store
//
// RSVPService takes a repository.AttendeeRepository (interface), not a concrete
// store, so tests inject an in-memory mock and production picks SQLite or
// PostgreSQL in one place (internal/server).
package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/sakif/event-rsvp/internal/apperror"
	"github.com/sakif/event-rsvp/internal/model"
	"github.com/sakif/event-rsvp/internal/repository"
)

// MsgUnexpected is the only thing a client learns about an internal failure.
const MsgUnexpected = "An unexpected error occurred"

// Options tunes RSVPService. The zero value is the default behaviour.
type Options struct {
	// StrictDates rejects check-in/check-out values that are not valid dates.
	StrictDates bool
	// Now overrides the clock used for rsvpDate. Defaults to time.Now.
	Now func() time.Time
}

// RSVPService accepts submissions and lists them for the admin page.
type RSVPService struct {
	repo        repository.AttendeeRepository
	logger      *slog.Logger
	strictDates bool
	now         func() time.Time
}

// NewRSVPService creates a new RSVPService.
func NewRSVPService(repo repository.AttendeeRepository, logger *slog.Logger, opts Options) *RSVPService {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &RSVPService{
		repo:        repo,
		logger:      logger,
		strictDates: opts.StrictDates,
		now:         now,
	}
}

// Submit validates form, stamps the submission time and stores one attendee.
//
// Errors:
//   - apperror.ErrValidation: a required field is missing (nothing is written);
//   - apperror.ErrInternal: the store failed. The cause is logged here and
//     the insert is not retried.
func (s *RSVPService) Submit(ctx context.Context, form RSVPForm) (*model.Attendee, error) {
	sub, err := form.Validate(s.strictDates)
	if err != nil {
		s.logger.Warn("rsvp rejected", slog.String("error", err.Error()))
		return nil, err
	}

	// rsvpDate comes from the server clock only; RSVPForm has no field for it.
	attendee := sub.Attendee(s.now().UTC())

	if err := s.repo.Create(ctx, attendee); err != nil {
		s.logger.Error("failed to store rsvp",
			slog.String("email", attendee.Email),
			slog.String("error", err.Error()),
		)
		return nil, apperror.Internal(MsgUnexpected, err)
	}

	s.logger.Info("rsvp submitted",
		slog.Int64("id", attendee.ID),
		slog.String("email", attendee.Email),
		slog.Bool("attending", attendee.Attending),
	)

	return attendee, nil
}

// List returns every attendee in insertion order. A store failure fails the
// whole call; there are no partial results.
func (s *RSVPService) List(ctx context.Context) ([]model.Attendee, error) {
	attendees, err := s.repo.List(ctx)
	if err != nil {
		s.logger.Error("failed to list attendees", slog.String("error", err.Error()))
		return nil, apperror.Internal(MsgUnexpected, err)
	}
	if attendees == nil {
		attendees = []model.Attendee{}
	}
	return attendees, nil
}
