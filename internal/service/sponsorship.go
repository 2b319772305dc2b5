// Package service holds the business flows that go beyond single store
// calls: sponsorship intake and retraction, and catalog maintenance.
package service

import (
	"context"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/iliyamo/song-sponsorship/internal/metrics"
	"github.com/iliyamo/song-sponsorship/internal/model"
	"github.com/iliyamo/song-sponsorship/internal/queue"
)

// SongStore is the part of the song repository the services need.
type SongStore interface {
	GetByID(ctx context.Context, id uint64) (*model.Song, error)
	Create(ctx context.Context, s *model.Song) error
	CreateBatch(ctx context.Context, songs []model.Song) error
	Update(ctx context.Context, id uint64, changes map[string]any) (*model.Song, error)
}

// SponsorStore persists sponsors together with the song applicant count.
type SponsorStore interface {
	CreateCounted(ctx context.Context, s *model.Sponsor) error
	DeleteCounted(ctx context.Context, id uint64) (*model.Sponsor, error)
}

// Notifier sends the mails that follow a committed sponsorship.
type Notifier interface {
	SponsorshipReceived(ctx context.Context, sponsor model.Sponsor, song model.Song) error
}

// EventPublisher forwards sponsor events to the message broker.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.SponsorEvent) error
}

// SongDetails is the song summary the form echoes back for display.  It
// is never trusted for pricing; only the arrangement is read.
type SongDetails struct {
	Name        string  `json:"name"`
	Composer    string  `json:"komponist"`
	Arrangement string  `json:"besetzung"`
	Count       int     `json:"anzahl"`
	UnitPrice   float64 `json:"preis"`
	TotalPrice  float64 `json:"gesamtpreis"`
}

// SponsorshipRequest is the public sponsorship form.
type SponsorshipRequest struct {
	FirstName   string       `json:"firstName" validate:"required,max=120"`
	LastName    string       `json:"lastName" validate:"required,max=120"`
	Email       string       `json:"email" validate:"required,max=255"`
	Phone       string       `json:"phone" validate:"required,max=64"`
	Message     string       `json:"message" validate:"max=5000"`
	SongID      uint64       `json:"songId" validate:"required"`
	SongDetails *SongDetails `json:"songDetails,omitempty"`
}

func (r *SponsorshipRequest) normalize() {
	r.FirstName = strings.TrimSpace(r.FirstName)
	r.LastName = strings.TrimSpace(r.LastName)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
}

// SubmitResult is returned for a committed sponsorship.  EmailSent is
// false when any notification mail failed; the sponsorship stays stored.
type SubmitResult struct {
	SponsorID uint64
	EmailSent bool
}

// SponsorshipDeps bundles the collaborators of SponsorshipService.  Songs
// and Sponsors are required; the rest may be nil.
type SponsorshipDeps struct {
	Songs    SongStore
	Sponsors SponsorStore
	Notifier Notifier
	Events   EventPublisher
	Metrics  *metrics.Metrics
	Logger   zerolog.Logger
}

// SponsorshipService runs the sponsorship intake and retraction flows.
type SponsorshipService struct {
	songs    SongStore
	sponsors SponsorStore
	notifier Notifier
	events   EventPublisher
	metrics  *metrics.Metrics
	log      zerolog.Logger
	validate *validator.Validate
}

// NewSponsorshipService constructs the service and panics if a required
// store is missing.
func NewSponsorshipService(d SponsorshipDeps) *SponsorshipService {
	if d.Songs == nil || d.Sponsors == nil {
		panic("nil store passed to NewSponsorshipService")
	}
	return &SponsorshipService{
		songs:    d.Songs,
		sponsors: d.Sponsors,
		notifier: d.Notifier,
		events:   d.Events,
		metrics:  d.Metrics,
		log:      d.Logger.With().Str("component", "sponsorship").Logger(),
		validate: newValidator(),
	}
}

// Submit validates a sponsorship request, stores the sponsor and bumps the
// song's applicant count in one transaction, then sends the confirmation
// and admin mails.  Mail failures are logged and reported through
// SubmitResult.EmailSent instead of failing the call.
//
// Errors: *ValidationError for bad input, repository.ErrSongNotFound when
// the song does not exist, anything else is a store failure.
func (s *SponsorshipService) Submit(ctx context.Context, req SponsorshipRequest) (SubmitResult, error) {
	req.normalize()
	if err := s.validate.Struct(req); err != nil {
		return SubmitResult{}, describe(err, "")
	}
	song, err := s.songs.GetByID(ctx, req.SongID)
	if err != nil {
		return SubmitResult{}, err
	}
	arrangement := ""
	if req.SongDetails != nil {
		arrangement = strings.TrimSpace(req.SongDetails.Arrangement)
	}
	if arrangement == "" {
		arrangement = strings.TrimSpace(song.Arrangement)
	}
	if arrangement == "" {
		return SubmitResult{}, invalid("besetzung is required")
	}

	sponsor := &model.Sponsor{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		SongID:    song.ID,
	}
	if err := s.sponsors.CreateCounted(ctx, sponsor); err != nil {
		return SubmitResult{}, err
	}
	song.ApplicantCount++
	s.metrics.SponsorshipCreated()
	s.log.Info().Uint64("sponsor_id", sponsor.ID).Uint64("song_id", song.ID).Msg("sponsorship stored")

	res := SubmitResult{SponsorID: sponsor.ID}
	if s.notifier != nil {
		if err := s.notifier.SponsorshipReceived(ctx, *sponsor, *song); err != nil {
			s.log.Warn().Err(err).Uint64("sponsor_id", sponsor.ID).Msg("sponsorship mail failed")
		} else {
			res.EmailSent = true
		}
	}
	s.publish(ctx, queue.SponsorEvent{
		Type:      queue.EventSponsorCreated,
		SponsorID: sponsor.ID,
		SongID:    song.ID,
		SongName:  song.Name,
		Email:     sponsor.Email,
	})
	return res, nil
}

// Retract deletes a sponsor and decrements its song's applicant count,
// never below zero.  It returns repository.ErrSponsorNotFound for an
// unknown id.
func (s *SponsorshipService) Retract(ctx context.Context, id uint64) error {
	removed, err := s.sponsors.DeleteCounted(ctx, id)
	if err != nil {
		return err
	}
	s.metrics.SponsorRetracted()
	s.log.Info().Uint64("sponsor_id", removed.ID).Uint64("song_id", removed.SongID).Msg("sponsor retracted")
	s.publish(ctx, queue.SponsorEvent{
		Type:      queue.EventSponsorRetracted,
		SponsorID: removed.ID,
		SongID:    removed.SongID,
		Email:     removed.Email,
	})
	return nil
}

func (s *SponsorshipService) publish(ctx context.Context, ev queue.SponsorEvent) {
	if s.events == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC().Format(time.RFC3339)
	if err := s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
		s.log.Warn().Err(err).Str("type", ev.Type).Msg("publish sponsor event failed")
	}
}
