package handler // handler package contains the public catalog and sponsorship handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/model"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/service"
)

// PublicHandler serves the visitor facing endpoints.
type PublicHandler struct {
	Songs             *repository.SongRepo         // SongRepo provides the catalog
	Sponsorships      *service.SponsorshipService // runs the intake flow
	MissingSongStatus int                          // status for an unknown songId, 404 or 500
}

// NewPublicHandler constructs a PublicHandler and panics if any dependency is nil
func NewPublicHandler(songs *repository.SongRepo, sponsorships *service.SponsorshipService, missingSongStatus int) *PublicHandler {
	if songs == nil || sponsorships == nil {
		panic("nil dependency passed to NewPublicHandler")
	}
	if missingSongStatus == 0 {
		missingSongStatus = http.StatusNotFound
	}
	return &PublicHandler{Songs: songs, Sponsorships: sponsorships, MissingSongStatus: missingSongStatus}
}

// publicSong is a song as visitors see it, without any sponsor data.
type publicSong struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Composer       string    `json:"komponist"`
	Arrangement    string    `json:"besetzung"`
	Count          int       `json:"anzahl"`
	UnitPrice      float64   `json:"preis"`
	TotalPrice     float64   `json:"gesamtpreis"`
	ApplicantCount int       `json:"bewerber"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

func toPublicSong(s model.Song) publicSong {
	return publicSong{
		ID:             s.ID,
		Name:           s.Name,
		Composer:       s.Composer,
		Arrangement:    s.Arrangement,
		Count:          s.Count,
		UnitPrice:      s.UnitPrice,
		TotalPrice:     s.TotalPrice,
		ApplicantCount: s.ApplicantCount,
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

// ListSongs handles GET /songs and returns the catalog without sponsors
func (h *PublicHandler) ListSongs(c echo.Context) error {
	songs, err := h.Songs.List(c.Request().Context()) // load every song ordered by id
	if err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Abrufen der Songs")
	}
	out := make([]publicSong, 0, len(songs)) // always encode an array, never null
	for _, s := range songs {
		out = append(out, toPublicSong(s))
	}
	return c.JSON(http.StatusOK, out)
}

// Sponsor handles POST /sponsor.  The sponsorship is stored even when the
// notification mails fail; emailSent reports the outcome.
func (h *PublicHandler) Sponsor(c echo.Context) error {
	var req service.SponsorshipRequest
	if err := c.Bind(&req); err != nil { // malformed JSON or wrong field types
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	res, err := h.Sponsorships.Submit(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) { // the referenced song does not exist
			return errorJSON(c, h.MissingSongStatus, "Song nicht gefunden")
		}
		return validationOr(c, err, "Failed to process sponsorship request")
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"sponsorId": res.SponsorID,
		"emailSent": res.EmailSent,
	})
}
