package handler // handler package contains administrator catalog and sponsor handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/song-sponsorship/internal/catalog"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/service"
)

// maxUploadBytes bounds JSON bulk bodies and CSV uploads.
const maxUploadBytes = 10 << 20

// AdminHandler bundles what the administrator endpoints need
type AdminHandler struct {
	Songs          *repository.SongRepo         // catalog reads and deletes
	Sponsors       *repository.SponsorRepo      // sponsor listing and export
	Catalog        *service.CatalogService      // validated catalog writes
	Sponsorships   *service.SponsorshipService // sponsor retraction
	MaxUploadBytes int64                        // larger bodies are rejected with 413, never truncated
}

// NewAdminHandler constructs a new AdminHandler and panics if any dependency is nil
func NewAdminHandler(songs *repository.SongRepo, sponsors *repository.SponsorRepo, cat *service.CatalogService, sponsorships *service.SponsorshipService) *AdminHandler {
	if songs == nil || sponsors == nil || cat == nil || sponsorships == nil {
		panic("nil dependency passed to NewAdminHandler")
	}
	return &AdminHandler{Songs: songs, Sponsors: sponsors, Catalog: cat, Sponsorships: sponsorships, MaxUploadBytes: maxUploadBytes}
}

// ListSongs handles GET /admin/songs and embeds every song's sponsors
func (h *AdminHandler) ListSongs(c echo.Context) error {
	songs, err := h.Songs.ListWithSponsors(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Abrufen der Songs")
	}
	return c.JSON(http.StatusOK, songs)
}

// CreateSong handles POST /admin/songs.  The applicant count always starts at 0.
func (h *AdminHandler) CreateSong(c echo.Context) error {
	var row catalog.SongRow
	if err := c.Bind(&row); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}
	song, err := h.Catalog.CreateSong(c.Request().Context(), row)
	if err != nil {
		return validationOr(c, err, "Fehler beim Erstellen des Songs")
	}
	return c.JSON(http.StatusCreated, song)
}

// UpdateSong handles PATCH /admin/songs/:id.  Null and empty fields are
// ignored and bewerber can never be changed here.
func (h *AdminHandler) UpdateSong(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}
	body, err := h.readBody(c.Request().Body) // the patch is decoded key by key
	if err != nil {
		return bodyError(c, err)
	}
	song, err := h.Catalog.UpdateSong(c.Request().Context(), id, body)
	if err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			return errorJSON(c, http.StatusNotFound, "Song nicht gefunden")
		}
		return validationOr(c, err, "Fehler beim Aktualisieren des Songs")
	}
	return c.JSON(http.StatusOK, song)
}

// DeleteSong handles DELETE /admin/songs/:id and removes its sponsors too
func (h *AdminHandler) DeleteSong(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Songs.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSongNotFound) {
			return errorJSON(c, http.StatusNotFound, "Song nicht gefunden")
		}
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Löschen des Songs")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Song erfolgreich gelöscht"})
}

// BulkCreateSongs handles POST /admin/songs/bulk with a JSON array of songs
func (h *AdminHandler) BulkCreateSongs(c echo.Context) error {
	body, err := h.readBody(c.Request().Body)
	if err != nil {
		return bodyError(c, err)
	}
	var rows []catalog.SongRow
	if err := json.Unmarshal(bytes.TrimSpace(body), &rows); err != nil { // anything but an array of songs
		return errorJSON(c, http.StatusBadRequest, "Ungültiges Format. Erwartet wird ein Array von Songs.")
	}
	return h.bulkResult(c, func() (int, error) { return h.Catalog.BulkLoad(c.Request().Context(), rows) })
}

// ImportSongs handles POST /admin/songs/import with a CSV body or a
// multipart upload in the "file" field.
func (h *AdminHandler) ImportSongs(c echo.Context) error {
	var src io.Reader = c.Request().Body
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		fh, err := c.FormFile("file")
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "file field is required")
		}
		if fh.Size > h.limit() {
			return bodyError(c, errTooLarge)
		}
		f, err := fh.Open()
		if err != nil {
			return errorJSON(c, http.StatusBadRequest, "cannot read upload")
		}
		defer f.Close()
		src = f
	}
	body, err := h.readBody(src) // the whole file or nothing
	if err != nil {
		return bodyError(c, err)
	}
	return h.bulkResult(c, func() (int, error) { return h.Catalog.ImportCSV(c.Request().Context(), bytes.NewReader(body)) })
}

var errTooLarge = errors.New("upload too large")

func (h *AdminHandler) limit() int64 {
	if h.MaxUploadBytes > 0 {
		return h.MaxUploadBytes
	}
	return maxUploadBytes
}

// readBody reads r completely.  A body over the limit yields errTooLarge
// instead of a silently shortened prefix.
func (h *AdminHandler) readBody(r io.Reader) ([]byte, error) {
	limit := h.limit()
	b, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(b)) > limit {
		return nil, errTooLarge
	}
	return b, nil
}

func bodyError(c echo.Context, err error) error {
	var mbe *http.MaxBytesError
	if errors.Is(err, errTooLarge) || errors.Is(err, echo.ErrStatusRequestEntityTooLarge) || errors.As(err, &mbe) {
		return errorJSON(c, http.StatusRequestEntityTooLarge, "upload too large")
	}
	return errorJSON(c, http.StatusBadRequest, "invalid request body")
}

func (h *AdminHandler) bulkResult(c echo.Context, load func() (int, error)) error {
	n, err := load()
	if err != nil {
		return validationOr(c, err, "Fehler beim Erstellen der Songs")
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"message": formatCreated(n),
		"count":   n,
	})
}

func formatCreated(n int) string {
	return strconv.Itoa(n) + " Songs erfolgreich erstellt"
}

// ExportSongs handles GET /admin/songs/export in the import format
func (h *AdminHandler) ExportSongs(c echo.Context) error {
	songs, err := h.Songs.List(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Abrufen der Songs")
	}
	rows := make([]catalog.SongRow, 0, len(songs))
	for _, s := range songs {
		rows = append(rows, catalog.RowFromSong(s))
	}
	var buf bytes.Buffer
	if err := catalog.EncodeSongs(&buf, rows); err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "export failed")
	}
	return sendCSV(c, "songs", buf.Bytes())
}

// ListSponsors handles GET /admin/sponsors with each sponsor's song embedded
func (h *AdminHandler) ListSponsors(c echo.Context) error {
	sponsors, err := h.Sponsors.List(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Laden der Sponsoren")
	}
	return c.JSON(http.StatusOK, sponsors)
}

// DeleteSponsor handles DELETE /admin/sponsors/:id and decrements the
// song's applicant count, never below zero
func (h *AdminHandler) DeleteSponsor(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return errorJSON(c, http.StatusBadRequest, "invalid id")
	}
	if err := h.Sponsorships.Retract(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSponsorNotFound) {
			return errorJSON(c, http.StatusNotFound, "Sponsor nicht gefunden.")
		}
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Löschen des Sponsors")
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Sponsor erfolgreich gelöscht"})
}

// ExportSponsors handles GET /admin/sponsors/export as a CSV download
func (h *AdminHandler) ExportSponsors(c echo.Context) error {
	sponsors, err := h.Sponsors.List(c.Request().Context())
	if err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "Fehler beim Laden der Sponsoren")
	}
	var buf bytes.Buffer
	if err := catalog.EncodeSponsors(&buf, sponsors); err != nil {
		c.Logger().Error(err)
		return errorJSON(c, http.StatusInternalServerError, "export failed")
	}
	return sendCSV(c, "sponsoren", buf.Bytes())
}

func sendCSV(c echo.Context, name string, data []byte) error {
	file := name + "_" + time.Now().Format("2006-01-02") + ".csv"
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="`+file+`"`)
	return c.Blob(http.StatusOK, "text/csv; charset=utf-8", data)
}
