package service

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/iliyamo/song-sponsorship/internal/catalog"
	"github.com/iliyamo/song-sponsorship/internal/metrics"
	"github.com/iliyamo/song-sponsorship/internal/model"
)

// CatalogService validates administrator changes to the song catalog.
type CatalogService struct {
	songs    SongStore
	metrics  *metrics.Metrics
	log      zerolog.Logger
	validate *validator.Validate
}

// NewCatalogService constructs the service and panics if songs is nil.
func NewCatalogService(songs SongStore, m *metrics.Metrics, log zerolog.Logger) *CatalogService {
	if songs == nil {
		panic("nil store passed to NewCatalogService")
	}
	return &CatalogService{
		songs:    songs,
		metrics:  m,
		log:      log.With().Str("component", "catalog").Logger(),
		validate: newValidator(),
	}
}

// BulkLoad validates every row and inserts all of them in one
// transaction.  A single invalid row rejects the whole batch with a
// *ValidationError naming the row (1-indexed); nothing is stored.  An
// empty batch stores nothing and reports zero.
func (c *CatalogService) BulkLoad(ctx context.Context, rows []catalog.SongRow) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	songs := make([]model.Song, 0, len(rows))
	for i, r := range rows {
		r = trimRow(r)
		if err := c.validate.Struct(r); err != nil {
			return 0, describe(err, "row "+strconv.Itoa(i+1)+": ")
		}
		songs = append(songs, r.Song())
	}
	if err := c.songs.CreateBatch(ctx, songs); err != nil {
		return 0, err
	}
	c.metrics.SongsImported(len(songs))
	c.log.Info().Int("count", len(songs)).Msg("songs imported")
	return len(songs), nil
}

// ImportCSV decodes an import file and bulk-loads its rows.
func (c *CatalogService) ImportCSV(ctx context.Context, r io.Reader) (int, error) {
	rows, err := catalog.DecodeSongs(r)
	if err != nil {
		return 0, invalid("%v", err)
	}
	return c.BulkLoad(ctx, rows)
}

// CreateSong validates a single song and stores it with an applicant
// count of zero.
func (c *CatalogService) CreateSong(ctx context.Context, row catalog.SongRow) (*model.Song, error) {
	row = trimRow(row)
	row.ApplicantCount = nil
	if err := c.validate.Struct(row); err != nil {
		return nil, describe(err, "")
	}
	song := row.Song()
	if err := c.songs.Create(ctx, &song); err != nil {
		return nil, err
	}
	return &song, nil
}

// UpdateSong applies a partial update decoded by DecodeSongPatch.
func (c *CatalogService) UpdateSong(ctx context.Context, id uint64, body []byte) (*model.Song, error) {
	changes, err := DecodeSongPatch(body)
	if err != nil {
		return nil, err
	}
	return c.songs.Update(ctx, id, changes)
}

// patchColumns maps the JSON names an administrator may change to their
// columns.  The applicant count is deliberately absent.
var patchColumns = map[string]struct {
	column  string
	numeric bool
	integer bool
}{
	"name":        {column: "name"},
	"komponist":   {column: "composer"},
	"besetzung":   {column: "arrangement"},
	"anzahl":      {column: "copy_count", numeric: true, integer: true},
	"preis":       {column: "unit_price", numeric: true},
	"gesamtpreis": {column: "total_price", numeric: true},
}

// DecodeSongPatch turns a PATCH body into a column change set.  Null and
// empty-string values are ignored, unknown keys (including bewerber and
// id) are dropped, and numbers must be non-negative.
func DecodeSongPatch(body []byte) (map[string]any, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, invalid("invalid request body")
	}
	changes := make(map[string]any, len(raw))
	for key, val := range raw {
		col, ok := patchColumns[key]
		if !ok {
			continue
		}
		val = bytes.TrimSpace(val)
		if string(val) == "null" || string(val) == `""` {
			continue
		}
		if !col.numeric {
			var s string
			if err := json.Unmarshal(val, &s); err != nil {
				return nil, invalid("%s must be a string", key)
			}
			if s = strings.TrimSpace(s); s != "" {
				changes[col.column] = s
			}
			continue
		}
		var f float64
		if err := json.Unmarshal(val, &f); err != nil {
			return nil, invalid("%s must be a number", key)
		}
		if f < 0 {
			return nil, invalid("%s must not be negative", key)
		}
		if col.integer {
			if f != float64(int(f)) {
				return nil, invalid("%s must be a whole number", key)
			}
			changes[col.column] = int(f)
			continue
		}
		changes[col.column] = f
	}
	return changes, nil
}

func trimRow(r catalog.SongRow) catalog.SongRow {
	r.Name = strings.TrimSpace(r.Name)
	r.Composer = strings.TrimSpace(r.Composer)
	r.Arrangement = strings.TrimSpace(r.Arrangement)
	return r
}
