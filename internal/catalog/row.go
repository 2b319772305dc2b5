// Package catalog converts the song catalog and the sponsor list to and
// from CSV.  Decoding only produces candidate rows; validation and
// persistence belong to the bulk loader in the service package.
package catalog

import "github.com/iliyamo/song-sponsorship/internal/model"

// SongRow is a flat song tuple without id, as found in an import file or
// in the JSON body of a bulk upload.  Numeric fields are nil when the
// value was missing or could not be parsed.
type SongRow struct {
	Name           string   `json:"name" validate:"required"`
	Composer       string   `json:"komponist" validate:"required"`
	Arrangement    string   `json:"besetzung" validate:"required"`
	Count          *int     `json:"anzahl" validate:"required,gte=0"`
	UnitPrice      *float64 `json:"preis" validate:"required,gte=0"`
	TotalPrice     *float64 `json:"gesamtpreis" validate:"required,gte=0"`
	ApplicantCount *int     `json:"bewerber,omitempty" validate:"omitempty,gte=0"`
}

// Song converts a validated row into a model.Song.  The applicant count
// defaults to zero unless the row supplies one.
func (r SongRow) Song() model.Song {
	s := model.Song{
		Name:        r.Name,
		Composer:    r.Composer,
		Arrangement: r.Arrangement,
	}
	if r.Count != nil {
		s.Count = *r.Count
	}
	if r.UnitPrice != nil {
		s.UnitPrice = *r.UnitPrice
	}
	if r.TotalPrice != nil {
		s.TotalPrice = *r.TotalPrice
	}
	if r.ApplicantCount != nil {
		s.ApplicantCount = *r.ApplicantCount
	}
	return s
}

// RowFromSong is the inverse of SongRow.Song, used for catalog exports.
func RowFromSong(s model.Song) SongRow {
	count, unit, total := s.Count, s.UnitPrice, s.TotalPrice
	return SongRow{
		Name:        s.Name,
		Composer:    s.Composer,
		Arrangement: s.Arrangement,
		Count:       &count,
		UnitPrice:   &unit,
		TotalPrice:  &total,
	}
}
