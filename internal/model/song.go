package model

import "time"

// Song is a piece of music in the catalog that visitors can sponsor.
// The JSON names follow the German field names used by the frontend.
//
// Fields:
//  ID             – primary key identifier.
//  Name           – title of the piece.
//  Composer       – composer of the piece (komponist).
//  Arrangement    – voicing descriptor such as SATB (besetzung).
//  Count          – number of copies needed (anzahl).
//  UnitPrice      – price per copy (preis).
//  TotalPrice     – stored total, normally Count × UnitPrice (gesamtpreis).
//  ApplicantCount – number of sponsors currently attached (bewerber).
//  Sponsors       – sponsors referencing the song; only loaded for admins.
type Song struct {
	ID             uint64    `gorm:"primaryKey" json:"id"`                                // songs.id
	Name           string    `gorm:"size:255;not null" json:"name"`                      // songs.name
	Composer       string    `gorm:"size:255;not null" json:"komponist"`                 // songs.composer
	Arrangement    string    `gorm:"size:64;not null" json:"besetzung"`                  // songs.arrangement
	Count          int       `gorm:"column:copy_count;not null;default:0" json:"anzahl"` // songs.copy_count
	UnitPrice      float64   `gorm:"not null;default:0" json:"preis"`                    // songs.unit_price
	TotalPrice     float64   `gorm:"not null;default:0" json:"gesamtpreis"`              // songs.total_price
	ApplicantCount int       `gorm:"not null;default:0" json:"bewerber"`                 // songs.applicant_count
	Sponsors       []Sponsor `gorm:"foreignKey:SongID" json:"sponsors"`
	CreatedAt      time.Time `json:"createdAt"` // songs.created_at
	UpdatedAt      time.Time `json:"updatedAt"` // songs.updated_at
}
