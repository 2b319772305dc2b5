package model

import "time"

// Sponsor records one person's request to fund a specific song.  Every
// sponsor references exactly one song at creation time.
//
// Fields:
//  ID        – primary key identifier.
//  FirstName – given name of the sponsor.
//  LastName  – family name of the sponsor.
//  Email     – contact address, also receives the confirmation mail.
//  Phone     – contact phone number.
//  Message   – free text entered in the sponsorship form.
//  SongID    – song being sponsored.
//  Song      – the referenced song when preloaded.
//  CreatedAt – submission timestamp.
type Sponsor struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`                 // sponsors.id
	FirstName string    `gorm:"size:120;not null" json:"firstName"`   // sponsors.first_name
	LastName  string    `gorm:"size:120;not null" json:"lastName"`    // sponsors.last_name
	Email     string    `gorm:"size:255;not null" json:"email"`       // sponsors.email
	Phone     string    `gorm:"size:64;not null" json:"phone"`        // sponsors.phone
	Message   string    `gorm:"type:text" json:"message"`             // sponsors.message
	SongID    uint64    `gorm:"index;not null" json:"songId"`         // sponsors.song_id
	Song      *Song     `gorm:"foreignKey:SongID" json:"song,omitempty"`
	CreatedAt time.Time `json:"createdAt"` // sponsors.created_at
}
