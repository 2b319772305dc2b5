// Package repository contains data access logic separated from HTTP handlers.
// This file holds the song queries.  A Song is a catalog entry that visitors
// can sponsor; its applicant counter is owned by the sponsor repository and
// never written through the update paths here.
package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/model"
)

// SongRepo encapsulates all database queries related to songs.
type SongRepo struct {
	db *gorm.DB
}

// NewSongRepo constructs a SongRepo with the provided DB handle.
func NewSongRepo(db *gorm.DB) *SongRepo {
	return &SongRepo{db: db}
}

// List returns every song ordered by id without sponsor data.
func (r *SongRepo) List(ctx context.Context) ([]model.Song, error) {
	var out []model.Song
	if err := r.db.WithContext(ctx).Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListWithSponsors returns every song with its sponsors preloaded.
func (r *SongRepo) ListWithSponsors(ctx context.Context) ([]model.Song, error) {
	var out []model.Song
	err := r.db.WithContext(ctx).
		Preload("Sponsors", func(db *gorm.DB) *gorm.DB { return db.Order("id") }).
		Order("id").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID fetches a song by its ID.  It returns ErrSongNotFound if no row
// is found.
func (r *SongRepo) GetByID(ctx context.Context, id uint64) (*model.Song, error) {
	var s model.Song
	if err := r.db.WithContext(ctx).First(&s, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSongNotFound
		}
		return nil, err
	}
	return &s, nil
}

// Create inserts a new song.  On success the song's ID and timestamps are
// populated.
func (r *SongRepo) Create(ctx context.Context, s *model.Song) error {
	return r.db.WithContext(ctx).Omit("Sponsors").Create(s).Error
}

// CreateBatch inserts all songs in a single transaction.  Either every
// row is stored or none is.
func (r *SongRepo) CreateBatch(ctx context.Context, songs []model.Song) error {
	if len(songs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit("Sponsors").CreateInBatches(songs, 100).Error
	})
}

// Update applies the given column values to a song and returns the fresh
// row.  An empty change set only reloads the song.  ErrSongNotFound is
// returned when the id does not exist.
func (r *SongRepo) Update(ctx context.Context, id uint64, changes map[string]any) (*model.Song, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	if len(changes) > 0 {
		res := r.db.WithContext(ctx).Model(&model.Song{}).Where("id = ?", id).Updates(changes)
		if res.Error != nil {
			return nil, res.Error
		}
	}
	return r.GetByID(ctx, id)
}

// Delete removes a song and every sponsor referencing it inside one
// transaction.  ErrSongNotFound is returned when the id does not exist.
func (r *SongRepo) Delete(ctx context.Context, id uint64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("song_id = ?", id).Delete(&model.Sponsor{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Song{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSongNotFound
		}
		return nil
	})
}
