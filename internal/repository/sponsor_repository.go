package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/model"
)

// SponsorRepo provides persistence for sponsors together with the
// applicant counter on the referenced song.  The counter is changed with
// single UPDATE statements so concurrent requests never lose an update.
type SponsorRepo struct {
	db *gorm.DB
}

// NewSponsorRepo returns a new SponsorRepo bound to the given database.
func NewSponsorRepo(db *gorm.DB) *SponsorRepo { return &SponsorRepo{db: db} }

// List returns every sponsor with its song preloaded, ordered by id.
func (r *SponsorRepo) List(ctx context.Context) ([]model.Sponsor, error) {
	var out []model.Sponsor
	if err := r.db.WithContext(ctx).Preload("Song").Order("id").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// CreateCounted inserts the sponsor and increments the applicant count of
// its song in one transaction.  If the song no longer exists the insert
// is rolled back and ErrSongNotFound is returned.
func (r *SponsorRepo) CreateCounted(ctx context.Context, s *model.Sponsor) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.Song{}).
			Where("id = ?", s.SongID).
			UpdateColumn("applicant_count", gorm.Expr("applicant_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrSongNotFound
		}
		return tx.Omit("Song").Create(s).Error
	})
}

// DeleteCounted removes a sponsor and decrements the applicant count of
// its song, but only while the count is above zero.  A song that was
// already deleted is tolerated.  It returns the removed sponsor, or
// ErrSponsorNotFound when the id does not exist.
func (r *SponsorRepo) DeleteCounted(ctx context.Context, id uint64) (*model.Sponsor, error) {
	var removed model.Sponsor
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&removed, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrSponsorNotFound
			}
			return err
		}
		if err := tx.Delete(&model.Sponsor{}, id).Error; err != nil {
			return err
		}
		return tx.Model(&model.Song{}).
			Where("id = ? AND applicant_count > 0", removed.SongID).
			UpdateColumn("applicant_count", gorm.Expr("applicant_count - ?", 1)).Error
	})
	if err != nil {
		return nil, err
	}
	return &removed, nil
}
