// Package testutil provides helpers shared by package tests.
package testutil

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/database"
	"github.com/iliyamo/song-sponsorship/internal/model"
)

// NewStore returns a migrated in-memory SQLite database closed at the end
// of the test.
func NewStore(t testing.TB) *gorm.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, database.Migrate(db))
	t.Cleanup(func() { _ = database.Close(db) })
	return db
}

// SeedSong inserts a song and returns it with its id set.
func SeedSong(t testing.TB, db *gorm.DB, s model.Song) model.Song {
	t.Helper()
	require.NoError(t, db.Omit("Sponsors").Create(&s).Error)
	return s
}

// ApplicantCount reads the stored applicant count of a song.
func ApplicantCount(t testing.TB, db *gorm.DB, songID uint64) int {
	t.Helper()
	var s model.Song
	require.NoError(t, db.First(&s, songID).Error)
	return s.ApplicantCount
}

// CountRows returns the number of rows of the given model.
func CountRows(t testing.TB, db *gorm.DB, m any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, db.Model(m).Count(&n).Error)
	return n
}
