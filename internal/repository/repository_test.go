package repository_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/song-sponsorship/internal/model"
	"github.com/iliyamo/song-sponsorship/internal/repository"
	"github.com/iliyamo/song-sponsorship/internal/testutil"
)

func song(name string) model.Song {
	return model.Song{Name: name, Composer: "K", Arrangement: "SATB", Count: 2, UnitPrice: 5, TotalPrice: 10}
}

func TestSongRepo_CRUD(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	repo := repository.NewSongRepo(db)

	s := song("Lied A")
	require.NoError(t, repo.Create(ctx, &s))
	require.NotZero(t, s.ID)

	got, err := repo.GetByID(ctx, s.ID)
	require.NoError(t, err)
	assert.Equal(t, "Lied A", got.Name)

	updated, err := repo.Update(ctx, s.ID, map[string]any{"name": "Lied B", "unit_price": 6.5})
	require.NoError(t, err)
	assert.Equal(t, "Lied B", updated.Name)
	assert.Equal(t, 6.5, updated.UnitPrice)
	assert.Equal(t, "K", updated.Composer)

	_, err = repo.Update(ctx, 999, map[string]any{"name": "x"})
	assert.ErrorIs(t, err, repository.ErrSongNotFound)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, repository.ErrSongNotFound)
}

func TestSongRepo_DeleteCascadesToSponsors(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	songs := repository.NewSongRepo(db)
	sponsors := repository.NewSponsorRepo(db)

	a := testutil.SeedSong(t, db, song("A"))
	b := testutil.SeedSong(t, db, song("B"))
	require.NoError(t, sponsors.CreateCounted(ctx, &model.Sponsor{FirstName: "x", SongID: a.ID}))
	require.NoError(t, sponsors.CreateCounted(ctx, &model.Sponsor{FirstName: "y", SongID: a.ID}))
	require.NoError(t, sponsors.CreateCounted(ctx, &model.Sponsor{FirstName: "z", SongID: b.ID}))

	require.NoError(t, songs.Delete(ctx, a.ID))
	assert.ErrorIs(t, songs.Delete(ctx, a.ID), repository.ErrSongNotFound)

	left, err := sponsors.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	assert.Equal(t, "z", left[0].FirstName)
	require.NotNil(t, left[0].Song)
	assert.Equal(t, "B", left[0].Song.Name)
}

func TestSongRepo_ListWithSponsors(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	songs := repository.NewSongRepo(db)
	sponsors := repository.NewSponsorRepo(db)

	a := testutil.SeedSong(t, db, song("A"))
	testutil.SeedSong(t, db, song("B"))
	require.NoError(t, sponsors.CreateCounted(ctx, &model.Sponsor{FirstName: "x", SongID: a.ID}))

	list, err := songs.ListWithSponsors(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Len(t, list[0].Sponsors, 1)
	assert.Empty(t, list[1].Sponsors)
	assert.Equal(t, 1, list[0].ApplicantCount)

	plain, err := songs.List(ctx)
	require.NoError(t, err)
	assert.Nil(t, plain[0].Sponsors)
}

func TestSongRepo_CreateBatch(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	repo := repository.NewSongRepo(db)

	require.NoError(t, repo.CreateBatch(ctx, []model.Song{song("A"), song("B"), song("C")}))
	assert.EqualValues(t, 3, testutil.CountRows(t, db, &model.Song{}))
	require.NoError(t, repo.CreateBatch(ctx, nil))
}

func TestSponsorRepo_CreateCountedUnknownSong(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	repo := repository.NewSponsorRepo(db)

	err := repo.CreateCounted(ctx, &model.Sponsor{FirstName: "x", SongID: 42})
	assert.ErrorIs(t, err, repository.ErrSongNotFound)
	assert.Zero(t, testutil.CountRows(t, db, &model.Sponsor{}))
}

func TestSponsorRepo_DeleteCountedFloorsAtZero(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	repo := repository.NewSponsorRepo(db)
	s := testutil.SeedSong(t, db, song("A"))

	sp := &model.Sponsor{FirstName: "x", SongID: s.ID}
	require.NoError(t, repo.CreateCounted(ctx, sp))
	require.NoError(t, db.Model(&model.Song{}).Where("id = ?", s.ID).UpdateColumn("applicant_count", 0).Error)

	removed, err := repo.DeleteCounted(ctx, sp.ID)
	require.NoError(t, err)
	assert.Equal(t, s.ID, removed.SongID)
	assert.Equal(t, 0, testutil.ApplicantCount(t, db, s.ID))

	_, err = repo.DeleteCounted(ctx, sp.ID)
	assert.ErrorIs(t, err, repository.ErrSponsorNotFound)
}

func TestSponsorRepo_ConcurrentIntakeKeepsEveryIncrement(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewStore(t)
	repo := repository.NewSponsorRepo(db)
	s := testutil.SeedSong(t, db, song("A"))

	const n = 20
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- repo.CreateCounted(ctx, &model.Sponsor{FirstName: "x", SongID: s.ID})
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, n, testutil.ApplicantCount(t, db, s.ID))
	assert.EqualValues(t, n, testutil.CountRows(t, db, &model.Sponsor{}))
}
