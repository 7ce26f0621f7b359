package postgres_test

import (
	"context"
	"testing"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/postgres"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newAlien() movie.Movie {
	return movie.Movie{
		Title:            "Alien",
		OriginalTitle:    "Alien",
		OriginalLanguage: "en",
		ReleaseDate:      "1979-05-25",
		Popularity:       61.2,
		VoteAverage:      8.1,
		VoteCount:        14000,
		GenreIDs:         []movie.GenreID{{Value: 1}, {Value: 2}, {Value: 3}},
	}
}

func TestMovieRepository(t *testing.T) {
	db := CreateConnection(t, "movie_test", "testuser", "testpass")
	MigrateTestDatabase(t, db, "../migrations")
	ctx := context.Background()

	t.Run("save inserts movie with genre rows", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)

		saved, err := repo.Save(ctx, newAlien())

		require.NoError(t, err)
		assert.NotZero(t, saved.ID)
		assert.Equal(t, []int64{1, 2, 3}, saved.GenreValues())

		var genres []postgres.GenreIDModel
		require.NoError(t, db.Where("movie_id = ?", saved.ID).Order("position").Find(&genres).Error)
		require.Len(t, genres, 3)
		for i, g := range genres {
			assert.Equal(t, int64(i+1), g.Value)
			assert.Equal(t, saved.ID, g.MovieID)
		}
	})

	t.Run("find by id and original title", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		saved, err := repo.Save(ctx, newAlien())
		require.NoError(t, err)

		byID, err := repo.FindByID(ctx, saved.ID)
		require.NoError(t, err)
		byTitle, err := repo.FindByOriginalTitle(ctx, "Alien")
		require.NoError(t, err)

		assert.Equal(t, saved, byID)
		assert.Equal(t, saved.ID, byTitle.ID)
	})

	t.Run("lookups return not found", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)

		_, err := repo.FindByID(ctx, 999)
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)

		_, err = repo.FindByOriginalTitle(ctx, "Nope")
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("find all keeps id order", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		first, err := repo.Save(ctx, newAlien())
		require.NoError(t, err)
		second := newAlien()
		second.Title, second.OriginalTitle, second.GenreIDs = "Aliens", "Aliens", nil
		_, err = repo.Save(ctx, second)
		require.NoError(t, err)

		movies, err := repo.FindAll(ctx)

		require.NoError(t, err)
		require.Len(t, movies, 2)
		assert.Equal(t, first.ID, movies[0].ID)
		assert.Equal(t, "Aliens", movies[1].Title)
		assert.Empty(t, movies[1].GenreIDs)
	})

	t.Run("save updates row and replaces genres", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		saved, err := repo.Save(ctx, newAlien())
		require.NoError(t, err)

		saved.Overview = "In space no one can hear you scream."
		saved.GenreIDs = []movie.GenreID{{Value: 878}}
		updated, err := repo.Save(ctx, saved)

		require.NoError(t, err)
		assert.Equal(t, "In space no one can hear you scream.", updated.Overview)
		assert.Equal(t, []int64{878}, updated.GenreValues())
		assertGenreRowCount(t, db, saved.ID, 1)
	})

	t.Run("save of unknown id is not found", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		m := newAlien()
		m.ID = 12345

		_, err := repo.Save(ctx, m)

		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
	})

	t.Run("check constraint is invalid", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		m := newAlien()
		m.VoteAverage = 11

		_, err := repo.Save(ctx, m)

		assert.Equal(t, errs.EINVALID, errs.ErrorCode(err))
	})

	t.Run("delete cascades genres", func(t *testing.T) {
		cleanupMovieDatabase(t, db)
		repo := postgres.NewMovieRepository(db)
		saved, err := repo.Save(ctx, newAlien())
		require.NoError(t, err)

		require.NoError(t, repo.DeleteByID(ctx, saved.ID))

		_, err = repo.FindByID(ctx, saved.ID)
		assert.ErrorIs(t, err, movie.ErrMovieNotFound)
		assertGenreRowCount(t, db, saved.ID, 0)
		assert.ErrorIs(t, repo.DeleteByID(ctx, saved.ID), movie.ErrMovieNotFound)
	})

	t.Run("fails with closed database connection", func(t *testing.T) {
		repo := postgres.NewMovieRepository(db)
		mustCloseDBConnection(db)

		_, err := repo.FindAll(ctx)

		assert.Error(t, err)
	})
}

func mustCloseDBConnection(db *gorm.DB) {
	sqlDB, _ := db.DB()
	sqlDB.Close()
}

func assertGenreRowCount(t testing.TB, db *gorm.DB, movieID int64, want int64) {
	t.Helper()
	var count int64
	require.NoError(t, db.Model(&postgres.GenreIDModel{}).Where("movie_id = ?", movieID).Count(&count).Error)
	assert.Equal(t, want, count)
}

// cleanupMovieDatabase truncates all tables to ensure test isolation
func cleanupMovieDatabase(t testing.TB, db *gorm.DB) {
	t.Helper()
	err := db.Exec("TRUNCATE TABLE genre_ids, movies RESTART IDENTITY CASCADE").Error
	require.NoError(t, err)
}
