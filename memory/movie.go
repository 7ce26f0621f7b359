// Package memory keeps movies in process memory. It backs local runs and tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"moviecatalog/movie"
)

// MovieRepository implements [movie.Repository].
type MovieRepository struct {
	mu          sync.RWMutex
	movies      map[int64]movie.Movie
	nextMovieID int64
	nextGenreID int64
}

func NewMovieRepository() *MovieRepository {
	return &MovieRepository{
		movies: make(map[int64]movie.Movie),
	}
}

func (r *MovieRepository) FindAll(_ context.Context) ([]movie.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]int64, 0, len(r.movies))
	for id := range r.movies {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	movies := make([]movie.Movie, len(ids))
	for i, id := range ids {
		movies[i] = clone(r.movies[id])
	}
	return movies, nil
}

func (r *MovieRepository) FindByID(_ context.Context, id int64) (movie.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.movies[id]
	if !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return clone(m), nil
}

func (r *MovieRepository) FindByOriginalTitle(_ context.Context, title string) (movie.Movie, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var (
		found movie.Movie
		ok    bool
	)
	for _, m := range r.movies {
		if m.OriginalTitle == title && (!ok || m.ID < found.ID) {
			found, ok = m, true
		}
	}
	if !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}
	return clone(found), nil
}

// Save inserts m when its ID is zero and replaces the stored movie otherwise.
// Genre associations are always replaced as a whole.
func (r *MovieRepository) Save(_ context.Context, m movie.Movie) (movie.Movie, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if m.ID == 0 {
		r.nextMovieID++
		m.ID = r.nextMovieID
	} else if _, ok := r.movies[m.ID]; !ok {
		return movie.Movie{}, movie.ErrMovieNotFound
	}

	m = clone(m)
	for i := range m.GenreIDs {
		r.nextGenreID++
		m.GenreIDs[i].ID = r.nextGenreID
		m.GenreIDs[i].MovieID = m.ID
	}
	r.movies[m.ID] = m
	return clone(m), nil
}

func (r *MovieRepository) DeleteByID(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.movies[id]; !ok {
		return movie.ErrMovieNotFound
	}
	delete(r.movies, id)
	return nil
}

func clone(m movie.Movie) movie.Movie {
	if m.GenreIDs != nil {
		m.GenreIDs = append([]movie.GenreID(nil), m.GenreIDs...)
	}
	return m
}

func (r *MovieRepository) Ping(_ context.Context) error {
	return nil
}
