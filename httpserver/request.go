package httpserver

import (
	"moviecatalog/movie"
)

// MovieAttributes is the TMDB-style movie payload shared by create and update.
type MovieAttributes struct {
	Title            string  `json:"title" validate:"required,notblank,max=255"`
	OriginalTitle    string  `json:"original_title" validate:"required,notblank,max=255"`
	OriginalLanguage string  `json:"original_language" validate:"omitempty,len=2,lowercase"`
	Overview         string  `json:"overview" validate:"max=4000"`
	PosterPath       string  `json:"poster_path" validate:"max=255"`
	BackdropPath     string  `json:"backdrop_path" validate:"max=255"`
	ReleaseDate      string  `json:"release_date" validate:"omitempty,datetime=2006-01-02"`
	Popularity       float64 `json:"popularity" validate:"gte=0"`
	VoteAverage      float64 `json:"vote_average" validate:"gte=0,lte=10"`
	VoteCount        int     `json:"vote_count" validate:"gte=0"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

func (r MovieAttributes) toAttributes() movie.Attributes {
	return movie.Attributes{
		Title:            r.Title,
		OriginalTitle:    r.OriginalTitle,
		OriginalLanguage: r.OriginalLanguage,
		Overview:         r.Overview,
		PosterPath:       r.PosterPath,
		BackdropPath:     r.BackdropPath,
		ReleaseDate:      r.ReleaseDate,
		Popularity:       r.Popularity,
		VoteAverage:      r.VoteAverage,
		VoteCount:        r.VoteCount,
		Adult:            r.Adult,
		Video:            r.Video,
	}
}

type CreateMovieRequest struct {
	MovieAttributes
	GenreIDs []int64 `json:"genre_ids" validate:"omitempty,max=32"`
}

func (r CreateMovieRequest) ToInput() movie.CreateInput {
	return movie.CreateInput{
		Attributes: r.toAttributes(),
		GenreIDs:   r.GenreIDs,
	}
}

// UpdateMovieRequest repeats the id of the path. Omitting genre_ids keeps
// the stored genres; an empty list clears them.
type UpdateMovieRequest struct {
	ID int64 `json:"id" validate:"required,gt=0"`
	MovieAttributes
	GenreIDs []int64 `json:"genre_ids" validate:"omitempty,max=32"`
}

func (r UpdateMovieRequest) ToInput() movie.UpdateInput {
	return movie.UpdateInput{
		ID:         r.ID,
		Attributes: r.toAttributes(),
		GenreIDs:   r.GenreIDs,
	}
}

type MovieResponse struct {
	ID               int64   `json:"id"`
	Title            string  `json:"title"`
	OriginalTitle    string  `json:"original_title"`
	OriginalLanguage string  `json:"original_language"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path"`
	BackdropPath     string  `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	Popularity       float64 `json:"popularity"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
	GenreIDs         []int64 `json:"genre_ids"`
}

func newMovieResponse(m movie.Movie) MovieResponse {
	return MovieResponse{
		ID:               m.ID,
		Title:            m.Title,
		OriginalTitle:    m.OriginalTitle,
		OriginalLanguage: m.OriginalLanguage,
		Overview:         m.Overview,
		PosterPath:       m.PosterPath,
		BackdropPath:     m.BackdropPath,
		ReleaseDate:      m.ReleaseDate,
		Popularity:       m.Popularity,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		Adult:            m.Adult,
		Video:            m.Video,
		GenreIDs:         m.GenreValues(),
	}
}

func newMovieResponses(movies []movie.Movie) []MovieResponse {
	out := make([]MovieResponse, len(movies))
	for i, m := range movies {
		out[i] = newMovieResponse(m)
	}
	return out
}
