package movie

import (
	"strings"

	"moviecatalog/errs"
)

var (
	ErrMovieNotFound        = errs.Errorf(errs.ENOTFOUND, "movie not found")
	ErrInvalidTitle         = errs.Errorf(errs.EINVALID, "movie: title is required")
	ErrInvalidOriginalTitle = errs.Errorf(errs.EINVALID, "movie: original title is required")
	ErrInvalidID            = errs.Errorf(errs.EINVALID, "movie: invalid id")
)

// ErrIDMismatch is returned when the id in the path differs from the id in the body.
func ErrIDMismatch(pathID, bodyID int64) error {
	return errs.Errorf(errs.EINVALID, "movie: path id %d does not match body id %d", pathID, bodyID)
}

// Movie is a catalog entry. GenreIDs are owned by the movie and share its lifecycle.
type Movie struct {
	ID               int64
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	Overview         string
	PosterPath       string
	BackdropPath     string
	ReleaseDate      string
	Popularity       float64
	VoteAverage      float64
	VoteCount        int
	Adult            bool
	Video            bool
	GenreIDs         []GenreID
}

// GenreID is a genre classification tag attached to a movie.
type GenreID struct {
	ID      int64
	Value   int64
	MovieID int64
}

// GenreValues returns the raw classification values in order.
func (m Movie) GenreValues() []int64 {
	values := make([]int64, len(m.GenreIDs))
	for i, g := range m.GenreIDs {
		values[i] = g.Value
	}
	return values
}

func (m Movie) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return ErrInvalidTitle
	}
	if strings.TrimSpace(m.OriginalTitle) == "" {
		return ErrInvalidOriginalTitle
	}
	return nil
}

// Attributes holds the mutable fields of a movie.
type Attributes struct {
	Title            string
	OriginalTitle    string
	OriginalLanguage string
	Overview         string
	PosterPath       string
	BackdropPath     string
	ReleaseDate      string
	Popularity       float64
	VoteAverage      float64
	VoteCount        int
	Adult            bool
	Video            bool
}

// CreateInput carries the attributes of a new movie and its raw genre values.
type CreateInput struct {
	Attributes
	GenreIDs []int64
}

// UpdateInput carries the target id and the new attributes. A nil GenreIDs
// keeps the current genre associations.
type UpdateInput struct {
	ID int64
	Attributes
	GenreIDs []int64
}

func (m *Movie) apply(a Attributes) {
	m.Title = a.Title
	m.OriginalTitle = a.OriginalTitle
	m.OriginalLanguage = a.OriginalLanguage
	m.Overview = a.Overview
	m.PosterPath = a.PosterPath
	m.BackdropPath = a.BackdropPath
	m.ReleaseDate = a.ReleaseDate
	m.Popularity = a.Popularity
	m.VoteAverage = a.VoteAverage
	m.VoteCount = a.VoteCount
	m.Adult = a.Adult
	m.Video = a.Video
}

func (m *Movie) setGenres(values []int64) {
	m.GenreIDs = make([]GenreID, len(values))
	for i, v := range values {
		m.GenreIDs[i] = GenreID{Value: v, MovieID: m.ID}
	}
}

// DeleteOutcome tags the result of a delete.
type DeleteOutcome int

const (
	StorageError DeleteOutcome = iota
	Deleted
	NotFound
)

func (o DeleteOutcome) String() string {
	switch o {
	case Deleted:
		return "deleted"
	case NotFound:
		return "not_found"
	default:
		return "storage_error"
	}
}
