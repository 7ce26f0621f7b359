package postgres

import (
	"context"
	"errors"
	"time"

	"moviecatalog/errs"
	"moviecatalog/movie"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// MovieModel represents the database model for movies
type MovieModel struct {
	ID               int64  `gorm:"primaryKey"`
	Title            string `gorm:"not null"`
	OriginalTitle    string `gorm:"not null;index"`
	OriginalLanguage string `gorm:"not null;default:''"`
	Overview         string `gorm:"not null;default:''"`
	PosterPath       string `gorm:"not null;default:''"`
	BackdropPath     string `gorm:"not null;default:''"`
	ReleaseDate      string `gorm:"not null;default:''"`
	Popularity       float64
	VoteAverage      float64
	VoteCount        int
	Adult            bool
	Video            bool
	GenreIDs         []GenreIDModel `gorm:"foreignKey:MovieID;constraint:OnDelete:CASCADE"`
	CreatedAt        time.Time      `gorm:"not null;autoCreateTime"`
	UpdatedAt        time.Time      `gorm:"not null;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (MovieModel) TableName() string {
	return "movies"
}

// GenreIDModel is a genre tag owned by a movie row.
type GenreIDModel struct {
	ID       int64 `gorm:"primaryKey"`
	Value    int64 `gorm:"not null"`
	MovieID  int64 `gorm:"not null;index"`
	Position int   `gorm:"not null"`
}

func (GenreIDModel) TableName() string {
	return "genre_ids"
}

// MovieRepository implements movie.Repository interface
type MovieRepository struct {
	db *gorm.DB
}

// NewMovieRepository creates a new movie repository
func NewMovieRepository(db *gorm.DB) *MovieRepository {
	return &MovieRepository{db: db}
}

// FindAll implements [movie.Repository].
func (r *MovieRepository) FindAll(ctx context.Context) ([]movie.Movie, error) {
	var models []MovieModel
	if err := withGenres(r.db.WithContext(ctx)).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}

	movies := make([]movie.Movie, len(models))
	for i, model := range models {
		movies[i] = toDomainMovie(model)
	}
	return movies, nil
}

// FindByID implements [movie.Repository].
func (r *MovieRepository) FindByID(ctx context.Context, id int64) (movie.Movie, error) {
	return findOne(withGenres(r.db.WithContext(ctx)).Where("id = ?", id))
}

// FindByOriginalTitle implements [movie.Repository]. The oldest match wins.
func (r *MovieRepository) FindByOriginalTitle(ctx context.Context, title string) (movie.Movie, error) {
	return findOne(withGenres(r.db.WithContext(ctx)).Where("original_title = ?", title).Order("id"))
}

// Save implements [movie.Repository]. A zero ID inserts; otherwise the row is
// updated and its genre rows are replaced inside one transaction.
func (r *MovieRepository) Save(ctx context.Context, m movie.Movie) (movie.Movie, error) {
	var saved movie.Movie
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := toModelMovie(m)

		if model.ID == 0 {
			if err := tx.Create(&model).Error; err != nil {
				return translateError(err)
			}
		} else {
			result := tx.Model(&MovieModel{}).Where("id = ?", model.ID).Updates(map[string]interface{}{
				"title":             model.Title,
				"original_title":    model.OriginalTitle,
				"original_language": model.OriginalLanguage,
				"overview":          model.Overview,
				"poster_path":       model.PosterPath,
				"backdrop_path":     model.BackdropPath,
				"release_date":      model.ReleaseDate,
				"popularity":        model.Popularity,
				"vote_average":      model.VoteAverage,
				"vote_count":        model.VoteCount,
				"adult":             model.Adult,
				"video":             model.Video,
				"updated_at":        time.Now().UTC(),
			})
			if result.Error != nil {
				return translateError(result.Error)
			}
			if result.RowsAffected == 0 {
				return movie.ErrMovieNotFound
			}

			if err := tx.Where("movie_id = ?", model.ID).Delete(&GenreIDModel{}).Error; err != nil {
				return err
			}
			if len(model.GenreIDs) > 0 {
				for i := range model.GenreIDs {
					model.GenreIDs[i].MovieID = model.ID
				}
				if err := tx.Create(&model.GenreIDs).Error; err != nil {
					return translateError(err)
				}
			}
		}

		found, err := findOne(withGenres(tx).Where("id = ?", model.ID))
		if err != nil {
			return err
		}
		saved = found
		return nil
	})
	return saved, err
}

// DeleteByID implements [movie.Repository].
func (r *MovieRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("movie_id = ?", id).Delete(&GenreIDModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&MovieModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return movie.ErrMovieNotFound
		}
		return nil
	})
}

func withGenres(db *gorm.DB) *gorm.DB {
	return db.Preload("GenreIDs", func(db *gorm.DB) *gorm.DB {
		return db.Order("position, id")
	})
}

func findOne(q *gorm.DB) (movie.Movie, error) {
	var model MovieModel
	if err := q.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return movie.Movie{}, movie.ErrMovieNotFound
		}
		return movie.Movie{}, err
	}
	return toDomainMovie(model), nil
}

func toDomainMovie(model MovieModel) movie.Movie {
	m := movie.Movie{
		ID:               model.ID,
		Title:            model.Title,
		OriginalTitle:    model.OriginalTitle,
		OriginalLanguage: model.OriginalLanguage,
		Overview:         model.Overview,
		PosterPath:       model.PosterPath,
		BackdropPath:     model.BackdropPath,
		ReleaseDate:      model.ReleaseDate,
		Popularity:       model.Popularity,
		VoteAverage:      model.VoteAverage,
		VoteCount:        model.VoteCount,
		Adult:            model.Adult,
		Video:            model.Video,
	}
	if len(model.GenreIDs) > 0 {
		m.GenreIDs = make([]movie.GenreID, len(model.GenreIDs))
		for i, g := range model.GenreIDs {
			m.GenreIDs[i] = movie.GenreID{ID: g.ID, Value: g.Value, MovieID: g.MovieID}
		}
	}
	return m
}

func toModelMovie(m movie.Movie) MovieModel {
	model := MovieModel{
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
	}
	if len(m.GenreIDs) > 0 {
		model.GenreIDs = make([]GenreIDModel, len(m.GenreIDs))
		for i, g := range m.GenreIDs {
			model.GenreIDs[i] = GenreIDModel{Value: g.Value, MovieID: m.ID, Position: i}
		}
	}
	return model
}

// translateError maps constraint violations to application errors.
func translateError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case "23514":
		return errs.Errorf(errs.EINVALID, "movie: value violates constraint %s", pqErr.Constraint)
	case "23503":
		return movie.ErrMovieNotFound
	}
	return err
}

// Ping implements the readiness probe used by the gRPC health service.
func (r *MovieRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
