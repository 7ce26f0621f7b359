package movie

import (
	"context"
	"errors"
	"sync"
	"time"

	"moviecatalog/pkg/logger"
	"moviecatalog/pkg/sentry"
	"moviecatalog/profile"

	"go.uber.org/zap"
)

const DefaultEnrichmentTimeout = 3 * time.Second

type Service interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	GetMovie(ctx context.Context, id int64) (Movie, error)
	CreateMovie(ctx context.Context, in CreateInput) (CreateResult, error)
	UpdateMovie(ctx context.Context, pathID int64, in UpdateInput) error
	DeleteMovie(ctx context.Context, id int64) (DeleteOutcome, error)
}

// Repository persists movies together with their genre associations.
// Lookups return ErrMovieNotFound when nothing matches.
type Repository interface {
	FindAll(ctx context.Context) ([]Movie, error)
	FindByID(ctx context.Context, id int64) (Movie, error)
	FindByOriginalTitle(ctx context.Context, title string) (Movie, error)
	Save(ctx context.Context, m Movie) (Movie, error)
	DeleteByID(ctx context.Context, id int64) error
}

type ProfileFetcher interface {
	FetchProfile(ctx context.Context, id int64) (profile.Profile, error)
}

// CreateResult reports the id of the movie and whether it was inserted by
// this call. Created is false when a movie with the same original title
// already existed.
type CreateResult struct {
	ID      int64 `json:"id"`
	Created bool  `json:"created"`
}

type Option func(uc *Usecase)

func WithLogger(l *zap.SugaredLogger) Option {
	return func(uc *Usecase) {
		uc.logger = l
	}
}

func WithEnrichmentTimeout(d time.Duration) Option {
	return func(uc *Usecase) {
		if d > 0 {
			uc.enrichTimeout = d
		}
	}
}

type Usecase struct {
	r             Repository
	profiles      ProfileFetcher
	logger        *zap.SugaredLogger
	enrichTimeout time.Duration

	inflight sync.WaitGroup
}

func NewUsecase(r Repository, profiles ProfileFetcher, opts ...Option) *Usecase {
	uc := &Usecase{
		r:             r,
		profiles:      profiles,
		logger:        logger.NOOPLogger,
		enrichTimeout: DefaultEnrichmentTimeout,
	}
	for _, fn := range opts {
		fn(uc)
	}
	return uc
}

func (uc *Usecase) ListMovies(ctx context.Context) ([]Movie, error) {
	return uc.r.FindAll(ctx)
}

func (uc *Usecase) GetMovie(ctx context.Context, id int64) (Movie, error) {
	m, err := uc.r.FindByID(ctx, id)
	if err != nil {
		return Movie{}, err
	}

	uc.enrich(ctx, id)
	return m, nil
}

// enrich fetches the external profile keyed by id on a detached goroutine.
// The result is only logged; the caller never waits for it.
func (uc *Usecase) enrich(ctx context.Context, id int64) {
	if uc.profiles == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), uc.enrichTimeout)
	uc.inflight.Add(1)
	go func() {
		defer uc.inflight.Done()
		defer cancel()
		defer func() {
			if r := recover(); r != nil {
				uc.logger.Errorw("profile enrichment panicked", "movie_id", id, "panic", r)
			}
		}()

		p, err := uc.profiles.FetchProfile(ctx, id)
		if err != nil {
			uc.logger.Warnw("profile enrichment failed", "movie_id", id, "error", err)
			sentry.WithExtras(map[string]interface{}{"movie_id": id}).
				Warningf("profile enrichment failed: %v", err)
			return
		}

		uc.logger.Infow("profile enrichment fetched",
			"movie_id", id,
			"profile_id", p.ID,
			"email", p.Email,
			"name", p.FullName(),
		)
	}()
}

// Wait blocks until every in-flight enrichment call has returned.
func (uc *Usecase) Wait() {
	uc.inflight.Wait()
}

func (uc *Usecase) CreateMovie(ctx context.Context, in CreateInput) (CreateResult, error) {
	var m Movie
	m.apply(in.Attributes)
	if err := m.Validate(); err != nil {
		return CreateResult{}, err
	}

	// Lookup and insert are not serialized: two concurrent creates with the
	// same original title can both insert, since storage does not enforce it.
	existing, err := uc.r.FindByOriginalTitle(ctx, m.OriginalTitle)
	if err == nil {
		uc.logger.Infow("movie already exists", "movie_id", existing.ID, "original_title", m.OriginalTitle)
		return CreateResult{ID: existing.ID, Created: false}, nil
	}
	if !errors.Is(err, ErrMovieNotFound) {
		return CreateResult{}, err
	}

	m.setGenres(in.GenreIDs)
	saved, err := uc.r.Save(ctx, m)
	if err != nil {
		return CreateResult{}, err
	}

	return CreateResult{ID: saved.ID, Created: true}, nil
}

func (uc *Usecase) UpdateMovie(ctx context.Context, pathID int64, in UpdateInput) error {
	if pathID != in.ID {
		return ErrIDMismatch(pathID, in.ID)
	}

	m, err := uc.r.FindByID(ctx, pathID)
	if err != nil {
		return err
	}

	m.apply(in.Attributes)
	if err := m.Validate(); err != nil {
		return err
	}
	if in.GenreIDs != nil {
		m.setGenres(in.GenreIDs)
	}

	_, err = uc.r.Save(ctx, m)
	return err
}

func (uc *Usecase) DeleteMovie(ctx context.Context, id int64) (DeleteOutcome, error) {
	err := uc.r.DeleteByID(ctx, id)
	switch {
	case err == nil:
		return Deleted, nil
	case errors.Is(err, ErrMovieNotFound):
		return NotFound, nil
	}

	uc.logger.Errorw("cannot delete movie", "movie_id", id, "error", err)
	return StorageError, err
}
