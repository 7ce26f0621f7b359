package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/pkg/jwt"
	"moviecatalog/pkg/sentry"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterMovieRoutes() {
	g := s.Router.Group("/movie")
	g.GET("", s.handleListMovies)
	g.POST("", s.handleCreateMovie)
	g.GET("/:id", s.handleGetMovie)
	g.PUT("/:id", s.handleUpdateMovie)
	g.DELETE("/:id", s.handleDeleteMovie, s.authenticate(), requireRole(jwt.RoleAdmin))
}

func (s *Server) movieService() (movie.Service, error) {
	if s.MovieService == nil {
		return nil, errs.Errorf(errs.ENOTIMPLEMENTED, "movie service not configured")
	}
	return s.MovieService, nil
}

func parseMovieID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, movie.ErrInvalidID
	}
	return id, nil
}

// handleListMovies godoc
// @Summary List Movies
// @Description Get every movie in the catalog
// @Tags movies
// @Produce json
// @Success 200 {array} MovieResponse
// @Failure 500 {object} APIResponse
// @Router /movie [get]
func (s *Server) handleListMovies(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	movies, err := svc.ListMovies(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newMovieResponses(movies))
}

// handleGetMovie godoc
// @Summary Get Movie
// @Description Get a movie by id
// @Tags movies
// @Produce json
// @Param id path int true "Movie ID"
// @Success 200 {object} MovieResponse
// @Failure 400 {object} APIResponse
// @Failure 404 "movie not found, empty body"
// @Router /movie/{id} [get]
func (s *Server) handleGetMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	m, err := svc.GetMovie(c.Request().Context(), id)
	if errors.Is(err, movie.ErrMovieNotFound) {
		return c.NoContent(http.StatusNotFound)
	}
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, newMovieResponse(m))
}

// handleCreateMovie godoc
// @Summary Create Movie
// @Description Add a movie. A movie with the same original title is returned instead of being duplicated.
// @Tags movies
// @Accept json
// @Produce json
// @Param movie body CreateMovieRequest true "Movie Data"
// @Success 201 {object} movie.CreateResult
// @Failure 400 {object} APIResponse
// @Router /movie [post]
func (s *Server) handleCreateMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}

	var req CreateMovieRequest
	if err := c.Bind(&req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	res, err := svc.CreateMovie(c.Request().Context(), req.ToInput())
	if err != nil {
		return err
	}

	return writeSuccess(c, http.StatusCreated, res)
}

// handleUpdateMovie godoc
// @Summary Update Movie
// @Description Replace the attributes of a movie. The body id must match the path id.
// @Tags movies
// @Accept json
// @Param id path int true "Movie ID"
// @Param movie body UpdateMovieRequest true "Movie Data"
// @Success 204
// @Failure 400 {object} APIResponse
// @Failure 404 {object} APIResponse
// @Router /movie/{id} [put]
func (s *Server) handleUpdateMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	var req UpdateMovieRequest
	if err := (&echo.DefaultBinder{}).BindBody(c, &req); err != nil {
		return errs.Errorf(errs.EINVALID, "invalid request body")
	}
	if req.ID != 0 && req.ID != id {
		return movie.ErrIDMismatch(id, req.ID)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := svc.UpdateMovie(c.Request().Context(), id, req.ToInput()); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// handleDeleteMovie godoc
// @Summary Delete Movie
// @Description Delete a movie and its genre associations. Requires an admin token.
// @Tags movies
// @Param id path int true "Movie ID"
// @Security BearerAuth
// @Success 200
// @Failure 401 {object} APIResponse
// @Failure 403 {object} APIResponse
// @Failure 404 "movie not found, empty body"
// @Failure 500 "storage error, empty body"
// @Router /movie/{id} [delete]
func (s *Server) handleDeleteMovie(c echo.Context) error {
	svc, err := s.movieService()
	if err != nil {
		return err
	}
	id, err := parseMovieID(c)
	if err != nil {
		return err
	}

	outcome, err := svc.DeleteMovie(c.Request().Context(), id)
	switch outcome {
	case movie.Deleted:
		return c.NoContent(http.StatusOK)
	case movie.NotFound:
		return c.NoContent(http.StatusNotFound)
	default:
		s.Logger.Errorw("delete movie failed", "movie_id", id, "outcome", outcome.String(), "error", err)
		sentry.WithContext(c).
			WithExtras(map[string]interface{}{"movie_id": id}).
			Errorf("delete movie %d: %v", id, err)
		return c.NoContent(http.StatusInternalServerError)
	}
}
