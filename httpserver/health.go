package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) RegisterHealthRoutes() {
	s.Router.GET("/healthcheck", s.healthCheck)
}

// healthCheck godoc
// @Summary Health Check
// @Description Report whether the server is alive and the movie service is wired
// @Tags health
// @Success 200 {object} map[string]string
// @Router /healthcheck [get]
func (s *Server) healthCheck(c echo.Context) error {
	movies := "OK"
	if s.MovieService == nil {
		movies = "not_configured"
	}
	return writeSuccess(c, http.StatusOK, map[string]string{
		"status": "OK",
		"movies": movies,
	})
}
