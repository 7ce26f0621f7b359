package httpserver

import echoSwagger "github.com/swaggo/echo-swagger"

// @title Movie Catalog API
// @version 1.0
// @description CRUD over the movie catalog. Deleting requires an admin bearer token.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func (s *Server) RegisterSwaggerRoutes() {
	s.Router.GET("/swagger/*", echoSwagger.WrapHandler)
}
