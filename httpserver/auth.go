package httpserver

import (
	"moviecatalog/errs"
	"moviecatalog/pkg/jwt"

	gojwt "github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
)

const claimsContextKey = "user"

var (
	errMissingToken = errs.Errorf(errs.EUNAUTHORIZED, "missing or invalid access token")
	errAdminOnly    = errs.Errorf(errs.EFORBIDDEN, "admin role required")
)

// authenticate verifies an HS256 bearer token and stores its claims in the context.
func (s *Server) authenticate() echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:    []byte(s.JWTSecret),
		SigningMethod: "HS256",
		ContextKey:    claimsContextKey,
		NewClaimsFunc: func(c echo.Context) gojwt.Claims {
			return new(jwt.Claims)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return errMissingToken
		},
	})
}

// requireRole rejects authenticated callers whose token lacks the role.
func requireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get(claimsContextKey).(*gojwt.Token)
			if !ok {
				return errMissingToken
			}
			claims, ok := token.Claims.(*jwt.Claims)
			if !ok {
				return errMissingToken
			}
			if claims.Role != role {
				return errAdminOnly
			}
			return next(c)
		}
	}
}
