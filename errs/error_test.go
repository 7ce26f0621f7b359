package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"moviecatalog/errs"
	"moviecatalog/movie"
	"moviecatalog/profile"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	assert.Equal(t,
		"application error: code=forbidden message=admin role required",
		errs.Errorf(errs.EFORBIDDEN, "admin role required").Error())
	assert.Equal(t,
		"application error: code=internal message=",
		(&errs.Error{Code: errs.EINTERNAL}).Error())
}

func TestErrorCodeAndMessage(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantCode    string
		wantMessage string
	}{
		{"nil", nil, "", ""},
		{"invalid", errs.Errorf(errs.EINVALID, "title is required"), errs.EINVALID, "title is required"},
		{"forbidden", errs.Errorf(errs.EFORBIDDEN, "admin role required"), errs.EFORBIDDEN, "admin role required"},
		{"unavailable", errs.Errorf(errs.EUNAVAILABLE, "profile service unavailable"), errs.EUNAVAILABLE, "profile service unavailable"},
		{"plain error is internal", errors.New("disk full"), errs.EINTERNAL, "Internal error."},
		{"wrapped once", fmt.Errorf("get movie: %w", movie.ErrMovieNotFound), errs.ENOTFOUND, "movie not found"},
		{"wrapped twice", fmt.Errorf("handler: %w", fmt.Errorf("usecase: %w", movie.ErrIDMismatch(5, 7))),
			errs.EINVALID, "movie: path id 5 does not match body id 7"},
		{"joined with a cause", fmt.Errorf("%w: %w", profile.ErrUnavailable, errors.New("dial tcp: refused")),
			errs.EUNAVAILABLE, errs.ErrorMessage(profile.ErrUnavailable)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, errs.ErrorCode(tt.err))
			assert.Equal(t, tt.wantMessage, errs.ErrorMessage(tt.err))
		})
	}
}

func TestErrorf(t *testing.T) {
	err := errs.Errorf(errs.EUNAVAILABLE, "profile %d: status %d", 12, 502)

	assert.Equal(t, errs.EUNAVAILABLE, err.Code)
	assert.Equal(t, "profile 12: status 502", err.Message)

	var target *errs.Error
	assert.True(t, errors.As(fmt.Errorf("wrap: %w", err), &target))
	assert.Same(t, err, target)
}

func TestErrorCodes(t *testing.T) {
	codes := []struct {
		got, want string
	}{
		{errs.ECONFLICT, "conflict"},
		{errs.EFORBIDDEN, "forbidden"},
		{errs.EINTERNAL, "internal"},
		{errs.EINVALID, "invalid"},
		{errs.ENOTFOUND, "not_found"},
		{errs.ENOTIMPLEMENTED, "not_implemented"},
		{errs.EUNAUTHORIZED, "unauthorized"},
		{errs.EUNAVAILABLE, "unavailable"},
	}

	for _, c := range codes {
		assert.Equal(t, c.want, c.got)
	}
}
