package sentry

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	sentrygo "github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

func TestSentry_Builder(t *testing.T) {
	e := echo.New()
	ctx := e.NewContext(nil, nil)
	err := errors.New("movie store unreachable")
	extras := map[string]interface{}{"movie_id": int64(42)}
	tags := map[string]string{"component": "movie"}
	values := map[string]sentrygo.Context{"movie": {"id": 42}}

	s := new(Sentry).
		WithContext(ctx).
		WithError(err).
		WithMessage("delete failed").
		WithLevel(sentrygo.LevelError).
		WithExtras(extras).
		WithTags(tags).
		WithContextValues(values)

	assert.Equal(t, ctx, s.context)
	assert.Equal(t, err, s.error)
	assert.Equal(t, "delete failed", s.message)
	assert.Equal(t, sentrygo.LevelError, s.level)
	assert.Equal(t, extras, s.extras)
	assert.Equal(t, tags, s.tags)
	assert.Equal(t, values, s.contextValues)
}

func TestSentry_Enabled(t *testing.T) {
	tests := []struct {
		name   string
		appEnv string
		dsn    string
		want   bool
	}{
		{name: "local env never sends", appEnv: "local", dsn: "https://public@sentry.example.com/1", want: false},
		{name: "empty dsn never sends", appEnv: "production", dsn: "", want: false},
		{name: "production with dsn sends", appEnv: "production", dsn: "https://public@sentry.example.com/1", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("APP_ENV", tt.appEnv)
			t.Setenv("SENTRY_DSN", tt.dsn)

			assert.Equal(t, tt.want, enabled())
		})
	}
}

func TestSentry_LevelHelpersDoNotPanicWhenDisabled(t *testing.T) {
	t.Setenv("APP_ENV", "local")
	original := FlushTime
	FlushTime = 0
	defer func() { FlushTime = original }()

	assert.NotPanics(t, func() {
		Debugf("listing %d movies", 3)
		Infof("movie %d created", 1)
		Warningf("profile enrichment failed for %d", 7)
		Error(errors.New("storage error"))
		Errorf("cannot save movie %q", "Alien")
		Fatal(errors.New("fatal"))
		Fatalf("fatal: %s", "store")
	})
}

func TestSentry_SendsWhenConfigured(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("SENTRY_DSN", "https://public@sentry.example.com/1")

	err := sentrygo.Init(sentrygo.ClientOptions{Dsn: "https://public@sentry.example.com/1"})
	assert.NoError(t, err)
	defer sentrygo.Flush(0)

	e := echo.New()
	rec := httptest.NewRecorder()
	rec.Header().Set(echo.HeaderXRequestID, "req-1")
	ctx := e.NewContext(httptest.NewRequest(http.MethodGet, "/movie/1", nil), rec)

	assert.NotPanics(t, func() {
		WithContext(ctx).WithTags(map[string]string{"route": "/movie/:id"}).Error(errors.New("boom"))
		WithExtras(map[string]interface{}{"movie_id": 1}).Warning("profile enrichment failed")
	})
}

func TestSentry_GetHub(t *testing.T) {
	t.Run("falls back to current hub without context", func(t *testing.T) {
		assert.Equal(t, sentrygo.CurrentHub(), new(Sentry).getHub())
	})

	t.Run("prefers hub stored on the echo context", func(t *testing.T) {
		e := echo.New()
		ctx := e.NewContext(nil, nil)
		hub := sentrygo.CurrentHub().Clone()
		ctx.Set("sentry", hub)

		assert.Same(t, hub, WithContext(ctx).getHub())
	})
}

func TestSentry_ConfigScope(t *testing.T) {
	s := new(Sentry)
	s.level = sentrygo.LevelWarning
	s.extras = map[string]interface{}{"movie_id": 1}
	s.tags = map[string]string{"env": "test"}
	s.contextValues = map[string]sentrygo.Context{"profile": {}}

	scope := sentrygo.NewScope()
	assert.NotPanics(t, func() { s.configScope(scope) })
}
