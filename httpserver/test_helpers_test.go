package httpserver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"moviecatalog/httpserver"
	"moviecatalog/pkg/config"
	"moviecatalog/pkg/jwt"
	"moviecatalog/profile"

	"github.com/stretchr/testify/require"
)

const testJWTSecret = "test-jwt-secret"

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Auth.JWTSecret = testJWTSecret
	return cfg
}

func signTestToken(t testing.TB, role string) string {
	t.Helper()
	token, err := jwt.NewJWTProvider(testJWTSecret, time.Hour).GenerateAccessToken("tester", role)
	require.NoError(t, err)
	return token
}

// unavailableProfiles fails every lookup.
type unavailableProfiles struct{}

func (unavailableProfiles) FetchProfile(context.Context, int64) (profile.Profile, error) {
	return profile.Profile{}, profile.ErrUnavailable
}

func doJSON(server *httpserver.Server, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Router.ServeHTTP(rec, req)
	return rec
}

func decodeAPIResponse(t testing.TB, rec *httptest.ResponseRecorder) httpserver.APIResponse {
	t.Helper()
	var resp httpserver.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return resp
}

func decodeResult(t testing.TB, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	var resp struct {
		Result json.RawMessage `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	require.NoError(t, json.Unmarshal(resp.Result, out))
}

