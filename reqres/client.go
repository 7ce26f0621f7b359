// Package reqres fetches user profiles from a reqres.in compatible service.
package reqres

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"moviecatalog/profile"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL = "https://reqres.in/api/users/"
	DefaultSource  = "Desktop"

	headerRequestSource = "X-Request-Source"
	headerCorrelationID = "X-Correlation-ID"
	headerAPIKey        = "x-api-key"

	maxBodyBytes = 1 << 20
)

type Options struct {
	// BaseURL is joined with the numeric id on every call.
	BaseURL string
	Source  string
	APIKey  string
	Timeout time.Duration
}

// Client is safe for concurrent use. It keeps one pooled http.Client and
// targets a different URL on every call.
type Client struct {
	http    *http.Client
	baseURL string
	source  string
	apiKey  string
}

type envelope struct {
	Data *profile.Profile `json:"data"`
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	source := opts.Source
	if source == "" {
		source = DefaultSource
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.MaxIdleConnsPerHost = 10

	return &Client{
		http: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		baseURL: baseURL,
		source:  source,
		apiKey:  opts.APIKey,
	}
}

// FetchProfile implements [movie.ProfileFetcher].
func (c *Client) FetchProfile(ctx context.Context, id int64) (profile.Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+strconv.FormatInt(id, 10), nil)
	if err != nil {
		return profile.Profile{}, unavailable(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerRequestSource, c.source)
	req.Header.Set(headerCorrelationID, uuid.NewString())
	if c.apiKey != "" {
		req.Header.Set(headerAPIKey, c.apiKey)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return profile.Profile{}, unavailable(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return profile.Profile{}, profile.ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return profile.Profile{}, unavailable(fmt.Errorf("unexpected status: %s", resp.Status))
	}

	var body envelope
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&body); err != nil {
		return profile.Profile{}, unavailable(fmt.Errorf("decode profile: %w", err))
	}
	if body.Data == nil {
		return profile.Profile{}, unavailable(fmt.Errorf("decode profile: missing data"))
	}

	return *body.Data, nil
}

// unavailable wraps cause so both profile.ErrUnavailable and the cause match errors.Is.
func unavailable(cause error) error {
	return fmt.Errorf("%w: %w", profile.ErrUnavailable, cause)
}
