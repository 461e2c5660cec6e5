package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	defaultBaseURL = "https://v3.football.api-sports.io"
	fixturesPath   = "/fixtures"

	// The free API-Football tier allows 10 requests/minute. Stay under it
	// so a burst of open-bet lookups never trips the quota.
	defaultRequestsPerMinute = 8
)

// APIFootballOptions parameterise the upstream client.
type APIFootballOptions struct {
	BaseURL           string
	APIKey            string
	Timezone          string
	Timeout           time.Duration
	RequestsPerMinute int
}

// APIFootball talks to the api-sports.io fixtures endpoint with client-side
// rate limiting.
type APIFootball struct {
	opts    APIFootballOptions
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
	logger  zerolog.Logger
}

// NewAPIFootball constructs the fixtures client.
func NewAPIFootball(opts APIFootballOptions, logger zerolog.Logger) *APIFootball {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 25 * time.Second
	}

	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	rpm := opts.RequestsPerMinute
	if rpm <= 0 {
		rpm = defaultRequestsPerMinute
	}

	return &APIFootball{
		opts:    opts,
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(float64(rpm)/60.0), 2),
		logger:  logger.With().Str("component", "apifootball").Logger(),
	}
}

// FixturesByDate lists fixtures for a local calendar day.
func (c *APIFootball) FixturesByDate(ctx context.Context, date string) ([]Fixture, error) {
	params := url.Values{}
	params.Set("date", date)
	if c.opts.Timezone != "" {
		params.Set("timezone", c.opts.Timezone)
	}
	return c.fixtures(ctx, params)
}

// LiveFixtures lists every fixture currently in play.
func (c *APIFootball) LiveFixtures(ctx context.Context) ([]Fixture, error) {
	params := url.Values{}
	params.Set("live", "all")
	return c.fixtures(ctx, params)
}

// FixtureByID fetches a single fixture; nil when the upstream has no record.
func (c *APIFootball) FixtureByID(ctx context.Context, id int64) (*Fixture, error) {
	params := url.Values{}
	params.Set("id", strconv.FormatInt(id, 10))

	fixtures, err := c.fixtures(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(fixtures) == 0 {
		return nil, nil
	}
	return &fixtures[0], nil
}

type fixturesEnvelope struct {
	Response []Fixture       `json:"response"`
	Errors   json.RawMessage `json:"errors"`
}

func (c *APIFootball) fixtures(ctx context.Context, params url.Values) ([]Fixture, error) {
	if c.opts.APIKey == "" {
		return nil, errors.New("api key not configured")
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	endpoint := c.baseURL + fixturesPath + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("x-apisports-key", c.opts.APIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fixtures request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		return nil, parseHTTPError(resp.StatusCode, payload)
	}

	var env fixturesEnvelope
	if err := json.Unmarshal(payload, &env); err != nil {
		return nil, fmt.Errorf("decode fixtures response: %w", err)
	}

	// The API reports quota and parameter problems as a 200 with a
	// populated errors object.
	if apiErr := decodeAPIErrors(env.Errors); apiErr != "" {
		c.logger.Warn().Str("reason", apiErr).Msg("api reported an error")
		return nil, fmt.Errorf("api-football error: %s", apiErr)
	}

	c.logger.Debug().Int("fixtures", len(env.Response)).Msg("fixtures fetched")

	return env.Response, nil
}

func decodeAPIErrors(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var asMap map[string]string
	if err := json.Unmarshal(raw, &asMap); err == nil && len(asMap) > 0 {
		parts := make([]string, 0, len(asMap))
		for k, v := range asMap {
			parts = append(parts, fmt.Sprintf("%s: %s", k, v))
		}
		return strings.Join(parts, "; ")
	}
	return ""
}

func parseHTTPError(status int, payload []byte) error {
	var apiErr struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(payload, &apiErr); err == nil && apiErr.Message != "" {
		return fmt.Errorf("api-football error (%d): %s", status, apiErr.Message)
	}
	if len(payload) > 0 {
		return fmt.Errorf("api-football error (%d): %s", status, strings.TrimSpace(string(payload)))
	}
	return fmt.Errorf("api-football error (%d)", status)
}

var _ FixtureProvider = (*APIFootball)(nil)
