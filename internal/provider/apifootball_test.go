package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFixture = `{
	"fixture": {
		"id": 1035043,
		"date": "2025-08-29T21:45:00+03:00",
		"status": {"short": "2H", "elapsed": 81}
	},
	"league": {"name": "Premier League", "country": "England"},
	"teams": {"home": {"name": "Arsenal"}, "away": {"name": "Chelsea"}},
	"goals": {"home": 1, "away": 1}
}`

func newClient(t *testing.T, handler http.HandlerFunc) *APIFootball {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewAPIFootball(APIFootballOptions{
		BaseURL:           srv.URL,
		APIKey:            "test-key",
		Timezone:          "Europe/Chisinau",
		Timeout:           time.Second,
		RequestsPerMinute: 6000,
	}, zerolog.Nop())
}

func TestFixturesByDate(t *testing.T) {
	var gotKey, gotDate, gotTZ string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-apisports-key")
		gotDate = r.URL.Query().Get("date")
		gotTZ = r.URL.Query().Get("timezone")
		w.Write([]byte(`{"errors": {}, "response": [` + sampleFixture + `]}`))
	})

	fixtures, err := c.FixturesByDate(context.Background(), "2025-08-29")
	require.NoError(t, err)
	require.Len(t, fixtures, 1)

	assert.Equal(t, "test-key", gotKey)
	assert.Equal(t, "2025-08-29", gotDate)
	assert.Equal(t, "Europe/Chisinau", gotTZ)

	fx := fixtures[0]
	assert.Equal(t, int64(1035043), fx.Meta.ID)
	assert.Equal(t, "Premier League", fx.League.Name)
	assert.Equal(t, "Arsenal", fx.Teams.Home.Name)
	assert.Equal(t, 81, fx.Minute())

	h, a, total := fx.Score()
	assert.Equal(t, 1, h)
	assert.Equal(t, 1, a)
	assert.Equal(t, 2, total)

	kickoff, err := fx.Kickoff()
	require.NoError(t, err)
	assert.Equal(t, 2025, kickoff.Year())
}

func TestLiveFixturesQuery(t *testing.T) {
	var gotLive string
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLive = r.URL.Query().Get("live")
		w.Write([]byte(`{"response": []}`))
	})

	fixtures, err := c.LiveFixtures(context.Background())
	require.NoError(t, err)
	assert.Empty(t, fixtures)
	assert.Equal(t, "all", gotLive)
}

func TestFixtureByIDNotFound(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"response": []}`))
	})

	fx, err := c.FixtureByID(context.Background(), 42)
	require.NoError(t, err)
	assert.Nil(t, fx)
}

func TestFixturesAPIErrorObject(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"errors":   map[string]string{"requests": "daily quota reached"},
			"response": []any{},
		})
	})

	_, err := c.LiveFixtures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "daily quota reached")
}

func TestFixturesHTTPError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"message": "slow down"}`))
	})

	_, err := c.LiveFixtures(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
}

func TestFixturesMissingAPIKey(t *testing.T) {
	c := NewAPIFootball(APIFootballOptions{}, zerolog.Nop())
	_, err := c.LiveFixtures(context.Background())
	require.Error(t, err)
}

func TestFinished(t *testing.T) {
	for _, s := range []string{"FT", "AET", "PEN"} {
		assert.True(t, Finished(s), s)
	}
	for _, s := range []string{"1H", "2H", "HT", "NS", "PST", ""} {
		assert.False(t, Finished(s), s)
	}
}

func TestScoreNilGoals(t *testing.T) {
	var fx Fixture
	h, a, total := fx.Score()
	assert.Zero(t, h)
	assert.Zero(t, a)
	assert.Zero(t, total)
	assert.Zero(t, fx.Minute())
}
