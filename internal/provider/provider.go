package provider

import (
	"context"
	"time"
)

// FixtureProvider is the upstream sports-data dependency of the core loop.
type FixtureProvider interface {
	// FixturesByDate returns all fixtures scheduled on a local calendar day
	// (YYYY-MM-DD).
	FixturesByDate(ctx context.Context, date string) ([]Fixture, error)
	// LiveFixtures returns every fixture currently in play, any competition.
	LiveFixtures(ctx context.Context) ([]Fixture, error)
	// FixtureByID returns a single fixture, or nil when the upstream does
	// not know it.
	FixtureByID(ctx context.Context, id int64) (*Fixture, error)
}

// Fixture mirrors the relevant slice of the API-Football v3 fixture record.
type Fixture struct {
	Meta   FixtureMeta `json:"fixture"`
	League LeagueInfo  `json:"league"`
	Teams  TeamPair    `json:"teams"`
	Goals  GoalPair    `json:"goals"`
}

// FixtureMeta carries identity, timing, and in-play status.
type FixtureMeta struct {
	ID     int64         `json:"id"`
	Date   string        `json:"date"`
	Status FixtureStatus `json:"status"`
}

// FixtureStatus holds the short status code and the elapsed minute.
// Elapsed is null upstream before kickoff.
type FixtureStatus struct {
	Short   string `json:"short"`
	Elapsed *int   `json:"elapsed"`
}

// LeagueInfo names the competition.
type LeagueInfo struct {
	Name    string `json:"name"`
	Country string `json:"country"`
}

// TeamPair names both sides.
type TeamPair struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

// Team is a single side of a fixture.
type Team struct {
	Name string `json:"name"`
}

// GoalPair is the current score. Both counts are null upstream until the
// match starts.
type GoalPair struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Score returns home goals, away goals, and their sum, treating missing
// counts as zero.
func (f Fixture) Score() (home, away, total int) {
	if f.Goals.Home != nil {
		home = *f.Goals.Home
	}
	if f.Goals.Away != nil {
		away = *f.Goals.Away
	}
	return home, away, home + away
}

// Minute returns the elapsed match minute, zero when unknown.
func (f Fixture) Minute() int {
	if f.Meta.Status.Elapsed == nil {
		return 0
	}
	return *f.Meta.Status.Elapsed
}

// Kickoff parses the fixture's scheduled start, which the upstream reports
// as ISO-8601 with a zone offset.
func (f Fixture) Kickoff() (time.Time, error) {
	return time.Parse(time.RFC3339, f.Meta.Date)
}

var finishedStatuses = map[string]struct{}{
	"FT":  {}, // full time
	"AET": {}, // after extra time
	"PEN": {}, // decided on penalties
}

// Finished reports whether a short status code marks a completed match.
func Finished(short string) bool {
	_, ok := finishedStatuses[short]
	return ok
}
