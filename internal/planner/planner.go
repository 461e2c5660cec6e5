// Package planner builds the rolling 24-hour match plan once per day.
package planner

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sergo9723/footbal-plan-bot/internal/competition"
	"github.com/sergo9723/footbal-plan-bot/internal/provider"
	"github.com/sergo9723/footbal-plan-bot/internal/state"
)

// maxSummaryEntries bounds how many fixtures the plan notification lists.
const maxSummaryEntries = 25

// Build queries today's and tomorrow's fixtures, keeps the target
// competitions whose kickoff lies within [now, now+24h], and returns them
// ordered by kickoff time. Fixtures without a parseable kickoff or a
// positive id are dropped.
func Build(ctx context.Context, p provider.FixtureProvider, now time.Time) ([]state.PlanEntry, error) {
	today := now.Format(state.DateLayout)
	tomorrow := now.Add(24 * time.Hour).Format(state.DateLayout)

	var fixtures []provider.Fixture
	for _, date := range []string{today, tomorrow} {
		batch, err := p.FixturesByDate(ctx, date)
		if err != nil {
			return nil, fmt.Errorf("fixtures for %s: %w", date, err)
		}
		fixtures = append(fixtures, batch...)
	}

	horizon := now.Add(24 * time.Hour)
	plan := make([]state.PlanEntry, 0, len(fixtures))
	for _, fx := range fixtures {
		if !competition.IsTarget(fx.League.Name, fx.League.Country) {
			continue
		}

		kickoff, err := fx.Kickoff()
		if err != nil {
			continue
		}
		if kickoff.Before(now) || kickoff.After(horizon) {
			continue
		}

		if fx.Meta.ID <= 0 {
			continue
		}

		plan = append(plan, state.PlanEntry{
			FixtureID: fx.Meta.ID,
			StartISO:  kickoff.Format(time.RFC3339),
			League:    fx.League.Name,
			Country:   fx.League.Country,
			Home:      fx.Teams.Home.Name,
			Away:      fx.Teams.Away.Name,
		})
	}

	sort.SliceStable(plan, func(i, j int) bool {
		ki, _ := plan[i].Kickoff()
		kj, _ := plan[j].Kickoff()
		return ki.Before(kj)
	})

	return plan, nil
}

// SummaryMessage renders the plan notification: up to 25 entries with local
// kickoff time, teams, and league, plus a truncation trailer when more
// remain. An empty plan gets an explicit no-matches message.
func SummaryMessage(plan []state.PlanEntry) string {
	if len(plan) == 0 {
		return "24h plan: no Top-5 or UEFA matches found."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "24h plan (Top-5 + UEFA): %d match(es)\n", len(plan))

	shown := plan
	if len(shown) > maxSummaryEntries {
		shown = shown[:maxSummaryEntries]
	}
	for _, entry := range shown {
		label := entry.StartISO
		if kickoff, err := entry.Kickoff(); err == nil {
			label = kickoff.Format("02.01 15:04")
		}
		fmt.Fprintf(&b, "\n- %s  %s vs %s (%s)", label, entry.Home, entry.Away, entry.League)
	}

	if rest := len(plan) - maxSummaryEntries; rest > 0 {
		fmt.Fprintf(&b, "\n\n...and %d more match(es)", rest)
	}

	return b.String()
}
