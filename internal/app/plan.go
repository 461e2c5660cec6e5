package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/olekukonko/tablewriter"

	"github.com/sergo9723/footbal-plan-bot/internal/planner"
)

// Plan builds the 24-hour plan and prints it, without touching persisted
// state or sending any notification.
func (a *App) Plan(ctx context.Context) error {
	if err := a.Config.RequireAPIKey(); err != nil {
		return err
	}

	loc, err := a.location()
	if err != nil {
		return err
	}

	plan, err := planner.Build(ctx, a.newProvider(), time.Now().In(loc))
	if err != nil {
		return err
	}

	if len(plan) == 0 {
		fmt.Println("No Top-5 or UEFA matches in the next 24 hours.")
		return nil
	}

	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Kickoff", "Home", "Away", "League", "Country", "Fixture")

	for _, entry := range plan {
		label := entry.StartISO
		if kickoff, err := entry.Kickoff(); err == nil {
			label = kickoff.Format("02.01 15:04")
		}
		table.Append(label, entry.Home, entry.Away, entry.League, entry.Country, fmt.Sprintf("%d", entry.FixtureID))
	}

	table.Render()
	return nil
}
