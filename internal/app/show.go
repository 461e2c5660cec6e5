package app

import (
	"context"
	"fmt"
	"os"

	"github.com/olekukonko/tablewriter"

	"github.com/sergo9723/footbal-plan-bot/internal/state"
	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

// Show prints the most recent settled bets from the ledger.
func (a *App) Show(_ context.Context, opts ShowOptions) error {
	records, err := state.NewLedger(a.Config.Files.LedgerPath()).ReadAll()
	if err != nil {
		return err
	}

	if len(records) == 0 {
		fmt.Println("No settled bets recorded yet.")
		return nil
	}

	if opts.Limit > 0 && len(records) > opts.Limit {
		records = records[len(records)-opts.Limit:]
	}

	wins, losses := 0, 0
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("Time", "Match", "League", "Min", "Score", "Bet", "Line", "Result")

	for _, rec := range records {
		switch rec.Result {
		case strategy.ResultWin:
			wins++
		case strategy.ResultLose:
			losses++
		}
		table.Append(
			rec.Time,
			fmt.Sprintf("%s vs %s", rec.Home, rec.Away),
			rec.League,
			fmt.Sprintf("%d'", rec.Minute),
			rec.Score,
			string(rec.BetType),
			rec.Line.String(),
			string(rec.Result),
		)
	}

	table.Render()
	fmt.Printf("\n%d shown: %d WIN / %d LOSE\n", len(records), wins, losses)
	return nil
}
