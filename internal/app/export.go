package app

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/sergo9723/footbal-plan-bot/internal/state"
	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

// Export writes the settled-bet history as a CSV copy and/or a PNG chart of
// the running WIN-LOSE balance.
func (a *App) Export(_ context.Context, opts ExportOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}

	loc, err := a.location()
	if err != nil {
		return err
	}

	records, err := state.NewLedger(a.Config.Files.LedgerPath()).ReadAll()
	if err != nil {
		return err
	}

	filtered := filterWindow(records, opts.From, opts.To, loc)
	if len(filtered) == 0 {
		a.Logger.Info().Msg("no settled bets in the export window")
		return nil
	}

	a.Logger.Info().Int("total", len(records)).Int("exported", len(filtered)).Msg("exporting results")

	if opts.CSVPath != "" {
		if err := writeResultsCSV(opts.CSVPath, filtered); err != nil {
			return err
		}
	}

	if opts.PNGPath != "" {
		if err := writeBalancePNG(opts.PNGPath, filtered, loc); err != nil {
			return err
		}
	}

	return nil
}

func recordTime(rec state.ResultRecord, loc *time.Location) (time.Time, bool) {
	ts, err := time.ParseInLocation(state.TimeLayout, rec.Time, loc)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

func filterWindow(records []state.ResultRecord, from, to *time.Time, loc *time.Location) []state.ResultRecord {
	out := make([]state.ResultRecord, 0, len(records))
	for _, rec := range records {
		ts, ok := recordTime(rec, loc)
		if !ok {
			continue
		}
		if from != nil && ts.Before(*from) {
			continue
		}
		if to != nil && !ts.Before(*to) {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func writeResultsCSV(path string, records []state.ResultRecord) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"bet_id", "time", "fixture_id", "league", "country", "home", "away", "minute", "score", "bet_type", "line", "notes", "result"}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, rec := range records {
		row := []string{
			rec.BetID,
			rec.Time,
			strconv.FormatInt(rec.FixtureID, 10),
			rec.League,
			rec.Country,
			rec.Home,
			rec.Away,
			strconv.Itoa(rec.Minute),
			rec.Score,
			string(rec.BetType),
			rec.Line.String(),
			rec.Notes,
			string(rec.Result),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func writeBalancePNG(path string, records []state.ResultRecord, loc *time.Location) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]time.Time, 0, len(records))
	balance := make([]float64, 0, len(records))

	running := 0.0
	for _, rec := range records {
		ts, ok := recordTime(rec, loc)
		if !ok {
			continue
		}
		switch rec.Result {
		case strategy.ResultWin:
			running++
		case strategy.ResultLose:
			running--
		}
		x = append(x, ts)
		balance = append(balance, running)
	}

	// go-chart needs at least two points per series.
	if len(x) < 2 {
		return errors.New("not enough settled bets to chart")
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			ValueFormatter: chart.TimeValueFormatter,
		},
		YAxis: chart.YAxis{
			Name: "WIN - LOSE balance",
		},
		Series: []chart.Series{
			chart.TimeSeries{
				Name:    "Balance",
				XValues: x,
				YValues: balance,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
