package state

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

// ResultRecord is one settled bet in the append-only ledger.
type ResultRecord struct {
	BetID     string
	Time      string
	FixtureID int64
	League    string
	Country   string
	Home      string
	Away      string
	Minute    int
	Score     string
	BetType   strategy.BetType
	Line      decimal.Decimal
	Notes     string
	Result    strategy.Result
}

// FromOpenBet builds the ledger row for a bet that just settled.
func FromOpenBet(bet OpenBet, result strategy.Result) ResultRecord {
	return ResultRecord{
		BetID:     bet.BetID,
		Time:      bet.Time,
		FixtureID: bet.FixtureID,
		League:    bet.League,
		Country:   bet.Country,
		Home:      bet.Home,
		Away:      bet.Away,
		Minute:    bet.Minute,
		Score:     bet.Score,
		BetType:   bet.BetType,
		Line:      bet.Line,
		Notes:     bet.Notes,
		Result:    result,
	}
}

// ledgerHeader fixes the historical column order.
var ledgerHeader = []string{
	"bet_id", "time", "fixture_id", "league", "country",
	"home", "away", "minute", "score",
	"bet_type", "line", "notes", "result",
}

// Ledger appends settled bets to a CSV file, writing the header once on
// first use.
type Ledger struct {
	path string
}

// NewLedger builds a ledger rooted at the given file path.
func NewLedger(path string) *Ledger {
	return &Ledger{path: path}
}

// Append adds one result row, creating the file with a header if needed.
func (l *Ledger) Append(rec ResultRecord) error {
	writeHeader := false
	if _, err := os.Stat(l.path); errors.Is(err, fs.ErrNotExist) {
		writeHeader = true
	}

	dir := filepath.Dir(l.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	file, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if writeHeader {
		if err := writer.Write(ledgerHeader); err != nil {
			return fmt.Errorf("write ledger header: %w", err)
		}
	}

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
		return fmt.Errorf("write ledger row: %w", err)
	}

	writer.Flush()
	return writer.Error()
}

// ReadAll loads every settled bet from the ledger in file order. A missing
// file yields an empty slice.
func (l *Ledger) ReadAll() ([]ResultRecord, error) {
	file, err := os.Open(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}

	records := make([]ResultRecord, 0, len(rows))
	for i, row := range rows {
		if i == 0 || len(row) != len(ledgerHeader) {
			continue
		}

		fixtureID, _ := strconv.ParseInt(row[2], 10, 64)
		minute, _ := strconv.Atoi(row[7])
		line, err := decimal.NewFromString(row[10])
		if err != nil {
			continue
		}

		records = append(records, ResultRecord{
			BetID:     row[0],
			Time:      row[1],
			FixtureID: fixtureID,
			League:    row[3],
			Country:   row[4],
			Home:      row[5],
			Away:      row[6],
			Minute:    minute,
			Score:     row[8],
			BetType:   strategy.BetType(row[9]),
			Line:      line,
			Notes:     row[11],
			Result:    strategy.Result(row[12]),
		})
	}

	return records, nil
}
