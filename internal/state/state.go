// Package state persists the process state document and the result ledger.
// Field names and file layout match the historical on-disk format so an
// existing data directory keeps working across upgrades.
package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

const (
	// DateLayout stamps calendar days in local time.
	DateLayout = "2006-01-02"
	// TimeLayout stamps emission and settlement instants.
	TimeLayout = "2006-01-02 15:04:05"
)

func init() {
	// The prior format wrote lines as bare JSON numbers (2.5, not "2.5").
	decimal.MarshalJSONWithoutQuotes = true
}

// PlanEntry is one qualifying fixture in the day's 24-hour plan.
type PlanEntry struct {
	FixtureID int64  `json:"fixture_id"`
	StartISO  string `json:"start_iso"`
	League    string `json:"league"`
	Country   string `json:"country"`
	Home      string `json:"home"`
	Away      string `json:"away"`
}

// Kickoff parses the stored ISO-8601 start time.
func (e PlanEntry) Kickoff() (time.Time, error) {
	return time.Parse(time.RFC3339, e.StartISO)
}

// OpenBet is an emitted signal being tracked until its match finishes.
type OpenBet struct {
	BetID     string           `json:"bet_id"`
	Time      string           `json:"time"`
	FixtureID int64            `json:"fixture_id"`
	League    string           `json:"league"`
	Country   string           `json:"country"`
	Home      string           `json:"home"`
	Away      string           `json:"away"`
	Minute    int              `json:"minute"`
	Score     string           `json:"score"`
	BetType   strategy.BetType `json:"bet_type"`
	Line      decimal.Decimal  `json:"line"`
	Notes     string           `json:"notes"`
}

// Document is the aggregate persisted state: emission counters, open bets,
// daily counters, and the current plan.
type Document struct {
	SentPerMatch     map[string]int     `json:"sent_per_match"`
	OpenBets         map[string]OpenBet `json:"open_bets"`
	SignalsToday     int                `json:"signals_today"`
	SignalsTodayDate string             `json:"signals_today_date"`
	PlanDate         string             `json:"plan_date"`
	Plan             []PlanEntry        `json:"plan"`
}

// NewDocument returns the default state for a fresh data directory.
func NewDocument(now time.Time) *Document {
	return &Document{
		SentPerMatch:     map[string]int{},
		OpenBets:         map[string]OpenBet{},
		SignalsToday:     0,
		SignalsTodayDate: now.Format(DateLayout),
		PlanDate:         "",
		Plan:             []PlanEntry{},
	}
}

// ResetDailyIfNeeded zeroes the daily signal counter when the calendar day
// rolled over. Returns true when a reset happened and the document needs
// saving.
func (d *Document) ResetDailyIfNeeded(today string) bool {
	if d.SignalsTodayDate == today {
		return false
	}
	d.SignalsTodayDate = today
	d.SignalsToday = 0
	return true
}

// Store reads and writes the state document as a single JSON file.
type Store struct {
	path string
}

// NewStore builds a store rooted at the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the document, returning the default state when the file does
// not exist yet.
func (s *Store) Load(now time.Time) (*Document, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewDocument(now), nil
		}
		return nil, fmt.Errorf("read state file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode state file: %w", err)
	}

	if doc.SentPerMatch == nil {
		doc.SentPerMatch = map[string]int{}
	}
	if doc.OpenBets == nil {
		doc.OpenBets = map[string]OpenBet{}
	}
	if doc.Plan == nil {
		doc.Plan = []PlanEntry{}
	}

	return &doc, nil
}

// Save writes the document via a temp file and rename so a crash mid-write
// never leaves a truncated state file behind.
func (s *Store) Save(doc *Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	dir := filepath.Dir(s.path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
