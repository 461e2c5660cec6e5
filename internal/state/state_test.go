package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

func testBet() OpenBet {
	return OpenBet{
		BetID:     "1035043-1756480000",
		Time:      "2025-08-29 21:47:11",
		FixtureID: 1035043,
		League:    "Premier League",
		Country:   "England",
		Home:      "Arsenal",
		Away:      "Chelsea",
		Minute:    81,
		Score:     "1-1",
		BetType:   strategy.BetOver,
		Line:      decimal.RequireFromString("2.5"),
		Notes:     "close score",
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	now := time.Date(2025, 8, 29, 12, 0, 0, 0, time.UTC)

	doc, err := store.Load(now)
	require.NoError(t, err)

	assert.Empty(t, doc.SentPerMatch)
	assert.Empty(t, doc.OpenBets)
	assert.Zero(t, doc.SignalsToday)
	assert.Equal(t, "2025-08-29", doc.SignalsTodayDate)
	assert.Empty(t, doc.PlanDate)
	assert.Empty(t, doc.Plan)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "state.json"))
	now := time.Now()

	doc := NewDocument(now)
	doc.SentPerMatch["1035043"] = 1
	doc.SignalsToday = 3
	doc.PlanDate = "2025-08-29"
	doc.Plan = []PlanEntry{{
		FixtureID: 1035043,
		StartISO:  "2025-08-29T20:00:00+03:00",
		League:    "Premier League",
		Country:   "England",
		Home:      "Arsenal",
		Away:      "Chelsea",
	}}
	bet := testBet()
	doc.OpenBets[bet.BetID] = bet

	require.NoError(t, store.Save(doc))

	loaded, err := store.Load(now)
	require.NoError(t, err)

	assert.Equal(t, doc.SentPerMatch, loaded.SentPerMatch)
	assert.Equal(t, doc.SignalsToday, loaded.SignalsToday)
	assert.Equal(t, doc.PlanDate, loaded.PlanDate)
	assert.Equal(t, doc.Plan, loaded.Plan)

	got := loaded.OpenBets[bet.BetID]
	assert.Equal(t, bet.BetType, got.BetType)
	assert.True(t, bet.Line.Equal(got.Line), "line %s != %s", bet.Line, got.Line)
	assert.Equal(t, bet.FixtureID, got.FixtureID)
}

func TestSavedDocumentKeepsLegacyShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	store := NewStore(path)

	doc := NewDocument(time.Now())
	bet := testBet()
	doc.OpenBets[bet.BetID] = bet
	require.NoError(t, store.Save(doc))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var generic map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &generic))
	for _, key := range []string{"sent_per_match", "open_bets", "signals_today", "signals_today_date", "plan_date", "plan"} {
		assert.Contains(t, generic, key)
	}

	// The line must stay a bare number, as the previous format wrote it.
	assert.Contains(t, string(raw), `"line": 2.5`)
}

func TestLoadLegacyDocument(t *testing.T) {
	// Document shape as written by earlier versions, line as a number.
	legacy := `{
		"sent_per_match": {"1035043": 1},
		"open_bets": {
			"1035043-1756480000": {
				"bet_id": "1035043-1756480000",
				"time": "2025-08-29 21:47:11",
				"fixture_id": 1035043,
				"league": "Premier League",
				"country": "England",
				"home": "Arsenal",
				"away": "Chelsea",
				"minute": 81,
				"score": "1-1",
				"bet_type": "OVER",
				"line": 2.5,
				"notes": "close score"
			}
		},
		"signals_today": 1,
		"signals_today_date": "2025-08-28",
		"plan_date": "2025-08-28",
		"plan": []
	}`

	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte(legacy), 0o644))

	doc, err := NewStore(path).Load(time.Now())
	require.NoError(t, err)

	bet := doc.OpenBets["1035043-1756480000"]
	assert.Equal(t, strategy.BetOver, bet.BetType)
	assert.True(t, bet.Line.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, 1, doc.SentPerMatch["1035043"])
}

func TestResetDailyIfNeeded(t *testing.T) {
	doc := NewDocument(time.Now())
	doc.SignalsTodayDate = "2025-08-28"
	doc.SignalsToday = 7

	assert.True(t, doc.ResetDailyIfNeeded("2025-08-29"))
	assert.Zero(t, doc.SignalsToday)
	assert.Equal(t, "2025-08-29", doc.SignalsTodayDate)

	// Same day again is a no-op.
	doc.SignalsToday = 2
	assert.False(t, doc.ResetDailyIfNeeded("2025-08-29"))
	assert.Equal(t, 2, doc.SignalsToday)
}

func TestLedgerHeaderWrittenOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "signals.csv")
	ledger := NewLedger(path)

	rec := FromOpenBet(testBet(), strategy.ResultWin)
	require.NoError(t, ledger.Append(rec))
	rec.BetID = "1035043-1756480500"
	rec.Result = strategy.ResultLose
	require.NoError(t, ledger.Append(rec))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(string(raw), "bet_id,time,fixture_id"))

	records, err := ledger.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, strategy.ResultWin, records[0].Result)
	assert.Equal(t, strategy.ResultLose, records[1].Result)
	assert.True(t, records[0].Line.Equal(decimal.RequireFromString("2.5")))
	assert.Equal(t, int64(1035043), records[0].FixtureID)
}

func TestLedgerReadAllMissingFile(t *testing.T) {
	records, err := NewLedger(filepath.Join(t.TempDir(), "none.csv")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, records)
}
