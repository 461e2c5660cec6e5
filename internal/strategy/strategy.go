package strategy

import (
	"github.com/shopspring/decimal"
)

// BetType is the direction of an emitted total-goals signal.
type BetType string

// Result is the settled outcome of a tracked bet.
type Result string

const (
	BetOver  BetType = "OVER"
	BetUnder BetType = "UNDER"

	ResultWin     Result = "WIN"
	ResultLose    Result = "LOSE"
	ResultUnknown Result = "UNKNOWN"
)

// maxTotalGoals is the exhaustion cutoff: at six or more goals the totals
// market is considered played out and no signal is worth emitting.
const maxTotalGoals = 6

var half = decimal.RequireFromString("0.5")

// Signal is a one-shot betting recommendation for a live fixture.
type Signal struct {
	Type  BetType
	Line  decimal.Decimal
	Notes string
}

// Line returns the half-integer threshold sitting just above the current
// goal total, so the bet is always "will at least one more goal fall".
func Line(total int) decimal.Decimal {
	return decimal.NewFromInt(int64(total)).Add(half)
}

// Pick applies the basic late-game rule to the current score. It is a pure
// function of the two goal counts: a close score (difference of at most
// one) means pressure for another goal, a gap of two or more means teams
// tend to coast. Returns false when the total is already exhausted.
func Pick(home, away int) (Signal, bool) {
	total := home + away
	if total >= maxTotalGoals {
		return Signal{}, false
	}

	diff := home - away
	if diff < 0 {
		diff = -diff
	}

	line := Line(total)
	if diff <= 1 {
		return Signal{
			Type:  BetOver,
			Line:  line,
			Notes: "close score (draw or one-goal gap), pressure for a late goal",
		}, true
	}
	return Signal{
		Type:  BetUnder,
		Line:  line,
		Notes: "gap of 2+ goals, teams tend to coast it out",
	}, true
}

// Outcome settles a bet against the final goal total. The line is always a
// half-integer so equality cannot occur and there is no push case.
func Outcome(finalTotal int, bt BetType, line decimal.Decimal) Result {
	total := decimal.NewFromInt(int64(finalTotal))
	switch bt {
	case BetOver:
		if total.GreaterThan(line) {
			return ResultWin
		}
		return ResultLose
	case BetUnder:
		if total.LessThan(line) {
			return ResultWin
		}
		return ResultLose
	}
	return ResultUnknown
}
