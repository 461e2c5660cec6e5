package service

import (
	"fmt"
	"strings"

	"github.com/sergo9723/footbal-plan-bot/internal/provider"
	"github.com/sergo9723/footbal-plan-bot/internal/state"
	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

func startupMessage() string {
	return "Bot started: 24h plan mode with smart sleeping."
}

func signalMessage(fx *provider.Fixture, minute int, sig strategy.Signal) string {
	home, away, _ := fx.Score()

	var b strings.Builder
	b.WriteString("LIVE SIGNAL (Top-5 + UEFA)\n")
	fmt.Fprintf(&b, "League: %s (%s)\n", fx.League.Name, fx.League.Country)
	fmt.Fprintf(&b, "Match: %s vs %s\n", fx.Teams.Home.Name, fx.Teams.Away.Name)
	fmt.Fprintf(&b, "Minute: %d' | Score: %d-%d\n\n", minute, home, away)
	b.WriteString("Market: match total (full time)\n")
	fmt.Fprintf(&b, "Bet: %s %s\n", sig.Type, sig.Line.String())
	fmt.Fprintf(&b, "Reason: %s\n\n", sig.Notes)
	b.WriteString("Flat stake 2-3% of bankroll. No chasing.")
	return b.String()
}

func settlementMessage(bet state.OpenBet, home, away int, result strategy.Result) string {
	verdict := "LOST"
	if result == strategy.ResultWin {
		verdict = "WON"
	}

	var b strings.Builder
	b.WriteString("Match finished\n")
	fmt.Fprintf(&b, "%s vs %s\n", bet.Home, bet.Away)
	fmt.Fprintf(&b, "Final score: %d-%d\n", home, away)
	fmt.Fprintf(&b, "Our bet: %s %s\n", bet.BetType, bet.Line.String())
	fmt.Fprintf(&b, "Outcome: %s", verdict)
	return b.String()
}
