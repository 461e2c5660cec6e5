// Package service runs the match lifecycle: daily plan, smart sleeping,
// live signal emission, and open-bet settlement.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/sergo9723/footbal-plan-bot/internal/alerting"
	"github.com/sergo9723/footbal-plan-bot/internal/competition"
	"github.com/sergo9723/footbal-plan-bot/internal/planner"
	"github.com/sergo9723/footbal-plan-bot/internal/provider"
	"github.com/sergo9723/footbal-plan-bot/internal/schedule"
	"github.com/sergo9723/footbal-plan-bot/internal/state"
	"github.com/sergo9723/footbal-plan-bot/internal/storage"
	"github.com/sergo9723/footbal-plan-bot/internal/strategy"
)

// Config holds the cadence and cap knobs of the loop.
type Config struct {
	MinMinute          int
	MaxMinute          int
	MaxSignalsPerMatch int
	MaxSignalsPerDay   int
	ActiveFrom         time.Duration
	ActiveTo           time.Duration
	PollActive         time.Duration
	SleepChunk         time.Duration
}

// Service owns the persisted state and drives the unbounded tick loop.
// Single-threaded: every phase mutates state synchronously and saves before
// the next suspension point.
type Service struct {
	provider provider.FixtureProvider
	notifier alerting.Notifier
	store    *state.Store
	ledger   *state.Ledger
	results  storage.ResultStore
	windows  schedule.Windows
	cfg      Config
	logger   zerolog.Logger
	loc      *time.Location
	now      func() time.Time
}

// New constructs the service. results may be nil when the Postgres mirror
// is not configured.
func New(cfg Config, p provider.FixtureProvider, n alerting.Notifier, store *state.Store, ledger *state.Ledger, results storage.ResultStore, loc *time.Location, logger zerolog.Logger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		provider: p,
		notifier: n,
		store:    store,
		ledger:   ledger,
		results:  results,
		windows:  schedule.Windows{ActiveFrom: cfg.ActiveFrom, ActiveTo: cfg.ActiveTo},
		cfg:      cfg,
		logger:   logger.With().Str("component", "service").Logger(),
		loc:      loc,
		now:      time.Now,
	}
}

// Run loads the persisted state and loops until the context is cancelled.
// Any tick error is logged and followed by the active-mode backoff; no
// error terminates the loop.
func (s *Service) Run(ctx context.Context) error {
	doc, err := s.store.Load(s.localNow())
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}

	if err := s.notifier.Send(ctx, startupMessage()); err != nil {
		s.logger.Warn().Err(err).Msg("startup notification failed")
	}
	s.logger.Info().Int("open_bets", len(doc.OpenBets)).Str("plan_date", doc.PlanDate).Msg("bot started")

	for {
		wait, err := s.tick(ctx, doc)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return err
			}
			s.logger.Error().Err(err).Msg("tick failed")
			wait = s.cfg.PollActive
		}

		if err := schedule.Sleep(ctx, wait); err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
}

func (s *Service) localNow() time.Time {
	return s.now().In(s.loc)
}

// tick runs one full iteration and returns how long to sleep before the
// next one. Phase order is load-bearing: settlement runs before the daily
// cap check, and the cap is checked before the no-plan shortcut and the
// live poll.
func (s *Service) tick(ctx context.Context, doc *state.Document) (time.Duration, error) {
	now := s.localNow()
	today := now.Format(state.DateLayout)

	if doc.ResetDailyIfNeeded(today) {
		if err := s.store.Save(doc); err != nil {
			return 0, err
		}
		s.logger.Info().Str("date", today).Msg("daily counters reset")
	}

	if err := s.ensurePlan(ctx, doc, now, today); err != nil {
		return 0, err
	}

	if err := s.settle(ctx, doc); err != nil {
		return 0, err
	}

	if doc.SignalsToday >= s.cfg.MaxSignalsPerDay {
		s.logger.Info().Int("signals_today", doc.SignalsToday).Msg("daily cap reached, sleeping")
		return s.cfg.SleepChunk, nil
	}

	if len(doc.Plan) == 0 {
		return s.cfg.SleepChunk, nil
	}

	if !s.windows.AnyActive(doc.Plan, now) {
		next, ok := s.windows.NextActivation(doc.Plan, now)
		if !ok {
			return s.cfg.SleepChunk, nil
		}
		wait := schedule.ClampSleep(next.Sub(now), s.cfg.SleepChunk)
		s.logger.Info().Dur("wait", wait).Time("next_activation", next).Msg("sleeping until next activation")
		return wait, nil
	}

	fired, live, err := s.scanLive(ctx, doc)
	if err != nil {
		return 0, err
	}
	s.logger.Info().Int("live", live).Int("fired", fired).Msg("active tick")
	return s.cfg.PollActive, nil
}

// ensurePlan rebuilds the 24h plan when the day rolled over or no plan is
// stored. The summary notification goes out only on the first build of a
// day, not on empty-plan retries.
func (s *Service) ensurePlan(ctx context.Context, doc *state.Document, now time.Time, today string) error {
	if doc.PlanDate == today && len(doc.Plan) > 0 {
		return nil
	}

	firstOfDay := doc.PlanDate != today

	s.logger.Info().Msg("building 24h plan")
	plan, err := planner.Build(ctx, s.provider, now)
	if err != nil {
		return fmt.Errorf("build plan: %w", err)
	}

	doc.Plan = plan
	doc.PlanDate = today
	if err := s.store.Save(doc); err != nil {
		return err
	}

	if firstOfDay {
		if err := s.notifier.Send(ctx, planner.SummaryMessage(plan)); err != nil {
			return fmt.Errorf("send plan summary: %w", err)
		}
	}

	s.logger.Info().Int("plan_size", len(plan)).Msg("plan published")
	return nil
}

// settle closes every open bet whose match has finished: notify, append to
// the ledger, mirror when configured, and drop from the open set. A fixture
// the provider cannot find is skipped as transient.
func (s *Service) settle(ctx context.Context, doc *state.Document) error {
	if len(doc.OpenBets) == 0 {
		return nil
	}

	betIDs := make([]string, 0, len(doc.OpenBets))
	for id := range doc.OpenBets {
		betIDs = append(betIDs, id)
	}
	sort.Strings(betIDs)

	for _, betID := range betIDs {
		bet := doc.OpenBets[betID]

		fx, err := s.provider.FixtureByID(ctx, bet.FixtureID)
		if err != nil {
			return fmt.Errorf("fetch fixture %d: %w", bet.FixtureID, err)
		}
		if fx == nil {
			continue
		}
		if !provider.Finished(fx.Meta.Status.Short) {
			continue
		}

		home, away, total := fx.Score()
		result := strategy.Outcome(total, bet.BetType, bet.Line)

		if err := s.notifier.Send(ctx, settlementMessage(bet, home, away, result)); err != nil {
			return fmt.Errorf("send settlement for %s: %w", betID, err)
		}

		rec := state.FromOpenBet(bet, result)
		if err := s.ledger.Append(rec); err != nil {
			return fmt.Errorf("append ledger for %s: %w", betID, err)
		}
		if s.results != nil {
			if err := s.results.InsertResult(ctx, rec, s.localNow()); err != nil {
				s.logger.Error().Err(err).Str("bet_id", betID).Msg("failed to mirror result")
			}
		}

		// Save per close so an error on a later bet never replays this
		// one's notification or ledger row on the next tick.
		delete(doc.OpenBets, betID)
		if err := s.store.Save(doc); err != nil {
			return err
		}
		s.logger.Info().Str("bet_id", betID).Str("result", string(result)).Msg("bet closed")
	}

	return nil
}

// scanLive evaluates the signal rule against every live fixture that is in
// today's plan and inside the emission minute band. Emission mutates the
// counters, opens the bet, and saves before moving on; the scan stops as
// soon as the daily cap is reached.
func (s *Service) scanLive(ctx context.Context, doc *state.Document) (fired, live int, err error) {
	fixtures, err := s.provider.LiveFixtures(ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("fetch live fixtures: %w", err)
	}

	planIDs := make(map[int64]struct{}, len(doc.Plan))
	for _, entry := range doc.Plan {
		planIDs[entry.FixtureID] = struct{}{}
	}

	for i := range fixtures {
		fx := &fixtures[i]

		if !competition.IsTarget(fx.League.Name, fx.League.Country) {
			continue
		}
		id := fx.Meta.ID
		if id <= 0 {
			continue
		}
		if _, ok := planIDs[id]; !ok {
			continue
		}

		minute := fx.Minute()
		if minute < s.cfg.MinMinute || minute > s.cfg.MaxMinute {
			continue
		}

		key := strconv.FormatInt(id, 10)
		if doc.SentPerMatch[key] >= s.cfg.MaxSignalsPerMatch {
			continue
		}

		home, away, _ := fx.Score()
		sig, ok := strategy.Pick(home, away)
		if !ok {
			continue
		}

		now := s.localNow()
		bet := state.OpenBet{
			BetID:     fmt.Sprintf("%d-%d", id, now.Unix()),
			Time:      now.Format(state.TimeLayout),
			FixtureID: id,
			League:    fx.League.Name,
			Country:   fx.League.Country,
			Home:      fx.Teams.Home.Name,
			Away:      fx.Teams.Away.Name,
			Minute:    minute,
			Score:     fmt.Sprintf("%d-%d", home, away),
			BetType:   sig.Type,
			Line:      sig.Line,
			Notes:     sig.Notes,
		}

		if err := s.notifier.Send(ctx, signalMessage(fx, minute, sig)); err != nil {
			return fired, len(fixtures), fmt.Errorf("send signal for %d: %w", id, err)
		}

		doc.OpenBets[bet.BetID] = bet
		doc.SentPerMatch[key]++
		doc.SignalsToday++
		if err := s.store.Save(doc); err != nil {
			return fired, len(fixtures), err
		}
		fired++
		s.logger.Info().Str("bet_id", bet.BetID).Str("bet_type", string(sig.Type)).Str("line", sig.Line.String()).Msg("signal emitted")

		if doc.SignalsToday >= s.cfg.MaxSignalsPerDay {
			break
		}
	}

	return fired, len(fixtures), nil
}
