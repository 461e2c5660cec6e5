// Package schedule decides when the loop is worth waking: each planned
// fixture has an active window late in the match, and outside every window
// the process sleeps in bounded chunks.
package schedule

import (
	"context"
	"time"

	"github.com/sergo9723/footbal-plan-bot/internal/state"
)

// MinSleep clamps how short an inactive sleep may be, so a past-due
// activation time never degenerates into a busy loop.
const MinSleep = 5 * time.Second

// Windows defines the per-fixture active band relative to kickoff.
type Windows struct {
	ActiveFrom time.Duration
	ActiveTo   time.Duration
}

// window returns the active span for one plan entry; ok is false when the
// stored kickoff does not parse.
func (w Windows) window(entry state.PlanEntry) (from, to time.Time, ok bool) {
	kickoff, err := entry.Kickoff()
	if err != nil {
		return time.Time{}, time.Time{}, false
	}
	return kickoff.Add(w.ActiveFrom), kickoff.Add(w.ActiveTo), true
}

// AnyActive reports whether now falls inside at least one entry's active
// window. Both boundaries are inclusive.
func (w Windows) AnyActive(plan []state.PlanEntry, now time.Time) bool {
	for _, entry := range plan {
		from, to, ok := w.window(entry)
		if !ok {
			continue
		}
		if !now.Before(from) && !now.After(to) {
			return true
		}
	}
	return false
}

// NextActivation returns the next instant worth waking at. If some window
// already contains now it returns now, so a loop that overslept activates
// immediately. Otherwise it returns the earliest upcoming window start
// among entries whose window has not fully elapsed; ok is false when
// nothing is left to activate today.
func (w Windows) NextActivation(plan []state.PlanEntry, now time.Time) (time.Time, bool) {
	var best time.Time
	found := false

	for _, entry := range plan {
		from, to, ok := w.window(entry)
		if !ok || now.After(to) {
			continue
		}
		if !now.Before(from) {
			return now, true
		}
		if !found || from.Before(best) {
			best = from
			found = true
		}
	}

	return best, found
}

// ClampSleep bounds an inactive-mode sleep between MinSleep and the chunk
// size, so external changes are observed at least every chunk.
func ClampSleep(d, chunk time.Duration) time.Duration {
	if d < MinSleep {
		return MinSleep
	}
	if d > chunk {
		return chunk
	}
	return d
}

// Sleep blocks for d or until the context is cancelled.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
