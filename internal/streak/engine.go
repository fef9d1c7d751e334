// Package streak maintains a user's streak state as check-ins arrive and
// days pass. Everything here is a pure function of its inputs.
package streak

import "github.com/fardannozami/streak-bot/internal/domain"

// Outcome describes what a check-in did to the streak.
type Outcome string

const (
	OutcomeStarted   Outcome = "started"   // first qualifying day ever
	OutcomeExtended  Outcome = "extended"  // consecutive day
	OutcomeBridged   Outcome = "bridged"   // gap fully covered by freezes
	OutcomeReset     Outcome = "reset"     // gap broke the streak
	OutcomeDuplicate Outcome = "duplicate" // same day as the last check-in
	OutcomeStale     Outcome = "stale"     // dated before the last check-in
	OutcomeMissed    Outcome = "missed"    // non-qualifying day, nothing extended
)

// Result is returned by RecordCheckIn.
type Result struct {
	State   domain.StreakState
	Outcome Outcome
	// Milestone is the streak length celebrated by this check-in, or 0.
	Milestone int
}

// Engine applies the streak rules. The zero value is ready to use.
type Engine struct{}

// RecordCheckIn applies one check-in for day to state. Calls must arrive in
// non-decreasing day order; a day before the last qualifying day is reported
// as stale and changes nothing.
func (Engine) RecordCheckIn(state domain.StreakState, ledger *domain.FreezeLedger, day domain.Day, qualifies bool) Result {
	next := state.Clone()

	if next.LastCheckInDate == nil {
		if !qualifies {
			return Result{State: next, Outcome: OutcomeMissed}
		}
		next.CurrentStreak = 1
		next.TotalCheckIns++
		next.LastCheckInDate = &day
		return finish(next, OutcomeStarted)
	}

	last := *next.LastCheckInDate
	if day < last {
		return Result{State: next, Outcome: OutcomeStale}
	}

	gap := day.DaysSince(last)
	var outcome Outcome
	switch {
	case gap == 0:
		return Result{State: next, Outcome: OutcomeDuplicate}
	case gap == 1:
		if !qualifies {
			return Result{State: next, Outcome: OutcomeMissed}
		}
		next.CurrentStreak++
		outcome = OutcomeExtended
	case ledger.CoversBetween(last, day):
		if !qualifies {
			return Result{State: next, Outcome: OutcomeMissed}
		}
		next.CurrentStreak++
		outcome = OutcomeBridged
	default:
		if !qualifies {
			next.CurrentStreak = 0
			return Result{State: next, Outcome: OutcomeMissed}
		}
		next.CurrentStreak = 1
		outcome = OutcomeReset
	}

	next.TotalCheckIns++
	next.LastCheckInDate = &day
	return finish(next, outcome)
}

func finish(state domain.StreakState, outcome Outcome) Result {
	state.LongestStreak = max(state.LongestStreak, state.CurrentStreak)
	res := Result{State: state, Outcome: outcome}
	if m, ok := Celebrate(state.CurrentStreak, state.LastMilestone); ok {
		res.Milestone = m
		res.State.LastMilestone = m
	}
	return res
}

// CheckStatus decays the current streak when today is too far from the last
// qualifying day. It only ever lowers CurrentStreak.
func (Engine) CheckStatus(state domain.StreakState, ledger *domain.FreezeLedger, today domain.Day) domain.StreakState {
	next := state.Clone()
	if next.LastCheckInDate == nil || next.CurrentStreak == 0 {
		return next
	}
	last := *next.LastCheckInDate
	if today.DaysSince(last) <= 1 {
		return next
	}
	if ledger.CoversBetween(last, today) {
		return next
	}
	next.CurrentStreak = 0
	return next
}

// AliveThrough returns the last day state's streak survives without another
// qualifying check-in: the day after the last check-in, pushed forward by
// each consecutive protected day. A state with no streak returns 0.
func AliveThrough(state domain.StreakState, ledger *domain.FreezeLedger) domain.Day {
	if state.LastCheckInDate == nil || state.CurrentStreak == 0 {
		return 0
	}
	d := state.LastCheckInDate.AddDays(1)
	for ledger.IsProtected(d) {
		d++
	}
	return d
}
