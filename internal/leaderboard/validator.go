// Package leaderboard filters implausible leaderboard snapshots and ranks
// the rest.
package leaderboard

import "github.com/fardannozami/streak-bot/internal/domain"

// MaxStreak is the absolute ceiling for a plausible streak (ten years).
const MaxStreak = 3650

// Rule names the plausibility check an entry failed.
type Rule string

const (
	RuleNone            Rule = ""
	RuleAccountAge      Rule = "account_age"
	RulePredatesRelease Rule = "predates_release"
	RuleSameDayAccount  Rule = "same_day_account"
	RuleCeiling         Rule = "ceiling"
)

// Validator decides whether an entry is trustworthy enough to rank. The
// failed rule is for internal monitoring only and is never shown to users.
type Validator struct {
	Release domain.Day
}

// NewValidator creates a validator for an app released on release.
func NewValidator(release domain.Day) *Validator {
	return &Validator{Release: release}
}

// Check returns the first rule entry breaks on today, or RuleNone.
func (v *Validator) Check(entry *domain.LeaderboardEntry, today domain.Day) Rule {
	streak := entry.CurrentStreak
	if streak < 0 || streak > MaxStreak {
		return RuleCeiling
	}

	accountAge := int(today - entry.AccountCreatedAt)
	if accountAge < 1 {
		return RuleSameDayAccount
	}
	if accountAge < streak {
		return RuleAccountAge
	}
	if int(today-v.Release) < streak {
		return RulePredatesRelease
	}
	return RuleNone
}

// IsValid reports whether entry passes every rule.
func (v *Validator) IsValid(entry *domain.LeaderboardEntry, today domain.Day) bool {
	return v.Check(entry, today) == RuleNone
}
