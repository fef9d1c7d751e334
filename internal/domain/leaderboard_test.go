package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fardannozami/streak-bot/internal/domain"
)

func TestLeaderboardEntry_AsOf(t *testing.T) {
	// Wednesday 12 March 2025.
	taken := domain.DayFromDate(2025, 3, 12)
	entry := &domain.LeaderboardEntry{
		UserID:             "alice",
		CurrentStreak:      6,
		LongestStreak:      6,
		WeeklyScore:        30,
		MonthlyScore:       80,
		LifetimeScore:      200,
		SnapshotDay:        taken,
		StreakAliveThrough: taken.AddDays(1),
	}

	tests := []struct {
		name    string
		today   domain.Day
		streak  int
		weekly  int
		monthly int
	}{
		{name: "same day", today: taken, streak: 6, weekly: 30, monthly: 80},
		{name: "next day", today: taken.AddDays(1), streak: 6, weekly: 30, monthly: 80},
		{name: "later that week", today: taken.AddDays(4), streak: 0, weekly: 30, monthly: 80},
		{name: "next week", today: taken.AddDays(5), streak: 0, weekly: 0, monthly: 80},
		{name: "next month", today: domain.DayFromDate(2025, 4, 1), streak: 0, weekly: 0, monthly: 0},
		{name: "clock behind snapshot", today: taken.AddDays(-3), streak: 6, weekly: 30, monthly: 80},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := entry.AsOf(tt.today)
			assert.Equal(t, tt.streak, got.CurrentStreak)
			assert.Equal(t, tt.weekly, got.WeeklyScore)
			assert.Equal(t, tt.monthly, got.MonthlyScore)
			assert.Equal(t, 200, got.LifetimeScore)
			assert.Equal(t, 6, got.LongestStreak)
		})
	}
	assert.Equal(t, 6, entry.CurrentStreak, "AsOf must not modify the entry")
}

func TestFreezeLedger_UsedIn(t *testing.T) {
	ledger := &domain.FreezeLedger{}
	ledger.Protect(domain.DayFromDate(2025, 2, 27))
	ledger.Protect(domain.DayFromDate(2025, 3, 2))
	ledger.Protect(domain.DayFromDate(2025, 3, 3))

	assert.Equal(t, 1, ledger.UsedIn(domain.Month{Year: 2025, Month: 2}))
	assert.Equal(t, 2, ledger.UsedIn(domain.Month{Year: 2025, Month: 3}))
	assert.Equal(t, 0, ledger.UsedIn(domain.Month{Year: 2025, Month: 4}))

	var empty *domain.FreezeLedger
	assert.Equal(t, 0, empty.UsedIn(domain.Month{Year: 2025, Month: 3}))
}
