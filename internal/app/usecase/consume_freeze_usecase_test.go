package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/streak-bot/internal/domain"
)

func TestConsumeFreeze_QuotaPerMonth(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	today := app.today()

	msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", today)
	require.NoError(t, err)
	assert.Equal(t, "❄️ 2025-03-10 is protected, Alice. Freeze days left for 2025-03: 0", msg)

	msg, err = app.cmds.Freeze.Execute(ctx, "user1", "Alice", today.AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, "No freeze days left for 2025-03, Alice.", msg)
	assert.Equal(t, []domain.Day{today}, app.checkins.ledgers["user1"].Protected)

	// A day in April draws on April's quota.
	msg, err = app.cmds.Freeze.Execute(ctx, "user1", "Alice", domain.DayFromDate(2025, 4, 2))
	require.NoError(t, err)
	assert.Contains(t, msg, "is protected")

	assert.InDelta(t, 2, testutil.ToFloat64(app.metrics.FreezeRequests.WithLabelValues("granted")), 0)
	assert.InDelta(t, 1, testutil.ToFloat64(app.metrics.FreezeRequests.WithLabelValues("quota_exhausted")), 0)
}

func TestConsumeFreeze_PremiumTier(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.seedProfile("user1", "Alice", 30)
	app.profiles.profiles["user1"].Tier = domain.TierPremium

	for i := 1; i <= 3; i++ {
		msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today().AddDays(i))
		require.NoError(t, err)
		assert.Contains(t, msg, "is protected")
	}
	msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today().AddDays(4))
	require.NoError(t, err)
	assert.Contains(t, msg, "No freeze days left")
}

func TestConsumeFreeze_AlreadyProtected(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.seedProfile("user1", "Alice", 30)
	app.profiles.profiles["user1"].Tier = domain.TierPremium

	_, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today())
	require.NoError(t, err)
	msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today())
	require.NoError(t, err)

	assert.Equal(t, "2025-03-10 is already protected ❄️", msg)
	assert.Equal(t, 2, app.checkins.ledgers["user1"].Remaining)
}

func TestConsumeFreeze_OutOfRange(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()

	msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today().AddDays(-8))
	require.NoError(t, err)
	assert.Contains(t, msg, "reach back at most 7 days")

	msg, err = app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today().AddDays(32))
	require.NoError(t, err)
	assert.Contains(t, msg, "at most 31 days ahead")

	assert.Empty(t, app.checkins.ledgers)
}

func TestConsumeFreeze_AlternatingMonthsCannotRefillQuota(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.now = time.Date(2025, 3, 2, 12, 0, 0, 0, time.UTC)

	requests := []struct {
		day     domain.Day
		granted bool
	}{
		{domain.DayFromDate(2025, 3, 2), true},
		{domain.DayFromDate(2025, 2, 27), true},
		{domain.DayFromDate(2025, 3, 3), false},
		{domain.DayFromDate(2025, 2, 26), false},
		{domain.DayFromDate(2025, 3, 4), false},
	}
	for _, r := range requests {
		msg, err := app.cmds.Freeze.Execute(ctx, "user1", "Alice", r.day)
		require.NoError(t, err)
		if r.granted {
			assert.Contains(t, msg, "is protected", r.day.String())
		} else {
			assert.Contains(t, msg, "No freeze days left", r.day.String())
		}
	}

	ledger := app.checkins.ledgers["user1"]
	assert.Equal(t, 1, ledger.UsedIn(domain.Month{Year: 2025, Month: time.March}))
	assert.Equal(t, 1, ledger.UsedIn(domain.Month{Year: 2025, Month: time.February}))
}

func TestConsumeFreeze_RepublishesSnapshot(t *testing.T) {
	app := newTestApp(t)
	ctx := context.Background()
	app.seedProfile("user1", "Alice", 30)

	_, err := app.cmds.CheckIn.Execute(ctx, "user1", "Alice", 1)
	require.NoError(t, err)
	require.Equal(t, app.today().AddDays(1), app.board.entries["user1"].StreakAliveThrough)

	_, err = app.cmds.Freeze.Execute(ctx, "user1", "Alice", app.today().AddDays(1))
	require.NoError(t, err)
	assert.Equal(t, app.today().AddDays(2), app.board.entries["user1"].StreakAliveThrough)
}

func TestConsumeFreeze_NoSnapshotBeforeFirstCheckIn(t *testing.T) {
	app := newTestApp(t)
	app.seedProfile("user1", "Alice", 30)

	_, err := app.cmds.Freeze.Execute(context.Background(), "user1", "Alice", app.today())
	require.NoError(t, err)
	assert.Empty(t, app.board.entries)
}
