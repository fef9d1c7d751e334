package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/streak-bot/internal/domain"
)

func TestDayOf_UsesLocation(t *testing.T) {
	// 23:30 UTC on 1 March is already 2 March east of UTC.
	ts := time.Date(2025, 3, 1, 23, 30, 0, 0, time.UTC)
	east := time.FixedZone("UTC+7", 7*3600)

	assert.Equal(t, "2025-03-01", domain.DayOf(ts, time.UTC).String())
	assert.Equal(t, "2025-03-02", domain.DayOf(ts, east).String())
	assert.Equal(t, "2025-03-01", domain.DayOf(ts, nil).String())
}

func TestParseDay_RoundTrip(t *testing.T) {
	d, err := domain.ParseDay("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-29", d.String())
	assert.Equal(t, "2024-03-01", d.AddDays(1).String())

	_, err = domain.ParseDay("29/02/2024")
	assert.Error(t, err)
}

func TestDay_DaysSinceClampsNegative(t *testing.T) {
	a := domain.DayFromDate(2025, 1, 10)
	b := domain.DayFromDate(2025, 1, 13)

	assert.Equal(t, 3, b.DaysSince(a))
	assert.Equal(t, 0, a.DaysSince(b))
}

func TestDay_MonthAndWeek(t *testing.T) {
	d := domain.DayFromDate(2025, 3, 16) // Sunday

	assert.Equal(t, domain.Month{Year: 2025, Month: time.March}, d.Month())
	assert.Equal(t, domain.DayFromDate(2025, 3, 1), d.Month().First())
	assert.Equal(t, domain.DayFromDate(2025, 3, 10), d.WeekStart())
	assert.Equal(t, domain.DayFromDate(2025, 3, 10), domain.DayFromDate(2025, 3, 10).WeekStart())
	assert.Equal(t, "2025-03", d.Month().String())

	m, err := domain.ParseMonth("2025-03")
	require.NoError(t, err)
	assert.Equal(t, d.Month(), m)
}

func TestDay_Time(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got := domain.DayFromDate(2025, 3, 16).Time(loc)
	assert.Equal(t, time.Date(2025, 3, 16, 0, 0, 0, 0, loc), got)
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := domain.Unavailable("get streak state", errors.New("disk full"))

	assert.ErrorIs(t, err, domain.ErrUnavailable)
	assert.NotErrorIs(t, err, domain.ErrCorrupt)
	assert.Equal(t, "get streak state: disk full", err.Error())
}
