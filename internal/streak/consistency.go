package streak

import "github.com/fardannozami/streak-bot/internal/domain"

const (
	// DefaultWindowDays is the default consistency window.
	DefaultWindowDays = 30
	// minSampleDays is the shortest history that yields a consistency score.
	minSampleDays = 7
)

// Consistency returns the share of qualifying days in the window ending at
// today, as a percentage in [0, 100]. The window starts at the first
// recorded day or windowDays before today, whichever is later. Histories
// shorter than a week score 0.
func Consistency(records []domain.CheckInRecord, today domain.Day, windowDays int) float64 {
	if windowDays <= 0 {
		windowDays = DefaultWindowDays
	}
	if len(records) == 0 {
		return 0
	}

	first := records[0].Date
	for _, r := range records[1:] {
		if r.Date < first {
			first = r.Date
		}
	}
	if first > today {
		return 0
	}

	elapsed := today.DaysSince(first) + 1
	span := min(elapsed, windowDays)
	if span < minSampleDays {
		return 0
	}

	start := today.AddDays(-(span - 1))
	seen := make(map[domain.Day]bool, len(records))
	qualifying := 0
	for _, r := range records {
		if !r.CheckedIn || r.Date < start || r.Date > today || seen[r.Date] {
			continue
		}
		seen[r.Date] = true
		qualifying++
	}

	pct := float64(qualifying) / float64(span) * 100
	return min(max(pct, 0), 100)
}

// Scores are the activity sums shown on the weekly, monthly and all-time boards.
type Scores struct {
	Weekly   int
	Monthly  int
	Lifetime int
}

// Aggregate sums record scores for the week (Monday start) and the calendar
// month containing today, and over all time. Future-dated records are ignored.
func Aggregate(records []domain.CheckInRecord, today domain.Day) Scores {
	var s Scores
	weekStart := today.WeekStart()
	monthStart := today.Month().First()
	for _, r := range records {
		if r.Date > today || r.Score <= 0 {
			continue
		}
		s.Lifetime += r.Score
		if r.Date >= monthStart {
			s.Monthly += r.Score
		}
		if r.Date >= weekStart {
			s.Weekly += r.Score
		}
	}
	return s
}
