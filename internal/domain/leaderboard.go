package domain

import (
	"context"
	"fmt"
	"strings"
)

// LeaderboardEntry is a snapshot a user submits for ranking.
type LeaderboardEntry struct {
	UserID             string  `json:"user_id" validate:"required"`
	DisplayName        string  `json:"display_name"`
	AvatarToken        string  `json:"avatar_token"`
	LifePath           string  `json:"life_path"`
	Bio                string  `json:"bio" validate:"max=280"`
	FriendCode         string  `json:"friend_code"`
	CurrentStreak      int     `json:"current_streak" validate:"gte=0"`
	LongestStreak      int     `json:"longest_streak" validate:"gte=0,gtefield=CurrentStreak"`
	TotalCheckIns      int     `json:"total_check_ins" validate:"gte=0"`
	WeeklyScore        int     `json:"weekly_score" validate:"gte=0"`
	MonthlyScore       int     `json:"monthly_score" validate:"gte=0"`
	LifetimeScore      int     `json:"lifetime_score" validate:"gte=0"`
	ConsistencyPercent float64 `json:"consistency_percent" validate:"gte=0,lte=100"`
	AccountCreatedAt   Day     `json:"account_created_at"`
	// SnapshotDay is the day the entry was taken. Weekly and monthly scores
	// only hold within its week and month.
	SnapshotDay Day `json:"snapshot_day"`
	// StreakAliveThrough is the last day CurrentStreak survives without
	// another check-in, counting freezes known at SnapshotDay.
	StreakAliveThrough Day `json:"streak_alive_through"`
}

// AsOf returns a copy of the entry as it reads on today. Scores from an
// earlier week or month count as zero and a streak past StreakAliveThrough
// counts as lapsed.
func (e *LeaderboardEntry) AsOf(today Day) *LeaderboardEntry {
	c := *e
	if e.SnapshotDay.WeekStart() < today.WeekStart() {
		c.WeeklyScore = 0
	}
	if e.SnapshotDay.Month().First() < today.Month().First() {
		c.MonthlyScore = 0
	}
	if today > e.StreakAliveThrough {
		c.CurrentStreak = 0
	}
	return &c
}

// Board selects the score a ranking is ordered by.
type Board string

const (
	BoardStreak  Board = "streak"
	BoardWeekly  Board = "weekly"
	BoardMonthly Board = "monthly"
	BoardAllTime Board = "alltime"
)

// ParseBoard maps user input to a Board.
func ParseBoard(s string) (Board, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "streak":
		return BoardStreak, nil
	case "weekly", "week":
		return BoardWeekly, nil
	case "monthly", "month":
		return BoardMonthly, nil
	case "alltime", "all-time", "lifetime":
		return BoardAllTime, nil
	}
	return "", fmt.Errorf("unknown board %q", s)
}

// Score returns the entry's value on board b.
func (e *LeaderboardEntry) Score(b Board) int {
	switch b {
	case BoardWeekly:
		return e.WeeklyScore
	case BoardMonthly:
		return e.MonthlyScore
	case BoardAllTime:
		return e.LifetimeScore
	default:
		return e.CurrentStreak
	}
}

// ScopeKind is the population an entry is ranked against.
type ScopeKind string

const (
	ScopeGlobal  ScopeKind = "global"
	ScopePath    ScopeKind = "path"
	ScopeFriends ScopeKind = "friends"
)

// ParseScopeKind maps user input to a ScopeKind.
func ParseScopeKind(s string) (ScopeKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "global", "all":
		return ScopeGlobal, nil
	case "path":
		return ScopePath, nil
	case "friends", "friend":
		return ScopeFriends, nil
	}
	return "", fmt.Errorf("unknown scope %q", s)
}

// Scope is a ScopeKind bound to the viewer it is evaluated for.
type Scope struct {
	Kind     ScopeKind
	ViewerID string
	LifePath string
	Friends  []string
}

// RankedEntry is an entry with its 1-indexed position.
type RankedEntry struct {
	LeaderboardEntry
	Rank int `json:"rank"`
}

// Ranking is the ordered output of the ranker for one board and scope.
type Ranking struct {
	Board   Board         `json:"board"`
	Scope   ScopeKind     `json:"scope"`
	Entries []RankedEntry `json:"entries"`
	Viewer  *RankedEntry  `json:"viewer,omitempty"`
	Total   int           `json:"total"`
}

// Top returns at most n leading entries.
func (r *Ranking) Top(n int) []RankedEntry {
	if n <= 0 || n >= len(r.Entries) {
		return r.Entries
	}
	return r.Entries[:n]
}

// SkipFunc observes a stored entry that could not be read back and was left
// out of a listing.
type SkipFunc func(userID string, err error)

// LeaderboardRepository stores the latest snapshot per user. ListEntries
// leaves out entries it cannot decode; only storage failures fail it.
type LeaderboardRepository interface {
	SaveEntry(ctx context.Context, entry *LeaderboardEntry) error
	ListEntries(ctx context.Context) ([]*LeaderboardEntry, error)
}
