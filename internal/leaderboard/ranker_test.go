package leaderboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/leaderboard"
)

func ids(r *domain.Ranking) []string {
	out := make([]string, 0, len(r.Entries))
	for _, e := range r.Entries {
		out = append(out, e.UserID)
	}
	return out
}

func sampleEntries() []*domain.LeaderboardEntry {
	alice := entry("alice", 0, 30)
	alice.WeeklyScore, alice.LifetimeScore, alice.TotalCheckIns, alice.LifePath = 5, 90, 40, "athlete"

	bob := entry("bob", 0, 30)
	bob.WeeklyScore, bob.LifetimeScore, bob.TotalCheckIns, bob.LifePath = 9, 80, 50, "scholar"

	carol := entry("carol", 10, 12)
	carol.WeeklyScore, carol.LifetimeScore, carol.TotalCheckIns, carol.LifePath = 9, 200, 50, "athlete"

	cheater := entry("cheater", 98, 60)
	cheater.WeeklyScore, cheater.LifetimeScore = 999, 999

	return []*domain.LeaderboardEntry{alice, bob, carol, cheater}
}

func TestRank_StreakBoardWithTieBreak(t *testing.T) {
	var rejected []string
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), func(e *domain.LeaderboardEntry, rule leaderboard.Rule) {
		rejected = append(rejected, e.UserID+":"+string(rule))
	})

	got := r.Rank(sampleEntries(), domain.BoardStreak, domain.Scope{Kind: domain.ScopeGlobal}, day(100))

	// alice and bob tie on streak; bob has more check-ins.
	assert.Equal(t, []string{"bob", "alice", "carol"}, ids(got))
	assert.Equal(t, []int{1, 2, 3}, []int{got.Entries[0].Rank, got.Entries[1].Rank, got.Entries[2].Rank})
	assert.Equal(t, 3, got.Total)
	assert.Equal(t, []string{"cheater:account_age"}, rejected)
}

func TestRank_TieBreakFallsBackToOlderAccountThenInputOrder(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)

	got := r.Rank(sampleEntries(), domain.BoardWeekly, domain.Scope{Kind: domain.ScopeGlobal}, day(100))
	// bob and carol tie on weekly score and check-ins; bob's account is older.
	assert.Equal(t, []string{"bob", "carol", "alice"}, ids(got))

	x := entry("x", 0, 1)
	y := entry("y", 0, 1)
	got = r.Rank([]*domain.LeaderboardEntry{x, y}, domain.BoardStreak, domain.Scope{}, day(100))
	assert.Equal(t, []string{"x", "y"}, ids(got))
}

func TestRank_Boards(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	got := r.Rank(sampleEntries(), domain.BoardAllTime, domain.Scope{Kind: domain.ScopeGlobal}, day(100))
	assert.Equal(t, []string{"carol", "alice", "bob"}, ids(got))
}

func TestRank_PathScope(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	scope := domain.Scope{Kind: domain.ScopePath, ViewerID: "carol", LifePath: "athlete"}

	got := r.Rank(sampleEntries(), domain.BoardStreak, scope, day(100))
	assert.Equal(t, []string{"alice", "carol"}, ids(got))
	require.NotNil(t, got.Viewer)
	assert.Equal(t, 2, got.Viewer.Rank)
}

func TestRank_FriendsScopeIncludesViewer(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	scope := domain.Scope{Kind: domain.ScopeFriends, ViewerID: "carol", Friends: []string{"alice", "cheater"}}

	got := r.Rank(sampleEntries(), domain.BoardStreak, scope, day(100))
	assert.Equal(t, []string{"alice", "carol"}, ids(got))
}

func TestRank_ViewerLocatableOutsideTop(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	got := r.Rank(sampleEntries(), domain.BoardStreak, domain.Scope{Kind: domain.ScopeGlobal, ViewerID: "carol"}, day(100))

	assert.Len(t, got.Top(1), 1)
	require.NotNil(t, got.Viewer)
	assert.Equal(t, "carol", got.Viewer.UserID)
	assert.Equal(t, 3, got.Viewer.Rank)
}

func TestRank_InvalidViewerIsAbsent(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	got := r.Rank(sampleEntries(), domain.BoardStreak, domain.Scope{Kind: domain.ScopeGlobal, ViewerID: "cheater"}, day(100))
	assert.Nil(t, got.Viewer)
}

func TestRank_Deterministic(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	entries := sampleEntries()

	first := r.Rank(entries, domain.BoardWeekly, domain.Scope{Kind: domain.ScopeGlobal}, day(100))
	second := r.Rank(entries, domain.BoardWeekly, domain.Scope{Kind: domain.ScopeGlobal}, day(100))
	assert.Equal(t, first, second)
}

func TestRank_Empty(t *testing.T) {
	r := leaderboard.NewRanker(leaderboard.NewValidator(release), nil)
	got := r.Rank(nil, domain.BoardStreak, domain.Scope{Kind: domain.ScopeGlobal}, day(100))

	assert.Empty(t, got.Entries)
	assert.Zero(t, got.Total)
	assert.Nil(t, got.Viewer)
}
