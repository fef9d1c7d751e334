package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/leaderboard"
)

const DefaultLeaderboardSize = 10

var boardTitles = map[domain.Board]string{
	domain.BoardStreak:  "Streak",
	domain.BoardWeekly:  "This week",
	domain.BoardMonthly: "This month",
	domain.BoardAllTime: "All time",
}

type GetLeaderboardUsecase struct {
	entries domain.LeaderboardRepository
	profile *EnsureProfileUsecase
	ranker  *leaderboard.Ranker
	clock   Clock
}

func NewGetLeaderboardUsecase(entries domain.LeaderboardRepository, profile *EnsureProfileUsecase, ranker *leaderboard.Ranker, clock Clock) *GetLeaderboardUsecase {
	return &GetLeaderboardUsecase{entries: entries, profile: profile, ranker: ranker, clock: clock}
}

// Ranking ranks every stored entry on board within the viewer's scope.
// Entries are read as of today, so scores of a past week or month and
// streaks nobody kept up no longer count.
func (uc *GetLeaderboardUsecase) Ranking(ctx context.Context, viewer *domain.Profile, board domain.Board, kind domain.ScopeKind) (*domain.Ranking, error) {
	stored, err := uc.entries.ListEntries(ctx)
	if err != nil {
		return nil, err
	}
	today := uc.clock.Today()
	entries := make([]*domain.LeaderboardEntry, 0, len(stored))
	for _, e := range stored {
		if e != nil {
			entries = append(entries, e.AsOf(today))
		}
	}
	scope := domain.Scope{
		Kind:     kind,
		ViewerID: viewer.UserID,
		LifePath: viewer.LifePath,
		Friends:  viewer.Friends,
	}
	return uc.ranker.Rank(entries, board, scope, today), nil
}

// Execute renders the top limit entries plus the viewer's own position.
func (uc *GetLeaderboardUsecase) Execute(ctx context.Context, viewerID, name string, board domain.Board, kind domain.ScopeKind, limit int) (string, error) {
	viewer, err := uc.profile.Execute(ctx, viewerID, name)
	if err != nil {
		return "", err
	}
	if kind == domain.ScopePath && viewer.LifePath == "" {
		return "Pick a life path first with #path <name>.", nil
	}
	if limit <= 0 {
		limit = DefaultLeaderboardSize
	}

	ranking, err := uc.Ranking(ctx, viewer, board, kind)
	if err != nil {
		return "", err
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("🏆 Leaderboard: %s (%s)", boardTitles[board], scopeTitle(kind, viewer)))
	sb.WriteString(fmt.Sprintf(" %s\n\n", uc.clock.Today().Time(uc.clock.Location).Format("02-01-2006")))

	if ranking.Total == 0 {
		sb.WriteString("No one on this board yet. #checkin to be the first 💪")
		return sb.String(), nil
	}

	top := ranking.Top(limit)
	for _, e := range top {
		sb.WriteString(formatRankLine(e, board))
	}

	switch {
	case ranking.Viewer == nil:
		sb.WriteString("\nYou are not on this board yet. Keep checking in 💪")
	case ranking.Viewer.Rank > len(top):
		sb.WriteString("...\n")
		sb.WriteString(formatRankLine(*ranking.Viewer, board))
		sb.WriteString(fmt.Sprintf("\nYou are #%d of %d", ranking.Viewer.Rank, ranking.Total))
	default:
		sb.WriteString(fmt.Sprintf("\nYou are #%d of %d", ranking.Viewer.Rank, ranking.Total))
	}
	return sb.String(), nil
}

func scopeTitle(kind domain.ScopeKind, viewer *domain.Profile) string {
	switch kind {
	case domain.ScopePath:
		return viewer.LifePath + " path"
	case domain.ScopeFriends:
		return "friends"
	default:
		return "global"
	}
}

func formatRankLine(e domain.RankedEntry, board domain.Board) string {
	name := e.DisplayName
	if name == "" {
		name = e.UserID
	}
	if board == domain.BoardStreak {
		return fmt.Sprintf("%d. %s - %d days streak 🔥\n", e.Rank, name, e.CurrentStreak)
	}
	return fmt.Sprintf("%d. %s - %d pts\n", e.Rank, name, e.Score(board))
}
