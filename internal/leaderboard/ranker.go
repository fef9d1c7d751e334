package leaderboard

import (
	"cmp"
	"slices"

	"github.com/fardannozami/streak-bot/internal/domain"
)

// RejectFunc observes entries dropped by the validator.
type RejectFunc func(entry *domain.LeaderboardEntry, rule Rule)

// Ranker orders valid entries. It holds no per-call state.
type Ranker struct {
	validator *Validator
	onReject  RejectFunc
}

// NewRanker creates a ranker. onReject may be nil.
func NewRanker(v *Validator, onReject RejectFunc) *Ranker {
	return &Ranker{validator: v, onReject: onReject}
}

// Rank filters entries to the valid ones inside scope, sorts them by board
// and assigns 1-indexed ranks. Ties are broken by TotalCheckIns (higher
// first), then by the older account, then by input order.
func (r *Ranker) Rank(entries []*domain.LeaderboardEntry, board domain.Board, scope domain.Scope, today domain.Day) *domain.Ranking {
	var friends map[string]bool
	if scope.Kind == domain.ScopeFriends {
		friends = make(map[string]bool, len(scope.Friends)+1)
		for _, id := range scope.Friends {
			friends[id] = true
		}
		friends[scope.ViewerID] = true
	}

	kept := make([]*domain.LeaderboardEntry, 0, len(entries))
	for _, e := range entries {
		if e == nil {
			continue
		}
		if rule := r.validator.Check(e, today); rule != RuleNone {
			if r.onReject != nil {
				r.onReject(e, rule)
			}
			continue
		}
		switch scope.Kind {
		case domain.ScopePath:
			if e.LifePath != scope.LifePath {
				continue
			}
		case domain.ScopeFriends:
			if !friends[e.UserID] {
				continue
			}
		}
		kept = append(kept, e)
	}

	slices.SortStableFunc(kept, func(a, b *domain.LeaderboardEntry) int {
		if c := cmp.Compare(b.Score(board), a.Score(board)); c != 0 {
			return c
		}
		if c := cmp.Compare(b.TotalCheckIns, a.TotalCheckIns); c != 0 {
			return c
		}
		return cmp.Compare(a.AccountCreatedAt, b.AccountCreatedAt)
	})

	ranking := &domain.Ranking{
		Board:   board,
		Scope:   scope.Kind,
		Entries: make([]domain.RankedEntry, 0, len(kept)),
		Total:   len(kept),
	}
	for i, e := range kept {
		ranking.Entries = append(ranking.Entries, domain.RankedEntry{LeaderboardEntry: *e, Rank: i + 1})
	}
	for i := range ranking.Entries {
		if ranking.Entries[i].UserID == scope.ViewerID {
			viewer := ranking.Entries[i]
			ranking.Viewer = &viewer
			break
		}
	}
	return ranking
}
