package usecase

import (
	"context"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/streak"
)

type CheckStreakStatusUsecase struct {
	repo   domain.CheckInRepository
	engine streak.Engine
	clock  Clock
}

func NewCheckStreakStatusUsecase(repo domain.CheckInRepository, clock Clock) *CheckStreakStatusUsecase {
	return &CheckStreakStatusUsecase{repo: repo, clock: clock}
}

// Execute decays the stored streak when the user let it lapse and returns
// the resulting state. Users without state get nil.
func (uc *CheckStreakStatusUsecase) Execute(ctx context.Context, userID string) (*domain.StreakState, error) {
	state, err := uc.repo.GetState(ctx, userID)
	if err != nil || state == nil {
		return nil, err
	}
	ledger, err := uc.repo.GetFreezeLedger(ctx, userID)
	if err != nil {
		return nil, err
	}

	next := uc.engine.CheckStatus(*state, ledger, uc.clock.Today())
	if next.CurrentStreak == state.CurrentStreak {
		return state, nil
	}
	if err := uc.repo.SaveState(ctx, userID, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
