package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/streak"
)

type GetStreakUsecase struct {
	repo    domain.CheckInRepository
	profile *EnsureProfileUsecase
	engine  streak.Engine
	quotas  streak.Quotas
	clock   Clock
	window  int
}

func NewGetStreakUsecase(repo domain.CheckInRepository, profile *EnsureProfileUsecase, quotas streak.Quotas, clock Clock, window int) *GetStreakUsecase {
	return &GetStreakUsecase{repo: repo, profile: profile, quotas: quotas, clock: clock, window: window}
}

func (uc *GetStreakUsecase) Execute(ctx context.Context, userID, name string) (string, error) {
	profile, err := uc.profile.Execute(ctx, userID, name)
	if err != nil {
		return "", err
	}
	state, err := uc.repo.GetState(ctx, userID)
	if err != nil {
		return "", err
	}
	if state == nil {
		state = &domain.StreakState{}
	}
	ledger, err := uc.repo.GetFreezeLedger(ctx, userID)
	if err != nil {
		return "", err
	}
	records, err := uc.repo.ListRecords(ctx, userID, profile.CreatedAt)
	if err != nil {
		return "", err
	}

	today := uc.clock.Today()
	s := uc.engine.CheckStatus(*state, ledger, today)
	window := uc.window
	if window <= 0 {
		window = streak.DefaultWindowDays
	}

	sb := strings.Builder{}
	sb.WriteString(fmt.Sprintf("🔥 %s: %d days streak\n", profile.DisplayName, s.CurrentStreak))
	sb.WriteString(fmt.Sprintf("🏅 Best: %d days | Total check-ins: %d\n", s.LongestStreak, s.TotalCheckIns))
	sb.WriteString(fmt.Sprintf("📈 Consistency (%dd): %.1f%%\n", window, streak.Consistency(records, today, window)))
	sb.WriteString(fmt.Sprintf("❄️ Freeze days left for %s: %d\n", today.Month(), streak.RemainingFreezes(ledger, today, uc.quotas.For(profile.Tier))))
	sb.WriteString(fmt.Sprintf("🎯 Next milestone: %d days", streak.NextMilestone(max(s.CurrentStreak, s.LastMilestone))))
	return sb.String(), nil
}
