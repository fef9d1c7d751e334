package usecase

import (
	"context"
	"fmt"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/streak"
)

// A freeze may cover a recently missed day or plan ahead for the coming month.
const (
	maxFreezeDaysBack  = 7
	maxFreezeDaysAhead = 31
)

type ConsumeFreezeUsecase struct {
	repo    domain.CheckInRepository
	profile *EnsureProfileUsecase
	submit  *SubmitEntryUsecase
	engine  streak.Engine
	quotas  streak.Quotas
	clock   Clock
	metrics *metrics.Metrics
}

func NewConsumeFreezeUsecase(
	repo domain.CheckInRepository,
	profile *EnsureProfileUsecase,
	submit *SubmitEntryUsecase,
	quotas streak.Quotas,
	clock Clock,
	m *metrics.Metrics,
) *ConsumeFreezeUsecase {
	return &ConsumeFreezeUsecase{repo: repo, profile: profile, submit: submit, quotas: quotas, clock: clock, metrics: m}
}

func (uc *ConsumeFreezeUsecase) Execute(ctx context.Context, userID, name string, day domain.Day) (string, error) {
	today := uc.clock.Today()
	if today.DaysSince(day) > maxFreezeDaysBack {
		return fmt.Sprintf("Freeze days can reach back at most %d days.", maxFreezeDaysBack), nil
	}
	if day.DaysSince(today) > maxFreezeDaysAhead {
		return fmt.Sprintf("Freeze days can be planned at most %d days ahead.", maxFreezeDaysAhead), nil
	}

	profile, err := uc.profile.Execute(ctx, userID, name)
	if err != nil {
		return "", err
	}
	ledger, err := uc.repo.GetFreezeLedger(ctx, userID)
	if err != nil {
		return "", err
	}

	res := uc.engine.ConsumeFreeze(ledger, day, uc.quotas.For(profile.Tier))
	if !res.Granted {
		uc.metrics.FreezeRequests.WithLabelValues(string(res.Reason)).Inc()
		switch res.Reason {
		case streak.RejectAlreadyProtected:
			return fmt.Sprintf("%s is already protected ❄️", day), nil
		default:
			return fmt.Sprintf("No freeze days left for %s, %s.", day.Month(), name), nil
		}
	}

	if err := uc.repo.SaveFreezeLedger(ctx, userID, ledger); err != nil {
		return "", err
	}
	uc.metrics.FreezeRequests.WithLabelValues("granted").Inc()

	// The freeze may carry the published streak further.
	uc.submit.Refresh(ctx, profile, ledger)
	return fmt.Sprintf("❄️ %s is protected, %s. Freeze days left for %s: %d", day, name, day.Month(), res.Remaining), nil
}
