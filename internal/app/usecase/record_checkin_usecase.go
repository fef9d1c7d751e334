package usecase

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/streak"
)

type RecordCheckInUsecase struct {
	repo    domain.CheckInRepository
	profile *EnsureProfileUsecase
	submit  *SubmitEntryUsecase
	engine  streak.Engine
	clock   Clock
	metrics *metrics.Metrics
}

func NewRecordCheckInUsecase(
	repo domain.CheckInRepository,
	profile *EnsureProfileUsecase,
	submit *SubmitEntryUsecase,
	clock Clock,
	m *metrics.Metrics,
) *RecordCheckInUsecase {
	return &RecordCheckInUsecase{
		repo:    repo,
		profile: profile,
		submit:  submit,
		clock:   clock,
		metrics: m,
	}
}

// Execute records today's check-in. A score of 0 logs a rest day that does
// not extend the streak.
func (uc *RecordCheckInUsecase) Execute(ctx context.Context, userID, name string, score int) (string, error) {
	if score < 0 {
		return fmt.Sprintf("%s, a check-in score can't be negative.", name), nil
	}

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

	today := uc.clock.Today()
	current := uc.engine.CheckStatus(*state, ledger, today)
	res := uc.engine.RecordCheckIn(current, ledger, today, score > 0)
	uc.metrics.CheckIns.WithLabelValues(string(res.Outcome)).Inc()

	// Only happens when the clock moved backwards past the last check-in.
	if res.Outcome == streak.OutcomeStale {
		return fmt.Sprintf("%s already has a later check-in, nothing changed.", name), nil
	}

	record := domain.CheckInRecord{Date: today, CheckedIn: score > 0, Score: score}
	if err := uc.repo.SaveCheckIn(ctx, userID, record, &res.State); err != nil {
		return "", err
	}
	if res.Milestone > 0 {
		uc.metrics.Milestones.WithLabelValues(strconv.Itoa(res.Milestone)).Inc()
	}

	uc.submit.Publish(ctx, profile, &res.State, ledger)
	return checkInReply(name, res), nil
}

func checkInReply(name string, res streak.Result) string {
	s := res.State
	sb := strings.Builder{}
	switch res.Outcome {
	case streak.OutcomeStarted:
		sb.WriteString(fmt.Sprintf("Check-in received, %s. Day 1 of your streak, keep going 🔥", name))
	case streak.OutcomeExtended:
		sb.WriteString(fmt.Sprintf("Check-in received, %s. %d days streak 🔥", name, s.CurrentStreak))
	case streak.OutcomeBridged:
		sb.WriteString(fmt.Sprintf("Check-in received, %s. %d days streak 🔥 Your freeze days kept it alive ❄️", name, s.CurrentStreak))
	case streak.OutcomeReset:
		sb.WriteString(fmt.Sprintf("Check-in received, %s. Fresh start at 1 day, your best is %d days 💪", name, s.LongestStreak))
	case streak.OutcomeDuplicate:
		sb.WriteString(fmt.Sprintf("%s already checked in today 😉 Streak stays at %d days.", name, s.CurrentStreak))
	case streak.OutcomeMissed:
		sb.WriteString(fmt.Sprintf("Rest day noted, %s. Current streak: %d days.", name, s.CurrentStreak))
	}
	if res.Milestone > 0 {
		sb.WriteString(fmt.Sprintf("\n🎉 %d-day milestone! Next goal: %d days.", res.Milestone, streak.NextMilestone(res.Milestone)))
	}
	return sb.String()
}
