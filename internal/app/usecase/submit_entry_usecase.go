package usecase

import (
	"context"

	"go.uber.org/zap"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/leaderboard"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/streak"
	"github.com/fardannozami/streak-bot/internal/validation"
)

type SubmitEntryUsecase struct {
	repo         domain.LeaderboardRepository
	checkins     domain.CheckInRepository
	shape        *validation.Validator
	plausibility *leaderboard.Validator
	engine       streak.Engine
	clock        Clock
	window       int
	metrics      *metrics.Metrics
	log          *zap.Logger
}

func NewSubmitEntryUsecase(
	repo domain.LeaderboardRepository,
	checkins domain.CheckInRepository,
	shape *validation.Validator,
	plausibility *leaderboard.Validator,
	clock Clock,
	window int,
	m *metrics.Metrics,
	log *zap.Logger,
) *SubmitEntryUsecase {
	return &SubmitEntryUsecase{
		repo:         repo,
		checkins:     checkins,
		shape:        shape,
		plausibility: plausibility,
		clock:        clock,
		window:       window,
		metrics:      m,
		log:          log,
	}
}

// Execute stores entry for ranking. Malformed entries return a validation
// error; implausible ones are dropped without telling the caller.
func (uc *SubmitEntryUsecase) Execute(ctx context.Context, entry *domain.LeaderboardEntry) error {
	if err := uc.shape.Validate(entry); err != nil {
		return err
	}

	if rule := uc.plausibility.Check(entry, uc.clock.Today()); rule != leaderboard.RuleNone {
		uc.metrics.LeaderboardRejected.WithLabelValues(string(rule)).Inc()
		uc.log.Debug("leaderboard entry dropped",
			zap.String("user_id", entry.UserID),
			zap.String("rule", string(rule)),
			zap.Int("current_streak", entry.CurrentStreak),
			zap.Stringer("account_created_at", entry.AccountCreatedAt),
		)
		return nil
	}

	if err := uc.repo.SaveEntry(ctx, entry); err != nil {
		return err
	}
	uc.metrics.LeaderboardSubmitted.Inc()
	return nil
}

// Publish refreshes the user's leaderboard snapshot from their history.
// Failures are logged and never fail the command that triggered it.
func (uc *SubmitEntryUsecase) Publish(ctx context.Context, profile *domain.Profile, state *domain.StreakState, ledger *domain.FreezeLedger) {
	records, err := uc.checkins.ListRecords(ctx, profile.UserID, profile.CreatedAt)
	if err != nil {
		uc.log.Warn("list check-ins for snapshot", zap.String("user_id", profile.UserID), zap.Error(err))
		return
	}
	entry := Snapshot(profile, state, ledger, records, uc.clock.Today(), uc.window)
	if err := uc.Execute(ctx, entry); err != nil {
		uc.log.Warn("submit leaderboard snapshot", zap.String("user_id", profile.UserID), zap.Error(err))
	}
}

// Refresh republishes the snapshot of a user who has checked in before,
// after something other than a check-in changed it.
func (uc *SubmitEntryUsecase) Refresh(ctx context.Context, profile *domain.Profile, ledger *domain.FreezeLedger) {
	state, err := uc.checkins.GetState(ctx, profile.UserID)
	if err != nil {
		uc.log.Warn("load streak for snapshot", zap.String("user_id", profile.UserID), zap.Error(err))
		return
	}
	if state == nil || state.TotalCheckIns == 0 {
		return
	}
	current := uc.engine.CheckStatus(*state, ledger, uc.clock.Today())
	uc.Publish(ctx, profile, &current, ledger)
}

// Snapshot builds the leaderboard entry a user publishes on today.
func Snapshot(profile *domain.Profile, state *domain.StreakState, ledger *domain.FreezeLedger, records []domain.CheckInRecord, today domain.Day, window int) *domain.LeaderboardEntry {
	scores := streak.Aggregate(records, today)
	return &domain.LeaderboardEntry{
		UserID:             profile.UserID,
		DisplayName:        profile.DisplayName,
		LifePath:           profile.LifePath,
		FriendCode:         profile.FriendCode,
		CurrentStreak:      state.CurrentStreak,
		LongestStreak:      state.LongestStreak,
		TotalCheckIns:      state.TotalCheckIns,
		WeeklyScore:        scores.Weekly,
		MonthlyScore:       scores.Monthly,
		LifetimeScore:      scores.Lifetime,
		ConsistencyPercent: streak.Consistency(records, today, window),
		AccountCreatedAt:   profile.CreatedAt,
		SnapshotDay:        today,
		StreakAliveThrough: streak.AliveThrough(*state, ledger),
	}
}
