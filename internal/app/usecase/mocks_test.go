package usecase_test

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/fardannozami/streak-bot/internal/app/usecase"
	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/leaderboard"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/ratelimit"
	"github.com/fardannozami/streak-bot/internal/streak"
	"github.com/fardannozami/streak-bot/internal/validation"
)

// mockCheckInRepo implements domain.CheckInRepository with maps. Values are
// copied in and out so use cases can't mutate stored state by accident.
type mockCheckInRepo struct {
	states  map[string]*domain.StreakState
	records map[string]map[domain.Day]domain.CheckInRecord
	ledgers map[string]*domain.FreezeLedger
}

func newMockCheckInRepo() *mockCheckInRepo {
	return &mockCheckInRepo{
		states:  make(map[string]*domain.StreakState),
		records: make(map[string]map[domain.Day]domain.CheckInRecord),
		ledgers: make(map[string]*domain.FreezeLedger),
	}
}

func (m *mockCheckInRepo) GetState(ctx context.Context, userID string) (*domain.StreakState, error) {
	s, ok := m.states[userID]
	if !ok {
		return nil, nil
	}
	c := s.Clone()
	return &c, nil
}

func (m *mockCheckInRepo) SaveCheckIn(ctx context.Context, userID string, record domain.CheckInRecord, state *domain.StreakState) error {
	days, ok := m.records[userID]
	if !ok {
		days = make(map[domain.Day]domain.CheckInRecord)
		m.records[userID] = days
	}
	if prev, ok := days[record.Date]; ok {
		record.Score = max(record.Score, prev.Score)
		record.CheckedIn = record.CheckedIn || prev.CheckedIn
	}
	days[record.Date] = record
	return m.SaveState(ctx, userID, state)
}

func (m *mockCheckInRepo) SaveState(ctx context.Context, userID string, state *domain.StreakState) error {
	c := state.Clone()
	m.states[userID] = &c
	return nil
}

func (m *mockCheckInRepo) ListRecords(ctx context.Context, userID string, from domain.Day) ([]domain.CheckInRecord, error) {
	var out []domain.CheckInRecord
	for d, r := range m.records[userID] {
		if d >= from {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b domain.CheckInRecord) int { return int(a.Date - b.Date) })
	return out, nil
}

func (m *mockCheckInRepo) GetFreezeLedger(ctx context.Context, userID string) (*domain.FreezeLedger, error) {
	l, ok := m.ledgers[userID]
	if !ok {
		return &domain.FreezeLedger{}, nil
	}
	return &domain.FreezeLedger{Month: l.Month, Remaining: l.Remaining, Protected: slices.Clone(l.Protected)}, nil
}

func (m *mockCheckInRepo) SaveFreezeLedger(ctx context.Context, userID string, ledger *domain.FreezeLedger) error {
	m.ledgers[userID] = &domain.FreezeLedger{Month: ledger.Month, Remaining: ledger.Remaining, Protected: slices.Clone(ledger.Protected)}
	return nil
}

// mockProfileRepo implements domain.ProfileRepository.
type mockProfileRepo struct {
	profiles map[string]*domain.Profile
}

func (m *mockProfileRepo) copyOf(p *domain.Profile) *domain.Profile {
	c := *p
	c.Friends = slices.Clone(p.Friends)
	return &c
}

func (m *mockProfileRepo) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	p, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return m.copyOf(p), nil
}

func (m *mockProfileRepo) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	if prev, ok := m.profiles[p.UserID]; ok {
		c := m.copyOf(p)
		c.CreatedAt = prev.CreatedAt
		c.FriendCode = prev.FriendCode
		c.Friends = prev.Friends
		m.profiles[p.UserID] = c
		return nil
	}
	m.profiles[p.UserID] = m.copyOf(p)
	return nil
}

func (m *mockProfileRepo) FindByFriendCode(ctx context.Context, code string) (*domain.Profile, error) {
	for _, p := range m.profiles {
		if p.FriendCode == code {
			return m.copyOf(p), nil
		}
	}
	return nil, nil
}

func (m *mockProfileRepo) AddFriendship(ctx context.Context, userID, friendID string) error {
	link := func(a, b string) {
		p := m.profiles[a]
		if !slices.Contains(p.Friends, b) {
			p.Friends = append(p.Friends, b)
			slices.Sort(p.Friends)
		}
	}
	link(userID, friendID)
	link(friendID, userID)
	return nil
}

// mockLeaderboardRepo implements domain.LeaderboardRepository.
type mockLeaderboardRepo struct {
	entries map[string]*domain.LeaderboardEntry
}

func (m *mockLeaderboardRepo) SaveEntry(ctx context.Context, entry *domain.LeaderboardEntry) error {
	c := *entry
	m.entries[entry.UserID] = &c
	return nil
}

func (m *mockLeaderboardRepo) ListEntries(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	ids := make([]string, 0, len(m.entries))
	for id := range m.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]*domain.LeaderboardEntry, 0, len(ids))
	for _, id := range ids {
		c := *m.entries[id]
		out = append(out, &c)
	}
	return out, nil
}

var (
	testRelease = domain.DayFromDate(2025, 1, 1)
	// Monday.
	testStart = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
)

// testApp wires every use case against the mocks, with a clock tests can move.
type testApp struct {
	now      time.Time
	checkins *mockCheckInRepo
	profiles *mockProfileRepo
	board    *mockLeaderboardRepo
	metrics  *metrics.Metrics
	clock    usecase.Clock
	cmds     usecase.Commands
	submit   *usecase.SubmitEntryUsecase
	handle   *usecase.HandleMessageUsecase
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithLimit(t, 0)
}

func newTestAppWithLimit(t *testing.T, perMinute int) *testApp {
	t.Helper()

	app := &testApp{
		now:      testStart,
		checkins: newMockCheckInRepo(),
		profiles: &mockProfileRepo{profiles: make(map[string]*domain.Profile)},
		board:    &mockLeaderboardRepo{entries: make(map[string]*domain.LeaderboardEntry)},
		metrics:  metrics.New(nil),
	}
	app.clock = usecase.Clock{Now: func() time.Time { return app.now }, Location: time.UTC}

	log := zap.NewNop()
	quotas := streak.Quotas{domain.TierFree: 1, domain.TierPremium: 3}
	plausibility := leaderboard.NewValidator(testRelease)

	profile := usecase.NewEnsureProfileUsecase(app.profiles, app.clock)
	app.submit = usecase.NewSubmitEntryUsecase(app.board, app.checkins, validation.New(), plausibility, app.clock, 30, app.metrics, log)
	app.cmds = usecase.Commands{
		CheckIn:     usecase.NewRecordCheckInUsecase(app.checkins, profile, app.submit, app.clock, app.metrics),
		Status:      usecase.NewCheckStreakStatusUsecase(app.checkins, app.clock),
		Freeze:      usecase.NewConsumeFreezeUsecase(app.checkins, profile, app.submit, quotas, app.clock, app.metrics),
		Streak:      usecase.NewGetStreakUsecase(app.checkins, profile, quotas, app.clock, 30),
		Leaderboard: usecase.NewGetLeaderboardUsecase(app.board, profile, leaderboard.NewRanker(plausibility, nil), app.clock),
		LifePath:    usecase.NewSetLifePathUsecase(app.profiles, profile),
		Friend:      usecase.NewAddFriendUsecase(app.profiles, profile),
	}
	app.handle = usecase.NewHandleMessageUsecase(app.cmds, ratelimit.New(perMinute), app.metrics)
	return app
}

func (a *testApp) today() domain.Day { return a.clock.Today() }

func (a *testApp) advanceDays(n int) { a.now = a.now.AddDate(0, 0, n) }

// seedProfile stores a profile created daysAgo days before today.
func (a *testApp) seedProfile(id, name string, daysAgo int) {
	a.profiles.profiles[id] = &domain.Profile{
		UserID:      id,
		DisplayName: name,
		FriendCode:  "FC" + strings.ToUpper(id),
		Tier:        domain.TierFree,
		CreatedAt:   a.today().AddDays(-daysAgo),
	}
}
