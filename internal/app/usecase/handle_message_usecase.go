package usecase

import (
	"context"
	"strconv"
	"strings"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/keymutex"
	"github.com/fardannozami/streak-bot/internal/metrics"
	"github.com/fardannozami/streak-bot/internal/ratelimit"
)

// Commands are the use cases reachable from chat.
type Commands struct {
	CheckIn     *RecordCheckInUsecase
	Status      *CheckStreakStatusUsecase
	Freeze      *ConsumeFreezeUsecase
	Streak      *GetStreakUsecase
	Leaderboard *GetLeaderboardUsecase
	LifePath    *SetLifePathUsecase
	Friend      *AddFriendUsecase
}

const leaderboardUsage = "Usage: #leaderboard [streak|weekly|monthly|alltime] [global|path|friends]"

type HandleMessageUsecase struct {
	cmds    Commands
	limiter *ratelimit.Limiter
	users   *keymutex.Mutex
	metrics *metrics.Metrics
}

func NewHandleMessageUsecase(cmds Commands, limiter *ratelimit.Limiter, m *metrics.Metrics) *HandleMessageUsecase {
	return &HandleMessageUsecase{cmds: cmds, limiter: limiter, users: keymutex.New(), metrics: m}
}

// Execute routes one chat message. Anything that is not a known command
// yields an empty reply. Commands of one user run one at a time, since each
// reads and writes back that user's state; Execute is safe for concurrent use.
func (uc *HandleMessageUsecase) Execute(ctx context.Context, userID, name, msg string) (string, error) {
	fields := strings.Fields(msg)
	if len(fields) == 0 {
		return "", nil
	}
	cmd := strings.ToLower(fields[0])
	args := fields[1:]

	switch cmd {
	case "#checkin", "#lapor", "#streak", "#freeze", "#leaderboard", "#path", "#friend":
	default:
		return "", nil
	}

	if uc.limiter != nil && !uc.limiter.Allow(userID) {
		uc.metrics.CommandsThrottled.Inc()
		return "", nil
	}

	unlock := uc.users.Lock(userID)
	defer unlock()

	// A freeze may protect the day the status check would otherwise break
	// on, so it runs before the check.
	if cmd == "#freeze" {
		reply, err := uc.freeze(ctx, userID, name, args)
		if err != nil {
			return "", err
		}
		if _, err := uc.cmds.Status.Execute(ctx, userID); err != nil {
			return "", err
		}
		return reply, nil
	}

	if _, err := uc.cmds.Status.Execute(ctx, userID); err != nil {
		return "", err
	}

	switch cmd {
	case "#checkin", "#lapor":
		score := 1
		if len(args) > 0 {
			if n, err := strconv.Atoi(args[0]); err == nil {
				score = n
			}
		}
		return uc.cmds.CheckIn.Execute(ctx, userID, name, score)
	case "#streak":
		return uc.cmds.Streak.Execute(ctx, userID, name)
	case "#leaderboard":
		board, kind, ok := parseLeaderboardArgs(args)
		if !ok {
			return leaderboardUsage, nil
		}
		return uc.cmds.Leaderboard.Execute(ctx, userID, name, board, kind, DefaultLeaderboardSize)
	case "#path":
		return uc.cmds.LifePath.Execute(ctx, userID, name, strings.Join(args, " "))
	default: // #friend
		code := ""
		if len(args) > 0 {
			code = args[0]
		}
		return uc.cmds.Friend.Execute(ctx, userID, name, code)
	}
}

func (uc *HandleMessageUsecase) freeze(ctx context.Context, userID, name string, args []string) (string, error) {
	today := uc.cmds.Freeze.clock.Today()
	day := today
	if len(args) > 0 {
		switch strings.ToLower(args[0]) {
		case "today":
		case "yesterday":
			day = today.AddDays(-1)
		case "tomorrow":
			day = today.AddDays(1)
		default:
			d, err := domain.ParseDay(args[0])
			if err != nil {
				return "Usage: #freeze [today|yesterday|tomorrow|YYYY-MM-DD]", nil
			}
			day = d
		}
	}
	return uc.cmds.Freeze.Execute(ctx, userID, name, day)
}

func parseLeaderboardArgs(args []string) (domain.Board, domain.ScopeKind, bool) {
	board, kind := domain.BoardStreak, domain.ScopeGlobal
	for _, a := range args {
		if b, err := domain.ParseBoard(a); err == nil {
			board = b
			continue
		}
		if k, err := domain.ParseScopeKind(a); err == nil {
			kind = k
			continue
		}
		return "", "", false
	}
	return board, kind, true
}
