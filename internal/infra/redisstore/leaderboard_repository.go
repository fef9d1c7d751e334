// Package redisstore keeps leaderboard snapshots in Redis so every bot
// instance ranks against the same population.
package redisstore

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/validation"
)

const (
	indexKey    = "leaderboard:entries"
	entryPrefix = "leaderboard:entry:"
)

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a Redis client with short network timeouts.
func NewClient(opts Options) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
}

// LeaderboardRepository stores each entry as a hash plus a set of user ids.
type LeaderboardRepository struct {
	rdb       redis.UniversalClient
	validator *validation.Validator
	onSkip    domain.SkipFunc
}

// NewLeaderboardRepository creates the repository. onSkip may be nil.
func NewLeaderboardRepository(rdb redis.UniversalClient, v *validation.Validator, onSkip domain.SkipFunc) *LeaderboardRepository {
	return &LeaderboardRepository{rdb: rdb, validator: v, onSkip: onSkip}
}

func (r *LeaderboardRepository) SaveEntry(ctx context.Context, entry *domain.LeaderboardEntry) error {
	key := entryPrefix + entry.UserID
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeEntry(entry))
		pipe.SAdd(ctx, indexKey, entry.UserID)
		return nil
	})
	if err != nil {
		return domain.Unavailable("save leaderboard entry", err)
	}
	return nil
}

// ListEntries loads every stored entry, ordered by user id. Ids in the index
// whose hash has vanished are skipped, and so are hashes that fail to decode
// or validate.
func (r *LeaderboardRepository) ListEntries(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	ids, err := r.rdb.SMembers(ctx, indexKey).Result()
	if err != nil {
		return nil, domain.Unavailable("list leaderboard entries", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}
	slices.Sort(ids)

	cmds := make([]*redis.MapStringStringCmd, len(ids))
	_, err = r.rdb.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for i, id := range ids {
			cmds[i] = pipe.HGetAll(ctx, entryPrefix+id)
		}
		return nil
	})
	if err != nil {
		return nil, domain.Unavailable("list leaderboard entries", err)
	}

	entries := make([]*domain.LeaderboardEntry, 0, len(ids))
	for i, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		e, err := DecodeEntry(fields)
		if err == nil {
			if verr := r.validator.Validate(e); verr != nil {
				err = domain.Corrupt("decode leaderboard entry", verr)
			}
		}
		if err != nil {
			if r.onSkip != nil {
				r.onSkip(ids[i], err)
			}
			continue
		}
		entries = append(entries, e)
	}
	return entries, nil
}

func encodeEntry(e *domain.LeaderboardEntry) map[string]any {
	fields := map[string]any{
		"user_id":             e.UserID,
		"display_name":        e.DisplayName,
		"current_streak":      e.CurrentStreak,
		"longest_streak":      e.LongestStreak,
		"total_check_ins":     e.TotalCheckIns,
		"weekly_score":        e.WeeklyScore,
		"monthly_score":       e.MonthlyScore,
		"lifetime_score":      e.LifetimeScore,
		"consistency_percent": strconv.FormatFloat(e.ConsistencyPercent, 'f', -1, 64),
		"account_created_at":  e.AccountCreatedAt.String(),
		"snapshot_day":        e.SnapshotDay.String(),
		"alive_through":       e.StreakAliveThrough.String(),
	}
	optional := map[string]string{
		"avatar_token": e.AvatarToken,
		"life_path":    e.LifePath,
		"bio":          e.Bio,
		"friend_code":  e.FriendCode,
	}
	for k, v := range optional {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

// DecodeEntry parses a stored hash into a typed entry. Optional text fields
// default to empty and optional counters and days to zero; a missing user id
// or account creation day, or any unparsable value, is a corrupt record.
func DecodeEntry(fields map[string]string) (*domain.LeaderboardEntry, error) {
	e := &domain.LeaderboardEntry{
		UserID:      fields["user_id"],
		DisplayName: fields["display_name"],
		AvatarToken: fields["avatar_token"],
		LifePath:    fields["life_path"],
		Bio:         fields["bio"],
		FriendCode:  fields["friend_code"],
	}
	if e.UserID == "" {
		return nil, domain.Corrupt("decode leaderboard entry", fmt.Errorf("missing user_id"))
	}

	created, ok := fields["account_created_at"]
	if !ok {
		return nil, domain.Corrupt("decode leaderboard entry", fmt.Errorf("%s: missing account_created_at", e.UserID))
	}
	day, err := domain.ParseDay(created)
	if err != nil {
		return nil, domain.Corrupt("decode leaderboard entry", err)
	}
	e.AccountCreatedAt = day

	days := []struct {
		key string
		dst *domain.Day
	}{
		{"snapshot_day", &e.SnapshotDay},
		{"alive_through", &e.StreakAliveThrough},
	}
	for _, f := range days {
		raw := fields[f.key]
		if raw == "" {
			continue
		}
		d, err := domain.ParseDay(raw)
		if err != nil {
			return nil, domain.Corrupt("decode leaderboard entry", fmt.Errorf("%s: %s: %w", e.UserID, f.key, err))
		}
		*f.dst = d
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"current_streak", &e.CurrentStreak},
		{"longest_streak", &e.LongestStreak},
		{"total_check_ins", &e.TotalCheckIns},
		{"weekly_score", &e.WeeklyScore},
		{"monthly_score", &e.MonthlyScore},
		{"lifetime_score", &e.LifetimeScore},
	}
	for _, f := range ints {
		raw, ok := fields[f.key]
		if !ok || raw == "" {
			continue
		}
		n, err := strconv.Atoi(raw)
		if err != nil {
			return nil, domain.Corrupt("decode leaderboard entry", fmt.Errorf("%s: %s: %w", e.UserID, f.key, err))
		}
		*f.dst = n
	}

	if raw := fields["consistency_percent"]; raw != "" {
		pct, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, domain.Corrupt("decode leaderboard entry", fmt.Errorf("%s: consistency_percent: %w", e.UserID, err))
		}
		e.ConsistencyPercent = pct
	}
	return e, nil
}
