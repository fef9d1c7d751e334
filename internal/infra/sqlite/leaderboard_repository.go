package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/fardannozami/streak-bot/internal/domain"
	"github.com/fardannozami/streak-bot/internal/validation"
)

// LeaderboardRepository keeps the latest snapshot per user when no remote
// store is configured.
type LeaderboardRepository struct {
	db        *sql.DB
	validator *validation.Validator
	onSkip    domain.SkipFunc
}

// NewLeaderboardRepository creates the repository. onSkip may be nil.
func NewLeaderboardRepository(db *sql.DB, v *validation.Validator, onSkip domain.SkipFunc) *LeaderboardRepository {
	return &LeaderboardRepository{db: db, validator: v, onSkip: onSkip}
}

func (r *LeaderboardRepository) SaveEntry(ctx context.Context, entry *domain.LeaderboardEntry) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return domain.Corrupt("encode leaderboard entry", err)
	}
	query := `
		INSERT INTO leaderboard_entries (user_id, payload) VALUES (?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload
	`
	if _, err := r.db.ExecContext(ctx, query, entry.UserID, string(payload)); err != nil {
		return domain.Unavailable("save leaderboard entry", err)
	}
	return nil
}

// ListEntries returns entries ordered by user id so input order is stable.
// Rows that fail to decode or validate are skipped.
func (r *LeaderboardRepository) ListEntries(ctx context.Context) ([]*domain.LeaderboardEntry, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT user_id, payload FROM leaderboard_entries ORDER BY user_id`)
	if err != nil {
		return nil, domain.Unavailable("list leaderboard entries", err)
	}
	defer rows.Close()

	var entries []*domain.LeaderboardEntry
	for rows.Next() {
		var userID, payload string
		if err := rows.Scan(&userID, &payload); err != nil {
			return nil, domain.Unavailable("list leaderboard entries", err)
		}
		e, err := r.decode(payload)
		if err != nil {
			r.skip(userID, err)
			continue
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list leaderboard entries", err)
	}
	return entries, nil
}

func (r *LeaderboardRepository) decode(payload string) (*domain.LeaderboardEntry, error) {
	var e domain.LeaderboardEntry
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		return nil, domain.Corrupt("decode leaderboard entry", err)
	}
	if err := r.validator.Validate(&e); err != nil {
		return nil, domain.Corrupt("decode leaderboard entry", err)
	}
	return &e, nil
}

func (r *LeaderboardRepository) skip(userID string, err error) {
	if r.onSkip != nil {
		r.onSkip(userID, err)
	}
}
