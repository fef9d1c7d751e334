package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/fardannozami/streak-bot/internal/domain"
)

// Store owns the SQLite schema shared by the repositories in this package.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// InitTables creates every table the repositories need.
func (s *Store) InitTables(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS check_ins (
			user_id TEXT NOT NULL,
			day TEXT NOT NULL,
			checked_in INTEGER NOT NULL DEFAULT 0,
			score INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (user_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS streak_states (
			user_id TEXT PRIMARY KEY,
			current_streak INTEGER NOT NULL DEFAULT 0,
			longest_streak INTEGER NOT NULL DEFAULT 0,
			last_check_in_date TEXT,
			total_check_ins INTEGER NOT NULL DEFAULT 0,
			last_milestone INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS freeze_ledgers (
			user_id TEXT PRIMARY KEY,
			month TEXT NOT NULL DEFAULT '',
			remaining INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS freeze_days (
			user_id TEXT NOT NULL,
			day TEXT NOT NULL,
			PRIMARY KEY (user_id, day)
		)`,
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			display_name TEXT NOT NULL DEFAULT '',
			life_path TEXT NOT NULL DEFAULT '',
			friend_code TEXT NOT NULL UNIQUE,
			tier TEXT NOT NULL DEFAULT 'free',
			created_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS friendships (
			user_id TEXT NOT NULL,
			friend_id TEXT NOT NULL,
			PRIMARY KEY (user_id, friend_id)
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			user_id TEXT PRIMARY KEY,
			payload TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return domain.Unavailable("init tables", err)
		}
	}
	return nil
}

func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

func nullDay(d *domain.Day) sql.NullString {
	if d == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: d.String(), Valid: true}
}
