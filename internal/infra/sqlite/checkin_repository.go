package sqlite

import (
	"context"
	"database/sql"

	"github.com/fardannozami/streak-bot/internal/domain"
)

type CheckInRepository struct {
	db *sql.DB
}

func NewCheckInRepository(db *sql.DB) *CheckInRepository {
	return &CheckInRepository{db: db}
}

func (r *CheckInRepository) GetState(ctx context.Context, userID string) (*domain.StreakState, error) {
	query := `SELECT current_streak, longest_streak, last_check_in_date, total_check_ins, last_milestone
		FROM streak_states WHERE user_id = ?`
	row := r.db.QueryRowContext(ctx, query, userID)

	var state domain.StreakState
	var last sql.NullString
	err := row.Scan(&state.CurrentStreak, &state.LongestStreak, &last, &state.TotalCheckIns, &state.LastMilestone)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable("get streak state", err)
	}

	if last.Valid {
		d, err := domain.ParseDay(last.String)
		if err != nil {
			return nil, domain.Corrupt("get streak state", err)
		}
		state.LastCheckInDate = &d
	}
	return &state, nil
}

func (r *CheckInRepository) SaveState(ctx context.Context, userID string, state *domain.StreakState) error {
	if err := upsertState(ctx, r.db, userID, state); err != nil {
		return domain.Unavailable("save streak state", err)
	}
	return nil
}

// SaveCheckIn merges the day's record (a day stays checked in once it is,
// and keeps its highest score) and writes the state in one transaction.
func (r *CheckInRepository) SaveCheckIn(ctx context.Context, userID string, record domain.CheckInRecord, state *domain.StreakState) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Unavailable("save check-in", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO check_ins (user_id, day, checked_in, score)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, day) DO UPDATE SET
			checked_in = MAX(checked_in, excluded.checked_in),
			score = MAX(score, excluded.score)
	`
	if _, err := tx.ExecContext(ctx, query, userID, record.Date.String(), record.CheckedIn, record.Score); err != nil {
		return domain.Unavailable("save check-in", err)
	}
	if err := upsertState(ctx, tx, userID, state); err != nil {
		return domain.Unavailable("save check-in", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Unavailable("save check-in", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func upsertState(ctx context.Context, db execer, userID string, state *domain.StreakState) error {
	query := `
		INSERT INTO streak_states (user_id, current_streak, longest_streak, last_check_in_date, total_check_ins, last_milestone)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			last_check_in_date = excluded.last_check_in_date,
			total_check_ins = excluded.total_check_ins,
			last_milestone = excluded.last_milestone
	`
	_, err := db.ExecContext(ctx, query, userID, state.CurrentStreak, state.LongestStreak,
		nullDay(state.LastCheckInDate), state.TotalCheckIns, state.LastMilestone)
	return err
}

// ListRecords returns records on or after from, oldest first.
func (r *CheckInRepository) ListRecords(ctx context.Context, userID string, from domain.Day) ([]domain.CheckInRecord, error) {
	query := `SELECT day, checked_in, score FROM check_ins WHERE user_id = ? AND day >= ? ORDER BY day`
	rows, err := r.db.QueryContext(ctx, query, userID, from.String())
	if err != nil {
		return nil, domain.Unavailable("list check-ins", err)
	}
	defer rows.Close()

	var records []domain.CheckInRecord
	for rows.Next() {
		var rec domain.CheckInRecord
		var day string
		if err := rows.Scan(&day, &rec.CheckedIn, &rec.Score); err != nil {
			return nil, domain.Unavailable("list check-ins", err)
		}
		rec.Date, err = domain.ParseDay(day)
		if err != nil {
			return nil, domain.Corrupt("list check-ins", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list check-ins", err)
	}
	return records, nil
}

// GetFreezeLedger never returns nil: a user without freezes gets an empty ledger.
func (r *CheckInRepository) GetFreezeLedger(ctx context.Context, userID string) (*domain.FreezeLedger, error) {
	ledger := &domain.FreezeLedger{}

	var month string
	err := r.db.QueryRowContext(ctx, `SELECT month, remaining FROM freeze_ledgers WHERE user_id = ?`, userID).
		Scan(&month, &ledger.Remaining)
	if err != nil && !isNoRows(err) {
		return nil, domain.Unavailable("get freeze ledger", err)
	}
	if ledger.Month, err = domain.ParseMonth(month); err != nil {
		return nil, domain.Corrupt("get freeze ledger", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT day FROM freeze_days WHERE user_id = ? ORDER BY day`, userID)
	if err != nil {
		return nil, domain.Unavailable("get freeze ledger", err)
	}
	defer rows.Close()

	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return nil, domain.Unavailable("get freeze ledger", err)
		}
		d, err := domain.ParseDay(day)
		if err != nil {
			return nil, domain.Corrupt("get freeze ledger", err)
		}
		ledger.Protected = append(ledger.Protected, d)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("get freeze ledger", err)
	}
	return ledger, nil
}

func (r *CheckInRepository) SaveFreezeLedger(ctx context.Context, userID string, ledger *domain.FreezeLedger) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Unavailable("save freeze ledger", err)
	}
	defer tx.Rollback()

	month := ""
	if !ledger.Month.IsZero() {
		month = ledger.Month.String()
	}
	query := `
		INSERT INTO freeze_ledgers (user_id, month, remaining) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET month = excluded.month, remaining = excluded.remaining
	`
	if _, err := tx.ExecContext(ctx, query, userID, month, ledger.Remaining); err != nil {
		return domain.Unavailable("save freeze ledger", err)
	}
	for _, d := range ledger.Protected {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO freeze_days (user_id, day) VALUES (?, ?)`, userID, d.String()); err != nil {
			return domain.Unavailable("save freeze ledger", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return domain.Unavailable("save freeze ledger", err)
	}
	return nil
}
