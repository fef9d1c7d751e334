package sqlite

import (
	"context"
	"database/sql"

	"github.com/fardannozami/streak-bot/internal/domain"
)

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

const profileColumns = `user_id, display_name, life_path, friend_code, tier, created_at`

func (r *ProfileRepository) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE user_id = ?`, userID)
	return r.scanProfile(ctx, row)
}

func (r *ProfileRepository) FindByFriendCode(ctx context.Context, code string) (*domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+profileColumns+` FROM profiles WHERE friend_code = ?`, code)
	return r.scanProfile(ctx, row)
}

func (r *ProfileRepository) scanProfile(ctx context.Context, row *sql.Row) (*domain.Profile, error) {
	var p domain.Profile
	var tier, createdAt string
	err := row.Scan(&p.UserID, &p.DisplayName, &p.LifePath, &p.FriendCode, &tier, &createdAt)
	if isNoRows(err) {
		return nil, nil
	}
	if err != nil {
		return nil, domain.Unavailable("get profile", err)
	}
	p.Tier = domain.Tier(tier)
	if p.CreatedAt, err = domain.ParseDay(createdAt); err != nil {
		return nil, domain.Corrupt("get profile", err)
	}

	rows, err := r.db.QueryContext(ctx, `SELECT friend_id FROM friendships WHERE user_id = ? ORDER BY friend_id`, p.UserID)
	if err != nil {
		return nil, domain.Unavailable("list friends", err)
	}
	defer rows.Close()
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, domain.Unavailable("list friends", err)
		}
		p.Friends = append(p.Friends, id)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unavailable("list friends", err)
	}
	return &p, nil
}

// UpsertProfile writes everything except CreatedAt and FriendCode, which
// are fixed when the profile is first inserted.
func (r *ProfileRepository) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	query := `
		INSERT INTO profiles (` + profileColumns + `)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			display_name = excluded.display_name,
			life_path = excluded.life_path,
			tier = excluded.tier
	`
	_, err := r.db.ExecContext(ctx, query, p.UserID, p.DisplayName, p.LifePath, p.FriendCode, string(p.Tier), p.CreatedAt.String())
	if err != nil {
		return domain.Unavailable("upsert profile", err)
	}
	return nil
}

// AddFriendship links both users to each other.
func (r *ProfileRepository) AddFriendship(ctx context.Context, userID, friendID string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Unavailable("add friendship", err)
	}
	defer tx.Rollback()

	query := `INSERT OR IGNORE INTO friendships (user_id, friend_id) VALUES (?, ?)`
	if _, err := tx.ExecContext(ctx, query, userID, friendID); err != nil {
		return domain.Unavailable("add friendship", err)
	}
	if _, err := tx.ExecContext(ctx, query, friendID, userID); err != nil {
		return domain.Unavailable("add friendship", err)
	}
	if err := tx.Commit(); err != nil {
		return domain.Unavailable("add friendship", err)
	}
	return nil
}

// ResolveLIDToPhone maps a WhatsApp linked identity to the phone number
// whatsmeow recorded for it, so a user keeps one id across both forms.
// Unknown identities come back unchanged.
func (r *ProfileRepository) ResolveLIDToPhone(ctx context.Context, lid string) string {
	var pn string
	err := r.db.QueryRowContext(ctx, `SELECT pn FROM whatsmeow_lid_map WHERE lid = ?`, lid).Scan(&pn)
	if err != nil || pn == "" {
		return lid
	}
	return pn
}
