package domain

import (
	"context"
	"slices"
)

// CheckInRecord is one user's activity on one calendar day. The day is the
// natural key: a user never has two records for the same day.
type CheckInRecord struct {
	Date      Day  `json:"date"`
	CheckedIn bool `json:"checked_in"`
	Score     int  `json:"score"`
}

// StreakState is the running summary derived from a user's check-ins.
type StreakState struct {
	CurrentStreak   int  `json:"current_streak"`
	LongestStreak   int  `json:"longest_streak"`
	LastCheckInDate *Day `json:"last_check_in_date,omitempty"`
	TotalCheckIns   int  `json:"total_check_ins"`
	// LastMilestone is the highest milestone already celebrated. It never moves back.
	LastMilestone int `json:"last_milestone"`
}

// Clone returns a deep copy so engines can work on state without aliasing.
func (s StreakState) Clone() StreakState {
	if s.LastCheckInDate != nil {
		d := *s.LastCheckInDate
		s.LastCheckInDate = &d
	}
	return s
}

// Tier selects the monthly freeze quota.
type Tier string

const (
	TierFree    Tier = "free"
	TierPremium Tier = "premium"
)

// FreezeLedger holds every protected day. Month and Remaining record the
// month of the latest freeze and what was left of its quota afterwards.
type FreezeLedger struct {
	Month     Month
	Remaining int
	Protected []Day
}

// IsProtected reports whether d was frozen.
func (l *FreezeLedger) IsProtected(d Day) bool {
	if l == nil {
		return false
	}
	return slices.Contains(l.Protected, d)
}

// CoversBetween reports whether every day strictly between from and to is
// protected. An empty interval is trivially covered.
func (l *FreezeLedger) CoversBetween(from, to Day) bool {
	for d := from + 1; d < to; d++ {
		if !l.IsProtected(d) {
			return false
		}
	}
	return true
}

// UsedIn counts the protected days that fall in m.
func (l *FreezeLedger) UsedIn(m Month) int {
	if l == nil {
		return 0
	}
	n := 0
	for _, d := range l.Protected {
		if d.Month() == m {
			n++
		}
	}
	return n
}

// Protect adds d to the protected set, keeping it sorted.
func (l *FreezeLedger) Protect(d Day) {
	i, found := slices.BinarySearch(l.Protected, d)
	if found {
		return
	}
	l.Protected = slices.Insert(l.Protected, i, d)
}

// Profile holds the identity and social facts of a user.
type Profile struct {
	UserID      string
	DisplayName string
	LifePath    string
	FriendCode  string
	Tier        Tier
	CreatedAt   Day
	Friends     []string
}

// CheckInRepository persists check-in history, streak state and freezes.
// Implementations return (nil, nil) from GetState when the user has no state
// yet and wrap storage failures as CodeUnavailable errors.
type CheckInRepository interface {
	GetState(ctx context.Context, userID string) (*StreakState, error)
	// SaveCheckIn stores the day's record and the resulting state atomically.
	SaveCheckIn(ctx context.Context, userID string, record CheckInRecord, state *StreakState) error
	SaveState(ctx context.Context, userID string, state *StreakState) error
	ListRecords(ctx context.Context, userID string, from Day) ([]CheckInRecord, error)
	GetFreezeLedger(ctx context.Context, userID string) (*FreezeLedger, error)
	SaveFreezeLedger(ctx context.Context, userID string, ledger *FreezeLedger) error
}

// ProfileRepository persists profiles and friendships.
type ProfileRepository interface {
	GetProfile(ctx context.Context, userID string) (*Profile, error)
	UpsertProfile(ctx context.Context, profile *Profile) error
	FindByFriendCode(ctx context.Context, code string) (*Profile, error)
	AddFriendship(ctx context.Context, userID, friendID string) error
}
