package usecase

import (
	"time"

	"github.com/fardannozami/streak-bot/internal/domain"
)

// Clock turns wall-clock time into the bot's calendar day.
type Clock struct {
	Now      func() time.Time
	Location *time.Location
}

// Today returns the current day in the configured location.
func (c Clock) Today() domain.Day {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	return domain.DayOf(now(), c.Location)
}
