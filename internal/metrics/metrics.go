package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the bot's collectors. Rejection reasons are recorded here
// and never echoed to users.
type Metrics struct {
	CheckIns             *prometheus.CounterVec
	Milestones           *prometheus.CounterVec
	FreezeRequests       *prometheus.CounterVec
	LeaderboardRejected  *prometheus.CounterVec
	LeaderboardSubmitted prometheus.Counter
	LeaderboardSkipped   prometheus.Counter
	CommandsThrottled    prometheus.Counter
}

// New creates the collectors and registers them with reg. A nil reg leaves
// them unregistered, which is what tests want.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		CheckIns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streak_checkins_total",
				Help: "Check-ins processed, by streak outcome",
			},
			[]string{"outcome"},
		),
		Milestones: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streak_milestones_total",
				Help: "Streak milestones celebrated",
			},
			[]string{"days"},
		),
		FreezeRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "streak_freeze_requests_total",
				Help: "Freeze day requests, by result",
			},
			[]string{"result"},
		),
		LeaderboardRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "leaderboard_entries_rejected_total",
				Help: "Leaderboard entries dropped by plausibility checks",
			},
			[]string{"rule"},
		),
		LeaderboardSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_entries_submitted_total",
			Help: "Leaderboard entries accepted for ranking",
		}),
		LeaderboardSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "leaderboard_entries_skipped_total",
			Help: "Stored leaderboard entries left out of a listing because they could not be read",
		}),
		CommandsThrottled: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "bot_commands_throttled_total",
			Help: "Chat commands dropped by the per-user rate limiter",
		}),
	}

	if reg != nil {
		reg.MustRegister(
			m.CheckIns,
			m.Milestones,
			m.FreezeRequests,
			m.LeaderboardRejected,
			m.LeaderboardSubmitted,
			m.LeaderboardSkipped,
			m.CommandsThrottled,
		)
	}
	return m
}
