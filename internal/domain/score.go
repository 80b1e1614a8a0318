package domain

import "time"

// Period identifies a leaderboard scope with its own retention cutoff.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodWeekly  Period = "weekly"
	PeriodAllTime Period = "all_time"
)

// Periods lists every tracked leaderboard period, in fan-out order.
var Periods = []Period{PeriodDaily, PeriodWeekly, PeriodAllTime}

// ParsePeriod maps a client-supplied period string to a Period,
// defaulting to all_time for empty or unknown values.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case PeriodDaily, PeriodWeekly:
		return Period(s)
	default:
		return PeriodAllTime
	}
}

// Cutoff returns the retention boundary for the period relative to now.
// Daily starts at 00:00 UTC, weekly at Monday 00:00 UTC, all_time at
// the zero time.
func (p Period) Cutoff(now time.Time) time.Time {
	now = now.UTC()
	switch p {
	case PeriodDaily:
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	case PeriodWeekly:
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		offset := (int(day.Weekday()) + 6) % 7 // Monday-based week
		return day.AddDate(0, 0, -offset)
	default:
		return time.Time{}
	}
}

// ScoreSubmission is a request to record the result of a completed run.
type ScoreSubmission struct {
	PlayerID     string `json:"playerId"`
	Nickname     string `json:"nickname,omitempty"`
	Score        *int64 `json:"score"`
	SurvivalTime int64  `json:"survivalTime,omitempty"`
	SkinUsed     string `json:"skinUsed,omitempty"`
	CoinsEarned  int64  `json:"coinsEarned,omitempty"`
}

// ScoreEvent is the immutable record appended for every submission.
type ScoreEvent struct {
	ID           string    `json:"id"`
	PlayerID     string    `json:"playerId"`
	Nickname     string    `json:"nickname"`
	Score        int64     `json:"score"`
	SurvivalTime int64     `json:"survivalTime"`
	SkinUsed     string    `json:"skinUsed"`
	CoinsEarned  int64     `json:"coinsEarned"`
	Verified     bool      `json:"verified"`
	CreatedAt    time.Time `json:"createdAt"`
}

// LeaderboardEntry is one ranked row of a period leaderboard.
type LeaderboardEntry struct {
	Rank     int64     `json:"rank"`
	PlayerID string    `json:"playerId"`
	Nickname string    `json:"nickname"`
	Score    int64     `json:"score"`
	Period   Period    `json:"period"`
	At       time.Time `json:"timestamp"`
}

// LeaderboardQuery selects one page of a period leaderboard.
type LeaderboardQuery struct {
	Period   Period
	Limit    int
	PlayerID string
}

// LeaderboardPage is a ranked view of one period, annotated with the
// requesting player's rank when known.
type LeaderboardPage struct {
	Entries      []LeaderboardEntry `json:"leaderboard"`
	PlayerRank   *int64             `json:"playerRank"`
	TotalEntries int64              `json:"totalEntries"`
}
