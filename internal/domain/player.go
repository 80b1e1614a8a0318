package domain

import "time"

// DefaultNickname is used when the client omits a nickname.
const DefaultNickname = "Anonymous"

// Player represents a player's server-side profile. BestScore and
// BestStreak are monotonically non-decreasing: syncs and score
// submissions only ever raise them.
type Player struct {
	ID          string    `json:"playerId"`
	Nickname    string    `json:"nickname"`
	BestScore   int64     `json:"bestScore"`
	BestStreak  int64     `json:"bestStreak"`
	Gems        int64     `json:"gems"`
	AdRemoval   bool      `json:"adRemoval"`
	BestScoreAt time.Time `json:"bestScoreAt,omitempty"`
	LastSyncAt  time.Time `json:"lastSyncAt"`
	CreatedAt   time.Time `json:"createdAt"`
}

// PlayerSyncRequest is the full profile payload the client uploads.
type PlayerSyncRequest struct {
	PlayerID   string `json:"playerId"`
	Nickname   string `json:"nickname"`
	BestScore  int64  `json:"bestScore"`
	BestStreak int64  `json:"bestStreak"`
	Gems       int64  `json:"gems"`
	AdRemoval  bool   `json:"adRemoval"`
}
