package domain

import "time"

// MissionType identifies what a daily mission asks the player to do.
type MissionType string

const (
	MissionPlayGames      MissionType = "playGames"
	MissionReachScore     MissionType = "reachScore"
	MissionMaintainStreak MissionType = "maintainStreak"
	MissionUseContinue    MissionType = "useContinue"
	MissionCollectCoins   MissionType = "collectCoins"
	MissionSurviveTime    MissionType = "surviveTime"
)

// Difficulty is the reward tier of a mission.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
	DifficultyExpert Difficulty = "expert"
)

// Mission is one generated daily objective. Progress starts at zero and
// is reconciled client-side; the server replaces the full set on every
// mission sync.
type Mission struct {
	ID          string      `json:"id"`
	Type        MissionType `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Target      int64       `json:"target"`
	Reward      int64       `json:"reward"`
	Difficulty  Difficulty  `json:"difficulty"`
	Progress    int64       `json:"progress"`
	Completed   bool        `json:"completed"`
	CreatedAt   time.Time   `json:"createdAt"`
}

// PlayerStats carries the skill inputs mission generation depends on.
type PlayerStats struct {
	BestScore  int64  `json:"bestScore"`
	SkillLevel string `json:"skillLevel"`
}

// MissionSyncRequest asks the server to regenerate a player's missions.
type MissionSyncRequest struct {
	PlayerID        string       `json:"playerId"`
	PlayerStats     *PlayerStats `json:"playerStats"`
	CurrentMissions []Mission    `json:"currentMissions,omitempty"`
}
