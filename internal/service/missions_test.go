package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flappyjet-backend/internal/domain"
)

func TestGenerateMissionsDeterministicTargets(t *testing.T) {
	catalog := domain.DefaultCatalog()
	now := time.Date(2025, time.March, 13, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		skill        string
		bestScore    int64
		playTarget   int64
		scoreTarget  int64
		streakTarget int64
	}{
		{"beginner", 10, 3, 7, 2},
		{"novice", 20, 4, 14, 3},
		{"intermediate", 50, 5, 35, 3},
		{"advanced", 100, 6, 70, 4},
		{"expert", 400, 8, 280, 5},
		{"unknown", 100, 4, 70, 3}, // falls back to defaults
	}

	for _, tt := range tests {
		t.Run(tt.skill, func(t *testing.T) {
			stats := domain.PlayerStats{BestScore: tt.bestScore, SkillLevel: tt.skill}
			missions := GenerateMissions(catalog, stats, now, 0)
			require.Len(t, missions, 4)

			assert.Equal(t, domain.MissionPlayGames, missions[0].Type)
			assert.Equal(t, tt.playTarget, missions[0].Target)
			assert.Equal(t, int64(100), missions[0].Reward)
			assert.Equal(t, domain.DifficultyEasy, missions[0].Difficulty)

			assert.Equal(t, domain.MissionReachScore, missions[1].Type)
			assert.Equal(t, tt.scoreTarget, missions[1].Target)
			assert.Equal(t, int64(200), missions[1].Reward)

			assert.Equal(t, domain.MissionMaintainStreak, missions[2].Type)
			assert.Equal(t, tt.streakTarget, missions[2].Target)
			assert.Equal(t, int64(300), missions[2].Reward)
			assert.Equal(t, domain.DifficultyHard, missions[2].Difficulty)
		})
	}
}

func TestGenerateMissionsReachScoreFloor(t *testing.T) {
	catalog := domain.DefaultCatalog()
	stats := domain.PlayerStats{BestScore: 2, SkillLevel: "beginner"}

	missions := GenerateMissions(catalog, stats, time.Now(), 0)
	require.Len(t, missions, 4)
	// floor(2*0.7)=1, clamped to the minimum of 3
	assert.Equal(t, int64(3), missions[1].Target)
}

func TestGenerateMissionsBonusVariants(t *testing.T) {
	catalog := domain.DefaultCatalog()
	now := time.Now().UTC()
	stats := domain.PlayerStats{BestScore: 100, SkillLevel: "intermediate"}

	t.Run("use continue", func(t *testing.T) {
		bonus := GenerateMissions(catalog, stats, now, 0)[3]
		assert.Equal(t, domain.MissionUseContinue, bonus.Type)
		assert.Equal(t, int64(2), bonus.Target)
		assert.Equal(t, int64(200), bonus.Reward)
		assert.Equal(t, domain.DifficultyMedium, bonus.Difficulty)
	})

	t.Run("collect coins", func(t *testing.T) {
		bonus := GenerateMissions(catalog, stats, now, 1)[3]
		assert.Equal(t, domain.MissionCollectCoins, bonus.Type)
		assert.Equal(t, int64(300), bonus.Target)
		assert.Equal(t, int64(140), bonus.Reward)
		assert.Equal(t, domain.DifficultyEasy, bonus.Difficulty)
	})

	t.Run("survive time", func(t *testing.T) {
		bonus := GenerateMissions(catalog, stats, now, 2)[3]
		assert.Equal(t, domain.MissionSurviveTime, bonus.Type)
		assert.Equal(t, int64(30), bonus.Target)
		assert.Equal(t, int64(300), bonus.Reward)
		assert.Equal(t, domain.DifficultyHard, bonus.Difficulty)
	})

	t.Run("survive time expert target", func(t *testing.T) {
		expert := domain.PlayerStats{BestScore: 500, SkillLevel: "expert"}
		bonus := GenerateMissions(catalog, expert, now, 2)[3]
		assert.Equal(t, int64(60), bonus.Target)
	})
}

func TestGenerateMissionsFreshProgress(t *testing.T) {
	catalog := domain.DefaultCatalog()
	stats := domain.PlayerStats{BestScore: 250, SkillLevel: "advanced"}

	for _, m := range GenerateMissions(catalog, stats, time.Now(), 1) {
		assert.Zero(t, m.Progress)
		assert.False(t, m.Completed)
		assert.NotEmpty(t, m.ID)
		assert.NotEmpty(t, m.Title)
		assert.NotEmpty(t, m.Description)
	}
}

func TestGenerateMissionsReproducible(t *testing.T) {
	catalog := domain.DefaultCatalog()
	now := time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC)
	stats := domain.PlayerStats{BestScore: 100, SkillLevel: "advanced"}

	first := GenerateMissions(catalog, stats, now, 2)
	second := GenerateMissions(catalog, stats, now, 2)
	require.Len(t, second, len(first))

	// Everything except the generated ids matches run to run
	for i := range first {
		assert.Equal(t, first[i].Type, second[i].Type)
		assert.Equal(t, first[i].Target, second[i].Target)
		assert.Equal(t, first[i].Reward, second[i].Reward)
		assert.Equal(t, first[i].Difficulty, second[i].Difficulty)
	}
}
