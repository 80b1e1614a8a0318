package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/flappyjet-backend/internal/domain"
)

// bonusMissionCount is the number of bonus mission types the generator
// picks among.
const bonusMissionCount = 3

// GenerateMissions deterministically builds the four-mission set for a
// player from their skill statistics. bonusIdx in [0,3) selects the
// random bonus mission type; the caller owns the randomness so tests
// can hold it fixed.
func GenerateMissions(catalog domain.Catalog, stats domain.PlayerStats, now time.Time, bonusIdx int) []domain.Mission {
	medium := catalog.TierRewards[domain.DifficultyMedium]

	playTarget, ok := catalog.PlayGamesTargets[stats.SkillLevel]
	if !ok {
		playTarget = catalog.PlayGamesDefault
	}
	streakTarget, ok := catalog.MaintainStreakTargets[stats.SkillLevel]
	if !ok {
		streakTarget = catalog.MaintainStreakDefault
	}
	scoreTarget := stats.BestScore * 7 / 10
	if scoreTarget < 3 {
		scoreTarget = 3
	}

	missions := []domain.Mission{
		newMission(domain.MissionPlayGames, "Frequent Flyer",
			fmt.Sprintf("Play %d games today", playTarget),
			playTarget, catalog.TierRewards[domain.DifficultyEasy], domain.DifficultyEasy, now),
		newMission(domain.MissionReachScore, "High Flyer",
			fmt.Sprintf("Reach a score of %d in a single run", scoreTarget),
			scoreTarget, medium, domain.DifficultyMedium, now),
		newMission(domain.MissionMaintainStreak, "On a Roll",
			fmt.Sprintf("Win %d games in a row", streakTarget),
			streakTarget, catalog.TierRewards[domain.DifficultyHard], domain.DifficultyHard, now),
	}

	switch bonusIdx {
	case 0:
		missions = append(missions, newMission(domain.MissionUseContinue, "Never Give Up",
			"Use a continue 2 times", 2, medium, domain.DifficultyMedium, now))
	case 1:
		missions = append(missions, newMission(domain.MissionCollectCoins, "Treasure Hunter",
			"Collect 300 coins", 300, medium*7/10, domain.DifficultyEasy, now))
	default:
		surviveTarget := int64(30)
		if stats.SkillLevel == "expert" {
			surviveTarget = 60
		}
		missions = append(missions, newMission(domain.MissionSurviveTime, "Endurance Run",
			fmt.Sprintf("Survive for %d seconds in one run", surviveTarget),
			surviveTarget, medium*3/2, domain.DifficultyHard, now))
	}

	return missions
}

func newMission(t domain.MissionType, title, description string, target, reward int64, difficulty domain.Difficulty, now time.Time) domain.Mission {
	return domain.Mission{
		ID:          fmt.Sprintf("%s_%s", t, uuid.NewString()),
		Type:        t,
		Title:       title,
		Description: description,
		Target:      target,
		Reward:      reward,
		Difficulty:  difficulty,
		Progress:    0,
		Completed:   false,
		CreatedAt:   now,
	}
}

// SyncMissions generates a fresh four-mission set for the player and
// replaces any stored set wholesale. Progress reconciliation happens
// client-side.
func (s *GameService) SyncMissions(ctx context.Context, playerID string, stats *domain.PlayerStats) ([]domain.Mission, error) {
	if playerID == "" {
		return nil, domain.MissingField("playerId")
	}
	if stats == nil {
		return nil, domain.MissingField("playerStats")
	}

	missions := GenerateMissions(s.catalog, *stats, time.Now().UTC(), rand.Intn(bonusMissionCount))

	if err := s.postgres.ReplaceMissions(ctx, playerID, missions); err != nil {
		return nil, fmt.Errorf("replacing missions: %w", err)
	}

	return missions, nil
}
