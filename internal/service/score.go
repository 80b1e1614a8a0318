package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/flappyjet-backend/internal/domain"
)

// CheckScore applies the anti-cheat heuristic. The score is verified iff
// it does not exceed the plausibility threshold; a survival time shorter
// than score*ratio marks the run as suspicious. Neither outcome blocks
// the submission.
func CheckScore(score, survivalTime int64, maxPlausible int64, minSurvivalRatio float64) (verified, suspicious bool) {
	verified = score <= maxPlausible
	suspicious = float64(survivalTime) < float64(score)*minSurvivalRatio
	return verified, suspicious
}

// SubmitScore records the result of a completed run: appends the
// immutable score event, raises the player's best score, and fans the
// score out to every leaderboard period. Returns the anti-cheat verdict.
func (s *GameService) SubmitScore(ctx context.Context, sub domain.ScoreSubmission) (bool, error) {
	if sub.PlayerID == "" {
		return false, domain.MissingField("playerId")
	}
	if sub.Score == nil {
		return false, domain.MissingField("score")
	}

	score := *sub.Score
	nickname := sub.Nickname
	if nickname == "" {
		nickname = domain.DefaultNickname
	}
	skin := sub.SkinUsed
	if skin == "" {
		skin = s.catalog.DefaultSkin
	}

	verified, suspicious := CheckScore(score, sub.SurvivalTime, s.acConfig.MaxPlausibleScore, s.acConfig.MinSurvivalRatio)
	if suspicious {
		s.logger.Warn("suspicious score submission",
			"player_id", sub.PlayerID,
			"score", score,
			"survival_time", sub.SurvivalTime,
		)
	}

	now := time.Now().UTC()
	event := domain.ScoreEvent{
		ID:           uuid.NewString(),
		PlayerID:     sub.PlayerID,
		Nickname:     nickname,
		Score:        score,
		SurvivalTime: sub.SurvivalTime,
		SkinUsed:     skin,
		CoinsEarned:  sub.CoinsEarned,
		Verified:     verified,
		CreatedAt:    now,
	}
	if err := s.postgres.RecordScoreEvent(ctx, event); err != nil {
		return false, fmt.Errorf("recording score event: %w", err)
	}

	if err := s.postgres.RaiseBestScore(ctx, sub.PlayerID, nickname, score, now); err != nil {
		return false, fmt.Errorf("updating best score: %w", err)
	}

	if err := s.redis.SetNickname(ctx, sub.PlayerID, nickname); err != nil {
		s.logger.Warn("failed to cache nickname", "player_id", sub.PlayerID, "error", err)
	}

	if err := s.fanOut(ctx, sub.PlayerID, nickname, score, now); err != nil {
		return false, err
	}

	return verified, nil
}

// fanOut writes the score into every tracked period, atomically keeping
// each entry at the player's period maximum, and broadcasts the periods
// whose standings actually changed.
func (s *GameService) fanOut(ctx context.Context, playerID, nickname string, score int64, now time.Time) error {
	for _, period := range domain.Periods {
		changed, err := s.redis.SetScoreIfGreater(ctx, period, playerID, score)
		if err != nil {
			return fmt.Errorf("fanning out to %s: %w", period, err)
		}

		if err := s.postgres.UpsertLeaderboardEntry(ctx, period, playerID, nickname, score, now); err != nil {
			return fmt.Errorf("persisting %s entry: %w", period, err)
		}

		if changed && s.hub != nil {
			s.broadcastPeriod(ctx, period)
		}
	}
	return nil
}

// broadcastTopN bounds the page pushed to websocket subscribers.
const broadcastTopN = 10

func (s *GameService) broadcastPeriod(ctx context.Context, period domain.Period) {
	entries, err := s.redis.GetTopN(ctx, period, broadcastTopN)
	if err != nil {
		s.logger.Warn("failed to load entries for broadcast", "period", period, "error", err)
		return
	}
	total, err := s.redis.GetCount(ctx, period)
	if err != nil {
		s.logger.Warn("failed to count entries for broadcast", "period", period, "error", err)
		return
	}
	s.annotateNicknames(ctx, period, entries)
	s.hub.BroadcastLeaderboardUpdate(period, entries, total)
}
