package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flappyjet-backend/internal/domain"
)

// SyncPlayer merges a client-uploaded profile into the stored one.
// BestScore and BestStreak never decrease; every other field is
// last-write-wins. The player is created on first sync.
func (s *GameService) SyncPlayer(ctx context.Context, req domain.PlayerSyncRequest) error {
	if req.PlayerID == "" {
		return domain.MissingField("playerId")
	}

	now := time.Now().UTC()
	if err := s.postgres.SyncPlayer(ctx, req, now); err != nil {
		return fmt.Errorf("syncing player: %w", err)
	}

	nickname := req.Nickname
	if nickname == "" {
		nickname = domain.DefaultNickname
	}
	if err := s.redis.SetNickname(ctx, req.PlayerID, nickname); err != nil {
		s.logger.Warn("failed to cache nickname", "player_id", req.PlayerID, "error", err)
	}

	return nil
}
