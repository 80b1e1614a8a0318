package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/flappyjet-backend/internal/domain"
)

// GetLeaderboard returns one ranked page of a period leaderboard. The
// requesting player's true rank is resolved from the sorted set even
// when they fall outside the page; playerRank stays null only when the
// player has no entry in the period.
func (s *GameService) GetLeaderboard(ctx context.Context, q domain.LeaderboardQuery) (*domain.LeaderboardPage, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = s.lbConfig.DefaultLimit
	}
	if limit > s.lbConfig.MaxLimit {
		limit = s.lbConfig.MaxLimit
	}

	entries, err := s.redis.GetTopN(ctx, q.Period, limit)
	if err != nil {
		return nil, fmt.Errorf("getting leaderboard page: %w", err)
	}
	s.annotateNicknames(ctx, q.Period, entries)

	page := &domain.LeaderboardPage{
		Entries:      entries,
		TotalEntries: int64(len(entries)),
	}

	if q.PlayerID != "" {
		rank, err := s.redis.GetPlayerRank(ctx, q.Period, q.PlayerID)
		switch {
		case err == nil:
			page.PlayerRank = &rank
		case errors.Is(err, domain.ErrPlayerNotFound):
			// no entry: playerRank stays null
		default:
			return nil, fmt.Errorf("getting player rank: %w", err)
		}
	}

	return page, nil
}

// annotateNicknames fills nickname snapshots from the Redis cache. On
// cache misses (cold cache after a restart) it falls back to the
// durable snapshots in the period's entries; only players absent from
// both get the default.
func (s *GameService) annotateNicknames(ctx context.Context, period domain.Period, entries []domain.LeaderboardEntry) {
	if len(entries) == 0 {
		return
	}

	ids := make([]string, len(entries))
	for i, entry := range entries {
		ids[i] = entry.PlayerID
	}

	nicknames, err := s.redis.GetNicknames(ctx, ids)
	if err != nil {
		s.logger.Warn("failed to resolve nicknames", "error", err)
		nicknames = map[string]string{}
	}

	if len(nicknames) < len(entries) {
		stored, err := s.postgres.GetPeriodNicknames(ctx, period)
		if err != nil {
			s.logger.Warn("failed to load stored nicknames", "period", period, "error", err)
		}
		for id, nickname := range stored {
			if _, ok := nicknames[id]; !ok {
				nicknames[id] = nickname
			}
		}
	}

	for i := range entries {
		if nickname, ok := nicknames[entries[i].PlayerID]; ok {
			entries[i].Nickname = nickname
		} else {
			entries[i].Nickname = domain.DefaultNickname
		}
	}
}
