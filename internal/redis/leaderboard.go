package redis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
)

// LeaderboardStore provides Redis-backed ranking operations. Each
// leaderboard period lives in its own sorted set keyed by player id.
type LeaderboardStore struct {
	client *redis.Client
	logger *slog.Logger
}

// NewLeaderboardStore creates a new Redis leaderboard store
func NewLeaderboardStore(cfg *config.RedisConfig, logger *slog.Logger) (*LeaderboardStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	// Test connection
	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return &LeaderboardStore{
		client: client,
		logger: logger,
	}, nil
}

// Close closes the Redis connection
func (s *LeaderboardStore) Close() error {
	return s.client.Close()
}

// periodKey returns the Redis key for a period's sorted set
func (s *LeaderboardStore) periodKey(period domain.Period) string {
	return fmt.Sprintf("leaderboard:%s", period)
}

// playerInfoKey returns the Redis key for the nickname snapshot cache
func (s *LeaderboardStore) playerInfoKey(playerID string) string {
	return fmt.Sprintf("player:%s:info", playerID)
}

// SetScoreIfGreater writes the player's score into a period's sorted set
// only when it exceeds the stored one. ZADD GT makes the compare-and-set
// atomic, so concurrent submissions cannot lose a higher score. Returns
// whether the entry was created or raised.
func (s *LeaderboardStore) SetScoreIfGreater(ctx context.Context, period domain.Period, playerID string, score int64) (bool, error) {
	changed, err := s.client.ZAddArgs(ctx, s.periodKey(period), redis.ZAddArgs{
		GT: true,
		Ch: true,
		Members: []redis.Z{
			{Score: float64(score), Member: playerID},
		},
	}).Result()
	if err != nil {
		return false, fmt.Errorf("setting score: %w", err)
	}
	return changed > 0, nil
}

// GetTopN returns the top N entries of a period in descending score order
func (s *LeaderboardStore) GetTopN(ctx context.Context, period domain.Period, n int) ([]domain.LeaderboardEntry, error) {
	results, err := s.client.ZRevRangeWithScores(ctx, s.periodKey(period), 0, int64(n-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("getting top n: %w", err)
	}

	entries := make([]domain.LeaderboardEntry, len(results))
	for i, result := range results {
		entries[i] = domain.LeaderboardEntry{
			Rank:     int64(i + 1),
			PlayerID: result.Member.(string),
			Score:    int64(result.Score),
			Period:   period,
		}
	}
	return entries, nil
}

// GetPlayerRank returns a player's 1-indexed rank within a period, or
// domain.ErrPlayerNotFound when the player has no entry.
func (s *LeaderboardStore) GetPlayerRank(ctx context.Context, period domain.Period, playerID string) (int64, error) {
	rank, err := s.client.ZRevRank(ctx, s.periodKey(period), playerID).Result()
	if err != nil {
		if err == redis.Nil {
			return 0, domain.ErrPlayerNotFound
		}
		return 0, fmt.Errorf("getting player rank: %w", err)
	}
	return rank + 1, nil
}

// GetCount returns the number of entries in a period
func (s *LeaderboardStore) GetCount(ctx context.Context, period domain.Period) (int64, error) {
	count, err := s.client.ZCard(ctx, s.periodKey(period)).Result()
	if err != nil {
		return 0, fmt.Errorf("getting count: %w", err)
	}
	return count, nil
}

// SetNickname caches a player's nickname snapshot for page annotation
func (s *LeaderboardStore) SetNickname(ctx context.Context, playerID, nickname string) error {
	err := s.client.HSet(ctx, s.playerInfoKey(playerID), "nickname", nickname).Err()
	if err != nil {
		return fmt.Errorf("setting nickname: %w", err)
	}
	return nil
}

// GetNicknames resolves nickname snapshots for a set of players using a
// single pipeline round trip. Players without cached info are omitted.
func (s *LeaderboardStore) GetNicknames(ctx context.Context, playerIDs []string) (map[string]string, error) {
	if len(playerIDs) == 0 {
		return map[string]string{}, nil
	}

	pipe := s.client.Pipeline()
	cmds := make([]*redis.StringCmd, len(playerIDs))
	for i, id := range playerIDs {
		cmds[i] = pipe.HGet(ctx, s.playerInfoKey(id), "nickname")
	}
	if _, err := pipe.Exec(ctx); err != nil && err != redis.Nil {
		return nil, fmt.Errorf("getting nicknames: %w", err)
	}

	nicknames := make(map[string]string, len(playerIDs))
	for i, cmd := range cmds {
		if nickname, err := cmd.Result(); err == nil {
			nicknames[playerIDs[i]] = nickname
		}
	}
	return nicknames, nil
}

// RemovePlayers removes a set of players from a period's sorted set
func (s *LeaderboardStore) RemovePlayers(ctx context.Context, period domain.Period, playerIDs []string) error {
	if len(playerIDs) == 0 {
		return nil
	}
	members := make([]interface{}, len(playerIDs))
	for i, id := range playerIDs {
		members[i] = id
	}
	if err := s.client.ZRem(ctx, s.periodKey(period), members...).Err(); err != nil {
		return fmt.Errorf("removing players: %w", err)
	}
	return nil
}

// ResetPeriod drops a period's sorted set entirely
func (s *LeaderboardStore) ResetPeriod(ctx context.Context, period domain.Period) error {
	if err := s.client.Del(ctx, s.periodKey(period)).Err(); err != nil {
		return fmt.Errorf("resetting period: %w", err)
	}
	return nil
}

// BatchSetScores loads scores into a period's sorted set using
// pipelining. Used by the rollover worker to rebuild from the database.
func (s *LeaderboardStore) BatchSetScores(ctx context.Context, period domain.Period, scores map[string]int64) error {
	if len(scores) == 0 {
		return nil
	}

	key := s.periodKey(period)
	pipe := s.client.Pipeline()
	for playerID, score := range scores {
		pipe.ZAdd(ctx, key, redis.Z{
			Score:  float64(score),
			Member: playerID,
		})
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("batch setting scores: %w", err)
	}
	return nil
}
