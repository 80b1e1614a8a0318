package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
	"github.com/flappyjet-backend/internal/purchase"
)

// RankingStore is the ranking layer behind leaderboard queries and
// score fan-out. Implemented by the Redis sorted-set store.
type RankingStore interface {
	SetScoreIfGreater(ctx context.Context, period domain.Period, playerID string, score int64) (bool, error)
	GetTopN(ctx context.Context, period domain.Period, n int) ([]domain.LeaderboardEntry, error)
	GetPlayerRank(ctx context.Context, period domain.Period, playerID string) (int64, error)
	GetCount(ctx context.Context, period domain.Period) (int64, error)
	SetNickname(ctx context.Context, playerID, nickname string) error
	GetNicknames(ctx context.Context, playerIDs []string) (map[string]string, error)
}

// GameStore is the durable system of record. Implemented by the
// Postgres repository.
type GameStore interface {
	SyncPlayer(ctx context.Context, req domain.PlayerSyncRequest, now time.Time) error
	RaiseBestScore(ctx context.Context, playerID, nickname string, score int64, now time.Time) error
	RecordScoreEvent(ctx context.Context, event domain.ScoreEvent) error
	UpsertLeaderboardEntry(ctx context.Context, period domain.Period, playerID, nickname string, score int64, now time.Time) error
	GetPeriodNicknames(ctx context.Context, period domain.Period) (map[string]string, error)
	ReplaceMissions(ctx context.Context, playerID string, missions []domain.Mission) error
	InsertPurchase(ctx context.Context, record domain.PurchaseRecord) (bool, error)
	AddGems(ctx context.Context, playerID string, delta int64, now time.Time) error
	SetAdRemoval(ctx context.Context, playerID string, now time.Time) error
	InsertAnalyticsEvent(ctx context.Context, event domain.AnalyticsEvent) error
	GetRemoteConfig(ctx context.Context) (*domain.RemoteConfig, error)
}

// Broadcaster pushes leaderboard changes to connected spectators.
type Broadcaster interface {
	BroadcastLeaderboardUpdate(period domain.Period, entries []domain.LeaderboardEntry, total int64)
}

// AnalyticsPublisher carries analytics events off the request path.
type AnalyticsPublisher interface {
	Publish(event domain.AnalyticsEvent) error
}

// GameService provides the business logic behind every API endpoint.
type GameService struct {
	redis     RankingStore
	postgres  GameStore
	validator purchase.Validator
	catalog   domain.Catalog
	lbConfig  *config.LeaderboardConfig
	acConfig  *config.AntiCheatConfig
	logger    *slog.Logger
	hub       Broadcaster
	analytics AnalyticsPublisher
}

// NewGameService creates a new game service
func NewGameService(
	redis RankingStore,
	postgres GameStore,
	validator purchase.Validator,
	catalog domain.Catalog,
	lbConfig *config.LeaderboardConfig,
	acConfig *config.AntiCheatConfig,
	logger *slog.Logger,
) *GameService {
	return &GameService{
		redis:     redis,
		postgres:  postgres,
		validator: validator,
		catalog:   catalog,
		lbConfig:  lbConfig,
		acConfig:  acConfig,
		logger:    logger,
	}
}

// SetHub attaches the websocket hub used for leaderboard broadcasts
func (s *GameService) SetHub(hub Broadcaster) {
	s.hub = hub
}

// SetAnalyticsPublisher attaches the Kafka producer for analytics
// events. Without one, events are written straight to the database.
func (s *GameService) SetAnalyticsPublisher(p AnalyticsPublisher) {
	s.analytics = p
}
