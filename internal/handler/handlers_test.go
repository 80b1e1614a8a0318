package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flappyjet-backend/internal/domain"
	"github.com/flappyjet-backend/internal/handler"
	"github.com/flappyjet-backend/internal/websocket"
)

// stubService implements handler.GameService with overridable behavior
type stubService struct {
	syncPlayerFn   func(ctx context.Context, req domain.PlayerSyncRequest) error
	submitScoreFn  func(ctx context.Context, sub domain.ScoreSubmission) (bool, error)
	leaderboardFn  func(ctx context.Context, q domain.LeaderboardQuery) (*domain.LeaderboardPage, error)
	syncMissionsFn func(ctx context.Context, playerID string, stats *domain.PlayerStats) ([]domain.Mission, error)
	purchaseFn     func(ctx context.Context, req domain.PurchaseRequest) (bool, error)
	reportEventFn  func(ctx context.Context, event domain.AnalyticsEvent) error
	remoteConfigFn func(ctx context.Context, req domain.RemoteConfigRequest) (map[string]any, error)
}

func (s *stubService) SyncPlayer(ctx context.Context, req domain.PlayerSyncRequest) error {
	if s.syncPlayerFn != nil {
		return s.syncPlayerFn(ctx, req)
	}
	if req.PlayerID == "" {
		return domain.MissingField("playerId")
	}
	return nil
}

func (s *stubService) SubmitScore(ctx context.Context, sub domain.ScoreSubmission) (bool, error) {
	if s.submitScoreFn != nil {
		return s.submitScoreFn(ctx, sub)
	}
	if sub.PlayerID == "" {
		return false, domain.MissingField("playerId")
	}
	if sub.Score == nil {
		return false, domain.MissingField("score")
	}
	return true, nil
}

func (s *stubService) GetLeaderboard(ctx context.Context, q domain.LeaderboardQuery) (*domain.LeaderboardPage, error) {
	if s.leaderboardFn != nil {
		return s.leaderboardFn(ctx, q)
	}
	return &domain.LeaderboardPage{}, nil
}

func (s *stubService) SyncMissions(ctx context.Context, playerID string, stats *domain.PlayerStats) ([]domain.Mission, error) {
	if s.syncMissionsFn != nil {
		return s.syncMissionsFn(ctx, playerID, stats)
	}
	if playerID == "" {
		return nil, domain.MissingField("playerId")
	}
	if stats == nil {
		return nil, domain.MissingField("playerStats")
	}
	return []domain.Mission{}, nil
}

func (s *stubService) ValidatePurchase(ctx context.Context, req domain.PurchaseRequest) (bool, error) {
	if s.purchaseFn != nil {
		return s.purchaseFn(ctx, req)
	}
	return true, nil
}

func (s *stubService) ReportEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	if s.reportEventFn != nil {
		return s.reportEventFn(ctx, event)
	}
	if event.Name == "" {
		return domain.MissingField("eventName")
	}
	return nil
}

func (s *stubService) RemoteConfig(ctx context.Context, req domain.RemoteConfigRequest) (map[string]any, error) {
	if s.remoteConfigFn != nil {
		return s.remoteConfigFn(ctx, req)
	}
	return map[string]any{}, nil
}

func newTestRouter(svc handler.GameService) http.Handler {
	logger := slog.Default()
	return handler.NewHandler(svc, websocket.NewHub(logger), logger).Router()
}

func post(t *testing.T, router http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestSubmitScoreEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("accepts a valid submission", func(t *testing.T) {
		rec := post(t, router, "/submitScore", map[string]any{
			"playerId":     "p1",
			"score":        50,
			"survivalTime": 40,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, true, body["verified"])
	})

	t.Run("rejects a missing score", func(t *testing.T) {
		rec := post(t, router, "/submitScore", map[string]any{"playerId": "p1"})

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], "score")
	})

	t.Run("rejects a missing playerId", func(t *testing.T) {
		rec := post(t, router, "/submitScore", map[string]any{"score": 50})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("surfaces unverified scores", func(t *testing.T) {
		router := newTestRouter(&stubService{
			submitScoreFn: func(ctx context.Context, sub domain.ScoreSubmission) (bool, error) {
				return false, nil
			},
		})
		rec := post(t, router, "/submitScore", map[string]any{"playerId": "p1", "score": 2000})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, false, body["verified"])
	})

	t.Run("method not allowed", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/submitScore", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})
}

func TestSyncPlayerDataEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("echoes the player id", func(t *testing.T) {
		rec := post(t, router, "/syncPlayerData", map[string]any{
			"playerId":  "p1",
			"nickname":  "Jet",
			"bestScore": 120,
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "p1", body["playerId"])
	})

	t.Run("rejects missing playerId", func(t *testing.T) {
		rec := post(t, router, "/syncPlayerData", map[string]any{"nickname": "Jet"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetLeaderboardEndpoint(t *testing.T) {
	rank := int64(2)
	router := newTestRouter(&stubService{
		leaderboardFn: func(ctx context.Context, q domain.LeaderboardQuery) (*domain.LeaderboardPage, error) {
			assert.Equal(t, domain.PeriodDaily, q.Period)
			assert.Equal(t, 2, q.Limit)
			return &domain.LeaderboardPage{
				Entries: []domain.LeaderboardEntry{
					{Rank: 1, PlayerID: "p2", Nickname: "Ace", Score: 30},
					{Rank: 2, PlayerID: "p1", Nickname: "Jet", Score: 20},
				},
				PlayerRank:   &rank,
				TotalEntries: 2,
			}, nil
		},
	})

	rec := post(t, router, "/getLeaderboard", map[string]any{
		"period":   "daily",
		"limit":    2,
		"playerId": "p1",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(2), body["playerRank"])
	assert.Equal(t, float64(2), body["totalEntries"])

	entries, ok := body["leaderboard"].([]any)
	require.True(t, ok)
	require.Len(t, entries, 2)
	first := entries[0].(map[string]any)
	assert.Equal(t, float64(30), first["score"])
	assert.Equal(t, float64(1), first["rank"])
}

func TestGetLeaderboardNullRank(t *testing.T) {
	router := newTestRouter(&stubService{})

	rec := post(t, router, "/getLeaderboard", map[string]any{"period": "weekly"})
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Nil(t, body["playerRank"])
	entries, ok := body["leaderboard"].([]any)
	require.True(t, ok)
	assert.Empty(t, entries)
}

func TestSyncMissionsEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("rejects missing playerStats", func(t *testing.T) {
		rec := post(t, router, "/syncMissions", map[string]any{"playerId": "p1"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Contains(t, body["error"], "playerStats")
	})

	t.Run("returns the generated set", func(t *testing.T) {
		router := newTestRouter(&stubService{
			syncMissionsFn: func(ctx context.Context, playerID string, stats *domain.PlayerStats) ([]domain.Mission, error) {
				assert.Equal(t, "p1", playerID)
				require.NotNil(t, stats)
				assert.Equal(t, int64(100), stats.BestScore)
				return []domain.Mission{
					{ID: "m1", Type: domain.MissionReachScore, Target: 70, Reward: 200},
				}, nil
			},
		})
		rec := post(t, router, "/syncMissions", map[string]any{
			"playerId":    "p1",
			"playerStats": map[string]any{"bestScore": 100, "skillLevel": "advanced"},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		missions, ok := body["missions"].([]any)
		require.True(t, ok)
		require.Len(t, missions, 1)
		assert.Equal(t, float64(70), missions[0].(map[string]any)["target"])
	})
}

func TestValidatePurchaseEndpoint(t *testing.T) {
	t.Run("invalid receipt is still a success", func(t *testing.T) {
		router := newTestRouter(&stubService{
			purchaseFn: func(ctx context.Context, req domain.PurchaseRequest) (bool, error) {
				return false, nil
			},
		})
		rec := post(t, router, "/validatePurchase", map[string]any{
			"playerId":      "p1",
			"productId":     "gems_small",
			"purchaseToken": "short",
			"platform":      "android",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, false, body["valid"])
	})

	t.Run("missing fields are rejected", func(t *testing.T) {
		router := newTestRouter(&stubService{
			purchaseFn: func(ctx context.Context, req domain.PurchaseRequest) (bool, error) {
				return false, domain.MissingField("purchaseToken")
			},
		})
		rec := post(t, router, "/validatePurchase", map[string]any{
			"playerId":  "p1",
			"productId": "gems_small",
			"platform":  "android",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestReportEventEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{})

	t.Run("accepts an event", func(t *testing.T) {
		rec := post(t, router, "/reportEvent", map[string]any{
			"playerId":  "p1",
			"eventName": "game_over",
			"parameters": map[string]any{
				"score": 42,
			},
		})

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, decodeBody(t, rec)["success"])
	})

	t.Run("rejects missing eventName", func(t *testing.T) {
		rec := post(t, router, "/reportEvent", map[string]any{"playerId": "p1"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetRemoteConfigEndpoint(t *testing.T) {
	router := newTestRouter(&stubService{
		remoteConfigFn: func(ctx context.Context, req domain.RemoteConfigRequest) (map[string]any, error) {
			assert.Equal(t, "p1", req.PlayerID)
			assert.Equal(t, "android", req.Platform)
			return map[string]any{"startingCoins": 500, "abVariant": "A"}, nil
		},
	})

	rec := post(t, router, "/getRemoteConfig", map[string]any{
		"playerId": "p1",
		"platform": "android",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	cfg, ok := body["config"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "A", cfg["abVariant"])
}

func TestInternalErrorsStayGeneric(t *testing.T) {
	router := newTestRouter(&stubService{
		submitScoreFn: func(ctx context.Context, sub domain.ScoreSubmission) (bool, error) {
			return false, errors.New("pg: connection refused")
		},
	})

	rec := post(t, router, "/submitScore", map[string]any{"playerId": "p1", "score": 50})

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "internal server error", body["error"])
	assert.NotContains(t, rec.Body.String(), "connection refused")
}

func TestMalformedBody(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodPost, "/submitScore", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestEmptyBody(t *testing.T) {
	router := newTestRouter(&stubService{})

	emptyPost := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	t.Run("all-optional endpoints accept it", func(t *testing.T) {
		for _, path := range []string{"/getLeaderboard", "/getRemoteConfig"} {
			rec := emptyPost(path)
			assert.Equal(t, http.StatusOK, rec.Code, path)
			assert.Equal(t, true, decodeBody(t, rec)["success"], path)
		}
	})

	t.Run("required fields still validated", func(t *testing.T) {
		rec := emptyPost("/submitScore")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestCORSPreflight(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodOptions, "/submitScore", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter(&stubService{})

	for _, path := range []string{"/health", "/ready"} {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}
