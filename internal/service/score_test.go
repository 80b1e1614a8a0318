package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flappyjet-backend/internal/domain"
)

func TestCheckScore(t *testing.T) {
	const maxPlausible = 1000
	const minRatio = 0.5

	tests := []struct {
		name       string
		score      int64
		survival   int64
		verified   bool
		suspicious bool
	}{
		{"plausible run", 50, 40, true, false},
		{"impossible score", 2000, 5, false, true},
		{"at the threshold", 1000, 500, true, false},
		{"just over the threshold", 1001, 600, false, false},
		{"too fast for the score", 100, 49, true, true},
		{"exactly at the ratio", 100, 50, true, false},
		{"zero score", 0, 0, true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verified, suspicious := CheckScore(tt.score, tt.survival, maxPlausible, minRatio)
			assert.Equal(t, tt.verified, verified, "verified")
			assert.Equal(t, tt.suspicious, suspicious, "suspicious")
		})
	}
}

func TestSubmitScoreValidation(t *testing.T) {
	s := &GameService{}
	ctx := context.Background()
	score := int64(50)

	t.Run("missing playerId", func(t *testing.T) {
		_, err := s.SubmitScore(ctx, domain.ScoreSubmission{Score: &score})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Contains(t, err.Error(), "playerId")
	})

	t.Run("missing score", func(t *testing.T) {
		_, err := s.SubmitScore(ctx, domain.ScoreSubmission{PlayerID: "p1"})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Contains(t, err.Error(), "score")
	})
}

func TestSyncPlayerValidation(t *testing.T) {
	s := &GameService{}

	err := s.SyncPlayer(context.Background(), domain.PlayerSyncRequest{Nickname: "Jet"})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
}

func TestSyncMissionsValidation(t *testing.T) {
	s := &GameService{}
	ctx := context.Background()

	t.Run("missing playerId", func(t *testing.T) {
		_, err := s.SyncMissions(ctx, "", &domain.PlayerStats{BestScore: 10})
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
	})

	t.Run("missing stats", func(t *testing.T) {
		_, err := s.SyncMissions(ctx, "p1", nil)
		require.Error(t, err)
		assert.True(t, domain.IsValidationError(err))
		assert.Contains(t, err.Error(), "playerStats")
	})
}

func TestValidatePurchaseValidation(t *testing.T) {
	s := &GameService{}
	ctx := context.Background()

	base := domain.PurchaseRequest{
		PlayerID:      "p1",
		ProductID:     "gems_small",
		PurchaseToken: "abcdefghijk",
		Platform:      "android",
	}

	tests := []struct {
		name   string
		mutate func(*domain.PurchaseRequest)
		field  string
	}{
		{"missing playerId", func(r *domain.PurchaseRequest) { r.PlayerID = "" }, "playerId"},
		{"missing productId", func(r *domain.PurchaseRequest) { r.ProductID = "" }, "productId"},
		{"missing token", func(r *domain.PurchaseRequest) { r.PurchaseToken = "" }, "purchaseToken"},
		{"missing platform", func(r *domain.PurchaseRequest) { r.Platform = "" }, "platform"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base
			tt.mutate(&req)
			_, err := s.ValidatePurchase(ctx, req)
			require.Error(t, err)
			assert.True(t, domain.IsValidationError(err))
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestReportEventValidation(t *testing.T) {
	s := &GameService{}

	err := s.ReportEvent(context.Background(), domain.AnalyticsEvent{PlayerID: "p1"})
	require.Error(t, err)
	assert.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), "eventName")
}
