package service

import (
	"context"
	"fmt"
	"time"

	"github.com/flappyjet-backend/internal/domain"
)

// ValidatePurchase verifies a store receipt and grants the product's
// reward exactly once. The purchase record is keyed by token, so a
// replayed receipt reports valid without granting twice. An invalid
// receipt is a successful outcome, not an error.
func (s *GameService) ValidatePurchase(ctx context.Context, req domain.PurchaseRequest) (bool, error) {
	switch {
	case req.PlayerID == "":
		return false, domain.MissingField("playerId")
	case req.ProductID == "":
		return false, domain.MissingField("productId")
	case req.PurchaseToken == "":
		return false, domain.MissingField("purchaseToken")
	case req.Platform == "":
		return false, domain.MissingField("platform")
	}

	valid, err := s.validator.Validate(ctx, req.Platform, req.ProductID, req.PurchaseToken)
	if err != nil {
		return false, fmt.Errorf("validating receipt: %w", err)
	}

	now := time.Now().UTC()
	record := domain.PurchaseRecord{
		PurchaseToken: req.PurchaseToken,
		PlayerID:      req.PlayerID,
		ProductID:     req.ProductID,
		Platform:      req.Platform,
		Status:        domain.PurchaseStatusValid,
		ValidatedAt:   now,
	}
	if !valid {
		record.Status = domain.PurchaseStatusInvalid
	}

	// recorded is true only the first time this token validates, so a
	// rejected attempt never blocks a later successful retry and a
	// replayed valid receipt never grants twice.
	recorded, err := s.postgres.InsertPurchase(ctx, record)
	if err != nil {
		return false, fmt.Errorf("recording purchase: %w", err)
	}

	if !valid {
		return false, nil
	}
	if !recorded {
		// Token replay: the reward was already granted.
		s.logger.Info("duplicate purchase token, reward not granted again",
			"player_id", req.PlayerID,
			"product_id", req.ProductID,
		)
		return true, nil
	}

	reward, ok := s.catalog.ProductRewards[req.ProductID]
	if !ok {
		// Unknown products grant nothing but the purchase still counts.
		s.logger.Warn("purchase for unknown product", "product_id", req.ProductID)
		return true, nil
	}

	if reward.Gems > 0 {
		if err := s.postgres.AddGems(ctx, req.PlayerID, reward.Gems, now); err != nil {
			return false, fmt.Errorf("granting gems: %w", err)
		}
	}
	if reward.AdRemoval {
		if err := s.postgres.SetAdRemoval(ctx, req.PlayerID, now); err != nil {
			return false, fmt.Errorf("granting ad removal: %w", err)
		}
	}

	return true, nil
}
