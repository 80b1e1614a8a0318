package purchase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/flappyjet-backend/internal/config"
)

// Validator checks a purchase receipt's authenticity against the
// originating platform. It answers a boolean: an invalid receipt is a
// valid outcome, not an error.
type Validator interface {
	Validate(ctx context.Context, platform, productID, token string) (bool, error)
}

// minTokenLength is the shortest token either store issues; anything
// shorter is malformed regardless of platform.
const minTokenLength = 10

// NewValidator builds the validator selected by configuration.
func NewValidator(cfg *config.PurchaseConfig, logger *slog.Logger) Validator {
	if cfg.Mode == "live" {
		return &StoreValidator{
			playEndpoint:     cfg.PlayEndpoint,
			appStoreEndpoint: cfg.AppStoreEndpoint,
			client:           &http.Client{Timeout: cfg.Timeout},
			logger:           logger,
		}
	}
	return &HeuristicValidator{}
}

// HeuristicValidator accepts any well-formed token. Used in development
// and test deployments where store credentials are unavailable.
type HeuristicValidator struct{}

// Validate reports whether the token is plausibly a store receipt.
func (v *HeuristicValidator) Validate(_ context.Context, _, _, token string) (bool, error) {
	return len(token) > minTokenLength, nil
}

// StoreValidator verifies receipts against the platform verification
// endpoints (Google Play / App Store).
type StoreValidator struct {
	playEndpoint     string
	appStoreEndpoint string
	client           *http.Client
	logger           *slog.Logger
}

type verifyRequest struct {
	ProductID string `json:"productId"`
	Token     string `json:"token"`
}

type verifyResponse struct {
	Valid bool `json:"valid"`
}

// Validate posts the receipt to the platform's verification endpoint.
func (v *StoreValidator) Validate(ctx context.Context, platform, productID, token string) (bool, error) {
	if len(token) <= minTokenLength {
		return false, nil
	}

	endpoint := v.playEndpoint
	if platform == "ios" {
		endpoint = v.appStoreEndpoint
	}
	if endpoint == "" {
		return false, fmt.Errorf("no verification endpoint configured for platform %q", platform)
	}

	body, err := json.Marshal(verifyRequest{ProductID: productID, Token: token})
	if err != nil {
		return false, fmt.Errorf("marshaling verify request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return false, fmt.Errorf("building verify request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := v.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("calling verification endpoint: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		v.logger.Warn("verification endpoint rejected receipt",
			"platform", platform,
			"status", resp.StatusCode,
		)
		return false, nil
	}

	var result verifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return false, fmt.Errorf("decoding verify response: %w", err)
	}
	return result.Valid, nil
}
