package service

import (
	"context"
	"fmt"

	"github.com/flappyjet-backend/internal/domain"
)

// ABVariant deterministically assigns a player to an A/B test bucket
// from a 32-bit hash of their id. The split is 50/50: buckets 0-49 get
// variant A, 50-99 variant B.
func ABVariant(playerID string) string {
	var h int32
	for _, c := range playerID {
		h = h*31 + int32(c)
	}
	bucket := int64(h)
	if bucket < 0 {
		bucket = -bucket
	}
	if bucket%100 < 50 {
		return "A"
	}
	return "B"
}

// overlayConfig copies overlay fields over the base, overwriting
// top-level keys. Precedence order is base -> A/B variant -> platform
// override, applied by the caller in that sequence.
func overlayConfig(base, overlay map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		merged[k] = v
	}
	return merged
}

// RemoteConfig serves the base configuration document overlaid with the
// player's A/B variant assignment and any platform-specific overrides.
func (s *GameService) RemoteConfig(ctx context.Context, req domain.RemoteConfigRequest) (map[string]any, error) {
	doc, err := s.postgres.GetRemoteConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading remote config: %w", err)
	}

	cfg := overlayConfig(doc.Base, nil)

	if req.PlayerID != "" {
		variant := ABVariant(req.PlayerID)
		cfg = overlayConfig(cfg, map[string]any{
			"abVariant":     variant,
			"startingCoins": s.startingCoins(doc.Base, variant),
		})
	}

	if req.Platform != "" {
		if overrides, ok := doc.Overrides[req.Platform]; ok {
			cfg = overlayConfig(cfg, overrides)
		}
	}

	return cfg, nil
}

// startingCoins resolves the variant's starting-coin value, preferring
// an abTests block in the config document over the catalog defaults.
func (s *GameService) startingCoins(base map[string]any, variant string) int64 {
	fallback := s.catalog.StartingCoinsVariantA
	if variant == "B" {
		fallback = s.catalog.StartingCoinsVariantB
	}

	tests, ok := base["abTests"].(map[string]any)
	if !ok {
		return fallback
	}
	coins, ok := tests["startingCoins"].(map[string]any)
	if !ok {
		return fallback
	}
	value, ok := coins["variant"+variant].(float64)
	if !ok {
		return fallback
	}
	return int64(value)
}
