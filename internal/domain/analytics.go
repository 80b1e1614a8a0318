package domain

import "time"

// AnalyticsEvent is an append-only, unstructured event reported by the
// client. ClientTime is the client-supplied epoch-milliseconds timestamp;
// ReceivedAt is assigned server-side.
type AnalyticsEvent struct {
	ID         string         `json:"id,omitempty"`
	PlayerID   string         `json:"playerId,omitempty"`
	Name       string         `json:"eventName"`
	Parameters map[string]any `json:"parameters,omitempty"`
	ClientTime int64          `json:"timestamp,omitempty"`
	ReceivedAt time.Time      `json:"receivedAt,omitempty"`
}
