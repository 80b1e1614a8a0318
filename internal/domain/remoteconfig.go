package domain

// RemoteConfigRequest identifies the client asking for configuration.
// All fields are optional: without a player id no A/B variant is
// assigned, without a platform no override block applies.
type RemoteConfigRequest struct {
	PlayerID      string `json:"playerId,omitempty"`
	ClientVersion string `json:"clientVersion,omitempty"`
	Platform      string `json:"platform,omitempty"`
}

// RemoteConfig is the singleton base configuration document. Overrides
// is keyed by platform name; its fields overwrite top-level base fields
// for matching clients.
type RemoteConfig struct {
	Base      map[string]any
	Overrides map[string]map[string]any
}
