package handler

import (
	"net/http"

	"github.com/flappyjet-backend/internal/domain"
)

// SyncPlayerData merges an uploaded player profile into stored state
func (h *Handler) SyncPlayerData(w http.ResponseWriter, r *http.Request) {
	var req domain.PlayerSyncRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.service.SyncPlayer(r.Context(), req); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"playerId": req.PlayerID,
	})
}

// SubmitScore records a completed run and fans it out to leaderboards
func (h *Handler) SubmitScore(w http.ResponseWriter, r *http.Request) {
	var sub domain.ScoreSubmission
	if err := h.decode(r, &sub); err != nil {
		h.writeError(w, err)
		return
	}

	verified, err := h.service.SubmitScore(r.Context(), sub)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"verified": verified,
	})
}

// leaderboardRequest selects one page of a period leaderboard
type leaderboardRequest struct {
	Limit    int    `json:"limit,omitempty"`
	Period   string `json:"period,omitempty"`
	PlayerID string `json:"playerId,omitempty"`
}

// GetLeaderboard returns a ranked page of one leaderboard period
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	var req leaderboardRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	page, err := h.service.GetLeaderboard(r.Context(), domain.LeaderboardQuery{
		Period:   domain.ParsePeriod(req.Period),
		Limit:    req.Limit,
		PlayerID: req.PlayerID,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	entries := page.Entries
	if entries == nil {
		entries = []domain.LeaderboardEntry{}
	}
	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":      true,
		"leaderboard":  entries,
		"playerRank":   page.PlayerRank,
		"totalEntries": page.TotalEntries,
	})
}

// SyncMissions regenerates a player's daily mission set
func (h *Handler) SyncMissions(w http.ResponseWriter, r *http.Request) {
	var req domain.MissionSyncRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	missions, err := h.service.SyncMissions(r.Context(), req.PlayerID, req.PlayerStats)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":  true,
		"missions": missions,
	})
}

// ValidatePurchase verifies a store receipt and grants its reward once.
// An invalid receipt is a successful response carrying valid=false.
func (h *Handler) ValidatePurchase(w http.ResponseWriter, r *http.Request) {
	var req domain.PurchaseRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	valid, err := h.service.ValidatePurchase(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"valid":   valid,
	})
}

// ReportEvent appends an analytics event
func (h *Handler) ReportEvent(w http.ResponseWriter, r *http.Request) {
	var event domain.AnalyticsEvent
	if err := h.decode(r, &event); err != nil {
		h.writeError(w, err)
		return
	}

	if err := h.service.ReportEvent(r.Context(), event); err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
	})
}

// GetRemoteConfig serves the layered remote configuration
func (h *Handler) GetRemoteConfig(w http.ResponseWriter, r *http.Request) {
	var req domain.RemoteConfigRequest
	if err := h.decode(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	cfg, err := h.service.RemoteConfig(r.Context(), req)
	if err != nil {
		h.writeError(w, err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  cfg,
	})
}
