package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/flappyjet-backend/internal/domain"
	"github.com/flappyjet-backend/internal/websocket"
)

// GameService is the business logic consumed by the HTTP layer.
type GameService interface {
	SyncPlayer(ctx context.Context, req domain.PlayerSyncRequest) error
	SubmitScore(ctx context.Context, sub domain.ScoreSubmission) (bool, error)
	GetLeaderboard(ctx context.Context, q domain.LeaderboardQuery) (*domain.LeaderboardPage, error)
	SyncMissions(ctx context.Context, playerID string, stats *domain.PlayerStats) ([]domain.Mission, error)
	ValidatePurchase(ctx context.Context, req domain.PurchaseRequest) (bool, error)
	ReportEvent(ctx context.Context, event domain.AnalyticsEvent) error
	RemoteConfig(ctx context.Context, req domain.RemoteConfigRequest) (map[string]any, error)
}

// Handler provides HTTP handlers for the game API
type Handler struct {
	service GameService
	hub     *websocket.Hub
	logger  *slog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(service GameService, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		service: service,
		hub:     hub,
		logger:  logger,
	}
}

// errorResponse is the body of every failed request
type errorResponse struct {
	Error string `json:"error"`
}

// Router creates and configures the HTTP router
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(corsMiddleware)

	// Health check
	r.Get("/health", h.HealthCheck)
	r.Get("/ready", h.ReadyCheck)

	// WebSocket endpoint for live leaderboard updates
	r.Get("/ws", h.HandleWebSocket)

	// Game API: POST only, other methods get 405
	r.Post("/syncPlayerData", h.SyncPlayerData)
	r.Post("/submitScore", h.SubmitScore)
	r.Post("/getLeaderboard", h.GetLeaderboard)
	r.Post("/syncMissions", h.SyncMissions)
	r.Post("/validatePurchase", h.ValidatePurchase)
	r.Post("/reportEvent", h.ReportEvent)
	r.Post("/getRemoteConfig", h.GetRemoteConfig)

	return r
}

// corsMiddleware adds CORS headers
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Authorization, Content-Type, X-Request-ID")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeJSON writes a JSON response
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps an error to the API's error taxonomy: validation
// errors surface their message with a 400; anything else is a 500 with
// a generic body, the real error logged server-side only.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	if domain.IsValidationError(err) {
		h.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	h.logger.Error("request failed", "error", err)
	h.writeJSON(w, http.StatusInternalServerError, errorResponse{Error: domain.ErrInternalError.Error()})
}

// decode parses a JSON request body. An empty body is an empty
// request, not an error: every field is optional on some endpoints and
// required fields are validated by the service.
func (h *Handler) decode(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return domain.ErrInvalidRequest
	}
	return nil
}

// HandleWebSocket handles WebSocket upgrade requests
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	websocket.ServeWs(h.hub, h.logger, w, r)
}

// HealthCheck returns service health status
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

// ReadyCheck returns service readiness status
func (h *Handler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
