package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/flappyjet-backend/internal/config"
	"github.com/flappyjet-backend/internal/domain"
)

// Repository provides PostgreSQL-based data access
type Repository struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

// NewRepository creates a new PostgreSQL repository
func NewRepository(cfg *config.PostgresConfig, logger *slog.Logger) (*Repository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.ConnectionString())
	if err != nil {
		return nil, fmt.Errorf("parsing connection string: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConnections)
	poolConfig.MinConns = int32(cfg.MinConnections)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	// Test connection
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	return &Repository{
		pool:   pool,
		logger: logger,
	}, nil
}

// Close closes the database connection pool
func (r *Repository) Close() {
	r.pool.Close()
}

// RunMigrations executes database migrations
func (r *Repository) RunMigrations(ctx context.Context) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS players (
			player_id VARCHAR(64) PRIMARY KEY,
			nickname VARCHAR(64) NOT NULL DEFAULT 'Anonymous',
			best_score BIGINT NOT NULL DEFAULT 0,
			best_streak BIGINT NOT NULL DEFAULT 0,
			gems BIGINT NOT NULL DEFAULT 0,
			ad_removal BOOLEAN NOT NULL DEFAULT FALSE,
			best_score_at TIMESTAMP,
			last_sync_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS score_events (
			id UUID PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL,
			nickname VARCHAR(64) NOT NULL,
			score BIGINT NOT NULL,
			survival_time BIGINT NOT NULL DEFAULT 0,
			skin_used VARCHAR(64) NOT NULL,
			coins_earned BIGINT NOT NULL DEFAULT 0,
			verified BOOLEAN NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS leaderboard_entries (
			period VARCHAR(16) NOT NULL,
			player_id VARCHAR(64) NOT NULL,
			nickname VARCHAR(64) NOT NULL,
			score BIGINT NOT NULL,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (period, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS missions (
			id VARCHAR(80) PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL,
			mission_type VARCHAR(32) NOT NULL,
			title VARCHAR(128) NOT NULL,
			description VARCHAR(256) NOT NULL,
			target BIGINT NOT NULL,
			reward BIGINT NOT NULL,
			difficulty VARCHAR(16) NOT NULL,
			progress BIGINT NOT NULL DEFAULT 0,
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS purchases (
			purchase_token VARCHAR(512) PRIMARY KEY,
			player_id VARCHAR(64) NOT NULL,
			product_id VARCHAR(64) NOT NULL,
			platform VARCHAR(16) NOT NULL,
			status VARCHAR(16) NOT NULL,
			validated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS analytics_events (
			id UUID PRIMARY KEY,
			player_id VARCHAR(64),
			event_name VARCHAR(128) NOT NULL,
			parameters JSONB,
			client_time BIGINT,
			received_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS remote_config (
			id INT PRIMARY KEY,
			base JSONB NOT NULL DEFAULT '{}',
			platform_overrides JSONB NOT NULL DEFAULT '{}',
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_score_events_player ON score_events(player_id, created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_entries_score ON leaderboard_entries(period, score DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_leaderboard_entries_updated ON leaderboard_entries(period, updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_missions_player ON missions(player_id)`,
		`CREATE INDEX IF NOT EXISTS idx_analytics_events_name ON analytics_events(event_name, received_at DESC)`,
	}

	for _, migration := range migrations {
		_, err := r.pool.Exec(ctx, migration)
		if err != nil {
			return fmt.Errorf("executing migration: %w", err)
		}
	}

	r.logger.Info("database migrations completed")
	return nil
}

// SyncPlayer merges an uploaded profile into the stored one. BestScore
// and BestStreak only ever increase (GREATEST); every other field is
// last-write-wins. Creates the player on first sync.
func (r *Repository) SyncPlayer(ctx context.Context, req domain.PlayerSyncRequest, now time.Time) error {
	query := `
		INSERT INTO players (player_id, nickname, best_score, best_streak, gems, ad_removal, last_sync_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		ON CONFLICT (player_id)
		DO UPDATE SET
			nickname = $2,
			best_score = GREATEST(players.best_score, $3),
			best_streak = GREATEST(players.best_streak, $4),
			gems = $5,
			ad_removal = $6,
			last_sync_at = $7
	`
	nickname := req.Nickname
	if nickname == "" {
		nickname = domain.DefaultNickname
	}
	_, err := r.pool.Exec(ctx, query,
		req.PlayerID,
		nickname,
		req.BestScore,
		req.BestStreak,
		req.Gems,
		req.AdRemoval,
		now,
	)
	if err != nil {
		return fmt.Errorf("syncing player: %w", err)
	}
	return nil
}

// GetPlayer retrieves a player's profile by id
func (r *Repository) GetPlayer(ctx context.Context, playerID string) (*domain.Player, error) {
	query := `
		SELECT player_id, nickname, best_score, best_streak, gems, ad_removal,
		       COALESCE(best_score_at, 'epoch'::timestamp), last_sync_at, created_at
		FROM players
		WHERE player_id = $1
	`
	var player domain.Player
	err := r.pool.QueryRow(ctx, query, playerID).Scan(
		&player.ID,
		&player.Nickname,
		&player.BestScore,
		&player.BestStreak,
		&player.Gems,
		&player.AdRemoval,
		&player.BestScoreAt,
		&player.LastSyncAt,
		&player.CreatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrPlayerNotFound
		}
		return nil, fmt.Errorf("getting player: %w", err)
	}
	return &player, nil
}

// RaiseBestScore creates the player if absent and raises their best
// score when the submitted one is strictly greater. The GREATEST upsert
// keeps the field monotonic under concurrent submissions.
func (r *Repository) RaiseBestScore(ctx context.Context, playerID, nickname string, score int64, now time.Time) error {
	query := `
		INSERT INTO players (player_id, nickname, best_score, best_score_at, created_at)
		VALUES ($1, $2, $3, $4, $4)
		ON CONFLICT (player_id)
		DO UPDATE SET
			best_score = GREATEST(players.best_score, $3),
			best_score_at = CASE WHEN $3 > players.best_score THEN $4 ELSE players.best_score_at END
	`
	_, err := r.pool.Exec(ctx, query, playerID, nickname, score, now)
	if err != nil {
		return fmt.Errorf("raising best score: %w", err)
	}
	return nil
}

// RecordScoreEvent appends an immutable score event
func (r *Repository) RecordScoreEvent(ctx context.Context, event domain.ScoreEvent) error {
	query := `
		INSERT INTO score_events (id, player_id, nickname, score, survival_time, skin_used, coins_earned, verified, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.pool.Exec(ctx, query,
		event.ID,
		event.PlayerID,
		event.Nickname,
		event.Score,
		event.SurvivalTime,
		event.SkinUsed,
		event.CoinsEarned,
		event.Verified,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording score event: %w", err)
	}
	return nil
}

// UpsertLeaderboardEntry writes the durable copy of a period entry. The
// stored score only increases; the nickname snapshot and timestamp move
// with it, so the row always describes the run that set the score.
func (r *Repository) UpsertLeaderboardEntry(ctx context.Context, period domain.Period, playerID, nickname string, score int64, now time.Time) error {
	query := `
		INSERT INTO leaderboard_entries (period, player_id, nickname, score, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (period, player_id)
		DO UPDATE SET
			score = GREATEST(leaderboard_entries.score, $4),
			nickname = CASE WHEN $4 > leaderboard_entries.score THEN $3 ELSE leaderboard_entries.nickname END,
			updated_at = CASE WHEN $4 > leaderboard_entries.score THEN $5 ELSE leaderboard_entries.updated_at END
	`
	_, err := r.pool.Exec(ctx, query, string(period), playerID, nickname, score, now)
	if err != nil {
		return fmt.Errorf("upserting leaderboard entry: %w", err)
	}
	return nil
}

// GetPeriodScores retrieves all scores for a period, for Redis rebuilds
func (r *Repository) GetPeriodScores(ctx context.Context, period domain.Period) (map[string]int64, error) {
	query := `SELECT player_id, score FROM leaderboard_entries WHERE period = $1`
	rows, err := r.pool.Query(ctx, query, string(period))
	if err != nil {
		return nil, fmt.Errorf("getting period scores: %w", err)
	}
	defer rows.Close()

	scores := make(map[string]int64)
	for rows.Next() {
		var playerID string
		var score int64
		if err := rows.Scan(&playerID, &score); err != nil {
			return nil, fmt.Errorf("scanning score: %w", err)
		}
		scores[playerID] = score
	}
	return scores, nil
}

// GetPeriodNicknames retrieves nickname snapshots for a period's entries
func (r *Repository) GetPeriodNicknames(ctx context.Context, period domain.Period) (map[string]string, error) {
	query := `SELECT player_id, nickname FROM leaderboard_entries WHERE period = $1`
	rows, err := r.pool.Query(ctx, query, string(period))
	if err != nil {
		return nil, fmt.Errorf("getting period nicknames: %w", err)
	}
	defer rows.Close()

	nicknames := make(map[string]string)
	for rows.Next() {
		var playerID, nickname string
		if err := rows.Scan(&playerID, &nickname); err != nil {
			return nil, fmt.Errorf("scanning nickname: %w", err)
		}
		nicknames[playerID] = nickname
	}
	return nicknames, nil
}

// PruneEntriesBefore deletes a period's entries last updated before the
// cutoff and returns the ids of the removed players.
func (r *Repository) PruneEntriesBefore(ctx context.Context, period domain.Period, cutoff time.Time) ([]string, error) {
	query := `
		DELETE FROM leaderboard_entries
		WHERE period = $1 AND updated_at < $2
		RETURNING player_id
	`
	rows, err := r.pool.Query(ctx, query, string(period), cutoff)
	if err != nil {
		return nil, fmt.Errorf("pruning entries: %w", err)
	}
	defer rows.Close()

	var removed []string
	for rows.Next() {
		var playerID string
		if err := rows.Scan(&playerID); err != nil {
			return nil, fmt.Errorf("scanning pruned entry: %w", err)
		}
		removed = append(removed, playerID)
	}
	return removed, nil
}

// ReplaceMissions swaps a player's mission set wholesale inside a
// transaction, so a reader never observes a partial set.
func (r *Repository) ReplaceMissions(ctx context.Context, playerID string, missions []domain.Mission) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM missions WHERE player_id = $1`, playerID); err != nil {
		return fmt.Errorf("clearing missions: %w", err)
	}

	query := `
		INSERT INTO missions (id, player_id, mission_type, title, description, target, reward, difficulty, progress, completed, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	for _, m := range missions {
		_, err := tx.Exec(ctx, query,
			m.ID,
			playerID,
			string(m.Type),
			m.Title,
			m.Description,
			m.Target,
			m.Reward,
			string(m.Difficulty),
			m.Progress,
			m.Completed,
			m.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("inserting mission: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing missions: %w", err)
	}
	return nil
}

// GetMissions retrieves a player's current mission set
func (r *Repository) GetMissions(ctx context.Context, playerID string) ([]domain.Mission, error) {
	query := `
		SELECT id, mission_type, title, description, target, reward, difficulty, progress, completed, created_at
		FROM missions
		WHERE player_id = $1
		ORDER BY created_at, id
	`
	rows, err := r.pool.Query(ctx, query, playerID)
	if err != nil {
		return nil, fmt.Errorf("getting missions: %w", err)
	}
	defer rows.Close()

	var missions []domain.Mission
	for rows.Next() {
		var m domain.Mission
		err := rows.Scan(
			&m.ID,
			&m.Type,
			&m.Title,
			&m.Description,
			&m.Target,
			&m.Reward,
			&m.Difficulty,
			&m.Progress,
			&m.Completed,
			&m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning mission: %w", err)
		}
		missions = append(missions, m)
	}
	return missions, nil
}

// InsertPurchase records a validation attempt keyed by its token. A
// stored invalid attempt is superseded when the same token later
// validates; a stored valid row is final. Returns true only when this
// call recorded the token's outcome for the first time (fresh insert,
// or an invalid row turning valid), which is exactly when the caller
// may grant the reward.
func (r *Repository) InsertPurchase(ctx context.Context, record domain.PurchaseRecord) (bool, error) {
	query := `
		INSERT INTO purchases (purchase_token, player_id, product_id, platform, status, validated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (purchase_token)
		DO UPDATE SET status = EXCLUDED.status, validated_at = EXCLUDED.validated_at
		WHERE purchases.status = 'invalid' AND EXCLUDED.status = 'valid'
	`
	result, err := r.pool.Exec(ctx, query,
		record.PurchaseToken,
		record.PlayerID,
		record.ProductID,
		record.Platform,
		string(record.Status),
		record.ValidatedAt,
	)
	if err != nil {
		return false, fmt.Errorf("inserting purchase: %w", err)
	}
	return result.RowsAffected() == 1, nil
}

// AddGems atomically increments a player's gem balance, creating the
// player row if needed.
func (r *Repository) AddGems(ctx context.Context, playerID string, delta int64, now time.Time) error {
	query := `
		INSERT INTO players (player_id, gems, created_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (player_id)
		DO UPDATE SET gems = players.gems + $2
	`
	_, err := r.pool.Exec(ctx, query, playerID, delta, now)
	if err != nil {
		return fmt.Errorf("adding gems: %w", err)
	}
	return nil
}

// SetAdRemoval flags a player as having purchased ad removal
func (r *Repository) SetAdRemoval(ctx context.Context, playerID string, now time.Time) error {
	query := `
		INSERT INTO players (player_id, ad_removal, created_at)
		VALUES ($1, TRUE, $2)
		ON CONFLICT (player_id)
		DO UPDATE SET ad_removal = TRUE
	`
	_, err := r.pool.Exec(ctx, query, playerID, now)
	if err != nil {
		return fmt.Errorf("setting ad removal: %w", err)
	}
	return nil
}

// InsertAnalyticsEvent appends a single analytics event
func (r *Repository) InsertAnalyticsEvent(ctx context.Context, event domain.AnalyticsEvent) error {
	paramsJSON, err := marshalParams(event.Parameters)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO analytics_events (id, player_id, event_name, parameters, client_time, received_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, 0), $6)
	`
	_, err = r.pool.Exec(ctx, query,
		event.ID,
		event.PlayerID,
		event.Name,
		paramsJSON,
		event.ClientTime,
		event.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting analytics event: %w", err)
	}
	return nil
}

// InsertAnalyticsEventBatch appends analytics events in one batch
func (r *Repository) InsertAnalyticsEventBatch(ctx context.Context, events []domain.AnalyticsEvent) error {
	if len(events) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `
		INSERT INTO analytics_events (id, player_id, event_name, parameters, client_time, received_at)
		VALUES ($1, NULLIF($2, ''), $3, $4, NULLIF($5, 0), $6)
	`
	for _, event := range events {
		paramsJSON, err := marshalParams(event.Parameters)
		if err != nil {
			return err
		}
		batch.Queue(query, event.ID, event.PlayerID, event.Name, paramsJSON, event.ClientTime, event.ReceivedAt)
	}

	br := r.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range events {
		if _, err := br.Exec(); err != nil {
			return fmt.Errorf("batch inserting analytics events: %w", err)
		}
	}
	return nil
}

// GetRemoteConfig retrieves the singleton base configuration document.
// An absent row is the initial state, not an error: an empty config.
func (r *Repository) GetRemoteConfig(ctx context.Context) (*domain.RemoteConfig, error) {
	query := `SELECT base, platform_overrides FROM remote_config WHERE id = 1`
	var baseJSON, overridesJSON []byte
	err := r.pool.QueryRow(ctx, query).Scan(&baseJSON, &overridesJSON)
	if err != nil {
		if err == pgx.ErrNoRows {
			return &domain.RemoteConfig{
				Base:      map[string]any{},
				Overrides: map[string]map[string]any{},
			}, nil
		}
		return nil, fmt.Errorf("getting remote config: %w", err)
	}

	cfg := &domain.RemoteConfig{
		Base:      map[string]any{},
		Overrides: map[string]map[string]any{},
	}
	if err := json.Unmarshal(baseJSON, &cfg.Base); err != nil {
		return nil, fmt.Errorf("parsing remote config base: %w", err)
	}
	if err := json.Unmarshal(overridesJSON, &cfg.Overrides); err != nil {
		return nil, fmt.Errorf("parsing remote config overrides: %w", err)
	}
	return cfg, nil
}

func marshalParams(params map[string]any) ([]byte, error) {
	if params == nil {
		return nil, nil
	}
	data, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshaling parameters: %w", err)
	}
	return data, nil
}
