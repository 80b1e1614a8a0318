package purchase

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flappyjet-backend/internal/config"
)

func TestHeuristicValidator(t *testing.T) {
	v := &HeuristicValidator{}
	ctx := context.Background()

	tests := []struct {
		name  string
		token string
		valid bool
	}{
		{"store-length token", "abcdefghijk", true},
		{"long receipt", "MIIT8AYJKoZIhvcNAQcCoIIT4TCCE90CAQExCzAJ", true},
		{"short token", "abc", false},
		{"exactly at the limit", "abcdefghij", false},
		{"empty token", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, err := v.Validate(ctx, "android", "gems_small", tt.token)
			require.NoError(t, err)
			assert.Equal(t, tt.valid, valid)
		})
	}
}

func TestStoreValidator(t *testing.T) {
	ctx := context.Background()
	logger := slog.Default()

	newValidator := func(playURL, iosURL string) *StoreValidator {
		return &StoreValidator{
			playEndpoint:     playURL,
			appStoreEndpoint: iosURL,
			client:           &http.Client{Timeout: time.Second},
			logger:           logger,
		}
	}

	t.Run("accepts verified receipt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			w.Write([]byte(`{"valid": true}`))
		}))
		defer server.Close()

		valid, err := newValidator(server.URL, "").Validate(ctx, "android", "gems_small", "abcdefghijk")
		require.NoError(t, err)
		assert.True(t, valid)
	})

	t.Run("rejects unverified receipt", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"valid": false}`))
		}))
		defer server.Close()

		valid, err := newValidator(server.URL, "").Validate(ctx, "android", "gems_small", "abcdefghijk")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("rejects on non-200 without error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer server.Close()

		valid, err := newValidator(server.URL, "").Validate(ctx, "android", "gems_small", "abcdefghijk")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("routes ios to the app store endpoint", func(t *testing.T) {
		var hit bool
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hit = true
			w.Write([]byte(`{"valid": true}`))
		}))
		defer server.Close()

		valid, err := newValidator("", server.URL).Validate(ctx, "ios", "gems_small", "abcdefghijk")
		require.NoError(t, err)
		assert.True(t, valid)
		assert.True(t, hit)
	})

	t.Run("short token short-circuits", func(t *testing.T) {
		valid, err := newValidator("http://unreachable.invalid", "").Validate(ctx, "android", "gems_small", "abc")
		require.NoError(t, err)
		assert.False(t, valid)
	})

	t.Run("errors without endpoint", func(t *testing.T) {
		_, err := newValidator("", "").Validate(ctx, "android", "gems_small", "abcdefghijk")
		assert.Error(t, err)
	})
}

func TestNewValidatorSelectsMode(t *testing.T) {
	logger := slog.Default()

	v := NewValidator(&config.PurchaseConfig{Mode: "heuristic"}, logger)
	assert.IsType(t, &HeuristicValidator{}, v)

	v = NewValidator(&config.PurchaseConfig{Mode: "live", Timeout: time.Second}, logger)
	assert.IsType(t, &StoreValidator{}, v)
}
