package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	tests := []struct {
		input string
		want  Period
	}{
		{"daily", PeriodDaily},
		{"weekly", PeriodWeekly},
		{"all_time", PeriodAllTime},
		{"", PeriodAllTime},
		{"monthly", PeriodAllTime},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParsePeriod(tt.input), "input %q", tt.input)
	}
}

func TestPeriodCutoff(t *testing.T) {
	// A Thursday afternoon
	now := time.Date(2025, time.March, 13, 15, 42, 7, 0, time.UTC)

	t.Run("daily starts at midnight UTC", func(t *testing.T) {
		want := time.Date(2025, time.March, 13, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, PeriodDaily.Cutoff(now))
	})

	t.Run("weekly starts Monday midnight UTC", func(t *testing.T) {
		want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, PeriodWeekly.Cutoff(now))
	})

	t.Run("weekly on a Monday is the same day", func(t *testing.T) {
		monday := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
		want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, PeriodWeekly.Cutoff(monday))
	})

	t.Run("weekly on a Sunday reaches back six days", func(t *testing.T) {
		sunday := time.Date(2025, time.March, 16, 23, 59, 0, 0, time.UTC)
		want := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
		assert.Equal(t, want, PeriodWeekly.Cutoff(sunday))
	})

	t.Run("all_time has no cutoff", func(t *testing.T) {
		assert.True(t, PeriodAllTime.Cutoff(now).IsZero())
	})
}
