package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func tp(t time.Time) *time.Time { return &t }

func TestDiscountActiveAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name   string
		meal   Meal
		active bool
	}{
		{
			"inside the window",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now.Add(-time.Hour)), DiscountEndsAt: tp(now.Add(time.Hour))},
			true,
		},
		{
			"before the window",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now.Add(time.Hour)), DiscountEndsAt: tp(now.Add(2 * time.Hour))},
			false,
		},
		{
			"after the window",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now.Add(-2 * time.Hour)), DiscountEndsAt: tp(now.Add(-time.Hour))},
			false,
		},
		{
			"zero percentage never active",
			Meal{DiscountPercentage: 0, DiscountStartsAt: tp(now.Add(-time.Hour)), DiscountEndsAt: tp(now.Add(time.Hour))},
			false,
		},
		{
			"missing start means already started",
			Meal{DiscountPercentage: 20, DiscountEndsAt: tp(now.Add(time.Hour))},
			true,
		},
		{
			"missing end means never expires",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now.Add(-time.Hour))},
			true,
		},
		{
			"both bounds missing",
			Meal{DiscountPercentage: 20},
			true,
		},
		{
			"exactly at start",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now), DiscountEndsAt: tp(now.Add(time.Hour))},
			true,
		},
		{
			"exactly at end",
			Meal{DiscountPercentage: 20, DiscountStartsAt: tp(now.Add(-time.Hour)), DiscountEndsAt: tp(now)},
			true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.active, tt.meal.DiscountActiveAt(now))
		})
	}
}

func TestDiscountedPriceAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	window := Meal{
		Price:              100,
		DiscountPercentage: 25,
		DiscountStartsAt:   tp(now.Add(-time.Hour)),
		DiscountEndsAt:     tp(now.Add(time.Hour)),
	}

	t.Run("active discount applies", func(t *testing.T) {
		assert.Equal(t, 75.0, window.DiscountedPriceAt(now))
	})

	t.Run("inactive discount returns list price", func(t *testing.T) {
		assert.Equal(t, 100.0, window.DiscountedPriceAt(now.Add(2*time.Hour)))
	})

	t.Run("rounds to two decimals", func(t *testing.T) {
		m := window
		m.Price = 9.99
		m.DiscountPercentage = 33
		// 9.99 * 0.67 = 6.6933
		assert.Equal(t, 6.69, m.DiscountedPriceAt(now))
	})

	t.Run("full discount is free", func(t *testing.T) {
		m := window
		m.DiscountPercentage = 100
		assert.Equal(t, 0.0, m.DiscountedPriceAt(now))
	})

	t.Run("never exceeds list price", func(t *testing.T) {
		for pct := 1.0; pct <= 100; pct += 7 {
			m := window
			m.DiscountPercentage = pct
			assert.LessOrEqual(t, m.DiscountedPriceAt(now), m.Price, "pct=%v", pct)
		}
	})
}

func TestSubscriptionStatusAt(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		rest     Restaurant
		expected string
	}{
		{
			"trial still running",
			Restaurant{SubscriptionStatus: SubscriptionTrial, TrialEndsAt: now.Add(time.Hour)},
			SubscriptionTrial,
		},
		{
			"trial just ended",
			Restaurant{SubscriptionStatus: SubscriptionTrial, TrialEndsAt: now.Add(-time.Minute)},
			SubscriptionExpired,
		},
		{
			"active ignores trial window",
			Restaurant{SubscriptionStatus: SubscriptionActive, TrialEndsAt: now.Add(-time.Hour)},
			SubscriptionActive,
		},
		{
			"expired stays expired",
			Restaurant{SubscriptionStatus: SubscriptionExpired, TrialEndsAt: now.Add(time.Hour)},
			SubscriptionExpired,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.rest.SubscriptionStatusAt(now))
		})
	}
}
