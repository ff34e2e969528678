package handler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDiscountReqValidate(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)
	later := now.Add(24 * time.Hour)

	tests := []struct {
		name    string
		req     discountReq
		wantMsg string
	}{
		{
			"valid window",
			discountReq{Percentage: 20, StartsAt: &now, EndsAt: &later},
			"",
		},
		{
			"full discount allowed",
			discountReq{Percentage: 100, StartsAt: &now, EndsAt: &later},
			"",
		},
		{
			"zero percentage accepted",
			discountReq{Percentage: 0, StartsAt: &now, EndsAt: &later},
			"",
		},
		{
			"negative percentage",
			discountReq{Percentage: -5, StartsAt: &now, EndsAt: &later},
			"percentage must be between 0 and 100",
		},
		{
			"over one hundred",
			discountReq{Percentage: 101, StartsAt: &now, EndsAt: &later},
			"percentage must be between 0 and 100",
		},
		{
			"missing bounds",
			discountReq{Percentage: 20},
			"starts_at and ends_at are required",
		},
		{
			"start equals end",
			discountReq{Percentage: 20, StartsAt: &now, EndsAt: &now},
			"starts_at must be before ends_at",
		},
		{
			"start after end",
			discountReq{Percentage: 20, StartsAt: &later, EndsAt: &now},
			"starts_at must be before ends_at",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.req.validate(now))
		})
	}
}

func TestDiscountReqValidatePastStart(t *testing.T) {
	now := time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

	t.Run("start far in the past rejected", func(t *testing.T) {
		start := now.Add(-time.Hour)
		end := now.Add(time.Hour)
		req := discountReq{Percentage: 20, StartsAt: &start, EndsAt: &end}
		assert.Equal(t, "starts_at must not be in the past", req.validate(now))
	})

	t.Run("small clock skew tolerated", func(t *testing.T) {
		start := now.Add(-30 * time.Second)
		end := now.Add(time.Hour)
		req := discountReq{Percentage: 20, StartsAt: &start, EndsAt: &end}
		assert.Equal(t, "", req.validate(now))
	})
}
