package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCouponDiscountFor(t *testing.T) {
	pct := &Coupon{Type: "percentage", Value: 15}
	assert.Equal(t, 1500.0, pct.DiscountFor(10000))

	fixed := &Coupon{Type: "fixed", Value: 2000}
	assert.Equal(t, 2000.0, fixed.DiscountFor(10000))
	assert.Equal(t, 500.0, fixed.DiscountFor(500), "la réduction est plafonnée au sous-total")
}

func TestCouponIsUsable(t *testing.T) {
	now := time.Now()
	c := &Coupon{
		Type:      "fixed",
		Value:     500,
		MinAmount: 1000,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}

	assert.True(t, c.IsUsable(1000, now))
	assert.False(t, c.IsUsable(999, now), "sous le montant minimum")
	assert.False(t, c.IsUsable(5000, now.Add(2*time.Hour)), "expiré")
	assert.False(t, c.IsUsable(5000, now.Add(-2*time.Hour)), "pas encore actif")

	c.IsActive = false
	assert.False(t, c.IsUsable(5000, now))
}
