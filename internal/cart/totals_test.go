package cart

import (
	"testing"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeTotals(t *testing.T) {
	c := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", Price: 2000, Quantity: 1},
		},
	}
	ComputeTotals(c)

	assert.Equal(t, 2000.0, c.Items[0].Subtotal)
	assert.Equal(t, 2000.0, c.Subtotal)
	assert.Equal(t, 320.0, c.Tax)
	assert.Equal(t, ShippingFlatFee, c.Shipping)
	assert.Equal(t, 3820.0, c.Total)
}

func TestComputeTotalsLineSubtotals(t *testing.T) {
	c := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", Price: 1250.50, Quantity: 3},
			{ProductID: "p2", Price: 799.99, Quantity: 2},
		},
	}
	ComputeTotals(c)

	assert.Equal(t, 3751.5, c.Items[0].Subtotal)
	assert.Equal(t, 1599.98, c.Items[1].Subtotal)
	assert.Equal(t, 5351.48, c.Subtotal)
}

func TestComputeTotalsFreeShippingAtThreshold(t *testing.T) {
	c := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", Price: FreeShippingThreshold, Quantity: 1},
		},
	}
	ComputeTotals(c)

	assert.Equal(t, 0.0, c.Shipping)
	assert.Equal(t, 58000.0, c.Total)
}

func TestComputeTotalsFlatFeeJustBelowThreshold(t *testing.T) {
	c := &models.Cart{
		Items: []models.CartItem{
			{ProductID: "p1", Price: 49999, Quantity: 1},
		},
	}
	ComputeTotals(c)

	assert.Equal(t, ShippingFlatFee, c.Shipping)
	assert.Equal(t, 59498.84, c.Total)
}

func TestComputeTotalsEmptyCart(t *testing.T) {
	c := &models.Cart{Items: []models.CartItem{}}
	ComputeTotals(c)

	assert.Equal(t, 0.0, c.Subtotal)
	assert.Equal(t, 0.0, c.Tax)
	assert.Equal(t, 0.0, c.Shipping)
	assert.Equal(t, 0.0, c.Total)
}

func TestComputeTotalsDiscountClampedToSubtotal(t *testing.T) {
	c := &models.Cart{
		Items:    []models.CartItem{{ProductID: "p1", Price: 2000, Quantity: 1}},
		Discount: 5000,
	}
	ComputeTotals(c)

	assert.Equal(t, 2000.0, c.Discount)
	// subtotal − discount + tax + shipping
	assert.Equal(t, 1820.0, c.Total)
}

func TestApplyCoupon(t *testing.T) {
	now := time.Now()
	coupon := &models.Coupon{
		Code:      "KARIBU10",
		Type:      "percentage",
		Value:     10,
		MinAmount: 1000,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
	c := &models.Cart{
		Items: []models.CartItem{{ProductID: "p1", Price: 10000, Quantity: 1}},
	}

	require.NoError(t, ApplyCoupon(c, coupon))
	assert.Equal(t, "KARIBU10", c.CouponCode)
	assert.Equal(t, 1000.0, c.Discount)
	// 10000 − 1000 + 1600 + 1500
	assert.Equal(t, 12100.0, c.Total)
}

func TestApplyCouponBelowMinimum(t *testing.T) {
	now := time.Now()
	coupon := &models.Coupon{
		Code:      "GRANDPANIER",
		Type:      "fixed",
		Value:     500,
		MinAmount: 20000,
		StartsAt:  now.Add(-time.Hour),
		ExpiresAt: now.Add(time.Hour),
		IsActive:  true,
	}
	c := &models.Cart{
		Items: []models.CartItem{{ProductID: "p1", Price: 2000, Quantity: 1}},
	}

	err := ApplyCoupon(c, coupon)
	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Empty(t, c.CouponCode)
	assert.Equal(t, 0.0, c.Discount)
}

func TestApplyCouponExpired(t *testing.T) {
	now := time.Now()
	coupon := &models.Coupon{
		Code:      "FINI",
		Type:      "percentage",
		Value:     10,
		StartsAt:  now.Add(-48 * time.Hour),
		ExpiresAt: now.Add(-24 * time.Hour),
		IsActive:  true,
	}
	c := &models.Cart{
		Items: []models.CartItem{{ProductID: "p1", Price: 2000, Quantity: 1}},
	}

	require.Error(t, ApplyCoupon(c, coupon))
}
