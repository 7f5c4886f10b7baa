package models

import "time"

type Coupon struct {
	Code      string    `json:"code"`
	Type      string    `json:"type"` // "percentage", "fixed"
	Value     float64   `json:"value"`
	MinAmount float64   `json:"min_amount"`
	StartsAt  time.Time `json:"starts_at"`
	ExpiresAt time.Time `json:"expires_at"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsUsable vérifie la fenêtre de validité et le montant minimum
func (cp *Coupon) IsUsable(subtotal float64, now time.Time) bool {
	if !cp.IsActive {
		return false
	}
	if now.Before(cp.StartsAt) || now.After(cp.ExpiresAt) {
		return false
	}
	return subtotal >= cp.MinAmount
}

// DiscountFor calcule la réduction applicable, plafonnée au sous-total
func (cp *Coupon) DiscountFor(subtotal float64) float64 {
	var discount float64
	switch cp.Type {
	case "percentage":
		discount = subtotal * cp.Value / 100
	case "fixed":
		discount = cp.Value
	}
	if discount > subtotal {
		discount = subtotal
	}
	return discount
}
