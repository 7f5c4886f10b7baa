// Package cart contient la logique de réconciliation du panier : calcul
// des totaux, fusion invité → connecté, et synchronisation best-effort
// entre la copie locale (source de vérité côté client) et la copie
// serveur.
package cart

import (
	"math"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"
)

// Montants en KES
const (
	TaxRate               = 0.16
	ShippingFlatFee       = 1500.0
	FreeShippingThreshold = 50000.0
)

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// ComputeTotals recalcule les sous-totaux de ligne et les agrégats.
// Invariants : subtotal ligne = prix × quantité ;
// total = subtotal − discount + tax + shipping.
// À rappeler après chaque mutation structurelle.
func ComputeTotals(c *models.Cart) {
	var subtotal float64
	for i := range c.Items {
		c.Items[i].Subtotal = round2(c.Items[i].Price * float64(c.Items[i].Quantity))
		subtotal += c.Items[i].Subtotal
	}
	c.Subtotal = round2(subtotal)

	if c.Discount > c.Subtotal {
		c.Discount = c.Subtotal
	}

	c.Tax = round2(c.Subtotal * TaxRate)

	// Livraison offerte à partir du seuil (et panier vide = rien à livrer)
	if c.Subtotal >= FreeShippingThreshold || len(c.Items) == 0 {
		c.Shipping = 0
	} else {
		c.Shipping = ShippingFlatFee
	}

	c.Total = round2(c.Subtotal - c.Discount + c.Tax + c.Shipping)
	c.UpdatedAt = time.Now()
}

// ApplyCoupon valide le coupon contre le sous-total courant et applique la
// réduction, puis recalcule les totaux.
func ApplyCoupon(c *models.Cart, coupon *models.Coupon) error {
	ComputeTotals(c)
	if !coupon.IsUsable(c.Subtotal, time.Now()) {
		return apperrors.NewValidationError("coupon_code", "coupon invalide, expiré ou sous-total insuffisant")
	}
	c.CouponCode = coupon.Code
	c.Discount = round2(coupon.DiscountFor(c.Subtotal))
	ComputeTotals(c)
	return nil
}
