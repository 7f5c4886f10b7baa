package models

import "time"

// CartItem est une ligne de panier avec un instantané dénormalisé du
// produit (nom/slug/image/prix) capturé au moment de l'ajout.
type CartItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ImageURL  string  `json:"image_url"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	VariantID string  `json:"variant_id,omitempty"`
	Subtotal  float64 `json:"subtotal"`
}

// Cart appartient soit à un utilisateur connecté (UserID), soit à une
// session anonyme (SessionID) — jamais les deux.
type Cart struct {
	UserID     string     `json:"user_id,omitempty"`
	SessionID  string     `json:"session_id,omitempty"`
	Items      []CartItem `json:"items"`
	CouponCode string     `json:"coupon_code,omitempty"`
	Subtotal   float64    `json:"subtotal"`
	Discount   float64    `json:"discount"`
	Tax        float64    `json:"tax"`
	Shipping   float64    `json:"shipping"`
	Total      float64    `json:"total"`
	Version    int64      `json:"version"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

// FindItem retourne la ligne correspondant au produit, ou nil
func (c *Cart) FindItem(productID string) *CartItem {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return &c.Items[i]
		}
	}
	return nil
}

// RemoveItem supprime la ligne correspondant au produit
func (c *Cart) RemoveItem(productID string) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Cart) IsEmpty() bool {
	return len(c.Items) == 0
}
