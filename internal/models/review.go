package models

import (
	"time"

	"github.com/gocql/gocql"
)

// Review : un seul avis par couple (produit, utilisateur), contrainte
// assurée par la clé primaire de reviews_by_product_user.
type Review struct {
	ID        gocql.UUID `json:"id" db:"review_id"`
	ProductID gocql.UUID `json:"product_id" db:"product_id"`
	UserID    string     `json:"user_id" db:"user_id"`
	UserName  string     `json:"user_name" db:"user_name"`
	Rating    int        `json:"rating" db:"rating"` // 1-5
	Comment   string     `json:"comment" db:"comment"`
	Verified  bool       `json:"verified" db:"verified"`
	CreatedAt time.Time  `json:"created_at" db:"created_at"`
}
