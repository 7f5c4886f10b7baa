package models

import (
	"time"

	"github.com/gocql/gocql"
)

// PostalAddress est l'adresse postale complète telle qu'elle est copiée
// dans les commandes au moment du checkout.
type PostalAddress struct {
	FullName     string   `json:"full_name"`
	Phone        string   `json:"phone"`
	AddressLine1 string   `json:"address_line1"`
	AddressLine2 string   `json:"address_line2,omitempty"`
	City         string   `json:"city"`
	State        string   `json:"state,omitempty"`
	PostalCode   string   `json:"postal_code,omitempty"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

type Address struct {
	ID     gocql.UUID `json:"id"`
	UserID string     `json:"user_id"`
	Type   string     `json:"type"` // "billing" ou "shipping"
	PostalAddress
	IsDefault bool      `json:"is_default"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
