package user

import (
	"net/http"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

type addressInput struct {
	Type         string   `json:"type" validate:"required,oneof=billing shipping"`
	FullName     string   `json:"full_name" validate:"required,min=2,max=120"`
	Phone        string   `json:"phone" validate:"required,phone"`
	AddressLine1 string   `json:"address_line1" validate:"required,min=3,max=200"`
	AddressLine2 string   `json:"address_line2" validate:"omitempty,max=200"`
	City         string   `json:"city" validate:"required,min=2,max=80"`
	State        string   `json:"state" validate:"omitempty,max=80"`
	PostalCode   string   `json:"postal_code" validate:"omitempty,max=20"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
	IsDefault    bool     `json:"is_default"`
}

// GET /api/v1/addresses
func ListAddresses(c *gin.Context) {
	userID := c.GetString("user_id")

	session, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	iter := session.Query(`SELECT address_id, type, full_name, phone, address_line1, address_line2,
		city, state, postal_code, latitude, longitude, is_default, created_at, updated_at
		FROM addresses_by_user WHERE user_id = ?`, userID).Iter()

	addresses := []models.Address{}
	var a models.Address
	for iter.Scan(&a.ID, &a.Type, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.Latitude, &a.Longitude, &a.IsDefault,
		&a.CreatedAt, &a.UpdatedAt) {
		a.UserID = userID
		addresses = append(addresses, a)
		a = models.Address{}
	}
	if err := iter.Close(); err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	utils.RespondOK(c, http.StatusOK, addresses, "")
}

// POST /api/v1/addresses
func CreateAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	now := time.Now()
	address := models.Address{
		ID:     gocql.TimeUUID(),
		UserID: userID,
		Type:   input.Type,
		PostalAddress: models.PostalAddress{
			FullName:     input.FullName,
			Phone:        input.Phone,
			AddressLine1: input.AddressLine1,
			AddressLine2: input.AddressLine2,
			City:         input.City,
			State:        input.State,
			PostalCode:   input.PostalCode,
			Latitude:     input.Latitude,
			Longitude:    input.Longitude,
		},
		IsDefault: input.IsDefault,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if address.IsDefault {
		if err := unsetDefaultAddresses(session, userID, address.Type); err != nil {
			utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
			return
		}
	}

	err = session.Query(`INSERT INTO addresses_by_user (user_id, address_id, type, full_name, phone,
		address_line1, address_line2, city, state, postal_code, latitude, longitude,
		is_default, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		userID, address.ID, address.Type, address.FullName, address.Phone,
		address.AddressLine1, address.AddressLine2, address.City, address.State,
		address.PostalCode, address.Latitude, address.Longitude,
		address.IsDefault, address.CreatedAt, address.UpdatedAt).Exec()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	utils.RespondOK(c, http.StatusCreated, address, "adresse créée")
}

// PUT /api/v1/addresses/:id
func UpdateAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	addressID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant adresse invalide"))
		return
	}

	var input addressInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	// Vérification d'appartenance avant toute écriture
	existing, err := findAddress(session, userID, addressID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if input.IsDefault && !existing.IsDefault {
		if err := unsetDefaultAddresses(session, userID, input.Type); err != nil {
			utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
			return
		}
	}

	err = session.Query(`UPDATE addresses_by_user SET type = ?, full_name = ?, phone = ?,
		address_line1 = ?, address_line2 = ?, city = ?, state = ?, postal_code = ?,
		latitude = ?, longitude = ?, is_default = ?, updated_at = ?
		WHERE user_id = ? AND address_id = ?`,
		input.Type, input.FullName, input.Phone, input.AddressLine1, input.AddressLine2,
		input.City, input.State, input.PostalCode, input.Latitude, input.Longitude,
		input.IsDefault, time.Now(), userID, addressID).Exec()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	updated, err := findAddress(session, userID, addressID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, updated, "adresse mise à jour")
}

// DELETE /api/v1/addresses/:id
func DeleteAddress(c *gin.Context) {
	userID := c.GetString("user_id")

	addressID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant adresse invalide"))
		return
	}

	session, err := database.GetUsersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	if _, err := findAddress(session, userID, addressID); err != nil {
		utils.RespondError(c, err)
		return
	}

	err = session.Query(`DELETE FROM addresses_by_user WHERE user_id = ? AND address_id = ?`,
		userID, addressID).Exec()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	utils.RespondOK(c, http.StatusOK, gin.H{"id": addressID.String()}, "adresse supprimée")
}

// --- helpers ---

func findAddress(session *gocql.Session, userID string, addressID gocql.UUID) (*models.Address, error) {
	var a models.Address
	err := session.Query(`SELECT address_id, type, full_name, phone, address_line1, address_line2,
		city, state, postal_code, latitude, longitude, is_default, created_at, updated_at
		FROM addresses_by_user WHERE user_id = ? AND address_id = ?`, userID, addressID).
		Scan(&a.ID, &a.Type, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
			&a.City, &a.State, &a.PostalCode, &a.Latitude, &a.Longitude, &a.IsDefault,
			&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, &apperrors.NotFoundError{Resource: "adresse"}
	}
	a.UserID = userID
	return &a, nil
}

// unsetDefaultAddresses retire le drapeau is_default des autres adresses
// du même type : une seule adresse par défaut par type et par utilisateur
func unsetDefaultAddresses(session *gocql.Session, userID, addrType string) error {
	iter := session.Query(`SELECT address_id, type, is_default
		FROM addresses_by_user WHERE user_id = ?`, userID).Iter()

	var (
		id        gocql.UUID
		t         string
		isDefault bool
		toUnset   []gocql.UUID
	)
	for iter.Scan(&id, &t, &isDefault) {
		if t == addrType && isDefault {
			toUnset = append(toUnset, id)
		}
	}
	if err := iter.Close(); err != nil {
		return err
	}

	for _, addrID := range toUnset {
		err := session.Query(`UPDATE addresses_by_user SET is_default = ?, updated_at = ?
			WHERE user_id = ? AND address_id = ?`, false, time.Now(), userID, addrID).Exec()
		if err != nil {
			return err
		}
	}
	return nil
}
