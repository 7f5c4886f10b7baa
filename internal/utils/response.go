package utils

import (
	"errors"
	"log"
	"net/http"

	"patypatii_back_end/internal/apperrors"

	"github.com/gin-gonic/gin"
)

// Enveloppe JSON commune à tous les endpoints :
// {success, data?, error?, message?, errors?: [{field, message}]}

// Pagination accompagne les réponses de liste
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

func NewPagination(page, limit int, total int64) Pagination {
	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}
}

// RespondOK renvoie une réponse de succès
func RespondOK(c *gin.Context, status int, data any, message string) {
	body := gin.H{"success": true}
	if data != nil {
		body["data"] = data
	}
	if message != "" {
		body["message"] = message
	}
	c.JSON(status, body)
}

// RespondPage renvoie une liste paginée
func RespondPage(c *gin.Context, data any, p Pagination) {
	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"data":       data,
		"pagination": p,
	})
}

// RespondError mappe l'erreur vers son statut HTTP et l'enveloppe.
// Les erreurs de passerelle sont masquées derrière un message générique,
// le détail reste dans les logs serveur.
func RespondError(c *gin.Context, err error) {
	status := apperrors.HTTPStatus(err)

	var ve *apperrors.ValidationError
	if errors.As(err, &ve) {
		c.JSON(status, gin.H{
			"success": false,
			"error":   "données invalides",
			"errors":  ve.Fields,
		})
		return
	}

	var ue *apperrors.UpstreamServiceError
	if errors.As(err, &ue) {
		log.Printf("❌ Erreur passerelle: %v", ue)
		c.JSON(status, gin.H{
			"success": false,
			"error":   "paiement momentanément indisponible, veuillez réessayer",
		})
		return
	}

	var de *apperrors.ServiceUnavailableError
	if errors.As(err, &de) {
		log.Printf("❌ Base de données indisponible: %v", de)
		c.JSON(status, gin.H{
			"success": false,
			"error":   "service momentanément indisponible, veuillez réessayer plus tard",
		})
		return
	}

	if status == http.StatusInternalServerError {
		log.Printf("❌ Erreur interne: %v", err)
		c.JSON(status, gin.H{"success": false, "error": "erreur interne"})
		return
	}

	c.JSON(status, gin.H{"success": false, "error": err.Error()})
}
