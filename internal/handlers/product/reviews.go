package product

import (
	"log"
	"net/http"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GET /api/v1/products/:id/reviews
func ListReviews(c *gin.Context) {
	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant produit invalide"))
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	iter := session.Query(`SELECT review_id, user_id, user_name, rating, comment, verified, created_at
		FROM reviews_by_product_user WHERE product_id = ?`, productID).Iter()

	reviews := []models.Review{}
	var r models.Review
	for iter.Scan(&r.ID, &r.UserID, &r.UserName, &r.Rating, &r.Comment, &r.Verified, &r.CreatedAt) {
		r.ProductID = productID
		reviews = append(reviews, r)
		r = models.Review{}
	}
	if err := iter.Close(); err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	utils.RespondOK(c, http.StatusOK, reviews, "")
}

// POST /api/v1/products/:id/reviews
// Un seul avis par client et par produit ; l'insert conditionnel sur la
// clé (produit, utilisateur) rejette les doublons.
func CreateReview(c *gin.Context) {
	userID := c.GetString("user_id")

	productID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant produit invalide"))
		return
	}

	var input struct {
		Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
		Comment string `json:"comment" validate:"omitempty,max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	session, err := database.GetProductsSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	if _, err := findProductByID(session, productID); err != nil {
		utils.RespondError(c, err)
		return
	}

	review := models.Review{
		ID:        gocql.TimeUUID(),
		ProductID: productID,
		UserID:    userID,
		UserName:  reviewerName(userID),
		Rating:    input.Rating,
		Comment:   input.Comment,
		Verified:  hasDeliveredOrder(userID, productID),
		CreatedAt: time.Now(),
	}

	applied, err := session.Query(`INSERT INTO reviews_by_product_user
		(product_id, user_id, review_id, user_name, rating, comment, verified, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`,
		review.ProductID, review.UserID, review.ID, review.UserName,
		review.Rating, review.Comment, review.Verified, review.CreatedAt).
		MapScanCAS(map[string]interface{}{})
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}
	if !applied {
		utils.RespondError(c, &apperrors.ConflictError{Reason: "vous avez déjà laissé un avis sur ce produit"})
		return
	}

	log.Printf("⭐ Avis %d/5 déposé sur %s par %s", review.Rating, productID, userID)
	utils.RespondOK(c, http.StatusCreated, review, "avis enregistré")
}

// --- helpers ---

func reviewerName(userID string) string {
	session, err := database.GetUsersSession()
	if err != nil {
		return "Client"
	}
	var name string
	if err := session.Query(`SELECT name FROM users WHERE user_id = ?`, userID).Scan(&name); err != nil {
		return "Client"
	}
	return name
}

// hasDeliveredOrder marque l'avis "achat vérifié" si le client a reçu
// une commande contenant ce produit
func hasDeliveredOrder(userID string, productID gocql.UUID) bool {
	summaries, err := service.ListOrdersByUser(userID, 1, 100)
	if err != nil {
		return false
	}
	for _, summary := range summaries {
		if summary.Status != models.OrderDelivered {
			continue
		}
		order, err := service.GetOrderByID(summary.ID)
		if err != nil {
			continue
		}
		for _, item := range order.Items {
			if item.ProductID == productID.String() {
				return true
			}
		}
	}
	return false
}
