package user

import (
	"log"
	"net/http"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/payment"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// GET /api/v1/orders
func GetMyOrders(c *gin.Context) {
	userID := c.GetString("user_id")

	page, limit := validation.ParsePagination(c.Query("page"), c.Query("limit"))

	orders, err := service.ListOrdersByUser(userID, page, limit)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, orders, "")
}

// GET /api/v1/orders/:id
func GetOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant commande invalide"))
		return
	}

	order, err := service.GetOrderByID(orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	// Une commande d'un autre client est indistinguable d'une commande inexistante
	if order.UserID != userID {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "commande"})
		return
	}

	utils.RespondOK(c, http.StatusOK, order, "")
}

// PUT /api/v1/orders/:id/cancel
// Annulation client, permise tant que la commande n'est pas expédiée.
// Si le paiement était encaissé, le remboursement part vers la passerelle.
func CancelOrder(c *gin.Context) {
	userID := c.GetString("user_id")

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant commande invalide"))
		return
	}

	order, err := service.GetOrderByID(orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if order.UserID != userID {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "commande"})
		return
	}

	if !order.Status.CanBeCancelled() {
		utils.RespondError(c, &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   string(models.OrderCancelled),
		})
		return
	}

	// Remboursement d'abord : si la passerelle refuse, la commande reste
	// dans son état courant
	if order.PaymentStatus == models.PaymentCompleted && order.PaymentIntentID != "" {
		if _, err := payment.RefundIntent(order.PaymentIntentID); err != nil {
			utils.RespondError(c, err)
			return
		}
		order.PaymentStatus = models.PaymentRefunded
	}

	order.Transition(models.OrderCancelled, "Commande annulée par le client", userID)
	order.Version++

	if err := service.UpdateOrderCAS(order); err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Printf("✅ Commande %s annulée par %s", order.OrderNumber, userID)
	utils.RespondOK(c, http.StatusOK, order, "commande annulée")
}
