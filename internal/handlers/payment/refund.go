package payment

import (
	"log"
	"net/http"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"
	gateway "patypatii_back_end/internal/payment"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// POST /api/v1/admin/orders/:id/refund
// Rembourse le paiement d'une commande. Seul un paiement encaissé est
// remboursable ; le statut logistique de la commande ne bouge pas, c'est
// une décision séparée de l'opérateur.
func RefundOrder(c *gin.Context) {
	actor := c.GetString("user_id")

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

	if !order.PaymentStatus.CanTransitionTo(models.PaymentRefunded) {
		utils.RespondError(c, &apperrors.InvalidTransitionError{
			From: string(order.PaymentStatus),
			To:   string(models.PaymentRefunded),
		})
		return
	}
	if order.PaymentIntentID == "" {
		utils.RespondError(c, apperrors.NewValidationError("payment", "aucun paiement passerelle associé à cette commande"))
		return
	}

	if _, err := gateway.RefundIntent(order.PaymentIntentID); err != nil {
		utils.RespondError(c, err)
		return
	}

	order.PaymentStatus = models.PaymentRefunded
	order.AddNote("Paiement remboursé", actor)
	order.Version++

	if err := service.UpdateOrderCAS(order); err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Printf("💰 Commande %s remboursée par %s", order.OrderNumber, actor)
	utils.RespondOK(c, http.StatusOK, order, "paiement remboursé")
}
