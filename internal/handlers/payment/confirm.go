package payment

import (
	"log"
	"net/http"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
)

// POST /api/v1/admin/orders/:id/confirm-payment
// Encaissement manuel des paiements hors ligne (M-Pesa, virement,
// contre-remboursement). Les paiements carte sont confirmés par le
// webhook Stripe et refusés ici.
func ConfirmOrderPayment(c *gin.Context) {
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

	if err := applyPaymentConfirmation(order, actor); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := service.UpdateOrderCAS(order); err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Printf("💰 Paiement %s encaissé manuellement pour %s", order.PaymentMethod, order.OrderNumber)
	go sendConfirmation(*order)

	utils.RespondOK(c, http.StatusOK, order, "paiement confirmé")
}

// applyPaymentConfirmation passe le paiement à completed et la commande à
// confirmed. Refusé pour la carte, pour un paiement déjà soldé et pour
// une commande qui n'attend plus de paiement (annulée notamment).
func applyPaymentConfirmation(order *models.Order, actor string) error {
	if order.PaymentMethod == models.MethodCard {
		return apperrors.NewValidationError("payment_method", "les paiements carte sont confirmés par la passerelle")
	}
	if !order.PaymentStatus.CanTransitionTo(models.PaymentCompleted) {
		return &apperrors.InvalidTransitionError{
			From: string(order.PaymentStatus),
			To:   string(models.PaymentCompleted),
		}
	}
	if !order.Status.CanTransitionTo(models.OrderConfirmed) {
		return &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   string(models.OrderConfirmed),
		}
	}

	order.PaymentStatus = models.PaymentCompleted
	order.Transition(models.OrderConfirmed, "Paiement encaissé", actor)
	order.Version++
	return nil
}
