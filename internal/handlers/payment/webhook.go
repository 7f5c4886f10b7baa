package payment

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	gateway "patypatii_back_end/internal/payment"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/stripe/stripe-go/v83"
)

// POST /api/v1/payments/webhook
// Point d'entrée des notifications Stripe. Idempotent : un événement
// rejoué sur une commande déjà traitée est acquitté sans effet.
func StripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<20))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "lecture du payload impossible"))
		return
	}

	event, err := gateway.VerifyWebhook(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Les événements hors périmètre ou sans commande rattachable sont
	// acquittés en 200 ; un échec de persistance ou de remboursement
	// renvoie une erreur pour que Stripe rejoue l'événement
	switch event.Type {
	case "payment_intent.succeeded":
		if err := handlePaymentSucceeded(event); err != nil {
			utils.RespondError(c, err)
			return
		}
	case "payment_intent.payment_failed":
		if err := handlePaymentFailed(event); err != nil {
			utils.RespondError(c, err)
			return
		}
	default:
		log.Printf("⚠️ Événement Stripe ignoré: %s", event.Type)
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

func handlePaymentSucceeded(event stripe.Event) error {
	order, ok := orderFromEvent(event)
	if !ok {
		return nil
	}

	refunded, changed, err := settleIntentSuccess(order, gateway.RefundIntent)
	if err != nil {
		log.Printf("❌ Remboursement impossible pour %s: %v", order.OrderNumber, err)
		return err
	}
	if !changed {
		return nil
	}

	if err := service.UpdateOrderCAS(order); err != nil {
		log.Printf("❌ Erreur confirmation commande %s: %v", order.OrderNumber, err)
		return err
	}

	if refunded {
		log.Printf("💰 Paiement remboursé pour %s (commande annulée avant règlement)", order.OrderNumber)
		return nil
	}
	log.Printf("💳 Paiement confirmé pour %s", order.OrderNumber)

	// Le panier carte n'est consommé qu'ici, une fois le paiement sûr
	ctx := context.Background()
	key := "cart:" + order.UserID
	if err := database.Redis.Del(ctx, key).Err(); err != nil {
		log.Printf("⚠️ Erreur vidage panier %s: %v", order.UserID, err)
	} else {
		database.Redis.Publish(ctx, key, "cleared")
	}

	go sendConfirmation(*order)
	return nil
}

// settleIntentSuccess applique un intent réglé sur la commande. Si la
// commande a été annulée avant que la passerelle ne règle l'intent,
// l'argent repart vers le client au lieu d'être encaissé.
func settleIntentSuccess(order *models.Order, refund func(string) (*stripe.Refund, error)) (refunded, changed bool, err error) {
	// Rejeu d'un événement déjà traité
	if order.PaymentStatus == models.PaymentCompleted {
		log.Printf("⚠️ Webhook rejoué pour %s, déjà confirmée", order.OrderNumber)
		return false, false, nil
	}
	if !order.PaymentStatus.CanTransitionTo(models.PaymentCompleted) {
		log.Printf("❌ Paiement %s: transition %s → completed refusée", order.OrderNumber, order.PaymentStatus)
		return false, false, nil
	}

	if !order.Status.CanTransitionTo(models.OrderConfirmed) {
		if _, err := refund(order.PaymentIntentID); err != nil {
			return false, false, err
		}
		order.PaymentStatus = models.PaymentRefunded
		order.AddNote("Commande annulée avant encaissement, paiement remboursé", "stripe")
		order.Version++
		return true, true, nil
	}

	order.PaymentStatus = models.PaymentCompleted
	order.Transition(models.OrderConfirmed, "Paiement encaissé", "stripe")
	order.Version++
	return false, true, nil
}

func handlePaymentFailed(event stripe.Event) error {
	order, ok := orderFromEvent(event)
	if !ok {
		return nil
	}
	if !order.PaymentStatus.CanTransitionTo(models.PaymentFailed) {
		return nil
	}

	order.PaymentStatus = models.PaymentFailed
	order.AddNote("Paiement refusé par la passerelle", "stripe")
	order.Version++

	if err := service.UpdateOrderCAS(order); err != nil {
		log.Printf("❌ Erreur marquage échec paiement %s: %v", order.OrderNumber, err)
		return err
	}
	log.Printf("❌ Paiement échoué pour %s", order.OrderNumber)
	return nil
}

// orderFromEvent retrouve la commande via les métadonnées posées sur
// l'intent à la création
func orderFromEvent(event stripe.Event) (*models.Order, bool) {
	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		log.Printf("❌ Payload intent illisible: %v", err)
		return nil, false
	}

	orderIDStr := intent.Metadata["order_id"]
	if orderIDStr == "" {
		log.Printf("⚠️ Intent %s sans order_id, ignoré", intent.ID)
		return nil, false
	}
	orderID, err := gocql.ParseUUID(orderIDStr)
	if err != nil {
		log.Printf("❌ order_id invalide dans l'intent %s: %v", intent.ID, err)
		return nil, false
	}

	order, err := service.GetOrderByID(orderID)
	if err != nil {
		log.Printf("❌ Commande introuvable pour l'intent %s: %v", intent.ID, err)
		return nil, false
	}
	return order, true
}

func sendConfirmation(order models.Order) {
	email, err := userEmail(order.UserID)
	if err != nil {
		log.Printf("⚠️ Email de confirmation %s non envoyé: %v", order.OrderNumber, err)
		return
	}
	if err := utils.SendOrderConfirmationEmail(email, order); err != nil {
		log.Printf("⚠️ Erreur envoi email confirmation %s: %v", order.OrderNumber, err)
		return
	}
	log.Printf("📤 Email de confirmation envoyé pour %s", order.OrderNumber)
}

func userEmail(userID string) (string, error) {
	session, err := database.GetUsersSession()
	if err != nil {
		return "", err
	}
	var email string
	err = session.Query(`SELECT email FROM users WHERE user_id = ?`, userID).Scan(&email)
	return email, err
}
