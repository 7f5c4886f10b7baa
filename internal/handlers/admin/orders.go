package admin

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

// GET /api/v1/admin/orders
// Vue opérateur sur toutes les commandes, filtrable par statut
func ListAllOrders(c *gin.Context) {
	session, err := database.GetOrdersSession()
	if err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	statusFilter := c.Query("status")
	if statusFilter != "" && !models.OrderStatus(statusFilter).IsValid() {
		utils.RespondError(c, apperrors.NewValidationError("status", "statut inconnu"))
		return
	}
	page, limit := validation.ParsePagination(c.Query("page"), c.Query("limit"))

	iter := session.Query(`SELECT order_id, order_number, user_id, status, payment_status,
		payment_method, total, created_at FROM orders`).Iter()

	type adminOrderRow struct {
		ID            gocql.UUID           `json:"id"`
		OrderNumber   string               `json:"order_number"`
		UserID        string               `json:"user_id"`
		Status        models.OrderStatus   `json:"status"`
		PaymentStatus models.PaymentStatus `json:"payment_status"`
		PaymentMethod models.PaymentMethod `json:"payment_method"`
		Total         float64              `json:"total"`
		CreatedAt     time.Time            `json:"created_at"`
	}

	all := []adminOrderRow{}
	var row adminOrderRow
	var status, paymentStatus, paymentMethod string
	for iter.Scan(&row.ID, &row.OrderNumber, &row.UserID, &status, &paymentStatus,
		&paymentMethod, &row.Total, &row.CreatedAt) {
		row.Status = models.OrderStatus(status)
		row.PaymentStatus = models.PaymentStatus(paymentStatus)
		row.PaymentMethod = models.PaymentMethod(paymentMethod)
		if statusFilter == "" || string(row.Status) == statusFilter {
			all = append(all, row)
		}
		row = adminOrderRow{}
	}
	if err := iter.Close(); err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}

	total := int64(len(all))
	start := (page - 1) * limit
	if start >= len(all) {
		utils.RespondPage(c, []adminOrderRow{}, utils.NewPagination(page, limit, total))
		return
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	utils.RespondPage(c, all[start:end], utils.NewPagination(page, limit, total))
}

// GET /api/v1/admin/orders/:id
func GetOrder(c *gin.Context) {
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
	utils.RespondOK(c, http.StatusOK, order, "")
}

// PUT /api/v1/admin/orders/:id/status
// Fait progresser le circuit logistique d'exactement une étape
// (confirmed → processing → shipped → delivered). Une commande en
// attente de paiement ou déjà terminale ne bouge pas.
func AdvanceOrderStatus(c *gin.Context) {
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

	next, ok := order.Status.NextFulfillmentStep()
	if !ok {
		utils.RespondError(c, &apperrors.InvalidTransitionError{
			From: string(order.Status),
			To:   "étape suivante",
		})
		return
	}

	order.Transition(next, fulfillmentMessage(next), actor)
	order.Version++

	if err := service.UpdateOrderCAS(order); err != nil {
		utils.RespondError(c, err)
		return
	}

	log.Printf("✅ Commande %s avancée: %s", order.OrderNumber, next)
	utils.RespondOK(c, http.StatusOK, order, "statut mis à jour")
}

// POST /api/v1/admin/orders/:id/notes
func AddOrderNote(c *gin.Context) {
	actor := c.GetString("user_id")

	orderID, err := gocql.ParseUUID(c.Param("id"))
	if err != nil {
		utils.RespondError(c, apperrors.NewValidationError("id", "identifiant commande invalide"))
		return
	}

	var input struct {
		Message string `json:"message" validate:"required,min=1,max=2000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	order, err := service.GetOrderByID(orderID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	order.AddNote(input.Message, actor)
	order.Version++

	if err := service.UpdateOrderCAS(order); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, order, "note ajoutée")
}

func fulfillmentMessage(status models.OrderStatus) string {
	switch status {
	case models.OrderProcessing:
		return "Commande en préparation"
	case models.OrderShipped:
		return "Commande expédiée"
	case models.OrderDelivered:
		return "Commande livrée"
	default:
		return "Statut mis à jour"
	}
}
