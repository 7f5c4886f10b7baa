package service

import (
	"encoding/json"
	"fmt"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"

	"github.com/gocql/gocql"
)

// OrderSummary est la ligne dénormalisée de orders_by_user : juste ce
// qu'il faut pour l'historique de commandes, sans les colonnes JSON.
type OrderSummary struct {
	ID          gocql.UUID         `json:"id"`
	OrderNumber string             `json:"order_number"`
	Status      models.OrderStatus `json:"status"`
	Total       float64            `json:"total"`
	ItemCount   int                `json:"item_count"`
	CreatedAt   time.Time          `json:"created_at"`
}

// SaveOrder insère une nouvelle commande dans la table principale et la
// vue par utilisateur. Les collections (lignes, adresses, journal) sont
// stockées en colonnes JSON.
func SaveOrder(order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}

	itemsJSON, _ := json.Marshal(order.Items)
	billingJSON, _ := json.Marshal(order.BillingAddress)
	shippingJSON, _ := json.Marshal(order.ShippingAddress)
	timelineJSON, _ := json.Marshal(order.Timeline)
	notesJSON, _ := json.Marshal(order.Notes)

	err = session.Query(`INSERT INTO orders (order_id, order_number, user_id, items, billing_address,
		shipping_address, coupon_code, subtotal, discount, tax, shipping, total,
		payment_method, payment_status, payment_intent_id, status, timeline, notes,
		version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.OrderNumber, order.UserID, string(itemsJSON), string(billingJSON),
		string(shippingJSON), order.CouponCode, order.Subtotal, order.Discount, order.Tax,
		order.Shipping, order.Total, string(order.PaymentMethod), string(order.PaymentStatus),
		order.PaymentIntentID, string(order.Status), string(timelineJSON), string(notesJSON),
		order.Version, order.CreatedAt, order.UpdatedAt).Exec()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}

	return upsertOrderSummary(session, order)
}

// UpdateOrderCAS persiste une commande modifiée avec une écriture
// conditionnelle sur le compteur de version. L'appelant a incrémenté
// Version avant d'appeler ; la condition vérifie Version-1.
func UpdateOrderCAS(order *models.Order) error {
	session, err := database.GetOrdersSession()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}

	timelineJSON, _ := json.Marshal(order.Timeline)
	notesJSON, _ := json.Marshal(order.Notes)
	order.UpdatedAt = time.Now()

	applied, err := session.Query(`UPDATE orders SET status = ?, payment_status = ?,
		payment_intent_id = ?, timeline = ?, notes = ?, version = ?, updated_at = ?
		WHERE order_id = ? IF version = ?`,
		string(order.Status), string(order.PaymentStatus), order.PaymentIntentID,
		string(timelineJSON), string(notesJSON), order.Version, order.UpdatedAt,
		order.ID, order.Version-1).MapScanCAS(map[string]interface{}{})
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}
	if !applied {
		return &apperrors.StaleStateError{Resource: "commande"}
	}

	return upsertOrderSummary(session, order)
}

// GetOrderByID recharge une commande complète, colonnes JSON décodées
func GetOrderByID(orderID gocql.UUID) (*models.Order, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, &apperrors.ServiceUnavailableError{Err: err}
	}

	var (
		order                                              models.Order
		itemsJSON, billingJSON, shippingJSON               string
		timelineJSON, notesJSON                            string
		paymentMethod, paymentStatus, status               string
	)
	err = session.Query(`SELECT order_id, order_number, user_id, items, billing_address,
		shipping_address, coupon_code, subtotal, discount, tax, shipping, total,
		payment_method, payment_status, payment_intent_id, status, timeline, notes,
		version, created_at, updated_at
		FROM orders WHERE order_id = ?`, orderID).
		Scan(&order.ID, &order.OrderNumber, &order.UserID, &itemsJSON, &billingJSON,
			&shippingJSON, &order.CouponCode, &order.Subtotal, &order.Discount, &order.Tax,
			&order.Shipping, &order.Total, &paymentMethod, &paymentStatus,
			&order.PaymentIntentID, &status, &timelineJSON, &notesJSON,
			&order.Version, &order.CreatedAt, &order.UpdatedAt)
	if err == gocql.ErrNotFound {
		return nil, &apperrors.NotFoundError{Resource: "commande"}
	}
	if err != nil {
		return nil, &apperrors.ServiceUnavailableError{Err: err}
	}

	order.PaymentMethod = models.PaymentMethod(paymentMethod)
	order.PaymentStatus = models.PaymentStatus(paymentStatus)
	order.Status = models.OrderStatus(status)
	json.Unmarshal([]byte(itemsJSON), &order.Items)
	json.Unmarshal([]byte(billingJSON), &order.BillingAddress)
	json.Unmarshal([]byte(shippingJSON), &order.ShippingAddress)
	json.Unmarshal([]byte(timelineJSON), &order.Timeline)
	json.Unmarshal([]byte(notesJSON), &order.Notes)

	return &order, nil
}

// ListOrdersByUser retourne l'historique du plus récent au plus ancien
func ListOrdersByUser(userID string, page, limit int) ([]OrderSummary, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, &apperrors.ServiceUnavailableError{Err: err}
	}

	iter := session.Query(`SELECT order_id, order_number, status, total, item_count, created_at
		FROM orders_by_user WHERE user_id = ?`, userID).Iter()

	all := []OrderSummary{}
	var s OrderSummary
	var status string
	for iter.Scan(&s.ID, &s.OrderNumber, &status, &s.Total, &s.ItemCount, &s.CreatedAt) {
		s.Status = models.OrderStatus(status)
		all = append(all, s)
		s = OrderSummary{}
	}
	if err := iter.Close(); err != nil {
		return nil, &apperrors.ServiceUnavailableError{Err: err}
	}

	// Pagination en mémoire : l'historique d'un client reste petit
	start := (page - 1) * limit
	if start >= len(all) {
		return []OrderSummary{}, nil
	}
	end := start + limit
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], nil
}

// GenerateOrderNumber produit la référence lisible PTY-YYYYMMDD-XXXXXX
func GenerateOrderNumber(id gocql.UUID, at time.Time) string {
	suffix := fmt.Sprintf("%X", id.Bytes()[:3])
	return fmt.Sprintf("PTY-%s-%s", at.Format("20060102"), suffix)
}

func upsertOrderSummary(session *gocql.Session, order *models.Order) error {
	err := session.Query(`INSERT INTO orders_by_user (user_id, created_at, order_id, order_number,
		status, total, item_count)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		order.UserID, order.CreatedAt, order.ID, order.OrderNumber,
		string(order.Status), order.Total, len(order.Items)).Exec()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}
	return nil
}
