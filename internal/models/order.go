package models

import (
	"time"

	"github.com/gocql/gocql"
)

// --- Statuts de commande ---

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderRefunded   OrderStatus = "refunded"
)

// Seules progressions autorisées : pending → confirmed → processing →
// shipped → delivered, avec cancelled/refunded en sortie terminale depuis
// tout état non livré. Aucune transition arrière.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled, OrderRefunded},
	OrderConfirmed:  {OrderProcessing, OrderCancelled, OrderRefunded},
	OrderProcessing: {OrderShipped, OrderCancelled, OrderRefunded},
	OrderShipped:    {OrderDelivered, OrderCancelled, OrderRefunded},
	OrderDelivered:  {},
	OrderCancelled:  {},
	OrderRefunded:   {},
}

func (s OrderStatus) IsValid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// NextFulfillmentStep retourne l'étape suivante du circuit logistique
// (confirmed → processing → shipped → delivered), une étape à la fois.
func (s OrderStatus) NextFulfillmentStep() (OrderStatus, bool) {
	switch s {
	case OrderConfirmed:
		return OrderProcessing, true
	case OrderProcessing:
		return OrderShipped, true
	case OrderShipped:
		return OrderDelivered, true
	default:
		return "", false
	}
}

// CanBeCancelled : l'annulation client n'est permise que tant que la
// commande n'est pas expédiée.
func (s OrderStatus) CanBeCancelled() bool {
	return s == OrderPending || s == OrderConfirmed || s == OrderProcessing
}

// --- Statuts de paiement ---

type PaymentStatus string

const (
	PaymentPending    PaymentStatus = "pending"
	PaymentProcessing PaymentStatus = "processing"
	PaymentCompleted  PaymentStatus = "completed"
	PaymentFailed     PaymentStatus = "failed"
	PaymentRefunded   PaymentStatus = "refunded"
)

var paymentTransitions = map[PaymentStatus][]PaymentStatus{
	PaymentPending:    {PaymentProcessing, PaymentCompleted, PaymentFailed},
	PaymentProcessing: {PaymentCompleted, PaymentFailed},
	PaymentCompleted:  {PaymentRefunded},
	PaymentFailed:     {},
	PaymentRefunded:   {},
}

func (s PaymentStatus) CanTransitionTo(next PaymentStatus) bool {
	for _, allowed := range paymentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// --- Moyens de paiement ---

type PaymentMethod string

const (
	MethodCard           PaymentMethod = "card"
	MethodMpesa          PaymentMethod = "mpesa"
	MethodBankTransfer   PaymentMethod = "bank_transfer"
	MethodCashOnDelivery PaymentMethod = "cash_on_delivery"
)

var PaymentMethods = []PaymentMethod{MethodCard, MethodMpesa, MethodBankTransfer, MethodCashOnDelivery}

func (m PaymentMethod) IsValid() bool {
	for _, pm := range PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// --- Commande ---

// TimelineEntry est une entrée du journal de statuts. Le journal est
// strictement append-only : aucune entrée n'est modifiée ni supprimée.
type TimelineEntry struct {
	Status    OrderStatus `json:"status"`
	Message   string      `json:"message"`
	Actor     string      `json:"actor,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type OrderNote struct {
	Message   string    `json:"message"`
	Actor     string    `json:"actor"`
	CreatedAt time.Time `json:"created_at"`
}

// OrderItem est l'instantané immuable d'une ligne de panier copié à la
// création de la commande, découplé des modifications produit ultérieures.
type OrderItem struct {
	ProductID string  `json:"product_id"`
	Name      string  `json:"name"`
	Slug      string  `json:"slug"`
	ImageURL  string  `json:"image_url"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	VariantID string  `json:"variant_id,omitempty"`
	Subtotal  float64 `json:"subtotal"`
}

type Order struct {
	ID              gocql.UUID      `json:"id"`
	OrderNumber     string          `json:"order_number"`
	UserID          string          `json:"user_id"`
	Items           []OrderItem     `json:"items"`
	BillingAddress  PostalAddress   `json:"billing_address"`
	ShippingAddress PostalAddress   `json:"shipping_address"`
	CouponCode      string          `json:"coupon_code,omitempty"`
	Subtotal        float64         `json:"subtotal"`
	Discount        float64         `json:"discount"`
	Tax             float64         `json:"tax"`
	Shipping        float64         `json:"shipping"`
	Total           float64         `json:"total"`
	PaymentMethod   PaymentMethod   `json:"payment_method"`
	PaymentStatus   PaymentStatus   `json:"payment_status"`
	PaymentIntentID string          `json:"payment_intent_id,omitempty"`
	Status          OrderStatus     `json:"status"`
	Timeline        []TimelineEntry `json:"timeline"`
	Notes           []OrderNote     `json:"notes,omitempty"`
	Version         int             `json:"version"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// Transition applique un changement de statut et ajoute exactement une
// entrée au journal. Le statut reste inchangé si la transition est illégale.
func (o *Order) Transition(next OrderStatus, message, actor string) bool {
	if !o.Status.CanTransitionTo(next) {
		return false
	}
	o.Status = next
	o.Timeline = append(o.Timeline, TimelineEntry{
		Status:    next,
		Message:   message,
		Actor:     actor,
		CreatedAt: time.Now(),
	})
	return true
}

// AddNote ajoute une annotation admin (append-only elle aussi)
func (o *Order) AddNote(message, actor string) {
	o.Notes = append(o.Notes, OrderNote{
		Message:   message,
		Actor:     actor,
		CreatedAt: time.Now(),
	})
}
