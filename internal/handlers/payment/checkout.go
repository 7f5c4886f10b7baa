package payment

import (
	"errors"
	"log"
	"net/http"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/cart"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	gateway "patypatii_back_end/internal/payment"
	"patypatii_back_end/internal/service"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

type checkoutAddress struct {
	FullName     string   `json:"full_name" validate:"required,min=2,max=120"`
	Phone        string   `json:"phone" validate:"required,phone"`
	AddressLine1 string   `json:"address_line1" validate:"required,min=3,max=200"`
	AddressLine2 string   `json:"address_line2" validate:"omitempty,max=200"`
	City         string   `json:"city" validate:"required,min=2,max=80"`
	State        string   `json:"state" validate:"omitempty,max=80"`
	PostalCode   string   `json:"postal_code" validate:"omitempty,max=20"`
	Latitude     *float64 `json:"latitude" validate:"omitempty,gte=-90,lte=90"`
	Longitude    *float64 `json:"longitude" validate:"omitempty,gte=-180,lte=180"`
}

func (a checkoutAddress) toPostal() models.PostalAddress {
	return models.PostalAddress{
		FullName:     a.FullName,
		Phone:        a.Phone,
		AddressLine1: a.AddressLine1,
		AddressLine2: a.AddressLine2,
		City:         a.City,
		State:        a.State,
		PostalCode:   a.PostalCode,
		Latitude:     a.Latitude,
		Longitude:    a.Longitude,
	}
}

type checkoutInput struct {
	BillingAddress  checkoutAddress `json:"billing_address" validate:"required"`
	ShippingAddress checkoutAddress `json:"shipping_address" validate:"required"`
	PaymentMethod   string          `json:"payment_method" validate:"required,oneof=card mpesa bank_transfer cash_on_delivery"`
}

// POST /api/v1/orders
// Le checkout fige un instantané immuable du panier : lignes, prix,
// adresses et totaux sont copiés dans la commande et ne bougent plus,
// quelles que soient les modifications produit ultérieures.
func Checkout(c *gin.Context) {
	userID := c.GetString("user_id")

	var input checkoutInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	store := cart.NewRedisStore(database.Redis, "cart:"+userID)
	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil || current.IsEmpty() {
		utils.RespondError(c, apperrors.NewValidationError("cart", "panier vide"))
		return
	}

	// Les lignes référençant des produits supprimés ou désactivés sont
	// retirées avant le gel de l'instantané
	valid, removed := validateCartItems(current.Items)
	if len(valid) == 0 {
		utils.RespondError(c, apperrors.NewValidationError("cart", "aucun produit du panier n'est encore disponible"))
		return
	}
	if removed > 0 {
		log.Printf("⚠️ Checkout %s: %d ligne(s) retirée(s) du panier (produits indisponibles)", userID, removed)
		current.Items = valid
	}
	cart.ComputeTotals(current)

	now := time.Now()
	orderID := gocql.TimeUUID()

	order := &models.Order{
		ID:              orderID,
		OrderNumber:     service.GenerateOrderNumber(orderID, now),
		UserID:          userID,
		Items:           toOrderItems(current.Items),
		BillingAddress:  input.BillingAddress.toPostal(),
		ShippingAddress: input.ShippingAddress.toPostal(),
		CouponCode:      current.CouponCode,
		Subtotal:        current.Subtotal,
		Discount:        current.Discount,
		Tax:             current.Tax,
		Shipping:        current.Shipping,
		Total:           current.Total,
		PaymentMethod:   models.PaymentMethod(input.PaymentMethod),
		PaymentStatus:   models.PaymentPending,
		Status:          models.OrderPending,
		Timeline: []models.TimelineEntry{{
			Status:    models.OrderPending,
			Message:   "Commande créée",
			Actor:     userID,
			CreatedAt: now,
		}},
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	}

	var clientSecret string
	if order.PaymentMethod == models.MethodCard {
		intent, err := gateway.CreateIntent(order.Total, map[string]string{
			"order_id":     order.ID.String(),
			"order_number": order.OrderNumber,
			"user_id":      userID,
		})
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		order.PaymentIntentID = intent.ID
		order.PaymentStatus = models.PaymentProcessing
		clientSecret = intent.ClientSecret
	}

	if err := service.SaveOrder(order); err != nil {
		utils.RespondError(c, err)
		return
	}

	// Paiement hors ligne : le panier est consommé immédiatement. Pour la
	// carte, il ne l'est qu'à la confirmation du webhook. La suppression
	// est conditionnée à la version lue : un panier modifié entre-temps
	// est conservé, la commande reste figée sur l'instantané.
	if order.PaymentMethod != models.MethodCard {
		var stale *apperrors.StaleStateError
		switch err := store.DeleteIfVersion(c.Request.Context(), current.Version); {
		case errors.As(err, &stale):
			log.Printf("⚠️ Panier %s modifié pendant le checkout, conservé", store.Key)
		case err != nil:
			log.Printf("⚠️ Erreur vidage panier après checkout %s: %v", order.OrderNumber, err)
		default:
			database.Redis.Publish(c.Request.Context(), store.Key, "cleared")
		}
	}

	log.Printf("📤 Commande %s créée (%s, %.2f KES)", order.OrderNumber, order.PaymentMethod, order.Total)

	response := gin.H{"order": order}
	if clientSecret != "" {
		response["client_secret"] = clientSecret
	}
	utils.RespondOK(c, http.StatusCreated, response, "commande créée")
}

func toOrderItems(items []models.CartItem) []models.OrderItem {
	out := make([]models.OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, models.OrderItem{
			ProductID: item.ProductID,
			Name:      item.Name,
			Slug:      item.Slug,
			ImageURL:  item.ImageURL,
			Price:     item.Price,
			Quantity:  item.Quantity,
			VariantID: item.VariantID,
			Subtotal:  item.Price * float64(item.Quantity),
		})
	}
	return out
}

// validateCartItems garde les lignes dont le produit existe encore et
// reste actif, et retourne le nombre de lignes écartées
func validateCartItems(items []models.CartItem) ([]models.CartItem, int) {
	valid := make([]models.CartItem, 0, len(items))
	removed := 0
	for _, item := range items {
		if productIsActive(item.ProductID) {
			valid = append(valid, item)
		} else {
			removed++
		}
	}
	return valid, removed
}

func productIsActive(productID string) bool {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return false
	}

	var (
		id        gocql.UUID
		name      string
		slug      string
		price     float64
		stock     int
		imageURLs []string
		isActive  bool
	)
	if q := database.GetPreparedGetProductByID(); q != nil {
		err = q.Bind(gocql.UUID(pid)).Scan(&id, &name, &slug, &price, &stock, &imageURLs, &isActive)
	} else {
		session, serr := database.GetProductsSession()
		if serr != nil {
			return false
		}
		err = session.Query(`SELECT product_id, name, slug, price, stock, image_urls, is_active
			FROM products WHERE product_id = ?`, gocql.UUID(pid)).
			Scan(&id, &name, &slug, &price, &stock, &imageURLs, &isActive)
	}
	return err == nil && isActive
}
