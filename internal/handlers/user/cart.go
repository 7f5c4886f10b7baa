package user

import (
	"context"
	"log"
	"net/http"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/cart"
	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"
	"patypatii_back_end/internal/utils"
	"patypatii_back_end/internal/validation"

	"github.com/gin-gonic/gin"
	"github.com/gocql/gocql"
	"github.com/google/uuid"
)

// CartKey retourne la clé Redis du panier : utilisateur connecté ou
// session invitée (X-Session-ID), jamais les deux.
func CartKey(c *gin.Context) (string, error) {
	if userID := c.GetString("user_id"); userID != "" {
		return "cart:" + userID, nil
	}
	if sessionID := c.GetHeader("X-Session-ID"); sessionID != "" {
		return "cart:guest:" + sessionID, nil
	}
	return "", apperrors.NewValidationError("session", "header X-Session-ID requis pour un panier invité")
}

func cartStore(c *gin.Context) (*cart.RedisStore, error) {
	key, err := CartKey(c)
	if err != nil {
		return nil, err
	}
	return cart.NewRedisStore(database.Redis, key), nil
}

func publishCartEvent(key, event string) {
	database.Redis.Publish(context.Background(), key, event)
}

func emptyCart(c *gin.Context) *models.Cart {
	empty := &models.Cart{Items: []models.CartItem{}}
	if userID := c.GetString("user_id"); userID != "" {
		empty.UserID = userID
	} else {
		empty.SessionID = c.GetHeader("X-Session-ID")
	}
	return empty
}

// GET /api/v1/cart
func GetCart(c *gin.Context) {
	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil {
		utils.RespondOK(c, http.StatusOK, emptyCart(c), "")
		return
	}
	utils.RespondOK(c, http.StatusOK, current, "")
}

// POST /api/v1/cart/items
func AddToCart(c *gin.Context) {
	var input struct {
		ProductID string `json:"product_id" validate:"required,uuid"`
		Quantity  int    `json:"quantity" validate:"required,gte=1"`
		VariantID string `json:"variant_id" validate:"omitempty,max=64"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	// Instantané dénormalisé du produit pris au moment de l'ajout
	snapshot, stock, err := productSnapshot(input.ProductID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	snapshot.Quantity = input.Quantity
	snapshot.VariantID = input.VariantID

	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil {
		current = emptyCart(c)
	}

	if item := current.FindItem(snapshot.ProductID); item != nil {
		if item.Quantity+input.Quantity > stock {
			utils.RespondError(c, apperrors.NewValidationError("quantity", "stock insuffisant"))
			return
		}
		item.Quantity += input.Quantity
	} else {
		if input.Quantity > stock {
			utils.RespondError(c, apperrors.NewValidationError("quantity", "stock insuffisant"))
			return
		}
		current.Items = append(current.Items, *snapshot)
	}

	if err := saveCart(c, store, current); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, current, "produit ajouté au panier")
}

// PUT /api/v1/cart/items/:productId
// Une quantité ≤ 0 équivaut à une suppression de ligne
func UpdateCartItem(c *gin.Context) {
	productID := c.Param("productId")

	var input struct {
		Quantity int `json:"quantity" validate:"gte=0,lte=1000"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil || current.FindItem(productID) == nil {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "produit dans le panier"})
		return
	}

	if input.Quantity <= 0 {
		current.RemoveItem(productID)
	} else {
		current.FindItem(productID).Quantity = input.Quantity
	}

	if err := saveCart(c, store, current); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, current, "quantité mise à jour")
}

// DELETE /api/v1/cart/items/:productId
func RemoveFromCart(c *gin.Context) {
	productID := c.Param("productId")

	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil || !current.RemoveItem(productID) {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "produit dans le panier"})
		return
	}

	if err := saveCart(c, store, current); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, current, "produit supprimé du panier")
}

// DELETE /api/v1/cart
func ClearCart(c *gin.Context) {
	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := store.Delete(c.Request.Context()); err != nil {
		utils.RespondError(c, &apperrors.ServiceUnavailableError{Err: err})
		return
	}
	publishCartEvent(store.Key, "cleared")
	utils.RespondOK(c, http.StatusOK, emptyCart(c), "panier vidé")
}

// POST /api/v1/cart/merge
// Fusionne le panier invité dans le panier du compte après login : les
// lignes serveur gagnent sur conflit, les lignes invitées absentes du
// serveur sont préservées. Le panier invité est ensuite supprimé.
func MergeCart(c *gin.Context) {
	userID := c.GetString("user_id")

	var input struct {
		SessionID string `json:"session_id" validate:"required,min=8,max=128"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	ctx := c.Request.Context()
	guestStore := cart.NewRedisStore(database.Redis, "cart:guest:"+input.SessionID)
	userStore := cart.NewRedisStore(database.Redis, "cart:"+userID)

	guestCart, err := guestStore.Read(ctx)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	userCart, err := userStore.Read(ctx)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	if userCart == nil {
		userCart = &models.Cart{UserID: userID, Items: []models.CartItem{}}
	}
	var guestItems []models.CartItem
	if guestCart != nil {
		guestItems = guestCart.Items
	}

	userCart.Items = cart.Merge(userCart.Items, guestItems)
	userCart.UserID = userID
	userCart.SessionID = ""

	if err := saveCart(c, userStore, userCart); err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := guestStore.Delete(ctx); err != nil {
		log.Printf("⚠️ Erreur suppression panier invité %s: %v", input.SessionID, err)
	}

	utils.RespondOK(c, http.StatusOK, userCart, "paniers fusionnés")
}

// POST /api/v1/cart/coupon
func ApplyCoupon(c *gin.Context) {
	var input struct {
		Code string `json:"code" validate:"required,min=3,max=32"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, apperrors.NewValidationError("body", "JSON invalide"))
		return
	}
	if err := validation.Check(input); err != nil {
		utils.RespondError(c, err)
		return
	}

	store, err := cartStore(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	current, err := store.Read(c.Request.Context())
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if current == nil || current.IsEmpty() {
		utils.RespondError(c, apperrors.NewValidationError("code", "panier vide"))
		return
	}

	coupon, err := FindCoupon(input.Code)
	if err != nil {
		utils.RespondError(c, &apperrors.NotFoundError{Resource: "coupon"})
		return
	}
	if err := cart.ApplyCoupon(current, coupon); err != nil {
		utils.RespondError(c, err)
		return
	}

	if err := saveCart(c, store, current); err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.RespondOK(c, http.StatusOK, current, "coupon appliqué")
}

// --- helpers ---

// saveCart recalcule les totaux (invariant réévalué à chaque mutation),
// ré-applique le coupon éventuel, incrémente la version et écrit avec
// compare-and-swap, puis publie l'événement de synchronisation.
func saveCart(c *gin.Context, store *cart.RedisStore, current *models.Cart) error {
	if current.CouponCode != "" {
		if coupon, err := FindCoupon(current.CouponCode); err == nil && coupon.IsUsable(sumSubtotal(current), time.Now()) {
			current.Discount = coupon.DiscountFor(sumSubtotal(current))
		} else {
			// Coupon devenu invalide après mutation : on le retire
			current.CouponCode = ""
			current.Discount = 0
		}
	}
	cart.ComputeTotals(current)
	current.Version++

	if err := store.Write(c.Request.Context(), current); err != nil {
		return err
	}
	publishCartEvent(store.Key, "updated")
	return nil
}

func sumSubtotal(c *models.Cart) float64 {
	var s float64
	for _, item := range c.Items {
		s += item.Price * float64(item.Quantity)
	}
	return s
}

// productSnapshot récupère l'instantané dénormalisé (nom/slug/image/prix)
// et le stock courant d'un produit actif
func productSnapshot(productID string) (*models.CartItem, int, error) {
	pid, err := uuid.Parse(productID)
	if err != nil {
		return nil, 0, apperrors.NewValidationError("product_id", "identifiant produit invalide")
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

	scan := func(q interface {
		Scan(...interface{}) error
	}) error {
		return q.Scan(&id, &name, &slug, &price, &stock, &imageURLs, &isActive)
	}

	if q := database.GetPreparedGetProductByID(); q != nil {
		err = scan(q.Bind(gocql.UUID(pid)))
	} else {
		session, serr := database.GetProductsSession()
		if serr != nil {
			return nil, 0, &apperrors.ServiceUnavailableError{Err: serr}
		}
		err = scan(session.Query(`SELECT product_id, name, slug, price, stock, image_urls, is_active
			FROM products WHERE product_id = ?`, gocql.UUID(pid)))
	}
	if err != nil {
		return nil, 0, &apperrors.NotFoundError{Resource: "produit"}
	}
	if !isActive {
		return nil, 0, &apperrors.NotFoundError{Resource: "produit"}
	}

	imageURL := ""
	if len(imageURLs) > 0 {
		imageURL = imageURLs[0]
	}

	return &models.CartItem{
		ProductID: productID,
		Name:      name,
		Slug:      slug,
		ImageURL:  imageURL,
		Price:     price,
	}, stock, nil
}

// FindCoupon récupère un coupon par code
func FindCoupon(code string) (*models.Coupon, error) {
	session, err := database.GetOrdersSession()
	if err != nil {
		return nil, err
	}
	coupon := models.Coupon{Code: code}
	err = session.Query(`SELECT type, value, min_amount, starts_at, expires_at, is_active, created_at, updated_at
		FROM coupons WHERE code = ?`, code).
		Scan(&coupon.Type, &coupon.Value, &coupon.MinAmount, &coupon.StartsAt, &coupon.ExpiresAt,
			&coupon.IsActive, &coupon.CreatedAt, &coupon.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}
