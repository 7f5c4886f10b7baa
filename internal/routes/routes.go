package routes

import (
	"patypatii_back_end/internal/handlers/admin"
	"patypatii_back_end/internal/handlers/payment"
	"patypatii_back_end/internal/handlers/product"
	"patypatii_back_end/internal/handlers/user"
	"patypatii_back_end/internal/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api/v1")
	api.Use(middleware.APIRateLimit())

	// Authentification
	auth := api.Group("/auth")
	{
		auth.POST("/register", middleware.RegisterRateLimit(), user.Register)
		auth.POST("/login", middleware.LoginRateLimit(), user.Login)
		auth.POST("/refresh-token", user.RefreshToken)
		auth.POST("/logout", middleware.AuthRequired(), user.Logout)
	}

	// Catalogue public
	products := api.Group("/products")
	{
		products.GET("", product.ListProducts)
		products.GET("/featured", product.FeaturedProducts)
		products.GET("/:slug", product.GetProductBySlug)
	}
	// Avis : les routes portent l'UUID produit, pas le slug
	reviews := api.Group("/reviews")
	{
		reviews.GET("/:id", product.ListReviews)
		reviews.POST("/:id", middleware.AuthRequired(), product.CreateReview)
	}

	// Panier : accessible connecté (JWT) ou invité (X-Session-ID)
	cart := api.Group("/cart")
	cart.Use(middleware.OptionalAuth())
	{
		cart.GET("", user.GetCart)
		cart.POST("/items", user.AddToCart)
		cart.PUT("/items/:productId", user.UpdateCartItem)
		cart.DELETE("/items/:productId", user.RemoveFromCart)
		cart.DELETE("", user.ClearCart)
		cart.POST("/coupon", user.ApplyCoupon)
	}
	api.POST("/cart/merge", middleware.AuthRequired(), user.MergeCart)
	api.GET("/cart/ws", middleware.AuthRequired(), user.CartWebSocket)

	// Espace client
	me := api.Group("")
	me.Use(middleware.AuthRequired())
	{
		me.GET("/addresses", user.ListAddresses)
		me.POST("/addresses", user.CreateAddress)
		me.PUT("/addresses/:id", user.UpdateAddress)
		me.DELETE("/addresses/:id", user.DeleteAddress)

		me.POST("/orders", payment.Checkout)
		me.GET("/orders", user.GetMyOrders)
		me.GET("/orders/:id", user.GetOrder)
		me.PUT("/orders/:id/cancel", user.CancelOrder)
	}

	// Webhook Stripe : authentifié par signature, pas par JWT
	api.POST("/payments/webhook", payment.StripeWebhook)

	// Back-office
	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.RequireAdmin())
	{
		adminGroup.GET("/orders", admin.ListAllOrders)
		adminGroup.GET("/orders/:id", admin.GetOrder)
		adminGroup.PUT("/orders/:id/status", admin.AdvanceOrderStatus)
		adminGroup.POST("/orders/:id/notes", admin.AddOrderNote)
		adminGroup.POST("/orders/:id/confirm-payment", payment.ConfirmOrderPayment)
		adminGroup.POST("/orders/:id/refund", payment.RefundOrder)

		adminGroup.POST("/products", product.CreateProduct)
		adminGroup.PUT("/products/:id", product.UpdateProduct)
	}
}
