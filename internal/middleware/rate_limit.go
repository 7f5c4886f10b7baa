package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"patypatii_back_end/internal/cache"
	"patypatii_back_end/internal/database"

	"github.com/gin-gonic/gin"
)

const (
	LoginMaxAttempts    = 5
	RegisterMaxAttempts = 3
	APIMaxRequests      = 100 // par minute

	LoginCooldown    = 15 * time.Minute
	RegisterCooldown = 30 * time.Minute
	APIWindow        = 1 * time.Minute
)

// LoginRateLimit limite les tentatives de connexion par email
func LoginRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Lire le body sans le consommer pour les handlers suivants
		bodyBytes, _ := io.ReadAll(c.Request.Body)
		c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))

		var input struct {
			Email string `json:"email"`
		}
		if err := json.Unmarshal(bodyBytes, &input); err != nil || input.Email == "" {
			c.Next()
			return
		}

		ctx := context.Background()
		cooldownKey := "login_cooldown:" + input.Email
		if database.Redis.Exists(ctx, cooldownKey).Val() > 0 {
			ttl := database.Redis.TTL(ctx, cooldownKey).Val()
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success":     false,
				"error":       fmt.Sprintf("trop de tentatives échouées, réessayez dans %d minutes", int(ttl.Minutes())+1),
				"retry_after": int(ttl.Seconds()),
			})
			c.Abort()
			return
		}

		count, err := cache.IncrementRateLimit("login_attempts:"+input.Email, LoginCooldown)
		if err == nil && count > LoginMaxAttempts {
			database.Redis.Set(ctx, cooldownKey, "1", LoginCooldown)
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "trop de tentatives échouées, compte temporairement bloqué",
			})
			c.Abort()
			return
		}

		c.Next()
	}
}

// RegisterRateLimit limite les créations de compte par IP
func RegisterRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		count, err := cache.IncrementRateLimit("register_attempts:"+c.ClientIP(), RegisterCooldown)
		if err == nil && count > RegisterMaxAttempts {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "trop de créations de compte, réessayez plus tard",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIRateLimit limite globalement par IP (les pannes Redis laissent passer)
func APIRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "api_rate:" + c.ClientIP()
		count, err := cache.IncrementRateLimit(key, APIWindow)
		if err == nil && count > APIMaxRequests {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"success": false,
				"error":   "trop de requêtes, ralentissez",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
