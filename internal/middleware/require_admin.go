package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin doit être chaîné après AuthRequired
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString("role") != "admin" {
			c.JSON(http.StatusForbidden, gin.H{"success": false, "error": "accès réservé aux administrateurs"})
			c.Abort()
			return
		}
		c.Next()
	}
}
