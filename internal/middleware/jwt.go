package middleware

import (
	"log"
	"net/http"
	"strings"

	"patypatii_back_end/internal/utils"

	"github.com/gin-gonic/gin"
)

// AuthRequired exige un Bearer token valide et place user_id/email/role
// dans le contexte Gin
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := extractClaims(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token manquant ou invalide"})
			c.Abort()
			return
		}

		if t, _ := claims["type"].(string); t != "access" {
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token invalide"})
			c.Abort()
			return
		}

		userID, ok := claims["user_id"].(string)
		if !ok || userID == "" {
			log.Printf("❌ user_id manquant dans les claims: %+v", claims)
			c.JSON(http.StatusUnauthorized, gin.H{"success": false, "error": "token invalide"})
			c.Abort()
			return
		}

		c.Set("user_id", userID)
		if email, ok := claims["email"].(string); ok {
			c.Set("email", email)
		}
		if role, ok := claims["role"].(string); ok {
			c.Set("role", role)
		}

		c.Next()
	}
}

// OptionalAuth décode le token s'il est présent, mais laisse passer les
// invités (panier anonyme identifié par X-Session-ID)
func OptionalAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims, ok := extractClaims(c); ok {
			if t, _ := claims["type"].(string); t == "access" {
				if userID, ok := claims["user_id"].(string); ok {
					c.Set("user_id", userID)
				}
				if email, ok := claims["email"].(string); ok {
					c.Set("email", email)
				}
				if role, ok := claims["role"].(string); ok {
					c.Set("role", role)
				}
			}
		}
		c.Next()
	}
}

func extractClaims(c *gin.Context) (map[string]any, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return nil, false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	claims, err := utils.ParseToken(parts[1])
	if err != nil {
		log.Printf("❌ Erreur parsing JWT: %v", err)
		return nil, false
	}
	return claims, true
}
