package user

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"patypatii_back_end/internal/database"
	"patypatii_back_end/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// Autoriser toutes les origines (à ajuster en production)
		return true
	},
}

// CartWebSocket pousse le panier serveur vers tous les onglets ouverts
// dès qu'une mutation est publiée sur le canal Redis du panier
func CartWebSocket(c *gin.Context) {
	userID := c.GetString("user_id")
	if userID == "" {
		c.JSON(401, gin.H{"error": "Non authentifié"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("❌ Erreur upgrade WebSocket: %v", err)
		return
	}
	defer conn.Close()

	ctx := context.Background()
	key := "cart:" + userID

	pubsub := database.Redis.Subscribe(ctx, key)
	defer pubsub.Close()
	ch := pubsub.Channel()

	conn.WriteJSON(map[string]interface{}{
		"type":    "connected",
		"message": "Synchronisation panier activée",
	})

	for {
		select {
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Payload != "updated" && msg.Payload != "cleared" {
				continue
			}

			response := map[string]interface{}{
				"type":  "cart_updated",
				"items": []interface{}{},
				"total": 0,
				"count": 0,
			}
			if data, err := database.Redis.Get(ctx, key).Result(); err == nil && data != "" {
				var current models.Cart
				if err := json.Unmarshal([]byte(data), &current); err == nil {
					response["items"] = current.Items
					response["total"] = current.Total
					response["count"] = len(current.Items)
					response["version"] = current.Version
				}
			}

			if err := conn.WriteJSON(response); err != nil {
				log.Printf("❌ Erreur envoi WebSocket: %v", err)
				return
			}
		case <-time.After(30 * time.Second):
			// Ping pour garder la connexion active
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
