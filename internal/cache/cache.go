package cache

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"patypatii_back_end/internal/database"
)

const (
	ProductCacheTTL  = 10 * time.Minute
	FeaturedCacheTTL = 15 * time.Minute
	UserCacheTTL     = 5 * time.Minute
)

var ctx = context.Background()

// Le cache est purement consultatif : chaque opération absorbe les pannes
// Redis et retombe sur une valeur sûre (nil/false/0). Le site reste
// correct sans cache, juste plus lent.

// Get récupère et désérialise une valeur, nil si absente ou Redis en panne
func Get[T any](key string) *T {
	data, err := database.Redis.Get(ctx, key).Result()
	if err != nil || data == "" {
		return nil
	}
	var value T
	if err := json.Unmarshal([]byte(data), &value); err != nil {
		log.Printf("⚠️ Cache: valeur corrompue pour %s: %v", key, err)
		return nil
	}
	return &value
}

// Set sérialise et stocke une valeur avec TTL, false en cas de panne
func Set(key string, value any, ttl time.Duration) bool {
	data, err := json.Marshal(value)
	if err != nil {
		log.Printf("⚠️ Cache: sérialisation impossible pour %s: %v", key, err)
		return false
	}
	if err := database.Redis.Set(ctx, key, data, ttl).Err(); err != nil {
		log.Printf("⚠️ Cache: écriture échouée pour %s: %v", key, err)
		return false
	}
	return true
}

// Del supprime une clé, false en cas de panne
func Del(keys ...string) bool {
	if len(keys) == 0 {
		return true
	}
	if err := database.Redis.Del(ctx, keys...).Err(); err != nil {
		log.Printf("⚠️ Cache: suppression échouée: %v", err)
		return false
	}
	return true
}

// DelPattern supprime toutes les clés correspondant au motif glob et
// retourne le nombre supprimé (0 en cas de panne)
func DelPattern(pattern string) int64 {
	var deleted int64
	var cursor uint64
	for {
		keys, next, err := database.Redis.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			log.Printf("⚠️ Cache: scan échoué pour %s: %v", pattern, err)
			return deleted
		}
		if len(keys) > 0 {
			n, err := database.Redis.Del(ctx, keys...).Result()
			if err != nil {
				log.Printf("⚠️ Cache: suppression échouée pour %s: %v", pattern, err)
				return deleted
			}
			deleted += n
		}
		cursor = next
		if cursor == 0 {
			break
		}
	}
	return deleted
}

// Exists vérifie la présence d'une clé, false en cas de panne
func Exists(key string) bool {
	n, err := database.Redis.Exists(ctx, key).Result()
	if err != nil {
		return false
	}
	return n > 0
}

// InvalidateProduct purge les entrées d'un produit après mutation
func InvalidateProduct(productID string) {
	Del("product:"+productID, "products:featured")
	DelPattern("products:list:*")
}
