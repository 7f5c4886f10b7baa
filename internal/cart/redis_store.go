package cart

import (
	"context"
	"encoding/json"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"

	"github.com/redis/go-redis/v9"
)

// TTL des paniers côté serveur : un panier survit au logout et attend le
// retour de l'utilisateur pendant 30 jours.
const RedisCartTTL = 30 * 24 * time.Hour

// Écriture conditionnelle : refusée si la version stockée n'est plus
// celle que l'écrivain avait lue (deux onglets, deux devices).
var casScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if cur then
  local stored = cjson.decode(cur)
  if tonumber(stored['version']) ~= tonumber(ARGV[2]) then
    return 0
  end
end
redis.call('SET', KEYS[1], ARGV[1], 'EX', ARGV[3])
return 1
`)

// RedisStore est la copie serveur autoritaire d'un panier, un document
// JSON par clé (cart:<userID> ou cart:guest:<sessionID>).
type RedisStore struct {
	Client *redis.Client
	Key    string
}

func NewRedisStore(client *redis.Client, key string) *RedisStore {
	return &RedisStore{Client: client, Key: key}
}

func (s *RedisStore) Read(ctx context.Context) (*models.Cart, error) {
	data, err := s.Client.Get(ctx, s.Key).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, &apperrors.ServiceUnavailableError{Err: err}
	}
	var c models.Cart
	if err := json.Unmarshal([]byte(data), &c); err != nil {
		return nil, err
	}
	return &c, nil
}

// Write persiste le panier avec un compare-and-swap sur le compteur de
// version : l'appelant a incrémenté Version avant d'écrire, le script
// vérifie que la version stockée est bien Version-1.
func (s *RedisStore) Write(ctx context.Context, c *models.Cart) error {
	data, err := json.Marshal(c)
	if err != nil {
		return err
	}
	ok, err := casScript.Run(ctx, s.Client, []string{s.Key},
		string(data), c.Version-1, int(RedisCartTTL.Seconds())).Int()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}
	if ok == 0 {
		return &apperrors.StaleStateError{Resource: "panier"}
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context) error {
	return s.Client.Del(ctx, s.Key).Err()
}

// Suppression conditionnelle : un panier modifié depuis la lecture de
// l'appelant n'est pas consommé.
var casDeleteScript = redis.NewScript(`
local cur = redis.call('GET', KEYS[1])
if not cur then
  return 1
end
local stored = cjson.decode(cur)
if tonumber(stored['version']) ~= tonumber(ARGV[1]) then
  return 0
end
redis.call('DEL', KEYS[1])
return 1
`)

// DeleteIfVersion supprime le panier seulement si la version stockée est
// encore celle que l'appelant avait lue.
func (s *RedisStore) DeleteIfVersion(ctx context.Context, version int64) error {
	ok, err := casDeleteScript.Run(ctx, s.Client, []string{s.Key}, version).Int()
	if err != nil {
		return &apperrors.ServiceUnavailableError{Err: err}
	}
	if ok == 0 {
		return &apperrors.StaleStateError{Resource: "panier"}
	}
	return nil
}
