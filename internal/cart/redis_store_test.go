package cart

import (
	"context"
	"testing"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *RedisStore {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisStore(client, "cart:user-1")
}

func storedCart(version int64) *models.Cart {
	return &models.Cart{
		Items: []models.CartItem{
			{Name: "Fauteuil Nairobi", Price: 12000, Quantity: 1},
		},
		Version: version,
	}
}

func TestRedisStoreWriteCAS(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, storedCart(1)))

	// Écriture basée sur la version courante : acceptée
	require.NoError(t, store.Write(ctx, storedCart(2)))

	// Écrivain en retard (il croit toujours partir de la version 1)
	var stale *apperrors.StaleStateError
	err := store.Write(ctx, storedCart(2))
	require.ErrorAs(t, err, &stale)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.Version, "l'écriture périmée n'a rien écrasé")
}

func TestRedisStoreDeleteIfVersion(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.Write(ctx, storedCart(1)))

	// Le panier a bougé entre la lecture et la consommation
	require.NoError(t, store.Write(ctx, storedCart(2)))

	var stale *apperrors.StaleStateError
	err := store.DeleteIfVersion(ctx, 1)
	require.ErrorAs(t, err, &stale)

	got, err := store.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, got, "le panier modifié est conservé")
	assert.Equal(t, int64(2), got.Version)

	// Avec la bonne version la consommation passe
	require.NoError(t, store.DeleteIfVersion(ctx, 2))
	got, err = store.Read(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreDeleteIfVersionMissingKey(t *testing.T) {
	store := newTestStore(t)

	// Panier déjà consommé : la suppression est idempotente
	require.NoError(t, store.DeleteIfVersion(context.Background(), 4))
}
