package cart

import (
	"context"
	"testing"

	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOutboxFlushWritesRemote(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})
	ctx := context.Background()

	c := &models.Cart{UserID: "u1", Items: []models.CartItem{item("p1", 2000, 1)}}
	o.Enqueue(c)

	require.NoError(t, o.Flush(ctx))
	assert.False(t, o.Pending())

	stored, err := remote.Read(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Len(t, stored.Items, 1)
}

func TestOutboxFlushRequeuesOnFailure(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{failures: 1}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})
	ctx := context.Background()

	o.Enqueue(&models.Cart{UserID: "u1", Items: []models.CartItem{item("p1", 2000, 1)}})

	require.Error(t, o.Flush(ctx))
	assert.True(t, o.Pending(), "l'écriture échouée reste en file")

	require.NoError(t, o.Flush(ctx))
	assert.False(t, o.Pending())
	assert.Equal(t, 2, remote.writes)
}

func TestOutboxCoalescesToLatest(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})
	ctx := context.Background()

	o.Enqueue(&models.Cart{UserID: "u1", Version: 1})
	o.Enqueue(&models.Cart{UserID: "u1", Version: 2})
	o.Enqueue(&models.Cart{UserID: "u1", Version: 3})

	require.NoError(t, o.Flush(ctx))

	stored, err := remote.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stored.Version, "seule la dernière version compte")
	assert.Equal(t, 1, remote.writes)
}

func TestOutboxFailedFlushDoesNotClobberNewerPending(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{failures: 1}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})
	ctx := context.Background()

	o.Enqueue(&models.Cart{UserID: "u1", Version: 1})
	require.Error(t, o.Flush(ctx))

	// Une version plus récente arrive pendant que la v1 était en vol
	o.Enqueue(&models.Cart{UserID: "u1", Version: 2})

	require.NoError(t, o.Flush(ctx))
	stored, err := remote.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stored.Version)
}

func TestReconcilePreservesLocalOnlyLines(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})
	ctx := context.Background()

	require.NoError(t, remote.MemoryStore.Write(ctx, &models.Cart{
		UserID: "u1",
		Items:  []models.CartItem{item("A", 100, 1)},
	}))
	require.NoError(t, local.Write(ctx, &models.Cart{
		UserID: "u1",
		Items:  []models.CartItem{item("A", 100, 4), item("B", 50, 2)},
	}))

	require.NoError(t, o.Reconcile(ctx))

	merged, err := local.Read(ctx)
	require.NoError(t, err)
	require.Len(t, merged.Items, 2)
	assert.Equal(t, 1, merged.Items[0].Quantity, "le serveur gagne sur conflit")
	assert.Equal(t, "B", merged.Items[1].ProductID)
	assert.Equal(t, 200.0, merged.Subtotal, "les totaux sont recalculés après fusion")

	pushed, err := remote.Read(ctx)
	require.NoError(t, err)
	assert.Len(t, pushed.Items, 2, "les lignes locales orphelines sont poussées vers le serveur")
}

func TestReconcileNothingToDo(t *testing.T) {
	local := NewMemoryStore()
	remote := &flakyStore{}
	o := NewOutbox(&StorageRepository{Local: local, Remote: remote})

	require.NoError(t, o.Reconcile(context.Background()))
	assert.Equal(t, 0, remote.writes)
}
