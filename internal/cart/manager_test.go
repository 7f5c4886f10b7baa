package cart

import (
	"context"
	"errors"
	"testing"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore échoue tant que failures > 0, puis se comporte comme un
// MemoryStore. Simule un serveur injoignable puis rétabli.
type flakyStore struct {
	MemoryStore
	failures int
	writes   int
}

func (s *flakyStore) Write(ctx context.Context, cart *models.Cart) error {
	s.writes++
	if s.failures > 0 {
		s.failures--
		return errors.New("serveur injoignable")
	}
	return s.MemoryStore.Write(ctx, cart)
}

func newTestManager() (*Manager, *MemoryStore, *flakyStore) {
	local := NewMemoryStore()
	remote := &flakyStore{}
	m := NewManager(&StorageRepository{Local: local, Remote: remote})
	return m, local, remote
}

func item(id string, price float64, qty int) models.CartItem {
	return models.CartItem{ProductID: id, Name: "Item " + id, Price: price, Quantity: qty}
}

func TestAddItemNewLine(t *testing.T) {
	m, local, _ := newTestManager()
	ctx := context.Background()

	c, err := m.AddItem(ctx, item("p1", 2000, 2))
	require.NoError(t, err)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 2, c.Items[0].Quantity)
	assert.Equal(t, 4000.0, c.Subtotal)
	assert.Equal(t, int64(1), c.Version)

	stored, err := local.Read(ctx)
	require.NoError(t, err)
	assert.Equal(t, c.Subtotal, stored.Subtotal, "l'écriture locale est synchrone")
}

func TestAddItemIncrementsExistingLine(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddItem(ctx, item("p1", 2000, 1))
	require.NoError(t, err)
	c, err := m.AddItem(ctx, item("p1", 2000, 3))
	require.NoError(t, err)

	assert.Len(t, c.Items, 1)
	assert.Equal(t, 4, c.Items[0].Quantity)
	assert.Equal(t, int64(2), c.Version)
}

func TestAddItemRejectsInvalidQuantity(t *testing.T) {
	m, _, _ := newTestManager()

	_, err := m.AddItem(context.Background(), item("p1", 2000, 0))

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
}

func TestAddItemRejectedWhileMutationInFlight(t *testing.T) {
	m, _, _ := newTestManager()

	require.True(t, m.guard.TryAcquire())
	defer m.guard.Release()

	_, err := m.AddItem(context.Background(), item("p1", 2000, 1))
	assert.ErrorIs(t, err, ErrMutationInFlight)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddItem(ctx, item("p1", 2000, 2))
	require.NoError(t, err)

	c, err := m.UpdateQuantity(ctx, "p1", 0)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Equal(t, 0.0, c.Total)
}

func TestUpdateQuantityUnknownProduct(t *testing.T) {
	m, _, _ := newTestManager()

	_, err := m.UpdateQuantity(context.Background(), "absent", 3)

	var ne *apperrors.NotFoundError
	require.ErrorAs(t, err, &ne)
}

func TestClearResetsCoupon(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddItem(ctx, item("p1", 2000, 1))
	require.NoError(t, err)

	c, err := m.Clear(ctx)
	require.NoError(t, err)
	assert.Empty(t, c.Items)
	assert.Empty(t, c.CouponCode)
	assert.Equal(t, 0.0, c.Discount)
}

func TestMirrorFailureNeverSurfaces(t *testing.T) {
	m, _, remote := newTestManager()
	remote.failures = 100
	m.Authenticated = func() bool { return true }
	ctx := context.Background()

	c, err := m.AddItem(ctx, item("p1", 2000, 1))

	require.NoError(t, err, "l'échec du miroir ne remonte jamais à l'utilisateur")
	assert.Len(t, c.Items, 1)
	assert.True(t, m.Outbox().Pending(), "l'écriture miroir reste en file")
}

func TestGuestMutationsSkipMirror(t *testing.T) {
	m, _, _ := newTestManager()
	ctx := context.Background()

	_, err := m.AddItem(ctx, item("p1", 2000, 1))
	require.NoError(t, err)

	assert.False(t, m.Outbox().Pending(), "pas de miroir sans session authentifiée")
}

func TestMergeOnLogin(t *testing.T) {
	m, _, remote := newTestManager()
	ctx := context.Background()

	// Panier serveur préexistant
	server := &models.Cart{
		UserID: "u1",
		Items: []models.CartItem{
			{ProductID: "A", Price: 100, Quantity: 1},
		},
	}
	ComputeTotals(server)
	require.NoError(t, remote.MemoryStore.Write(ctx, server))

	// Panier invité local
	_, err := m.AddItem(ctx, item("A", 100, 5))
	require.NoError(t, err)
	_, err = m.AddItem(ctx, item("B", 50, 3))
	require.NoError(t, err)

	merged, err := m.MergeOnLogin(ctx)
	require.NoError(t, err)

	require.Len(t, merged.Items, 2)
	assert.Equal(t, 1, merged.Items[0].Quantity, "la ligne serveur gagne")
	assert.Equal(t, "B", merged.Items[1].ProductID)
	assert.Equal(t, 3, merged.Items[1].Quantity)
}
