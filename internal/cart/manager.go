package cart

import (
	"context"
	"time"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"
)

// Manager applique les mutations du panier côté client : écriture locale
// synchrone (source de vérité pour l'invité), miroir serveur best-effort
// via l'outbox quand une session est authentifiée. Une garde rejette les
// mutations qui se chevauchent.
type Manager struct {
	repo   Repository
	outbox *Outbox
	guard  Guard

	// Authenticated indique si un token de session est présent ; sans lui
	// aucune écriture miroir n'est tentée.
	Authenticated func() bool
}

func NewManager(repo Repository) *Manager {
	return &Manager{
		repo:          repo,
		outbox:        NewOutbox(repo),
		Authenticated: func() bool { return false },
	}
}

// Outbox expose la file des écritures miroir (démarrage, reconciliation)
func (m *Manager) Outbox() *Outbox {
	return m.outbox
}

func (m *Manager) readOrNew(ctx context.Context) (*models.Cart, error) {
	c, err := m.repo.LocalRead(ctx)
	if err != nil {
		return nil, err
	}
	if c == nil {
		c = &models.Cart{Items: []models.CartItem{}}
	}
	return c, nil
}

// commit écrit localement (synchrone, jamais annulé) puis met en file
// l'écriture miroir si une session existe. L'échec du miroir ne remonte
// jamais : la copie locale reste autoritaire jusqu'au prochain miroir
// réussi.
func (m *Manager) commit(ctx context.Context, c *models.Cart) (*models.Cart, error) {
	ComputeTotals(c)
	c.Version++
	c.UpdatedAt = time.Now()
	if err := m.repo.LocalWrite(ctx, c); err != nil {
		return nil, err
	}
	if m.Authenticated() {
		m.outbox.Enqueue(c)
	}
	return c, nil
}

// AddItem ajoute un produit : incrémente la quantité s'il est déjà
// présent, sinon ajoute une ligne avec l'instantané prix/nom/image pris
// au moment de l'ajout.
func (m *Manager) AddItem(ctx context.Context, snapshot models.CartItem) (*models.Cart, error) {
	if snapshot.Quantity < 1 {
		return nil, apperrors.NewValidationError("quantity", "doit être ≥ 1")
	}
	if !m.guard.TryAcquire() {
		return nil, ErrMutationInFlight
	}
	defer m.guard.Release()

	c, err := m.readOrNew(ctx)
	if err != nil {
		return nil, err
	}
	if item := c.FindItem(snapshot.ProductID); item != nil {
		item.Quantity += snapshot.Quantity
	} else {
		c.Items = append(c.Items, snapshot)
	}
	return m.commit(ctx, c)
}

// UpdateQuantity écrase la quantité d'une ligne ; ≤ 0 équivaut à une
// suppression.
func (m *Manager) UpdateQuantity(ctx context.Context, productID string, quantity int) (*models.Cart, error) {
	if !m.guard.TryAcquire() {
		return nil, ErrMutationInFlight
	}
	defer m.guard.Release()

	c, err := m.readOrNew(ctx)
	if err != nil {
		return nil, err
	}
	if quantity <= 0 {
		c.RemoveItem(productID)
		return m.commit(ctx, c)
	}
	item := c.FindItem(productID)
	if item == nil {
		return nil, &apperrors.NotFoundError{Resource: "produit dans le panier"}
	}
	item.Quantity = quantity
	return m.commit(ctx, c)
}

// RemoveItem supprime une ligne (la confirmation utilisateur est du
// ressort de l'UI, pas d'ici)
func (m *Manager) RemoveItem(ctx context.Context, productID string) (*models.Cart, error) {
	return m.UpdateQuantity(ctx, productID, 0)
}

// Clear vide le panier
func (m *Manager) Clear(ctx context.Context) (*models.Cart, error) {
	if !m.guard.TryAcquire() {
		return nil, ErrMutationInFlight
	}
	defer m.guard.Release()

	c, err := m.readOrNew(ctx)
	if err != nil {
		return nil, err
	}
	c.Items = []models.CartItem{}
	c.CouponCode = ""
	c.Discount = 0
	return m.commit(ctx, c)
}

// MergeOnLogin fusionne le panier local dans le panier serveur après une
// authentification réussie : chaque ligne serveur est conservée telle
// quelle, chaque ligne locale absente du serveur est ajoutée. Le résultat
// est écrit des deux côtés.
func (m *Manager) MergeOnLogin(ctx context.Context) (*models.Cart, error) {
	if !m.guard.TryAcquire() {
		return nil, ErrMutationInFlight
	}
	defer m.guard.Release()

	remote, err := m.repo.RemoteRead(ctx)
	if err != nil {
		return nil, err
	}
	local, err := m.readOrNew(ctx)
	if err != nil {
		return nil, err
	}

	var remoteItems []models.CartItem
	merged := local
	if remote != nil {
		remoteItems = remote.Items
		merged = cloneCart(remote)
	}
	merged.Items = Merge(remoteItems, local.Items)

	return m.commit(ctx, merged)
}
