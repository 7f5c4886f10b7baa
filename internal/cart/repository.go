package cart

import (
	"context"
	"sync"

	"patypatii_back_end/internal/models"
)

// Store est un dépôt clé-valeur minimal pour un panier. La copie locale
// (le localStorage du navigateur dans l'implémentation d'origine) et la
// copie serveur exposent la même surface.
type Store interface {
	Read(ctx context.Context) (*models.Cart, error)
	Write(ctx context.Context, cart *models.Cart) error
}

// Repository relie les deux représentations d'un même panier : la locale
// (toujours écrite de façon synchrone) et la distante (écriture miroir
// best-effort). L'algorithme de fusion est testable sans navigateur.
type Repository interface {
	LocalRead(ctx context.Context) (*models.Cart, error)
	LocalWrite(ctx context.Context, cart *models.Cart) error
	RemoteRead(ctx context.Context) (*models.Cart, error)
	RemoteWrite(ctx context.Context, cart *models.Cart) error
}

// StorageRepository compose deux Stores en un Repository
type StorageRepository struct {
	Local  Store
	Remote Store
}

func (r *StorageRepository) LocalRead(ctx context.Context) (*models.Cart, error) {
	return r.Local.Read(ctx)
}

func (r *StorageRepository) LocalWrite(ctx context.Context, cart *models.Cart) error {
	return r.Local.Write(ctx, cart)
}

func (r *StorageRepository) RemoteRead(ctx context.Context) (*models.Cart, error) {
	return r.Remote.Read(ctx)
}

func (r *StorageRepository) RemoteWrite(ctx context.Context, cart *models.Cart) error {
	return r.Remote.Write(ctx, cart)
}

// MemoryStore tient le panier en mémoire, à la place du stockage
// navigateur. Les lectures retournent une copie profonde des lignes pour
// éviter tout aliasing entre mutations.
type MemoryStore struct {
	mu   sync.Mutex
	cart *models.Cart
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Read(ctx context.Context) (*models.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cart == nil {
		return nil, nil
	}
	return cloneCart(s.cart), nil
}

func (s *MemoryStore) Write(ctx context.Context, cart *models.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cart = cloneCart(cart)
	return nil
}

func cloneCart(c *models.Cart) *models.Cart {
	cp := *c
	cp.Items = make([]models.CartItem, len(c.Items))
	copy(cp.Items, c.Items)
	return &cp
}
