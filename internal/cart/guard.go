package cart

import (
	"errors"
	"sync/atomic"
)

// ErrMutationInFlight : une seconde mutation est arrivée alors que la
// première n'était pas terminée (double-clic rapide). Elle est rejetée
// pour éviter une perte de mise à jour par lecture croisée.
var ErrMutationInFlight = errors.New("une mutation du panier est déjà en cours")

// Guard sérialise les mutations d'un même panier : une seule en vol à la
// fois, la suivante est rejetée.
type Guard struct {
	busy atomic.Bool
}

func (g *Guard) TryAcquire() bool {
	return g.busy.CompareAndSwap(false, true)
}

func (g *Guard) Release() {
	g.busy.Store(false)
}
