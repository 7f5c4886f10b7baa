package cart

import (
	"context"
	"log"
	"sync"
	"time"

	"patypatii_back_end/internal/models"
)

// Outbox porte les écritures miroir vers le serveur. L'implémentation
// d'origine tentait une seule fois puis abandonnait silencieusement, ce
// qui pouvait laisser le panier local diverger pour toujours ; ici chaque
// écriture échouée est rejouée avec backoff exponentiel, et une passe de
// réconciliation périodique referme l'écart résiduel.
type Outbox struct {
	mu      sync.Mutex
	pending *models.Cart // dernière version en attente, les plus récentes écrasent

	repo Repository

	BaseDelay      time.Duration
	MaxDelay       time.Duration
	ReconcileEvery time.Duration

	wake chan struct{}
	stop chan struct{}
	once sync.Once
}

func NewOutbox(repo Repository) *Outbox {
	return &Outbox{
		repo:           repo,
		BaseDelay:      2 * time.Second,
		MaxDelay:       2 * time.Minute,
		ReconcileEvery: 5 * time.Minute,
		wake:           make(chan struct{}, 1),
		stop:           make(chan struct{}),
	}
}

// Enqueue enregistre l'état complet du panier à refléter côté serveur.
// Les écritures se coalescent : seule la dernière version compte.
func (o *Outbox) Enqueue(cart *models.Cart) {
	o.mu.Lock()
	o.pending = cloneCart(cart)
	o.mu.Unlock()

	select {
	case o.wake <- struct{}{}:
	default:
	}
}

// Pending indique si une écriture miroir attend encore son tour
func (o *Outbox) Pending() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.pending != nil
}

// Flush tente l'écriture miroir en attente. En cas d'échec le panier
// reste en file (sauf si une version plus récente l'a remplacé) et
// l'erreur est remontée pour que la boucle applique son backoff.
func (o *Outbox) Flush(ctx context.Context) error {
	o.mu.Lock()
	cart := o.pending
	o.pending = nil
	o.mu.Unlock()

	if cart == nil {
		return nil
	}

	if err := o.repo.RemoteWrite(ctx, cart); err != nil {
		o.mu.Lock()
		// Ne pas écraser une version plus récente arrivée entre-temps
		if o.pending == nil {
			o.pending = cart
		}
		o.mu.Unlock()
		return err
	}
	return nil
}

// Reconcile referme l'écart entre les deux copies : lecture serveur,
// fusion (le serveur gagne sur conflit, les lignes locales orphelines
// sont conservées), réécriture des deux côtés si besoin.
func (o *Outbox) Reconcile(ctx context.Context) error {
	remote, err := o.repo.RemoteRead(ctx)
	if err != nil {
		return err
	}
	local, err := o.repo.LocalRead(ctx)
	if err != nil {
		return err
	}
	if local == nil && remote == nil {
		return nil
	}

	base := local
	if base == nil {
		base = remote
	}
	merged := cloneCart(base)
	var remoteItems, localItems []models.CartItem
	if remote != nil {
		remoteItems = remote.Items
	}
	if local != nil {
		localItems = local.Items
	}
	merged.Items = Merge(remoteItems, localItems)
	ComputeTotals(merged)

	if err := o.repo.LocalWrite(ctx, merged); err != nil {
		return err
	}
	// Réaligne le serveur si la fusion a conservé des lignes locales
	if remote == nil || len(merged.Items) != len(remoteItems) {
		return o.repo.RemoteWrite(ctx, merged)
	}
	return nil
}

// Start lance la boucle de fond : flush avec backoff à chaque réveil,
// réconciliation périodique.
func (o *Outbox) Start() {
	go o.run()
}

func (o *Outbox) Stop() {
	o.once.Do(func() { close(o.stop) })
}

func (o *Outbox) run() {
	delay := o.BaseDelay
	ticker := time.NewTicker(o.ReconcileEvery)
	defer ticker.Stop()

	for {
		select {
		case <-o.stop:
			return
		case <-o.wake:
		case <-ticker.C:
			if err := o.Reconcile(context.Background()); err != nil {
				log.Printf("⚠️ Réconciliation panier échouée: %v", err)
			}
		}

		for {
			err := o.Flush(context.Background())
			if err == nil {
				delay = o.BaseDelay
				break
			}
			// Best-effort : on logge, on ne remonte jamais à l'utilisateur
			log.Printf("⚠️ Écriture miroir panier échouée (retry dans %s): %v", delay, err)
			select {
			case <-o.stop:
				return
			case <-time.After(delay):
			}
			delay *= 2
			if delay > o.MaxDelay {
				delay = o.MaxDelay
			}
		}
	}
}
