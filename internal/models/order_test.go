package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderHappyPath(t *testing.T) {
	o := &Order{
		Status: OrderPending,
		Timeline: []TimelineEntry{
			{Status: OrderPending, Message: "Commande créée"},
		},
	}

	require.True(t, o.Transition(OrderConfirmed, "Paiement encaissé", "stripe"))
	require.True(t, o.Transition(OrderProcessing, "En préparation", "admin-1"))
	require.True(t, o.Transition(OrderShipped, "Expédiée", "admin-1"))
	require.True(t, o.Transition(OrderDelivered, "Livrée", "admin-1"))

	assert.Equal(t, OrderDelivered, o.Status)
	require.Len(t, o.Timeline, 5, "exactement une entrée de journal par transition")
	for i := 1; i < len(o.Timeline); i++ {
		assert.False(t, o.Timeline[i].CreatedAt.Before(o.Timeline[i-1].CreatedAt),
			"les horodatages du journal sont croissants")
	}
}

func TestOrderNoBackwardTransition(t *testing.T) {
	o := &Order{Status: OrderShipped}

	assert.False(t, o.Transition(OrderProcessing, "retour arrière", "admin-1"))
	assert.Equal(t, OrderShipped, o.Status, "le statut reste inchangé")
	assert.Empty(t, o.Timeline, "aucune entrée de journal sur transition refusée")
}

func TestOrderNoSkippingSteps(t *testing.T) {
	o := &Order{Status: OrderConfirmed}

	assert.False(t, o.Transition(OrderShipped, "saut d'étape", "admin-1"))
	assert.False(t, o.Transition(OrderDelivered, "saut d'étape", "admin-1"))
	assert.Equal(t, OrderConfirmed, o.Status)
}

func TestOrderDoubleCancel(t *testing.T) {
	o := &Order{Status: OrderPending}

	require.True(t, o.Transition(OrderCancelled, "Annulée par le client", "u1"))
	assert.False(t, o.Transition(OrderCancelled, "Annulée encore", "u1"),
		"cancelled est terminal")
	assert.Len(t, o.Timeline, 1)
}

func TestOrderTerminalStates(t *testing.T) {
	for _, terminal := range []OrderStatus{OrderDelivered, OrderCancelled, OrderRefunded} {
		o := &Order{Status: terminal}
		for _, next := range []OrderStatus{OrderPending, OrderConfirmed, OrderProcessing,
			OrderShipped, OrderDelivered, OrderCancelled, OrderRefunded} {
			assert.False(t, o.Transition(next, "", ""), "%s → %s doit être refusée", terminal, next)
		}
	}
}

func TestCanBeCancelled(t *testing.T) {
	assert.True(t, OrderPending.CanBeCancelled())
	assert.True(t, OrderConfirmed.CanBeCancelled())
	assert.True(t, OrderProcessing.CanBeCancelled())
	assert.False(t, OrderShipped.CanBeCancelled())
	assert.False(t, OrderDelivered.CanBeCancelled())
	assert.False(t, OrderCancelled.CanBeCancelled())
}

func TestNextFulfillmentStep(t *testing.T) {
	next, ok := OrderConfirmed.NextFulfillmentStep()
	require.True(t, ok)
	assert.Equal(t, OrderProcessing, next)

	next, ok = OrderShipped.NextFulfillmentStep()
	require.True(t, ok)
	assert.Equal(t, OrderDelivered, next)

	_, ok = OrderPending.NextFulfillmentStep()
	assert.False(t, ok, "une commande non payée n'entre pas dans le circuit logistique")
	_, ok = OrderDelivered.NextFulfillmentStep()
	assert.False(t, ok)
}

func TestPaymentTransitions(t *testing.T) {
	assert.True(t, PaymentPending.CanTransitionTo(PaymentProcessing))
	assert.True(t, PaymentProcessing.CanTransitionTo(PaymentCompleted))
	assert.True(t, PaymentCompleted.CanTransitionTo(PaymentRefunded))

	assert.False(t, PaymentFailed.CanTransitionTo(PaymentCompleted), "failed est terminal")
	assert.False(t, PaymentRefunded.CanTransitionTo(PaymentCompleted))
	assert.False(t, PaymentPending.CanTransitionTo(PaymentRefunded),
		"seul un paiement encaissé est remboursable")
}

func TestPaymentMethodValidity(t *testing.T) {
	assert.True(t, MethodCard.IsValid())
	assert.True(t, MethodMpesa.IsValid())
	assert.False(t, PaymentMethod("crypto").IsValid())
}

func TestAddNoteIsAppendOnly(t *testing.T) {
	o := &Order{Status: OrderConfirmed}
	o.AddNote("Client appelé", "admin-1")
	o.AddNote("Livraison reportée", "admin-2")

	require.Len(t, o.Notes, 2)
	assert.Equal(t, "Client appelé", o.Notes[0].Message)
	assert.Equal(t, "admin-2", o.Notes[1].Actor)
}
