package payment

import (
	"testing"

	"patypatii_back_end/internal/apperrors"
	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func codOrder() *models.Order {
	return &models.Order{
		OrderNumber:   "PTY-20250314-ABC123",
		PaymentMethod: models.MethodCashOnDelivery,
		PaymentStatus: models.PaymentPending,
		Status:        models.OrderPending,
		Version:       1,
	}
}

func TestConfirmOfflinePaymentUnblocksFulfillment(t *testing.T) {
	o := codOrder()

	// Tant que le paiement n'est pas encaissé, le circuit logistique
	// ne peut pas démarrer
	_, ok := o.Status.NextFulfillmentStep()
	require.False(t, ok)

	require.NoError(t, applyPaymentConfirmation(o, "admin-1"))

	assert.Equal(t, models.PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, o.Status)
	assert.Equal(t, 2, o.Version)
	require.Len(t, o.Timeline, 1)
	assert.Equal(t, "admin-1", o.Timeline[0].Actor)

	next, ok := o.Status.NextFulfillmentStep()
	require.True(t, ok)
	assert.Equal(t, models.OrderProcessing, next)
}

func TestConfirmPaymentRejectsCardMethod(t *testing.T) {
	o := codOrder()
	o.PaymentMethod = models.MethodCard

	err := applyPaymentConfirmation(o, "admin-1")

	var ve *apperrors.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, models.PaymentPending, o.PaymentStatus, "rien n'a bougé")
	assert.Equal(t, models.OrderPending, o.Status)
}

func TestConfirmPaymentRejectsSettledOrder(t *testing.T) {
	o := codOrder()
	o.PaymentStatus = models.PaymentCompleted
	o.Status = models.OrderConfirmed

	err := applyPaymentConfirmation(o, "admin-1")

	var ite *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, string(models.PaymentCompleted), ite.From)
}

func TestConfirmPaymentRejectsCancelledOrder(t *testing.T) {
	o := codOrder()
	o.Status = models.OrderCancelled

	err := applyPaymentConfirmation(o, "admin-1")

	var ite *apperrors.InvalidTransitionError
	require.ErrorAs(t, err, &ite)
	assert.Equal(t, string(models.OrderCancelled), ite.From)
	assert.Equal(t, models.PaymentPending, o.PaymentStatus, "le paiement n'est pas encaissé sur une commande annulée")
}
