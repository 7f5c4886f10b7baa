package payment

import (
	"errors"
	"testing"

	"patypatii_back_end/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v83"
)

type refundRecorder struct {
	calls []string
	err   error
}

func (r *refundRecorder) refund(intentID string) (*stripe.Refund, error) {
	r.calls = append(r.calls, intentID)
	if r.err != nil {
		return nil, r.err
	}
	return &stripe.Refund{ID: "re_test"}, nil
}

func cardOrder() *models.Order {
	return &models.Order{
		OrderNumber:     "PTY-20250314-ABC123",
		PaymentIntentID: "pi_test_123",
		PaymentMethod:   models.MethodCard,
		PaymentStatus:   models.PaymentProcessing,
		Status:          models.OrderPending,
		Version:         1,
	}
}

func TestSettleIntentSuccessConfirmsOrder(t *testing.T) {
	o := cardOrder()
	rec := &refundRecorder{}

	refunded, changed, err := settleIntentSuccess(o, rec.refund)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, refunded)
	assert.Empty(t, rec.calls)
	assert.Equal(t, models.PaymentCompleted, o.PaymentStatus)
	assert.Equal(t, models.OrderConfirmed, o.Status)
	assert.Equal(t, 2, o.Version)
	require.Len(t, o.Timeline, 1)
	assert.Equal(t, "stripe", o.Timeline[0].Actor)
}

func TestSettleIntentSuccessReplayIsNoop(t *testing.T) {
	o := cardOrder()
	o.PaymentStatus = models.PaymentCompleted
	o.Status = models.OrderConfirmed
	rec := &refundRecorder{}

	refunded, changed, err := settleIntentSuccess(o, rec.refund)

	require.NoError(t, err)
	assert.False(t, changed)
	assert.False(t, refunded)
	assert.Empty(t, rec.calls)
	assert.Equal(t, 1, o.Version, "rien n'est réécrit sur rejeu")
}

func TestSettleIntentSuccessRefundsCancelledOrder(t *testing.T) {
	o := cardOrder()
	o.Status = models.OrderCancelled
	rec := &refundRecorder{}

	refunded, changed, err := settleIntentSuccess(o, rec.refund)

	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, refunded)
	require.Equal(t, []string{"pi_test_123"}, rec.calls)
	assert.Equal(t, models.PaymentRefunded, o.PaymentStatus)
	assert.Equal(t, models.OrderCancelled, o.Status, "le statut commande ne bouge pas")
	assert.Equal(t, 2, o.Version)
	require.Len(t, o.Notes, 1)
}

func TestSettleIntentSuccessRefundFailurePropagates(t *testing.T) {
	o := cardOrder()
	o.Status = models.OrderCancelled
	rec := &refundRecorder{err: errors.New("passerelle indisponible")}

	refunded, changed, err := settleIntentSuccess(o, rec.refund)

	require.Error(t, err)
	assert.False(t, changed)
	assert.False(t, refunded)
	assert.NotEqual(t, models.PaymentRefunded, o.PaymentStatus,
		"pas de remboursement marqué tant que la passerelle n'a pas accepté")
}
