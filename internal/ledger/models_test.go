package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCreditDecisionsAreFinal(t *testing.T) {
	next, err := CreditTransitions.Next(CreditPendingApproval, EventApprove)
	assert.NoError(t, err)
	assert.Equal(t, CreditApproved, next)

	next, err = CreditTransitions.Next(CreditPendingApproval, EventReject)
	assert.NoError(t, err)
	assert.Equal(t, CreditRejected, next)

	for _, status := range []CreditStatus{CreditApproved, CreditRejected, CreditSold, CreditExpired, CreditDelisted} {
		_, err := CreditTransitions.Next(status, EventApprove)
		assert.Error(t, err, "approve from %s", status)
		_, err = CreditTransitions.Next(status, EventReject)
		assert.Error(t, err, "reject from %s", status)
	}
}

func TestApprovedListingLifecycle(t *testing.T) {
	next, err := CreditTransitions.Next(CreditApproved, EventExhaust)
	assert.NoError(t, err)
	assert.Equal(t, CreditSold, next)

	assert.True(t, CreditTransitions.Can(CreditApproved, EventDelist))
	assert.True(t, CreditTransitions.Can(CreditApproved, EventExpire))
	assert.True(t, CreditTransitions.Terminal(CreditSold))
}

func TestConfirmSettlesInOneStep(t *testing.T) {
	next, err := OrderTransitions.Next(OrderPendingSellerAction, EventConfirm)
	assert.NoError(t, err)
	assert.Equal(t, OrderCompleted, next)
}

func TestPendingOrderOutcomes(t *testing.T) {
	next, err := OrderTransitions.Next(OrderPendingSellerAction, EventReject)
	assert.NoError(t, err)
	assert.Equal(t, OrderRejectedBySeller, next)

	next, err = OrderTransitions.Next(OrderPendingSellerAction, EventCancel)
	assert.NoError(t, err)
	assert.Equal(t, OrderCancelledByBuyer, next)
}

func TestProcessedOrdersAreTerminal(t *testing.T) {
	for _, status := range []OrderStatus{OrderCompleted, OrderRejectedBySeller, OrderCancelledByBuyer} {
		assert.True(t, OrderTransitions.Terminal(status), "status %s", status)
		_, err := OrderTransitions.Next(status, EventConfirm)
		assert.Error(t, err)
	}
}

func TestLegacyConfirmedOrdersCanComplete(t *testing.T) {
	next, err := OrderTransitions.Next(OrderConfirmedBySeller, EventComplete)
	assert.NoError(t, err)
	assert.Equal(t, OrderCompleted, next)
}
