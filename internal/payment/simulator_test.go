package payment

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimulator_Authorize(t *testing.T) {
	sim := NewSimulator()
	ctx := context.Background()

	result, err := sim.Authorize(ctx, AuthorizeRequest{
		AmountCents: 900000,
		Currency:    "TWD",
		Card:        Card{Number: "4111111111111111"},
	})
	assert.NoError(t, err)
	assert.True(t, result.Approved)
	assert.True(t, strings.HasPrefix(result.TransactionID, "TXN_"))
}

func TestSimulator_Authorize_declineCard(t *testing.T) {
	sim := NewSimulator()

	result, err := sim.Authorize(context.Background(), AuthorizeRequest{
		Card: Card{Number: declineCard},
	})
	assert.NoError(t, err)
	assert.False(t, result.Approved)
	assert.NotEmpty(t, result.Reason)
}

func TestSimulator_Authorize_cancelledContext(t *testing.T) {
	sim := NewSimulator()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := sim.Authorize(ctx, AuthorizeRequest{Card: Card{Number: "4111111111111111"}})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, context.Canceled)
}
