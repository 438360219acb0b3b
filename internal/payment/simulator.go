package payment

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// declineCard is the test card the provider documents as always declined.
const declineCard = "4000000000000002"

// Simulator approves everything except the designated decline card. Used in
// local environments where no gateway is reachable.
type Simulator struct{}

func NewSimulator() *Simulator {
	return &Simulator{}
}

func (s *Simulator) Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req.Card.Number == declineCard {
		return &AuthorizeResult{Approved: false, Reason: "card declined"}, nil
	}
	return &AuthorizeResult{
		Approved:      true,
		TransactionID: newTransactionID(),
	}, nil
}

func (s *Simulator) Refund(ctx context.Context, transactionID string, amountCents int64) error {
	return ctx.Err()
}

const txnAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

func newTransactionID() string {
	suffix := make([]byte, 6)
	for i := range suffix {
		suffix[i] = txnAlphabet[rand.Intn(len(txnAlphabet))]
	}
	return fmt.Sprintf("TXN_%d_%s", time.Now().UnixMilli(), suffix)
}

var _ Gateway = (*Simulator)(nil)
