package payment

import (
	"context"
)

// Card details never leave the process through any path other than the
// gateway call; they are not persisted.
type Card struct {
	Number         string
	ExpiryMonth    int
	ExpiryYear     int
	CVV            string
	CardholderName string
}

type AuthorizeRequest struct {
	AmountCents int64
	Currency    string
	Reference   string
	Card        Card
}

type AuthorizeResult struct {
	Approved      bool
	TransactionID string
	Reason        string
}

// Gateway is the external payment collaborator. Authorize is synchronous and
// must honor ctx deadlines; Refund is best-effort from the caller's side.
type Gateway interface {
	Authorize(ctx context.Context, req AuthorizeRequest) (*AuthorizeResult, error)
	Refund(ctx context.Context, transactionID string, amountCents int64) error
}
