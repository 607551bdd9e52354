package settlement

import (
	"context"
	"errors"

	"swapCore/internal/amount"
)

var (
	// ErrTransferFailed is a clean, definitive settlement failure: no value
	// moved and the swap may be retried.
	ErrTransferFailed = errors.New("settlement transfer failed")
	// ErrDuplicateKey means the idempotency key was already settled with
	// different legs, which indicates a caller bug.
	ErrDuplicateKey = errors.New("idempotency key reused with different legs")
)

// Leg is a single directional movement of one asset.
type Leg struct {
	From   string
	To     string
	Asset  string
	Amount amount.Amount
}

// Request asks the collaborator to perform both legs of a swap as one logical
// action: debit the trader's input into pool custody and credit the trader
// with the pool's output.
type Request struct {
	IdempotencyKey string
	Debit          Leg
	Credit         Leg
}

// Result confirms a settled request. Reference is the collaborator's opaque
// confirmation token.
type Result struct {
	Reference string
}

// Settler is the external collaborator that moves actual value. The core only
// computes amounts; implementations must be idempotent per key.
type Settler interface {
	Settle(ctx context.Context, req Request) (Result, error)
}
