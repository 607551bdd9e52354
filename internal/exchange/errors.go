package exchange

import (
	"errors"
	"fmt"

	"swapCore/internal/amount"
)

var (
	// ErrSlippageExceeded rejects a swap whose quoted output is below the
	// caller's minimum. Reported before any settlement is dispatched.
	ErrSlippageExceeded = errors.New("slippage exceeded")
	// ErrStaleQuote aborts a swap whose reserves moved beyond the caller's
	// tolerance while settlement was in flight.
	ErrStaleQuote = errors.New("quote went stale during settlement")
	// ErrSettlementFailed is a clean collaborator failure: no value moved
	// and the swap is safe to retry.
	ErrSettlementFailed = errors.New("settlement failed")
	// ErrIndeterminateSettlement means the collaborator timed out and the
	// transfer outcome is unknown. Never auto-retried; the reference must
	// be reconciled against the collaborator's own record first.
	ErrIndeterminateSettlement = errors.New("settlement outcome indeterminate")
	// ErrReconciliationRequired is the fatal case: settlement confirmed
	// but the reserve commit failed, so the in-memory pool no longer
	// matches the collaborator's ledger.
	ErrReconciliationRequired = errors.New("commit failed after confirmed settlement, reconciliation required")
)

// AbortError carries the structured detail behind a rejected swap: which bound
// was violated, where the reserves stood, and what the caller asked for.
type AbortError struct {
	Phase         Phase
	Pair          string
	AmountIn      amount.Amount
	MinAmountOut  amount.Amount
	QuotedOut     amount.Amount
	ReserveA      amount.Amount
	ReserveB      amount.Amount
	SettlementRef string
	Err           error
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("swap aborted in %s: %v (pair %s, in %s, min out %s, quoted %s, reserves %s/%s)",
		e.Phase, e.Err, e.Pair, e.AmountIn, e.MinAmountOut, e.QuotedOut, e.ReserveA, e.ReserveB)
}

func (e *AbortError) Unwrap() error {
	return e.Err
}
