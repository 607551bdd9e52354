package model

import "swapCore/internal/amount"

// SwapReceipt records one committed swap. Immutable once produced; the core
// hands it to storage sinks and callers but never reads it back.
type SwapReceipt struct {
	Pair           string        `json:"pair"`
	Direction      Direction     `json:"direction"`
	Trader         string        `json:"trader"`
	AmountIn       amount.Amount `json:"amount_in"`
	AmountOut      amount.Amount `json:"amount_out"`
	FeeCharged     amount.Amount `json:"fee_charged"`
	NewReserveA    amount.Amount `json:"new_reserve_a"`
	NewReserveB    amount.Amount `json:"new_reserve_b"`
	SettlementRef  string        `json:"settlement_ref"`
	IdempotencyKey string        `json:"idempotency_key"`
	CommittedAt    string        `json:"committed_at"`
}
