package model

import "swapCore/internal/amount"

// PoolInfo is a read-only snapshot of one pool for callers and storage.
type PoolInfo struct {
	Pair          string        `json:"pair"`
	AssetA        string        `json:"asset_a"`
	AssetB        string        `json:"asset_b"`
	ReserveA      amount.Amount `json:"reserve_a"`
	ReserveB      amount.Amount `json:"reserve_b"`
	FeeBps        uint32        `json:"fee_bps"`
	Strategy      string        `json:"strategy"`
	Status        string        `json:"status"`
	PriceAInB     string        `json:"price_a_in_b"`
	PriceBInA     string        `json:"price_b_in_a"`
}
