package pricing

import (
	"fmt"

	"swapCore/internal/amount"
)

// FixedPeg prices swaps 1:1 minus the fee. Reserves are informational only:
// the peg assumes an external backing collaborator supplies counter-liquidity,
// so the output is never checked against the output reserve.
type FixedPeg struct{}

func (FixedPeg) Kind() Kind {
	return KindFixedPeg
}

func (FixedPeg) Quote(amountIn, _, _ amount.Amount, feeBps uint32) (Quote, error) {
	if amountIn.IsZero() {
		return Quote{}, fmt.Errorf("%w: got %s", ErrInvalidAmount, amountIn)
	}

	fee := amountIn.FeeBps(feeBps)
	out, err := amountIn.Sub(fee)
	if err != nil {
		return Quote{}, fmt.Errorf("fee exceeds input: %w", err)
	}
	if out.IsZero() {
		return Quote{}, fmt.Errorf("%w: input %s, fee %s", ErrDustAmount, amountIn, fee)
	}

	return Quote{AmountOut: out, Fee: fee}, nil
}
