package pricing

import (
	"fmt"
	"math/big"

	"swapCore/internal/amount"
)

// ConstantProduct prices swaps with the classic x*y=k formula over a
// fee-adjusted input:
//
//	fee = floor(amountIn * feeBps / 10000)
//	out = floor((amountIn - fee) * reserveOut / (reserveIn + amountIn - fee))
//
// All divisions floor in favor of the pool, which is what keeps the reserve
// product from ever decreasing across a swap.
type ConstantProduct struct{}

func (ConstantProduct) Kind() Kind {
	return KindConstantProduct
}

func (ConstantProduct) Quote(amountIn, reserveIn, reserveOut amount.Amount, feeBps uint32) (Quote, error) {
	if amountIn.IsZero() {
		return Quote{}, fmt.Errorf("%w: got %s", ErrInvalidAmount, amountIn)
	}

	fee := amountIn.FeeBps(feeBps)
	effectiveIn, err := amountIn.Sub(fee)
	if err != nil {
		return Quote{}, fmt.Errorf("fee exceeds input: %w", err)
	}

	denominator := reserveIn.Add(effectiveIn)
	out, err := effectiveIn.MulDivFloor(reserveOut, denominator)
	if err != nil {
		return Quote{}, fmt.Errorf("quote: %w", err)
	}

	if out.IsZero() {
		return Quote{}, fmt.Errorf("%w: input %s against reserves %s/%s",
			ErrDustAmount, amountIn, reserveIn, reserveOut)
	}
	if out.Cmp(reserveOut) >= 0 {
		return Quote{}, fmt.Errorf("%w: output %s would drain reserve %s",
			ErrInsufficientLiquidity, out, reserveOut)
	}

	if err := checkInvariant(reserveIn, reserveOut, effectiveIn, out); err != nil {
		return Quote{}, err
	}

	return Quote{AmountOut: out, Fee: fee}, nil
}

// checkInvariant verifies (reserveIn+effIn)*(reserveOut-out) >= reserveIn*reserveOut.
func checkInvariant(reserveIn, reserveOut, effectiveIn, out amount.Amount) error {
	before := new(big.Int).Mul(reserveIn.Big(), reserveOut.Big())

	newIn := new(big.Int).Add(reserveIn.Big(), effectiveIn.Big())
	newOut := new(big.Int).Sub(reserveOut.Big(), out.Big())
	after := new(big.Int).Mul(newIn, newOut)

	if after.Cmp(before) < 0 {
		return fmt.Errorf("%w: product %s -> %s", ErrInvariantViolated, before, after)
	}
	return nil
}
